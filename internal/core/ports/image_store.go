package ports

import (
	"context"
	"io"
)

// ImageStore persists uploaded image bytes under opaque keys.
type ImageStore interface {
	Save(ctx context.Context, filename, contentType string, r io.Reader) (key string, err error)
	Delete(ctx context.Context, key string) error
	// URL returns the public location clients use to fetch key.
	URL(key string) string
}

// ImageUpload is a single file received with a listing create or update.
type ImageUpload struct {
	Filename    string
	ContentType string
	Content     io.Reader
}
