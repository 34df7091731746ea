// Package storage implements ports.ImageStore on local disk and on S3.
package storage

import (
	"context"
	"io"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/google/uuid"

	"github.com/adoptafacil/adoption-api/internal/api/metrics"
	"github.com/adoptafacil/adoption-api/internal/core/ports"
)

const maxNameLen = 100

// objectKey returns a collision-free key that keeps the client's file name
// readable: <uuid>_<sanitized name>.
func objectKey(filename string) string {
	name := sanitizeName(filename)
	if name == "" {
		return uuid.NewString()
	}
	return uuid.NewString() + "_" + name
}

func sanitizeName(filename string) string {
	base := filepath.Base(strings.ReplaceAll(filename, `\`, "/"))
	if base == "." || base == "/" || base == ".." {
		return ""
	}
	var b strings.Builder
	for _, r := range base {
		switch {
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)), r == '.', r == '-', r == '_':
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteRune('_')
		}
	}
	name := strings.TrimLeft(b.String(), ".")
	if len(name) > maxNameLen {
		name = name[len(name)-maxNameLen:]
	}
	return name
}

// Instrumented wraps an ImageStore and records Prometheus counters.
type Instrumented struct {
	next   ports.ImageStore
	driver string
}

func NewInstrumented(next ports.ImageStore, driver string) *Instrumented {
	return &Instrumented{next: next, driver: driver}
}

func (s *Instrumented) Save(ctx context.Context, filename, contentType string, r io.Reader) (string, error) {
	key, err := s.next.Save(ctx, filename, contentType, r)
	if err == nil {
		metrics.ImagesStoredTotal.WithLabelValues(s.driver).Inc()
	}
	return key, err
}

func (s *Instrumented) Delete(ctx context.Context, key string) error {
	err := s.next.Delete(ctx, key)
	result := "success"
	if err != nil {
		result = "failure"
	}
	metrics.ImagesDeletedTotal.WithLabelValues(s.driver, result).Inc()
	return err
}

func (s *Instrumented) URL(key string) string { return s.next.URL(key) }
