package ports

import (
	"context"

	"github.com/adoptafacil/adoption-api/internal/core/domain"
)

// PetFilter narrows listing queries. Zero values mean "no filter".
type PetFilter struct {
	OwnerID int64
	// Name is matched as a case-insensitive substring.
	Name string
}

// PetRepository persists listings and their image attachments.
// Reads always populate Images (ordered) and Owner.
type PetRepository interface {
	// Create inserts the listing and its images atomically and assigns IDs.
	Create(ctx context.Context, pet *domain.Pet) error
	FindByID(ctx context.Context, id int64) (*domain.Pet, error)
	List(ctx context.Context, filter PetFilter) ([]*domain.Pet, error)
	// WithinTx runs fn in a single transaction. fn's error rolls it back.
	WithinTx(ctx context.Context, fn func(tx PetTx) error) error
}

// PetTx is the set of mutations available inside a listing transaction.
type PetTx interface {
	// LockByID loads the listing with its images and holds a row lock until
	// the transaction ends.
	LockByID(ctx context.Context, id int64) (*domain.Pet, error)
	Update(ctx context.Context, pet *domain.Pet) error
	AddImages(ctx context.Context, petID int64, images []domain.PetImage) ([]domain.PetImage, error)
	DeleteImage(ctx context.Context, petID, imageID int64) error
	// Delete removes the listing; its images cascade.
	Delete(ctx context.Context, id int64) error
}
