package ports

import (
	"context"
	"time"

	"github.com/adoptafacil/adoption-api/internal/core/domain"
)

// PetInput is the listing payload shared by create and update.
// Pointer fields are optional on update: nil leaves the stored value as is.
type PetInput struct {
	Name        string
	Species     string
	Breed       string
	Age         int
	BirthDate   *time.Time
	Sex         *string
	City        *string
	Description *string
}

type PetService interface {
	Create(ctx context.Context, caller *domain.User, input PetInput, images []ImageUpload) (*domain.Pet, error)
	Get(ctx context.Context, id int64) (*domain.Pet, error)
	List(ctx context.Context, caller *domain.User, name string) ([]*domain.Pet, error)
	ListAll(ctx context.Context, caller *domain.User) ([]*domain.Pet, error)
	// CheckOwnership reports NotFound or PermissionDenied before any payload is read.
	CheckOwnership(ctx context.Context, caller *domain.User, id int64) error
	Update(ctx context.Context, caller *domain.User, id int64, input PetInput, images []ImageUpload) (*domain.Pet, error)
	Delete(ctx context.Context, caller *domain.User, id int64) error
	DeleteImage(ctx context.Context, caller *domain.User, petID, imageID int64) (*domain.Pet, error)
	ImageURL(key string) string
}
