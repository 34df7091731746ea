package ports

import (
	"context"
	"time"

	"github.com/adoptafacil/adoption-api/internal/core/domain"
)

type DonationInput struct {
	DonorID       int64
	Amount        float64
	PaymentMethod string
	DonatedAt     *time.Time
	Comment       string
	// IdempotencyKey is optional; a repeated key returns the original donation.
	IdempotencyKey string
}

type DonationService interface {
	Create(ctx context.Context, caller *domain.User, input DonationInput) (*domain.Donation, bool, error)
	Get(ctx context.Context, id int64) (*domain.Donation, error)
	List(ctx context.Context) ([]*domain.Donation, error)
	ListByDonor(ctx context.Context, donorID int64) ([]*domain.Donation, error)
	Delete(ctx context.Context, id int64) error
}

type RoleService interface {
	List(ctx context.Context) ([]domain.RoleRecord, error)
	Get(ctx context.Context, id int64) (*domain.RoleRecord, error)
	GetByType(ctx context.Context, roleType string) (*domain.RoleRecord, error)
	Create(ctx context.Context, roleType string) (*domain.RoleRecord, error)
	Update(ctx context.Context, id int64, roleType string) (*domain.RoleRecord, error)
}

// PersonInput is used by profile create and update. On update an empty
// Password keeps the current one and an empty Role keeps the current role.
type PersonInput struct {
	Name     string
	LastName string
	Email    string
	Password string
	Role     string
}

type PersonService interface {
	List(ctx context.Context) ([]*domain.User, error)
	Get(ctx context.Context, id int64) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	ListByRole(ctx context.Context, role string) ([]*domain.User, error)
	Create(ctx context.Context, input PersonInput) (*domain.User, error)
	Update(ctx context.Context, id int64, input PersonInput) (*domain.User, error)
	Delete(ctx context.Context, id int64) error
}

type AdoptionInput struct {
	RequesterID int64
	PetID       int64
	Comment     string
}

type AdoptionService interface {
	Create(ctx context.Context, caller *domain.User, input AdoptionInput) (*domain.AdoptionRequest, error)
	Get(ctx context.Context, id int64) (*domain.AdoptionRequest, error)
	List(ctx context.Context) ([]*domain.AdoptionRequest, error)
	// SetStatus moves a request to status. A non-nil comment replaces the stored one.
	SetStatus(ctx context.Context, id int64, status string, comment *string) (*domain.AdoptionRequest, error)
}
