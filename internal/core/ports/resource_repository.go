package ports

import (
	"context"

	"github.com/adoptafacil/adoption-api/internal/core/domain"
)

type RoleRepository interface {
	List(ctx context.Context) ([]domain.RoleRecord, error)
	FindByID(ctx context.Context, id int64) (*domain.RoleRecord, error)
	FindByType(ctx context.Context, role domain.Role) (*domain.RoleRecord, error)
	Create(ctx context.Context, role domain.Role) (*domain.RoleRecord, error)
	Update(ctx context.Context, record domain.RoleRecord) (*domain.RoleRecord, error)
}

type DonationRepository interface {
	Create(ctx context.Context, d *domain.Donation) error
	FindByID(ctx context.Context, id int64) (*domain.Donation, error)
	List(ctx context.Context) ([]*domain.Donation, error)
	ListByDonor(ctx context.Context, donorID int64) ([]*domain.Donation, error)
	Delete(ctx context.Context, id int64) error
}

type AdoptionRepository interface {
	Create(ctx context.Context, r *domain.AdoptionRequest) error
	FindByID(ctx context.Context, id int64) (*domain.AdoptionRequest, error)
	List(ctx context.Context) ([]*domain.AdoptionRequest, error)
	UpdateStatus(ctx context.Context, id int64, status domain.RequestStatus, comment *string) (*domain.AdoptionRequest, error)
}

// IdempotencyStore remembers which resource a client-supplied key produced.
//
// Reserve claims key within scope before the resource is created. When the
// key was already claimed, reserved is false and id holds the resource it
// produced, or 0 while that first request is still in flight. Complete binds
// a reserved key to the created resource and Release frees a reservation
// whose request failed.
type IdempotencyStore interface {
	Reserve(ctx context.Context, scope, key string) (id int64, reserved bool, err error)
	Complete(ctx context.Context, scope, key string, id int64) error
	Release(ctx context.Context, scope, key string) error
}
