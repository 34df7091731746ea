package ports

import (
	"context"

	"github.com/adoptafacil/adoption-api/internal/core/domain"
)

// AuthRepository is the credential store used by registration, login and
// request authentication. Emails are passed already normalized.
type AuthRepository interface {
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
}

// PersonRepository extends the credential store with profile management.
type PersonRepository interface {
	AuthRepository
	FindByID(ctx context.Context, id int64) (*domain.User, error)
	List(ctx context.Context) ([]*domain.User, error)
	ListByRole(ctx context.Context, role domain.Role) ([]*domain.User, error)
	Update(ctx context.Context, user *domain.User) (*domain.User, error)
	Delete(ctx context.Context, id int64) error
}

// IdentityLookup resolves a token subject to the stored identity.
type IdentityLookup interface {
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
}
