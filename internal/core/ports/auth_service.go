package ports

import (
	"context"
	"time"

	"github.com/adoptafacil/adoption-api/internal/core/domain"
)

// PasswordHasher turns plaintext secrets into salted one-way digests.
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, digest string) bool
}

// TokenIssuer mints signed session tokens.
type TokenIssuer interface {
	Issue(email string, role domain.Role, now time.Time) (string, error)
}

// TokenVerifier inspects session tokens presented on requests.
type TokenVerifier interface {
	Validate(token string) bool
	IsExpired(token string) bool
	Subject(token string) (string, error)
	Role(token string) (domain.Role, error)
}

// RegisterInput carries the fields accepted by registration.
type RegisterInput struct {
	Name     string
	LastName string
	Email    string
	Password string
	Role     string
}

// AuthResult is returned by a successful registration or login.
type AuthResult struct {
	Token string
	User  *domain.User
}

type AuthService interface {
	Register(ctx context.Context, input RegisterInput) (*AuthResult, error)
	Login(ctx context.Context, email, password string) (*AuthResult, error)
}
