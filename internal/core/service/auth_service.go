package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/adoptafacil/adoption-api/internal/core/domain"
	"github.com/adoptafacil/adoption-api/internal/core/ports"
)

// dummyDigest is compared against when the email is unknown so that a missing
// account costs the same bcrypt work as a wrong password.
const dummyDigest = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

// AuthService implements registration and login.
type AuthService struct {
	users  ports.AuthRepository
	roles  ports.RoleRepository
	hasher ports.PasswordHasher
	tokens ports.TokenIssuer
	audit  ports.SecurityAudit
	log    zerolog.Logger
	now    func() time.Time
}

func NewAuthService(
	users ports.AuthRepository,
	roles ports.RoleRepository,
	hasher ports.PasswordHasher,
	tokens ports.TokenIssuer,
	audit ports.SecurityAudit,
	log zerolog.Logger,
) *AuthService {
	if audit == nil {
		audit = ports.NopAudit{}
	}
	return &AuthService{
		users:  users,
		roles:  roles,
		hasher: hasher,
		tokens: tokens,
		audit:  audit,
		log:    log,
		now:    time.Now,
	}
}

func (s *AuthService) Register(ctx context.Context, in ports.RegisterInput) (*ports.AuthResult, error) {
	email := domain.NormalizeEmail(in.Email)
	if email == "" {
		return nil, domain.NewValidationError("email", "is required")
	}
	if strings.TrimSpace(in.Name) == "" {
		return nil, domain.NewValidationError("name", "is required")
	}
	if in.Password == "" {
		return nil, domain.NewValidationError("password", "is required")
	}
	role, err := domain.ParseRole(in.Role)
	if err != nil {
		return nil, err
	}
	if _, err := s.roles.FindByType(ctx, role); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.NewValidationError("role", "role is not provisioned")
		}
		return nil, fmt.Errorf("register: %w", err)
	}

	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return nil, domain.ErrUserExists
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("register: %w", err)
	}

	digest, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("register: hash password: %w", err)
	}

	now := s.now().UTC()
	created, err := s.users.Create(ctx, &domain.User{
		Name:         strings.TrimSpace(in.Name),
		LastName:     strings.TrimSpace(in.LastName),
		Email:        email,
		PasswordHash: digest,
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}

	token, err := s.tokens.Issue(created.Email, created.Role, now)
	if err != nil {
		return nil, fmt.Errorf("register: issue token: %w", err)
	}

	s.record(ctx, domain.SecurityEvent{Type: domain.EventRegistered, Email: created.Email, UserID: created.ID, At: now})
	s.log.Info().Int64("user_id", created.ID).Str("role", string(created.Role)).Msg("user registered")

	return &ports.AuthResult{Token: token, User: created}, nil
}

// Login never distinguishes an unknown email from a wrong password.
func (s *AuthService) Login(ctx context.Context, email, password string) (*ports.AuthResult, error) {
	email = domain.NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("login: %w", err)
		}
		s.hasher.Verify(password, dummyDigest)
		s.record(ctx, domain.SecurityEvent{Type: domain.EventLoginFailed, Email: email, At: s.now().UTC()})
		return nil, domain.ErrInvalidCredentials
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		s.record(ctx, domain.SecurityEvent{Type: domain.EventLoginFailed, Email: email, UserID: user.ID, At: s.now().UTC()})
		return nil, domain.ErrInvalidCredentials
	}

	now := s.now().UTC()
	token, err := s.tokens.Issue(user.Email, user.Role, now)
	if err != nil {
		return nil, fmt.Errorf("login: issue token: %w", err)
	}

	s.record(ctx, domain.SecurityEvent{Type: domain.EventLoginSucceeded, Email: user.Email, UserID: user.ID, At: now})
	return &ports.AuthResult{Token: token, User: user}, nil
}

func (s *AuthService) record(ctx context.Context, ev domain.SecurityEvent) {
	if err := s.audit.Record(ctx, ev); err != nil {
		s.log.Warn().Err(err).Str("event", string(ev.Type)).Msg("failed to record security event")
	}
}
