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

type PersonService struct {
	repo   ports.PersonRepository
	roles  ports.RoleRepository
	hasher ports.PasswordHasher
	log    zerolog.Logger
	now    func() time.Time
}

func NewPersonService(repo ports.PersonRepository, roles ports.RoleRepository, hasher ports.PasswordHasher, log zerolog.Logger) *PersonService {
	return &PersonService{repo: repo, roles: roles, hasher: hasher, log: log, now: time.Now}
}

func (s *PersonService) List(ctx context.Context) ([]*domain.User, error) {
	return s.repo.List(ctx)
}

func (s *PersonService) Get(ctx context.Context, id int64) (*domain.User, error) {
	u, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get person %d: %w", id, err)
	}
	return u, nil
}

func (s *PersonService) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	u, err := s.repo.FindByEmail(ctx, domain.NormalizeEmail(email))
	if err != nil {
		return nil, fmt.Errorf("get person by email: %w", err)
	}
	return u, nil
}

func (s *PersonService) ListByRole(ctx context.Context, roleType string) ([]*domain.User, error) {
	role, err := domain.ParseRole(roleType)
	if err != nil {
		return nil, err
	}
	return s.repo.ListByRole(ctx, role)
}

func (s *PersonService) Create(ctx context.Context, in ports.PersonInput) (*domain.User, error) {
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
	role, err := s.resolveRole(ctx, in.Role)
	if err != nil {
		return nil, err
	}
	if _, err := s.repo.FindByEmail(ctx, email); err == nil {
		return nil, domain.ErrUserExists
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("create person: %w", err)
	}

	digest, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("create person: hash password: %w", err)
	}
	now := s.now().UTC()
	created, err := s.repo.Create(ctx, &domain.User{
		Name:         strings.TrimSpace(in.Name),
		LastName:     strings.TrimSpace(in.LastName),
		Email:        email,
		PasswordHash: digest,
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return nil, fmt.Errorf("create person: %w", err)
	}
	return created, nil
}

// Update changes profile fields. Empty name, last name or email keep their
// stored values.
func (s *PersonService) Update(ctx context.Context, id int64, in ports.PersonInput) (*domain.User, error) {
	u, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("update person %d: %w", id, err)
	}
	if v := strings.TrimSpace(in.Name); v != "" {
		u.Name = v
	}
	if v := strings.TrimSpace(in.LastName); v != "" {
		u.LastName = v
	}
	if email := domain.NormalizeEmail(in.Email); email != "" && email != u.Email {
		if _, err := s.repo.FindByEmail(ctx, email); err == nil {
			return nil, domain.ErrUserExists
		} else if !errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("update person %d: %w", id, err)
		}
		u.Email = email
	}
	if in.Role != "" {
		role, err := s.resolveRole(ctx, in.Role)
		if err != nil {
			return nil, err
		}
		u.Role = role
	}
	if in.Password != "" {
		digest, err := s.hasher.Hash(in.Password)
		if err != nil {
			return nil, fmt.Errorf("update person %d: hash password: %w", id, err)
		}
		u.PasswordHash = digest
	}
	u.UpdatedAt = s.now().UTC()

	updated, err := s.repo.Update(ctx, u)
	if err != nil {
		return nil, fmt.Errorf("update person %d: %w", id, err)
	}
	return updated, nil
}

func (s *PersonService) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete person %d: %w", id, err)
	}
	s.log.Info().Int64("person_id", id).Msg("person deleted")
	return nil
}

func (s *PersonService) resolveRole(ctx context.Context, roleType string) (domain.Role, error) {
	role, err := domain.ParseRole(roleType)
	if err != nil {
		return "", err
	}
	if _, err := s.roles.FindByType(ctx, role); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return "", domain.NewValidationError("role", "role is not provisioned")
		}
		return "", err
	}
	return role, nil
}
