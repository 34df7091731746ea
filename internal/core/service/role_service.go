package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/adoptafacil/adoption-api/internal/core/domain"
	"github.com/adoptafacil/adoption-api/internal/core/ports"
)

type RoleService struct {
	repo ports.RoleRepository
	log  zerolog.Logger
}

func NewRoleService(repo ports.RoleRepository, log zerolog.Logger) *RoleService {
	return &RoleService{repo: repo, log: log}
}

func (s *RoleService) List(ctx context.Context) ([]domain.RoleRecord, error) {
	return s.repo.List(ctx)
}

func (s *RoleService) Get(ctx context.Context, id int64) (*domain.RoleRecord, error) {
	r, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get role %d: %w", id, err)
	}
	return r, nil
}

func (s *RoleService) GetByType(ctx context.Context, roleType string) (*domain.RoleRecord, error) {
	role, err := domain.ParseRole(roleType)
	if err != nil {
		return nil, err
	}
	return s.repo.FindByType(ctx, role)
}

func (s *RoleService) Create(ctx context.Context, roleType string) (*domain.RoleRecord, error) {
	role, err := domain.ParseRole(roleType)
	if err != nil {
		return nil, err
	}
	if _, err := s.repo.FindByType(ctx, role); err == nil {
		return nil, domain.ErrRoleExists
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("create role: %w", err)
	}
	r, err := s.repo.Create(ctx, role)
	if err != nil {
		return nil, fmt.Errorf("create role: %w", err)
	}
	s.log.Info().Int64("role_id", r.ID).Str("role", string(role)).Msg("role created")
	return r, nil
}

func (s *RoleService) Update(ctx context.Context, id int64, roleType string) (*domain.RoleRecord, error) {
	role, err := domain.ParseRole(roleType)
	if err != nil {
		return nil, err
	}
	r, err := s.repo.Update(ctx, domain.RoleRecord{ID: id, Type: role})
	if err != nil {
		return nil, fmt.Errorf("update role %d: %w", id, err)
	}
	return r, nil
}

// EnsureRoles inserts every supported role that is not yet stored. It is safe
// to run on every startup.
func EnsureRoles(ctx context.Context, repo ports.RoleRepository, log zerolog.Logger) error {
	for _, role := range domain.Roles {
		_, err := repo.FindByType(ctx, role)
		if err == nil {
			continue
		}
		if !errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("ensure role %s: %w", role, err)
		}
		if _, err := repo.Create(ctx, role); err != nil && !errors.Is(err, domain.ErrConflict) {
			return fmt.Errorf("ensure role %s: %w", role, err)
		}
		log.Info().Str("role", string(role)).Msg("role seeded")
	}
	return nil
}
