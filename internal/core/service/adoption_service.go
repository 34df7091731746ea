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

// AdoptionService manages adoption requests. Status changes are not
// restricted to any workflow; any valid status can be set at any time.
type AdoptionService struct {
	repo    ports.AdoptionRepository
	pets    ports.PetRepository
	persons ports.PersonRepository
	log     zerolog.Logger
	now     func() time.Time
}

func NewAdoptionService(repo ports.AdoptionRepository, pets ports.PetRepository, persons ports.PersonRepository, log zerolog.Logger) *AdoptionService {
	return &AdoptionService{repo: repo, pets: pets, persons: persons, log: log, now: time.Now}
}

// Create files a request in PENDING state. The requester defaults to the caller.
func (s *AdoptionService) Create(ctx context.Context, caller *domain.User, in ports.AdoptionInput) (*domain.AdoptionRequest, error) {
	requesterID := in.RequesterID
	if requesterID == 0 && caller != nil {
		requesterID = caller.ID
	}
	if requesterID == 0 {
		return nil, domain.NewValidationError("solicitanteId", "is required")
	}
	if in.PetID == 0 {
		return nil, domain.NewValidationError("mascotaId", "is required")
	}
	if _, err := s.persons.FindByID(ctx, requesterID); err != nil {
		return nil, referenceError("solicitanteId", "requester does not exist", err)
	}
	if _, err := s.pets.FindByID(ctx, in.PetID); err != nil {
		return nil, referenceError("mascotaId", "pet does not exist", err)
	}

	now := s.now().UTC()
	req := &domain.AdoptionRequest{
		RequesterID: requesterID,
		PetID:       in.PetID,
		Status:      domain.StatusPending,
		Comment:     strings.TrimSpace(in.Comment),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Create(ctx, req); err != nil {
		return nil, fmt.Errorf("create adoption request: %w", err)
	}
	s.log.Info().Int64("request_id", req.ID).Int64("pet_id", req.PetID).Int64("requester_id", requesterID).Msg("adoption request created")
	return req, nil
}

func (s *AdoptionService) Get(ctx context.Context, id int64) (*domain.AdoptionRequest, error) {
	r, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get adoption request %d: %w", id, err)
	}
	return r, nil
}

func (s *AdoptionService) List(ctx context.Context) ([]*domain.AdoptionRequest, error) {
	return s.repo.List(ctx)
}

func (s *AdoptionService) SetStatus(ctx context.Context, id int64, status string, comment *string) (*domain.AdoptionRequest, error) {
	st, err := domain.ParseRequestStatus(status)
	if err != nil {
		return nil, err
	}
	if comment != nil {
		trimmed := strings.TrimSpace(*comment)
		comment = &trimmed
	}
	r, err := s.repo.UpdateStatus(ctx, id, st, comment)
	if err != nil {
		return nil, fmt.Errorf("set status of adoption request %d: %w", id, err)
	}
	s.log.Info().Int64("request_id", id).Str("status", string(st)).Msg("adoption request status changed")
	return r, nil
}

func referenceError(field, reason string, err error) error {
	if errors.Is(err, domain.ErrNotFound) {
		return domain.NewValidationError(field, reason)
	}
	return err
}
