package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/adoptafacil/adoption-api/internal/core/domain"
	"github.com/adoptafacil/adoption-api/internal/core/ports"
)

type DonationService struct {
	repo    ports.DonationRepository
	persons ports.PersonRepository
	keys    ports.IdempotencyStore
	log     zerolog.Logger
	now     func() time.Time
}

// NewDonationService returns a DonationService. keys may be nil, in which case
// Idempotency-Key headers are ignored.
func NewDonationService(repo ports.DonationRepository, persons ports.PersonRepository, keys ports.IdempotencyStore, log zerolog.Logger) *DonationService {
	return &DonationService{repo: repo, persons: persons, keys: keys, log: log, now: time.Now}
}

// Create records a donation. The donor defaults to the caller. Idempotency
// keys are scoped to the caller: when the caller already used the key, the
// original donation is returned and replayed is true.
func (s *DonationService) Create(ctx context.Context, caller *domain.User, in ports.DonationInput) (d *domain.Donation, replayed bool, err error) {
	scope := donationScope(caller)
	if in.IdempotencyKey != "" && s.keys != nil {
		existing, reserved, rerr := s.reserve(ctx, scope, in.IdempotencyKey)
		switch {
		case rerr != nil:
			return nil, false, rerr
		case existing != nil:
			return existing, true, nil
		case reserved:
			defer func() {
				s.settle(ctx, scope, in.IdempotencyKey, d, err)
			}()
		}
	}

	donorID := in.DonorID
	if donorID == 0 && caller != nil {
		donorID = caller.ID
	}
	if donorID == 0 {
		return nil, false, domain.NewValidationError("donanteId", "is required")
	}
	if in.Amount <= 0 {
		return nil, false, domain.NewValidationError("monto", "must be greater than zero")
	}
	method := strings.TrimSpace(in.PaymentMethod)
	if method == "" {
		return nil, false, domain.NewValidationError("metodoPago", "is required")
	}
	if _, err := s.persons.FindByID(ctx, donorID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, false, domain.NewValidationError("donanteId", "donor does not exist")
		}
		return nil, false, fmt.Errorf("create donation: %w", err)
	}

	d = &domain.Donation{
		DonorID:       donorID,
		Amount:        in.Amount,
		PaymentMethod: method,
		DonatedAt:     s.now().UTC(),
		Comment:       strings.TrimSpace(in.Comment),
	}
	if in.DonatedAt != nil {
		d.DonatedAt = in.DonatedAt.UTC()
	}
	if err := s.repo.Create(ctx, d); err != nil {
		return nil, false, fmt.Errorf("create donation: %w", err)
	}

	s.log.Info().Int64("donation_id", d.ID).Int64("donor_id", donorID).Msg("donation recorded")
	return d, false, nil
}

// reserve claims key for this request. It returns the earlier donation when
// the key was already completed, and reserved is false when the store is
// unavailable so creation proceeds without a key.
func (s *DonationService) reserve(ctx context.Context, scope, key string) (*domain.Donation, bool, error) {
	id, reserved, err := s.keys.Reserve(ctx, scope, key)
	if err != nil {
		s.log.Warn().Err(err).Str("idempotency_key", key).Msg("idempotency store unavailable, creating anyway")
		return nil, false, nil
	}
	if reserved {
		return nil, true, nil
	}
	if id == 0 {
		return nil, false, domain.ErrIdempotencyInFlight
	}

	existing, err := s.repo.FindByID(ctx, id)
	switch {
	case err == nil:
		s.log.Info().Str("idempotency_key", key).Int64("donation_id", id).Msg("idempotent replay")
		return existing, false, nil
	case errors.Is(err, domain.ErrNotFound):
		// The original donation was deleted; the key is rebound on success.
		return nil, true, nil
	default:
		return nil, false, fmt.Errorf("create donation: %w", err)
	}
}

// settle binds the key to the created donation, or frees it when creation failed.
func (s *DonationService) settle(ctx context.Context, scope, key string, d *domain.Donation, err error) {
	if err != nil || d == nil {
		if rerr := s.keys.Release(ctx, scope, key); rerr != nil {
			s.log.Warn().Err(rerr).Str("idempotency_key", key).Msg("failed to release idempotency key")
		}
		return
	}
	if cerr := s.keys.Complete(ctx, scope, key, d.ID); cerr != nil {
		s.log.Warn().Err(cerr).Str("idempotency_key", key).Msg("failed to store idempotency key")
	}
}

func donationScope(caller *domain.User) string {
	if caller == nil {
		return "donation:anonymous"
	}
	return "donation:" + strconv.FormatInt(caller.ID, 10)
}

func (s *DonationService) Get(ctx context.Context, id int64) (*domain.Donation, error) {
	d, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get donation %d: %w", id, err)
	}
	return d, nil
}

func (s *DonationService) List(ctx context.Context) ([]*domain.Donation, error) {
	return s.repo.List(ctx)
}

func (s *DonationService) ListByDonor(ctx context.Context, donorID int64) ([]*domain.Donation, error) {
	return s.repo.ListByDonor(ctx, donorID)
}

func (s *DonationService) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete donation %d: %w", id, err)
	}
	return nil
}
