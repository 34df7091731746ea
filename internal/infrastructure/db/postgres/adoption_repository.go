package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/adoptafacil/adoption-api/internal/core/domain"
)

const requestSelect = `SELECT id, requester_id, pet_id, status, comment, created_at, updated_at FROM adoption_requests`

type AdoptionRepository struct {
	db  *sql.DB
	now func() time.Time
}

func NewAdoptionRepository(db *sql.DB) *AdoptionRepository {
	return &AdoptionRepository{db: db, now: time.Now}
}

func (r *AdoptionRepository) Create(ctx context.Context, req *domain.AdoptionRequest) error {
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO adoption_requests (requester_id, pet_id, status, comment, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`,
		req.RequesterID, req.PetID, string(req.Status), req.Comment, req.CreatedAt, req.UpdatedAt,
	).Scan(&req.ID)
	if err != nil && pgCode(err) == foreignKeyViolation {
		return domain.NewValidationError("mascotaId", "pet or requester does not exist")
	}
	return err
}

func (r *AdoptionRepository) FindByID(ctx context.Context, id int64) (*domain.AdoptionRequest, error) {
	return scanRequest(r.db.QueryRowContext(ctx, requestSelect+` WHERE id = $1`, id))
}

func (r *AdoptionRepository) List(ctx context.Context) ([]*domain.AdoptionRequest, error) {
	rows, err := r.db.QueryContext(ctx, requestSelect+` ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []*domain.AdoptionRequest{}
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, req)
	}
	return out, rows.Err()
}

// UpdateStatus sets the status and, when comment is non-nil, replaces the comment.
func (r *AdoptionRepository) UpdateStatus(ctx context.Context, id int64, status domain.RequestStatus, comment *string) (*domain.AdoptionRequest, error) {
	var c sql.NullString
	if comment != nil {
		c = sql.NullString{String: *comment, Valid: true}
	}
	return scanRequest(r.db.QueryRowContext(ctx, `
		UPDATE adoption_requests SET status = $2, comment = COALESCE($4, comment), updated_at = $3 WHERE id = $1
		RETURNING id, requester_id, pet_id, status, comment, created_at, updated_at`,
		id, string(status), r.now().UTC(), c,
	))
}

func scanRequest(s scanner) (*domain.AdoptionRequest, error) {
	var (
		req    domain.AdoptionRequest
		status string
	)
	if err := s.Scan(&req.ID, &req.RequesterID, &req.PetID, &status, &req.Comment, &req.CreatedAt, &req.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrRequestNotFound
		}
		return nil, err
	}
	req.Status = domain.RequestStatus(status)
	return &req, nil
}
