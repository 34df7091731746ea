package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/adoptafacil/adoption-api/internal/core/domain"
)

const donationSelect = `SELECT id, donor_id, amount, payment_method, donated_at, comment FROM donations`

type DonationRepository struct {
	db *sql.DB
}

func NewDonationRepository(db *sql.DB) *DonationRepository {
	return &DonationRepository{db: db}
}

func (r *DonationRepository) Create(ctx context.Context, d *domain.Donation) error {
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO donations (donor_id, amount, payment_method, donated_at, comment)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`,
		d.DonorID, d.Amount, d.PaymentMethod, d.DonatedAt, d.Comment,
	).Scan(&d.ID)
	if err != nil && pgCode(err) == foreignKeyViolation {
		return domain.NewValidationError("donanteId", "donor does not exist")
	}
	return err
}

func (r *DonationRepository) FindByID(ctx context.Context, id int64) (*domain.Donation, error) {
	return scanDonation(r.db.QueryRowContext(ctx, donationSelect+` WHERE id = $1`, id))
}

func (r *DonationRepository) List(ctx context.Context) ([]*domain.Donation, error) {
	return r.query(ctx, donationSelect+` ORDER BY id`)
}

func (r *DonationRepository) ListByDonor(ctx context.Context, donorID int64) ([]*domain.Donation, error) {
	return r.query(ctx, donationSelect+` WHERE donor_id = $1 ORDER BY id`, donorID)
}

func (r *DonationRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM donations WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return requireAffected(res, domain.ErrDonationNotFound)
}

func (r *DonationRepository) query(ctx context.Context, q string, args ...any) ([]*domain.Donation, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []*domain.Donation{}
	for rows.Next() {
		d, err := scanDonation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func scanDonation(s scanner) (*domain.Donation, error) {
	var d domain.Donation
	if err := s.Scan(&d.ID, &d.DonorID, &d.Amount, &d.PaymentMethod, &d.DonatedAt, &d.Comment); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrDonationNotFound
		}
		return nil, err
	}
	return &d, nil
}
