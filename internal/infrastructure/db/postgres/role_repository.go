package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/adoptafacil/adoption-api/internal/core/domain"
)

type RoleRepository struct {
	db *sql.DB
}

func NewRoleRepository(db *sql.DB) *RoleRepository {
	return &RoleRepository{db: db}
}

func (r *RoleRepository) List(ctx context.Context) ([]domain.RoleRecord, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, role_type FROM roles ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.RoleRecord{}
	for rows.Next() {
		rec, err := scanRole(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *rec)
	}
	return out, rows.Err()
}

func (r *RoleRepository) FindByID(ctx context.Context, id int64) (*domain.RoleRecord, error) {
	return scanRole(r.db.QueryRowContext(ctx, `SELECT id, role_type FROM roles WHERE id = $1`, id))
}

func (r *RoleRepository) FindByType(ctx context.Context, role domain.Role) (*domain.RoleRecord, error) {
	return scanRole(r.db.QueryRowContext(ctx, `SELECT id, role_type FROM roles WHERE role_type = $1`, string(role)))
}

func (r *RoleRepository) Create(ctx context.Context, role domain.Role) (*domain.RoleRecord, error) {
	rec := domain.RoleRecord{Type: role}
	err := r.db.QueryRowContext(ctx, `INSERT INTO roles (role_type) VALUES ($1) RETURNING id`, string(role)).Scan(&rec.ID)
	if err != nil {
		if pgCode(err) == uniqueViolation {
			return nil, domain.ErrRoleExists
		}
		return nil, err
	}
	return &rec, nil
}

func (r *RoleRepository) Update(ctx context.Context, rec domain.RoleRecord) (*domain.RoleRecord, error) {
	res, err := r.db.ExecContext(ctx, `UPDATE roles SET role_type = $2 WHERE id = $1`, rec.ID, string(rec.Type))
	if err != nil {
		if pgCode(err) == uniqueViolation {
			return nil, domain.ErrRoleExists
		}
		return nil, err
	}
	if err := requireAffected(res, domain.ErrRoleNotFound); err != nil {
		return nil, err
	}
	return &rec, nil
}

func scanRole(s scanner) (*domain.RoleRecord, error) {
	var (
		rec  domain.RoleRecord
		role string
	)
	if err := s.Scan(&rec.ID, &role); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrRoleNotFound
		}
		return nil, err
	}
	rec.Type = domain.Role(role)
	return &rec, nil
}
