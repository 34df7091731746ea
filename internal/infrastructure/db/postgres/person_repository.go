package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/adoptafacil/adoption-api/internal/core/domain"
)

const personSelect = `
	SELECT p.id, p.name, p.last_name, p.email, p.password_hash, r.role_type, p.created_at, p.updated_at
	FROM persons p
	JOIN roles r ON r.id = p.role_id`

// PersonRepository stores identities in the persons table.
type PersonRepository struct {
	db *sql.DB
}

func NewPersonRepository(db *sql.DB) *PersonRepository {
	return &PersonRepository{db: db}
}

func (r *PersonRepository) Create(ctx context.Context, u *domain.User) (*domain.User, error) {
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO persons (name, last_name, email, password_hash, role_id, created_at, updated_at)
		SELECT $1, $2, $3, $4, r.id, $6, $7 FROM roles r WHERE r.role_type = $5
		RETURNING id`,
		u.Name, u.LastName, u.Email, u.PasswordHash, string(u.Role), u.CreatedAt, u.UpdatedAt,
	)
	created := *u
	if err := row.Scan(&created.ID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrRoleNotFound
		}
		if pgCode(err) == uniqueViolation {
			return nil, domain.ErrUserExists
		}
		return nil, err
	}
	return &created, nil
}

func (r *PersonRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return scanPerson(r.db.QueryRowContext(ctx, personSelect+` WHERE p.email = $1`, email))
}

func (r *PersonRepository) FindByID(ctx context.Context, id int64) (*domain.User, error) {
	return scanPerson(r.db.QueryRowContext(ctx, personSelect+` WHERE p.id = $1`, id))
}

func (r *PersonRepository) List(ctx context.Context) ([]*domain.User, error) {
	return r.query(ctx, personSelect+` ORDER BY p.id`)
}

func (r *PersonRepository) ListByRole(ctx context.Context, role domain.Role) ([]*domain.User, error) {
	return r.query(ctx, personSelect+` WHERE r.role_type = $1 ORDER BY p.id`, string(role))
}

func (r *PersonRepository) Update(ctx context.Context, u *domain.User) (*domain.User, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE persons
		SET name = $2,
			last_name = $3,
			email = $4,
			password_hash = $5,
			role_id = (SELECT id FROM roles WHERE role_type = $6),
			updated_at = $7
		WHERE id = $1`,
		u.ID, u.Name, u.LastName, u.Email, u.PasswordHash, string(u.Role), u.UpdatedAt,
	)
	if err != nil {
		switch pgCode(err) {
		case uniqueViolation:
			return nil, domain.ErrUserExists
		case notNullViolation:
			return nil, domain.ErrRoleNotFound
		}
		return nil, err
	}
	if err := requireAffected(res, domain.ErrUserNotFound); err != nil {
		return nil, err
	}
	updated := *u
	return &updated, nil
}

// Delete fails with a conflict while the person still owns listings,
// donations or adoption requests.
func (r *PersonRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM persons WHERE id = $1`, id)
	if err != nil {
		if pgCode(err) == foreignKeyViolation {
			return domain.ErrStillReferenced
		}
		return err
	}
	return requireAffected(res, domain.ErrUserNotFound)
}

func (r *PersonRepository) query(ctx context.Context, q string, args ...any) ([]*domain.User, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []*domain.User{}
	for rows.Next() {
		u, err := scanPerson(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func scanPerson(s scanner) (*domain.User, error) {
	var (
		u    domain.User
		role string
	)
	if err := s.Scan(&u.ID, &u.Name, &u.LastName, &u.Email, &u.PasswordHash, &role, &u.CreatedAt, &u.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	u.Role = domain.Role(role)
	return &u, nil
}
