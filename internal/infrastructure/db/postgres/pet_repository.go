package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/adoptafacil/adoption-api/internal/core/domain"
	"github.com/adoptafacil/adoption-api/internal/core/ports"
)

const petColumns = `p.id, p.name, p.species, p.breed, p.age, p.birth_date, p.sex, p.city,
	p.description, p.image, p.owner_id, p.created_at, p.updated_at`

const petWithOwnerSelect = `
	SELECT ` + petColumns + `, o.id, o.name, o.last_name, o.email, r.role_type
	FROM pets p
	JOIN persons o ON o.id = p.owner_id
	JOIN roles r ON r.id = o.role_id`

const imageColumns = `i.id, i.pet_id, i.path, i.display_order`

// petListFilter is shared by the listing query and its image query so both
// see the same set of pets.
const petListFilter = ` WHERE ($1::bigint = 0 OR p.owner_id = $1) AND ($2::text = '' OR p.name ILIKE '%' || $2 || '%')`

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// PetRepository stores listings in pets and their attachments in pet_images.
type PetRepository struct {
	db *sql.DB
}

func NewPetRepository(db *sql.DB) *PetRepository {
	return &PetRepository{db: db}
}

func (r *PetRepository) Create(ctx context.Context, pet *domain.Pet) error {
	return r.inTx(ctx, func(tx *petTx) error {
		err := tx.q.QueryRowContext(ctx, `
			INSERT INTO pets (name, species, breed, age, birth_date, sex, city, description, image, owner_id, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
			RETURNING id`,
			pet.Name, pet.Species, pet.Breed, pet.Age, nullTime(pet.BirthDate), pet.Sex, pet.City,
			pet.Description, pet.Image, pet.OwnerID, pet.CreatedAt, pet.UpdatedAt,
		).Scan(&pet.ID)
		if err != nil {
			if pgCode(err) == foreignKeyViolation {
				return domain.ErrUserNotFound
			}
			return err
		}
		if len(pet.Images) == 0 {
			return nil
		}
		added, err := tx.AddImages(ctx, pet.ID, pet.Images)
		if err != nil {
			return err
		}
		pet.Images = added
		return nil
	})
}

func (r *PetRepository) FindByID(ctx context.Context, id int64) (*domain.Pet, error) {
	pet, err := scanPetWithOwner(r.db.QueryRowContext(ctx, petWithOwnerSelect+` WHERE p.id = $1`, id))
	if err != nil {
		return nil, err
	}
	if pet.Images, err = loadImages(ctx, r.db, id); err != nil {
		return nil, err
	}
	return pet, nil
}

func (r *PetRepository) List(ctx context.Context, f ports.PetFilter) ([]*domain.Pet, error) {
	name := likeEscaper.Replace(f.Name)

	rows, err := r.db.QueryContext(ctx, petWithOwnerSelect+petListFilter+` ORDER BY p.id`, f.OwnerID, name)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	pets := []*domain.Pet{}
	byID := make(map[int64]*domain.Pet)
	for rows.Next() {
		pet, err := scanPetWithOwner(rows)
		if err != nil {
			return nil, err
		}
		pets = append(pets, pet)
		byID[pet.ID] = pet
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(pets) == 0 {
		return pets, nil
	}

	imgRows, err := r.db.QueryContext(ctx, `
		SELECT `+imageColumns+`
		FROM pet_images i
		JOIN pets p ON p.id = i.pet_id`+petListFilter+`
		ORDER BY i.pet_id, i.display_order`, f.OwnerID, name)
	if err != nil {
		return nil, err
	}
	defer imgRows.Close()
	for imgRows.Next() {
		img, err := scanImage(imgRows)
		if err != nil {
			return nil, err
		}
		if pet, ok := byID[img.PetID]; ok {
			pet.Images = append(pet.Images, img)
		}
	}
	return pets, imgRows.Err()
}

// WithinTx runs fn in a transaction, committing only when fn returns nil.
func (r *PetRepository) WithinTx(ctx context.Context, fn func(tx ports.PetTx) error) error {
	return r.inTx(ctx, func(tx *petTx) error { return fn(tx) })
}

func (r *PetRepository) inTx(ctx context.Context, fn func(tx *petTx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(&petTx{q: tx}); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			return errors.Join(err, fmt.Errorf("rollback: %w", rbErr))
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

type petTx struct {
	q querier
}

func (t *petTx) LockByID(ctx context.Context, id int64) (*domain.Pet, error) {
	pet, err := scanPet(t.q.QueryRowContext(ctx, `SELECT `+petColumns+` FROM pets p WHERE p.id = $1 FOR UPDATE`, id))
	if err != nil {
		return nil, err
	}
	if pet.Images, err = loadImages(ctx, t.q, id); err != nil {
		return nil, err
	}
	return pet, nil
}

func (t *petTx) Update(ctx context.Context, pet *domain.Pet) error {
	res, err := t.q.ExecContext(ctx, `
		UPDATE pets
		SET name = $2,
			species = $3,
			breed = $4,
			age = $5,
			birth_date = $6,
			sex = $7,
			city = $8,
			description = $9,
			image = $10,
			updated_at = $11
		WHERE id = $1`,
		pet.ID, pet.Name, pet.Species, pet.Breed, pet.Age, nullTime(pet.BirthDate),
		pet.Sex, pet.City, pet.Description, pet.Image, pet.UpdatedAt,
	)
	if err != nil {
		return err
	}
	return requireAffected(res, domain.ErrPetNotFound)
}

func (t *petTx) AddImages(ctx context.Context, petID int64, images []domain.PetImage) ([]domain.PetImage, error) {
	out := make([]domain.PetImage, 0, len(images))
	for _, img := range images {
		img.PetID = petID
		err := t.q.QueryRowContext(ctx, `
			INSERT INTO pet_images (pet_id, path, display_order) VALUES ($1, $2, $3) RETURNING id`,
			petID, img.Path, img.Order,
		).Scan(&img.ID)
		if err != nil {
			if pgCode(err) == uniqueViolation {
				return nil, domain.ErrTooManyImages
			}
			return nil, err
		}
		out = append(out, img)
	}
	return out, nil
}

func (t *petTx) DeleteImage(ctx context.Context, petID, imageID int64) error {
	res, err := t.q.ExecContext(ctx, `DELETE FROM pet_images WHERE id = $1 AND pet_id = $2`, imageID, petID)
	if err != nil {
		return err
	}
	return requireAffected(res, domain.ErrImageNotFound)
}

func (t *petTx) Delete(ctx context.Context, id int64) error {
	res, err := t.q.ExecContext(ctx, `DELETE FROM pets WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return requireAffected(res, domain.ErrPetNotFound)
}

func loadImages(ctx context.Context, q querier, petID int64) ([]domain.PetImage, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT `+imageColumns+` FROM pet_images i WHERE i.pet_id = $1 ORDER BY i.display_order`, petID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.PetImage
	for rows.Next() {
		img, err := scanImage(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, img)
	}
	return out, rows.Err()
}

func scanImage(s scanner) (domain.PetImage, error) {
	var img domain.PetImage
	err := s.Scan(&img.ID, &img.PetID, &img.Path, &img.Order)
	return img, err
}

func petDest(p *domain.Pet, bd *sql.NullTime) []any {
	return []any{
		&p.ID, &p.Name, &p.Species, &p.Breed, &p.Age, bd, &p.Sex, &p.City,
		&p.Description, &p.Image, &p.OwnerID, &p.CreatedAt, &p.UpdatedAt,
	}
}

func scanPet(s scanner) (*domain.Pet, error) {
	var (
		p  domain.Pet
		bd sql.NullTime
	)
	if err := s.Scan(petDest(&p, &bd)...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrPetNotFound
		}
		return nil, err
	}
	if bd.Valid {
		p.BirthDate = &bd.Time
	}
	return &p, nil
}

func scanPetWithOwner(s scanner) (*domain.Pet, error) {
	var (
		p     domain.Pet
		bd    sql.NullTime
		owner domain.User
		role  string
	)
	dest := append(petDest(&p, &bd), &owner.ID, &owner.Name, &owner.LastName, &owner.Email, &role)
	if err := s.Scan(dest...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrPetNotFound
		}
		return nil, err
	}
	if bd.Valid {
		p.BirthDate = &bd.Time
	}
	owner.Role = domain.Role(role)
	p.Owner = &owner
	return &p, nil
}
