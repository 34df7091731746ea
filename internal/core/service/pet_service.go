package service

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/adoptafacil/adoption-api/internal/core/domain"
	"github.com/adoptafacil/adoption-api/internal/core/ports"
)

// PetService manages adoption listings and their image attachments.
// Every mutation of an existing listing re-reads it under a row lock and
// checks ownership inside the same transaction.
type PetService struct {
	repo  ports.PetRepository
	store ports.ImageStore
	audit ports.SecurityAudit
	log   zerolog.Logger
	now   func() time.Time
}

func NewPetService(repo ports.PetRepository, store ports.ImageStore, audit ports.SecurityAudit, log zerolog.Logger) *PetService {
	if audit == nil {
		audit = ports.NopAudit{}
	}
	return &PetService{repo: repo, store: store, audit: audit, log: log, now: time.Now}
}

func (s *PetService) Create(ctx context.Context, caller *domain.User, in ports.PetInput, images []ports.ImageUpload) (*domain.Pet, error) {
	if caller == nil {
		return nil, domain.ErrUnauthenticated
	}
	if len(images) > domain.MaxPetImages {
		return nil, domain.ErrTooManyImages
	}
	if err := validatePetInput(in, images); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	pet := &domain.Pet{OwnerID: caller.ID, CreatedAt: now, UpdatedAt: now}
	applyPetInput(pet, in)

	orders, _ := pet.NextImageOrders(len(images))
	stored, err := s.storeImages(ctx, images, orders)
	if err != nil {
		return nil, fmt.Errorf("create pet: %w", err)
	}
	pet.Images = stored
	if len(stored) > 0 {
		pet.Image = stored[0].Path
	}

	if err := s.repo.Create(ctx, pet); err != nil {
		s.discard(ctx, stored)
		return nil, fmt.Errorf("create pet: %w", err)
	}
	pet.Owner = caller

	s.log.Info().Int64("pet_id", pet.ID).Int64("owner_id", caller.ID).Int("images", len(stored)).Msg("pet created")
	return pet, nil
}

func (s *PetService) Get(ctx context.Context, id int64) (*domain.Pet, error) {
	pet, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get pet %d: %w", id, err)
	}
	return pet, nil
}

// List returns the caller's own listings, or every listing for an admin,
// optionally filtered by a case-insensitive name fragment.
func (s *PetService) List(ctx context.Context, caller *domain.User, name string) ([]*domain.Pet, error) {
	if caller == nil {
		return nil, domain.ErrUnauthenticated
	}
	filter := ports.PetFilter{Name: strings.TrimSpace(name)}
	if caller.Role != domain.RoleAdmin {
		filter.OwnerID = caller.ID
	}
	pets, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list pets: %w", err)
	}
	return pets, nil
}

func (s *PetService) ListAll(ctx context.Context, caller *domain.User) ([]*domain.Pet, error) {
	if err := AssertRole(caller, domain.RoleAdmin); err != nil {
		s.denied(ctx, caller, "list_all", 0, err)
		return nil, err
	}
	pets, err := s.repo.List(ctx, ports.PetFilter{})
	if err != nil {
		return nil, fmt.Errorf("list all pets: %w", err)
	}
	return pets, nil
}

func (s *PetService) CheckOwnership(ctx context.Context, caller *domain.User, id int64) error {
	if caller == nil {
		return domain.ErrUnauthenticated
	}
	pet, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("check pet %d: %w", id, err)
	}
	if err := AssertOwner(caller, pet.OwnerID); err != nil {
		s.denied(ctx, caller, "update", id, err)
		return err
	}
	return nil
}

// Update overwrites name, species, breed and age unconditionally; sex, city,
// description and birth date change only when provided. New images take the
// free display positions and the listing may never exceed MaxPetImages.
func (s *PetService) Update(ctx context.Context, caller *domain.User, id int64, in ports.PetInput, images []ports.ImageUpload) (*domain.Pet, error) {
	if caller == nil {
		return nil, domain.ErrUnauthenticated
	}

	var (
		stored  []domain.PetImage
		updated *domain.Pet
	)
	err := s.repo.WithinTx(ctx, func(tx ports.PetTx) error {
		pet, err := tx.LockByID(ctx, id)
		if err != nil {
			return err
		}
		if err := AssertOwner(caller, pet.OwnerID); err != nil {
			s.denied(ctx, caller, "update", id, err)
			return err
		}
		if len(images) > domain.MaxPetImages {
			return domain.ErrTooManyImages
		}
		if err := validatePetInput(in, images); err != nil {
			return err
		}
		orders, ok := pet.NextImageOrders(len(images))
		if !ok {
			return domain.ErrTooManyImages
		}

		applyPetInput(pet, in)
		pet.UpdatedAt = s.now().UTC()

		stored, err = s.storeImages(ctx, images, orders)
		if err != nil {
			return err
		}
		if len(stored) > 0 {
			added, err := tx.AddImages(ctx, pet.ID, stored)
			if err != nil {
				return err
			}
			pet.Images = append(pet.Images, added...)
			sortImages(pet.Images)
			if pet.Image == "" {
				pet.Image = pet.Images[0].Path
			}
		}

		if err := tx.Update(ctx, pet); err != nil {
			return err
		}
		updated = pet
		return nil
	})
	if err != nil {
		s.discard(ctx, stored)
		return nil, fmt.Errorf("update pet %d: %w", id, err)
	}
	updated.Owner = caller

	s.log.Info().Int64("pet_id", id).Int("new_images", len(stored)).Msg("pet updated")
	return updated, nil
}

// Delete removes the listing on behalf of its owner or an admin. Image files
// are removed first on a best-effort basis; a failure is logged and does not
// stop the row delete.
func (s *PetService) Delete(ctx context.Context, caller *domain.User, id int64) error {
	if caller == nil {
		return domain.ErrUnauthenticated
	}
	err := s.repo.WithinTx(ctx, func(tx ports.PetTx) error {
		pet, err := tx.LockByID(ctx, id)
		if err != nil {
			return err
		}
		if err := AssertOwnerOrAdmin(caller, pet.OwnerID); err != nil {
			s.denied(ctx, caller, "delete", id, err)
			return err
		}
		for _, img := range pet.Images {
			s.removeFile(ctx, pet.ID, img.Path)
		}
		if pet.Image != "" && !hasImagePath(pet.Images, pet.Image) {
			s.removeFile(ctx, pet.ID, pet.Image)
		}
		return tx.Delete(ctx, pet.ID)
	})
	if err != nil {
		return fmt.Errorf("delete pet %d: %w", id, err)
	}
	s.log.Info().Int64("pet_id", id).Int64("owner_id", caller.ID).Msg("pet deleted")
	return nil
}

// DeleteImage detaches a single image from a listing owned by caller.
func (s *PetService) DeleteImage(ctx context.Context, caller *domain.User, petID, imageID int64) (*domain.Pet, error) {
	if caller == nil {
		return nil, domain.ErrUnauthenticated
	}
	var updated *domain.Pet
	err := s.repo.WithinTx(ctx, func(tx ports.PetTx) error {
		pet, err := tx.LockByID(ctx, petID)
		if err != nil {
			return err
		}
		if err := AssertOwner(caller, pet.OwnerID); err != nil {
			s.denied(ctx, caller, "delete_image", petID, err)
			return err
		}
		img, ok := pet.ImageByID(imageID)
		if !ok {
			return domain.ErrImageNotFound
		}

		s.removeFile(ctx, pet.ID, img.Path)
		if err := tx.DeleteImage(ctx, pet.ID, img.ID); err != nil {
			return err
		}

		pet.Images = slices.DeleteFunc(pet.Images, func(i domain.PetImage) bool { return i.ID == img.ID })
		if pet.Image == img.Path {
			pet.Image = ""
			if len(pet.Images) > 0 {
				pet.Image = pet.Images[0].Path
			}
		}
		pet.UpdatedAt = s.now().UTC()
		if err := tx.Update(ctx, pet); err != nil {
			return err
		}
		updated = pet
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("delete image %d of pet %d: %w", imageID, petID, err)
	}
	updated.Owner = caller
	return updated, nil
}

func (s *PetService) ImageURL(key string) string {
	if key == "" {
		return ""
	}
	return s.store.URL(key)
}

func (s *PetService) storeImages(ctx context.Context, uploads []ports.ImageUpload, orders []int) ([]domain.PetImage, error) {
	stored := make([]domain.PetImage, 0, len(uploads))
	for i, up := range uploads {
		key, err := s.store.Save(ctx, up.Filename, up.ContentType, up.Content)
		if err != nil {
			s.discard(ctx, stored)
			return nil, fmt.Errorf("store image %q: %w", up.Filename, err)
		}
		stored = append(stored, domain.PetImage{Path: key, Order: orders[i]})
	}
	return stored, nil
}

// discard removes files written for a write that did not commit.
func (s *PetService) discard(ctx context.Context, images []domain.PetImage) {
	for _, img := range images {
		if err := s.store.Delete(ctx, img.Path); err != nil {
			s.log.Warn().Err(err).Str("key", img.Path).Msg("failed to discard uncommitted image")
		}
	}
}

func (s *PetService) removeFile(ctx context.Context, petID int64, key string) {
	if err := s.store.Delete(ctx, key); err != nil {
		s.log.Warn().Err(err).Int64("pet_id", petID).Str("key", key).Msg("failed to delete image file")
	}
}

func (s *PetService) denied(ctx context.Context, caller *domain.User, op string, petID int64, cause error) {
	ev := domain.SecurityEvent{Type: domain.EventPermissionDenied, Operation: op, Resource: petID, At: s.now().UTC()}
	if caller != nil {
		ev.Email, ev.UserID = caller.Email, caller.ID
	}
	if err := s.audit.Record(ctx, ev); err != nil {
		s.log.Warn().Err(err).Str("operation", op).Msg("failed to record security event")
	}
	s.log.Info().Err(cause).Int64("user_id", ev.UserID).Int64("pet_id", petID).Str("operation", op).Msg("pet access denied")
}

func validatePetInput(in ports.PetInput, images []ports.ImageUpload) error {
	if strings.TrimSpace(in.Name) == "" {
		return domain.NewValidationError("nombre", "is required")
	}
	if strings.TrimSpace(in.Species) == "" {
		return domain.NewValidationError("especie", "is required")
	}
	if in.Age < 0 {
		return domain.NewValidationError("edad", "must not be negative")
	}
	for _, img := range images {
		if img.Content == nil {
			return domain.NewValidationError("imagenes", "empty file")
		}
		if img.ContentType != "" && !strings.HasPrefix(img.ContentType, "image/") {
			return domain.NewValidationError("imagenes", fmt.Sprintf("%q is not an image", img.Filename))
		}
	}
	return nil
}

func applyPetInput(pet *domain.Pet, in ports.PetInput) {
	pet.Name = strings.TrimSpace(in.Name)
	pet.Species = strings.TrimSpace(in.Species)
	pet.Breed = strings.TrimSpace(in.Breed)
	pet.Age = in.Age
	if in.BirthDate != nil {
		bd := *in.BirthDate
		pet.BirthDate = &bd
	}
	if in.Sex != nil {
		pet.Sex = *in.Sex
	}
	if in.City != nil {
		pet.City = *in.City
	}
	if in.Description != nil {
		pet.Description = *in.Description
	}
}

func sortImages(images []domain.PetImage) {
	slices.SortFunc(images, func(a, b domain.PetImage) int { return a.Order - b.Order })
}

func hasImagePath(images []domain.PetImage, path string) bool {
	for _, img := range images {
		if img.Path == path {
			return true
		}
	}
	return false
}
