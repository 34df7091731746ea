package handler

import (
	"strings"
	"time"

	"github.com/adoptafacil/adoption-api/internal/core/domain"
	"github.com/adoptafacil/adoption-api/internal/core/ports"
)

const birthDateLayout = "2006-01-02"

// --- Request → Service input ---

func toPetInput(req petRequest) (ports.PetInput, error) {
	in := ports.PetInput{
		Name:        req.Name,
		Species:     req.Species,
		Breed:       req.Breed,
		Age:         req.Age,
		Sex:         req.Sex,
		City:        req.City,
		Description: req.Description,
	}
	if req.BirthDate != nil && strings.TrimSpace(*req.BirthDate) != "" {
		d, err := parseBirthDate(*req.BirthDate)
		if err != nil {
			return ports.PetInput{}, domain.NewValidationError("fechaNacimiento", "must be a date like 2021-03-15")
		}
		in.BirthDate = &d
	}
	return in, nil
}

func parseBirthDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if d, err := time.Parse(birthDateLayout, s); err == nil {
		return d, nil
	}
	return time.Parse(time.RFC3339, s)
}

func toDonationInput(req donationRequest, idempotencyKey string) ports.DonationInput {
	return ports.DonationInput{
		DonorID:        req.DonorID,
		Amount:         req.Amount,
		PaymentMethod:  req.PaymentMethod,
		DonatedAt:      req.DonatedAt,
		Comment:        req.Comment,
		IdempotencyKey: idempotencyKey,
	}
}

func toPersonInput(req personRequest) ports.PersonInput {
	return ports.PersonInput{
		Name:     req.Name,
		LastName: req.LastName,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
	}
}

// --- Domain → Response ---

func toPetResponse(p *domain.Pet, url func(key string) string) petResponse {
	resp := petResponse{
		ID:          p.ID,
		Name:        p.Name,
		Species:     p.Species,
		Breed:       p.Breed,
		Age:         p.Age,
		Sex:         p.Sex,
		City:        p.City,
		Description: p.Description,
		Image:       url(p.Image),
		Images:      make([]petImageResponse, 0, len(p.Images)),
		OwnerID:     p.OwnerID,
		Owner:       p.Owner,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
	if p.BirthDate != nil {
		resp.BirthDate = p.BirthDate.Format(birthDateLayout)
	}
	for _, img := range p.Images {
		resp.Images = append(resp.Images, petImageResponse{ID: img.ID, URL: url(img.Path), Order: img.Order})
	}
	return resp
}

func toPetResponses(pets []*domain.Pet, url func(key string) string) []petResponse {
	out := make([]petResponse, 0, len(pets))
	for _, p := range pets {
		out = append(out, toPetResponse(p, url))
	}
	return out
}

func toDonationResponse(d *domain.Donation) donationResponse {
	return donationResponse{
		ID:            d.ID,
		DonorID:       d.DonorID,
		Amount:        d.Amount,
		PaymentMethod: d.PaymentMethod,
		DonatedAt:     d.DonatedAt,
		Comment:       d.Comment,
	}
}

func toDonationResponses(ds []*domain.Donation) []donationResponse {
	out := make([]donationResponse, 0, len(ds))
	for _, d := range ds {
		out = append(out, toDonationResponse(d))
	}
	return out
}

func toAdoptionResponse(r *domain.AdoptionRequest) adoptionResponse {
	return adoptionResponse{
		ID:          r.ID,
		RequesterID: r.RequesterID,
		PetID:       r.PetID,
		Status:      string(r.Status),
		Comment:     r.Comment,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

func toAdoptionResponses(rs []*domain.AdoptionRequest) []adoptionResponse {
	out := make([]adoptionResponse, 0, len(rs))
	for _, r := range rs {
		out = append(out, toAdoptionResponse(r))
	}
	return out
}
