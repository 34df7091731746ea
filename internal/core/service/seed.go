package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/adoptafacil/adoption-api/internal/core/domain"
	"github.com/adoptafacil/adoption-api/internal/core/ports"
)

// SeedUsers creates the given accounts, skipping any email already registered.
// It returns the number of accounts created.
func SeedUsers(ctx context.Context, persons ports.PersonService, users []ports.PersonInput, log zerolog.Logger) (int, error) {
	created := 0
	for _, u := range users {
		_, err := persons.Create(ctx, u)
		switch {
		case err == nil:
			created++
			log.Info().Str("email", domain.NormalizeEmail(u.Email)).Str("role", u.Role).Msg("seed user created")
		case errors.Is(err, domain.ErrUserExists):
			log.Debug().Str("email", domain.NormalizeEmail(u.Email)).Msg("seed user already present")
		default:
			return created, fmt.Errorf("seed user %s: %w", u.Email, err)
		}
	}
	return created, nil
}
