package middleware

import (
	"context"
	"errors"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/adoptafacil/adoption-api/internal/core/domain"
	"github.com/adoptafacil/adoption-api/internal/core/ports"
)

const (
	// IdentityKey holds the authenticated *domain.User in the echo context.
	IdentityKey = "identity"
	// AuthorityKey holds the granted authority, "ROLE_" + the token's role claim.
	AuthorityKey = "authority"

	bearerPrefix = "Bearer "
)

type identityCtxKey struct{}

// Authenticate resolves a bearer token to a stored identity. It never rejects
// a request: when the header is missing or the token is invalid, expired or
// names an unknown identity, the request continues unauthenticated and the
// route decides whether that is acceptable.
func Authenticate(tokens ports.TokenVerifier, identities ports.IdentityLookup, log zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			if !strings.HasPrefix(header, bearerPrefix) {
				return next(c)
			}
			token := header[len(bearerPrefix):]

			if !tokens.Validate(token) {
				log.Debug().Str("path", c.Path()).Msg("ignoring invalid bearer token")
				return next(c)
			}
			if tokens.IsExpired(token) {
				log.Debug().Str("path", c.Path()).Msg("ignoring expired bearer token")
				return next(c)
			}
			email, err := tokens.Subject(token)
			if err != nil || email == "" {
				log.Debug().Err(err).Msg("bearer token has no subject")
				return next(c)
			}
			role, err := tokens.Role(token)
			if err != nil {
				log.Debug().Err(err).Msg("bearer token has no usable role")
				return next(c)
			}

			ctx := c.Request().Context()
			user, err := identities.FindByEmail(ctx, email)
			if err != nil {
				if !errors.Is(err, domain.ErrNotFound) {
					log.Warn().Err(err).Msg("identity lookup failed")
				} else {
					log.Debug().Str("email", email).Msg("bearer token names unknown identity")
				}
				return next(c)
			}

			c.Set(IdentityKey, user)
			c.Set(AuthorityKey, role.Authority())
			c.SetRequest(c.Request().WithContext(context.WithValue(ctx, identityCtxKey{}, user)))
			return next(c)
		}
	}
}

// Identity returns the authenticated identity, or nil.
func Identity(c echo.Context) *domain.User {
	u, _ := c.Get(IdentityKey).(*domain.User)
	return u
}

// Authority returns the granted authority, or "" when unauthenticated.
func Authority(c echo.Context) string {
	a, _ := c.Get(AuthorityKey).(string)
	return a
}

// IdentityFrom returns the identity stored in ctx by Authenticate.
func IdentityFrom(ctx context.Context) (*domain.User, bool) {
	u, ok := ctx.Value(identityCtxKey{}).(*domain.User)
	return u, ok && u != nil
}
