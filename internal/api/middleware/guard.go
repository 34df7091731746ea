package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/adoptafacil/adoption-api/internal/core/domain"
)

// RequireIdentity rejects unauthenticated requests with ErrUnauthenticated.
func RequireIdentity() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if Identity(c) == nil {
				return domain.ErrUnauthenticated
			}
			return next(c)
		}
	}
}

// RequireRole enforces role-based access control against the stored role of
// the authenticated identity.
func RequireRole(allowedRoles ...domain.Role) echo.MiddlewareFunc {
	allowed := make(map[domain.Role]struct{}, len(allowedRoles))
	for _, r := range allowedRoles {
		allowed[r] = struct{}{}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user := Identity(c)
			if user == nil {
				return domain.ErrUnauthenticated
			}
			if _, ok := allowed[user.Role]; !ok {
				return domain.ErrPermissionDenied
			}
			return next(c)
		}
	}
}
