package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/adoptafacil/adoption-api/internal/core/domain"
	"github.com/adoptafacil/adoption-api/internal/core/service"
)

type stubIdentities map[string]*domain.User

func (s stubIdentities) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	if u, ok := s[email]; ok {
		return u, nil
	}
	return nil, domain.ErrUserNotFound
}

var (
	tokens     = service.NewTokenService("secret", time.Hour)
	identities = stubIdentities{
		"ana@x.com": {ID: 1, Email: "ana@x.com", Role: domain.RolePartner},
	}
)

func issue(t *testing.T, svc *service.TokenService, email string, role domain.Role) string {
	t.Helper()
	tok, err := svc.Issue(email, role, time.Now())
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	return tok
}

// run executes Authenticate for a request carrying header and returns the
// context seen by the next handler.
func run(t *testing.T, header string) echo.Context {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var seen echo.Context
	handler := Authenticate(tokens, identities, zerolog.Nop())(func(c echo.Context) error {
		seen = c
		return c.NoContent(http.StatusOK)
	})
	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if seen == nil {
		t.Fatalf("next not called")
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected request to continue, got %d", rec.Code)
	}
	return seen
}

func TestAuthenticate_ValidToken(t *testing.T) {
	c := run(t, "Bearer "+issue(t, tokens, "ana@x.com", domain.RolePartner))

	user := Identity(c)
	if user == nil || user.ID != 1 {
		t.Fatalf("identity not set: %+v", user)
	}
	if Authority(c) != "ROLE_PARTNER" {
		t.Fatalf("unexpected authority %q", Authority(c))
	}
	if u, ok := IdentityFrom(c.Request().Context()); !ok || u.Email != "ana@x.com" {
		t.Fatalf("identity missing from request context")
	}
}

func TestAuthenticate_AuthorityFollowsTokenClaim(t *testing.T) {
	c := run(t, "Bearer "+issue(t, tokens, "ana@x.com", domain.RoleAdmin))

	if Authority(c) != "ROLE_ADMIN" {
		t.Fatalf("expected authority from token claim, got %q", Authority(c))
	}
	if Identity(c).Role != domain.RolePartner {
		t.Fatalf("stored identity must keep its own role")
	}
}

func TestAuthenticate_FailOpen(t *testing.T) {
	expired := issue(t, service.NewTokenService("secret", 0), "ana@x.com", domain.RolePartner)
	foreign := issue(t, service.NewTokenService("other", time.Hour), "ana@x.com", domain.RolePartner)
	unknown := issue(t, tokens, "ghost@x.com", domain.RoleClient)
	valid := issue(t, tokens, "ana@x.com", domain.RolePartner)

	cases := map[string]string{
		"missing header": "",
		"wrong scheme":   "Token " + valid,
		"lowercase":      "bearer " + valid,
		"no space":       "Bearer" + valid,
		"garbage":        "Bearer not-a-token",
		"expired":        "Bearer " + expired,
		"foreign key":    "Bearer " + foreign,
		"unknown user":   "Bearer " + unknown,
	}
	for name, header := range cases {
		t.Run(name, func(t *testing.T) {
			c := run(t, header)
			if Identity(c) != nil || Authority(c) != "" {
				t.Fatalf("expected unauthenticated request")
			}
			if _, ok := IdentityFrom(c.Request().Context()); ok {
				t.Fatalf("expected no identity in request context")
			}
		})
	}
}
