package service

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/adoptafacil/adoption-api/internal/core/domain"
)

var issuedAt = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func fixedClock(t time.Time) func() time.Time { return func() time.Time { return t } }

func TestTokenService_IssueAndInspect(t *testing.T) {
	svc := NewTokenService("secret", time.Hour).WithClock(fixedClock(issuedAt.Add(time.Minute)))

	token, err := svc.Issue("ana@x.com", domain.RolePartner, issuedAt)
	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}
	if !svc.Validate(token) {
		t.Fatalf("expected token to validate")
	}
	if svc.IsExpired(token) {
		t.Fatalf("expected token to be live")
	}
	sub, err := svc.Subject(token)
	if err != nil || sub != "ana@x.com" {
		t.Fatalf("unexpected subject %q (err %v)", sub, err)
	}
	role, err := svc.Role(token)
	if err != nil || role != domain.RolePartner {
		t.Fatalf("unexpected role %q (err %v)", role, err)
	}
	if svc.WithClock(func() time.Time { return issuedAt.Add(59 * time.Minute) }).IsExpired(token) {
		t.Fatalf("expected token to be live before its ttl")
	}
	if !svc.WithClock(func() time.Time { return issuedAt.Add(61 * time.Minute) }).IsExpired(token) {
		t.Fatalf("expected token to expire after its ttl")
	}
}

func TestTokenService_Deterministic(t *testing.T) {
	svc := NewTokenService("secret", time.Hour)

	a, _ := svc.Issue("ana@x.com", domain.RoleClient, issuedAt)
	b, _ := svc.Issue("ana@x.com", domain.RoleClient, issuedAt)
	if a != b {
		t.Fatalf("expected identical tokens for identical inputs")
	}
}

func TestTokenService_ZeroTTLIsExpiredImmediately(t *testing.T) {
	svc := NewTokenService("secret", 0).WithClock(fixedClock(issuedAt))

	token, err := svc.Issue("ana@x.com", domain.RoleClient, issuedAt)
	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}
	if !svc.Validate(token) {
		t.Fatalf("expiry must not affect Validate")
	}
	if !svc.IsExpired(token) {
		t.Fatalf("expected token with zero ttl to be expired")
	}
}

func TestTokenService_ExpiryBoundary(t *testing.T) {
	svc := NewTokenService("secret", time.Hour)
	token, _ := svc.Issue("ana@x.com", domain.RoleClient, issuedAt)

	svc.WithClock(fixedClock(issuedAt.Add(time.Hour - time.Second)))
	if svc.IsExpired(token) {
		t.Fatalf("expected token to be live one second before expiry")
	}
	svc.WithClock(fixedClock(issuedAt.Add(time.Hour)))
	if !svc.IsExpired(token) {
		t.Fatalf("expected token to be expired at its expiry instant")
	}
}

func TestTokenService_RejectsForeignSignature(t *testing.T) {
	mine := NewTokenService("secret", time.Hour)
	theirs := NewTokenService("other-secret", time.Hour)

	token, _ := theirs.Issue("ana@x.com", domain.RoleAdmin, issuedAt)
	if mine.Validate(token) {
		t.Fatalf("expected token signed with another key to be rejected")
	}
	_, err := mine.Subject(token)
	var tokErr *TokenError
	if !errors.As(err, &tokErr) {
		t.Fatalf("expected *TokenError, got %v", err)
	}
}

func TestTokenService_RejectsTamperedPayload(t *testing.T) {
	svc := NewTokenService("secret", time.Hour)
	token, _ := svc.Issue("ana@x.com", domain.RoleClient, issuedAt)
	forged, _ := svc.Issue("ana@x.com", domain.RoleAdmin, issuedAt)

	parts := strings.Split(token, ".")
	forgedParts := strings.Split(forged, ".")
	tampered := parts[0] + "." + forgedParts[1] + "." + parts[2]
	if svc.Validate(tampered) {
		t.Fatalf("expected tampered token to be rejected")
	}
}

func TestTokenService_RejectsUnsignedToken(t *testing.T) {
	svc := NewTokenService("secret", time.Hour)
	claims := jwt.MapClaims{"sub": "ana@x.com", "role": "ADMIN", "exp": issuedAt.Add(time.Hour).Unix()}
	token, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("failed to build unsigned token: %v", err)
	}
	if svc.Validate(token) {
		t.Fatalf("expected unsigned token to be rejected")
	}
}

func TestTokenService_Garbage(t *testing.T) {
	svc := NewTokenService("secret", time.Hour)

	for _, token := range []string{"", "abc", "a.b.c"} {
		if svc.Validate(token) {
			t.Fatalf("expected %q to be invalid", token)
		}
		if !svc.IsExpired(token) {
			t.Fatalf("expected unparseable %q to be reported expired", token)
		}
		if _, err := svc.Role(token); err == nil {
			t.Fatalf("expected error reading role from %q", token)
		}
	}
}

func TestTokenService_UnknownRoleClaim(t *testing.T) {
	svc := NewTokenService("secret", time.Hour)
	token, _ := svc.Issue("ana@x.com", domain.Role("ROOT"), issuedAt)

	if !svc.Validate(token) {
		t.Fatalf("expected well-signed token to validate")
	}
	if _, err := svc.Role(token); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected role validation error, got %v", err)
	}
}
