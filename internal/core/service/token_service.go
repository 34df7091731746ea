package service

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/adoptafacil/adoption-api/internal/core/domain"
)

// DefaultTokenTTL matches the 86400000 ms default of JWT_EXPIRATION_MS.
const DefaultTokenTTL = 24 * time.Hour

// TokenError is returned when a token cannot be parsed or its signature is wrong.
type TokenError struct {
	Op  string
	Err error
}

func (e *TokenError) Error() string { return fmt.Sprintf("token %s: %v", e.Op, e.Err) }

func (e *TokenError) Unwrap() error { return e.Err }

type sessionClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// TokenService issues and inspects HS256 session tokens. The subject is the
// identity's email and the "role" claim carries its role.
type TokenService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenService returns a TokenService. A negative ttl selects DefaultTokenTTL;
// a zero ttl issues tokens that are already expired.
func NewTokenService(secret string, ttl time.Duration) *TokenService {
	if ttl < 0 {
		ttl = DefaultTokenTTL
	}
	return &TokenService{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// WithClock replaces the clock used by IsExpired.
func (s *TokenService) WithClock(now func() time.Time) *TokenService {
	s.now = now
	return s
}

func (s *TokenService) Issue(email string, role domain.Role, now time.Time) (string, error) {
	claims := sessionClaims{
		Role: string(role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(s.secret)
}

// Validate checks structure, algorithm and signature. Expiry is not considered.
func (s *TokenService) Validate(token string) bool {
	_, err := s.parse("validate", token)
	return err == nil
}

// IsExpired reports whether the token's expiry is at or before the current
// time. Tokens that cannot be parsed are treated as expired.
func (s *TokenService) IsExpired(token string) bool {
	claims, err := s.parse("expiry", token)
	if err != nil || claims.ExpiresAt == nil {
		return true
	}
	return !s.now().Before(claims.ExpiresAt.Time)
}

func (s *TokenService) Subject(token string) (string, error) {
	claims, err := s.parse("subject", token)
	if err != nil {
		return "", err
	}
	return claims.Subject, nil
}

func (s *TokenService) Role(token string) (domain.Role, error) {
	claims, err := s.parse("role", token)
	if err != nil {
		return "", err
	}
	role, err := domain.ParseRole(claims.Role)
	if err != nil {
		return "", &TokenError{Op: "role", Err: err}
	}
	return role, nil
}

func (s *TokenService) parse(op, token string) (*sessionClaims, error) {
	claims := &sessionClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithoutClaimsValidation(),
	)
	if err != nil {
		return nil, &TokenError{Op: op, Err: err}
	}
	return claims, nil
}
