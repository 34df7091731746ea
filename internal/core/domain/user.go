package domain

import (
	"strings"
	"time"
)

// Role is the closed set of access classes an identity can hold.
type Role string

const (
	RoleAdmin   Role = "ADMIN"
	RoleClient  Role = "CLIENT"
	RolePartner Role = "PARTNER"
)

// Roles lists every supported role in seed order.
var Roles = []Role{RoleAdmin, RoleClient, RolePartner}

// ParseRole converts user input into a Role. Matching is case-insensitive;
// anything outside the closed set is rejected.
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToUpper(strings.TrimSpace(s)))
	if !r.Valid() {
		return "", NewValidationError("role", "must be one of ADMIN, CLIENT, PARTNER")
	}
	return r, nil
}

// Valid reports whether r is one of the supported roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleClient, RolePartner:
		return true
	}
	return false
}

// Authority is the granted-authority string attached to authenticated requests.
func (r Role) Authority() string {
	return "ROLE_" + string(r)
}

// RoleRecord is the persisted reference row for a Role.
type RoleRecord struct {
	ID   int64 `json:"idRole"`
	Type Role  `json:"roleType"`
}

// User models a registered identity.
type User struct {
	ID           int64     `json:"idPerson"`
	Name         string    `json:"name"`
	LastName     string    `json:"lastName"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// NormalizeEmail is applied to every email before it is stored or looked up.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
