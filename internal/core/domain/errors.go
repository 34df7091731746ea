package domain

import (
	"errors"
	"fmt"
)

// Error categories. The HTTP layer maps each one to a fixed status code.
var (
	ErrValidation         = errors.New("validation failed")
	ErrNotFound           = errors.New("not found")
	ErrPermissionDenied   = errors.New("permission denied")
	ErrUnauthenticated    = errors.New("authentication required")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrConflict           = errors.New("conflict")
)

// ValidationError describes malformed or missing input.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// NewValidationError returns a *ValidationError for field.
func NewValidationError(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// NotFoundError names the missing resource.
type NotFoundError struct {
	Resource string
}

func (e *NotFoundError) Error() string { return e.Resource + " not found" }

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// ConflictError names the resource that already exists or is still referenced.
type ConflictError struct {
	Msg string
}

func (e *ConflictError) Error() string { return e.Msg }

func (e *ConflictError) Unwrap() error { return ErrConflict }

var (
	ErrUserNotFound     error = &NotFoundError{Resource: "user"}
	ErrRoleNotFound     error = &NotFoundError{Resource: "role"}
	ErrPetNotFound      error = &NotFoundError{Resource: "pet"}
	ErrImageNotFound    error = &NotFoundError{Resource: "image"}
	ErrDonationNotFound error = &NotFoundError{Resource: "donation"}
	ErrRequestNotFound  error = &NotFoundError{Resource: "adoption request"}

	ErrUserExists      error = &ConflictError{Msg: "email already registered"}
	ErrRoleExists      error = &ConflictError{Msg: "role already exists"}
	ErrStillReferenced error = &ConflictError{Msg: "resource is still referenced"}
	// ErrIdempotencyInFlight: the first request with the same key has not finished.
	ErrIdempotencyInFlight error = &ConflictError{Msg: "a request with this idempotency key is still in progress"}

	ErrTooManyImages error = &ValidationError{Field: "imagenes", Reason: fmt.Sprintf("at most %d images per pet", MaxPetImages)}
)
