package domain

import (
	"strings"
	"time"
)

// RequestStatus is the state of an adoption request.
type RequestStatus string

const (
	StatusPending  RequestStatus = "PENDING"
	StatusApproved RequestStatus = "APPROVED"
	StatusRejected RequestStatus = "REJECTED"
)

// legacyStatuses maps the values sent by the mobile client.
var legacyStatuses = map[string]RequestStatus{
	"PENDIENTE": StatusPending,
	"APROBADA":  StatusApproved,
	"RECHAZADA": StatusRejected,
}

// ParseRequestStatus accepts the canonical names and the client's Spanish aliases.
func ParseRequestStatus(s string) (RequestStatus, error) {
	v := strings.ToUpper(strings.TrimSpace(s))
	switch st := RequestStatus(v); st {
	case StatusPending, StatusApproved, StatusRejected:
		return st, nil
	}
	if st, ok := legacyStatuses[v]; ok {
		return st, nil
	}
	return "", NewValidationError("estado", "must be one of PENDING, APPROVED, REJECTED")
}

// AdoptionRequest records an identity's interest in adopting a listing.
type AdoptionRequest struct {
	ID          int64
	RequesterID int64
	PetID       int64
	Status      RequestStatus
	Comment     string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
