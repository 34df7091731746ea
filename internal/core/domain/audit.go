package domain

import "time"

// SecurityEventType classifies entries of the security audit trail.
type SecurityEventType string

const (
	EventLoginSucceeded   SecurityEventType = "login_succeeded"
	EventLoginFailed      SecurityEventType = "login_failed"
	EventRegistered       SecurityEventType = "registered"
	EventPermissionDenied SecurityEventType = "permission_denied"
)

// SecurityEvent is a single authentication or authorization decision.
type SecurityEvent struct {
	Type      SecurityEventType
	Email     string
	UserID    int64
	Operation string
	Resource  int64
	At        time.Time
}
