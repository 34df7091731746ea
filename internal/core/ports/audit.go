package ports

import (
	"context"

	"github.com/adoptafacil/adoption-api/internal/core/domain"
)

// SecurityAudit records authentication and authorization decisions.
// Failures are never fatal to the request that produced the event.
type SecurityAudit interface {
	Record(ctx context.Context, event domain.SecurityEvent) error
}

// NopAudit discards every event.
type NopAudit struct{}

func (NopAudit) Record(context.Context, domain.SecurityEvent) error { return nil }
