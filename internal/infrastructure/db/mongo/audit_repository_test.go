package mongo

import (
	"testing"
	"time"

	"github.com/adoptafacil/adoption-api/internal/core/domain"
)

func TestToDocument(t *testing.T) {
	at := time.Date(2025, 5, 1, 8, 0, 0, 0, time.FixedZone("COT", -5*3600))
	doc := toDocument(domain.SecurityEvent{
		Type:      domain.EventPermissionDenied,
		Email:     "bob@x.com",
		UserID:    2,
		Operation: "update",
		Resource:  5,
		At:        at,
	})

	if doc["type"] != "permission_denied" {
		t.Fatalf("unexpected type: %v", doc["type"])
	}
	if got := doc["at"].(time.Time); got.Location() != time.UTC || !got.Equal(at) {
		t.Fatalf("expected UTC timestamp, got %v", got)
	}
	if doc["resource_id"] != int64(5) || doc["operation"] != "update" {
		t.Fatalf("unexpected document: %v", doc)
	}
}

func TestToDocument_OmitsEmptyFields(t *testing.T) {
	doc := toDocument(domain.SecurityEvent{Type: domain.EventLoginFailed, Email: "ghost@x.com"})

	for _, k := range []string{"user_id", "operation", "resource_id"} {
		if _, ok := doc[k]; ok {
			t.Fatalf("expected %q to be omitted: %v", k, doc)
		}
	}
	if _, ok := doc["at"].(time.Time); !ok {
		t.Fatalf("expected a timestamp to be filled in")
	}
}
