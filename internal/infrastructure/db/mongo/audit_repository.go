package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/adoptafacil/adoption-api/internal/core/domain"
)

const (
	auditCollection = "security_events"
	auditRetention  = 90 * 24 * time.Hour
)

// AuditRepository implements ports.SecurityAudit on a MongoDB collection.
type AuditRepository struct {
	coll *mongo.Collection
}

func NewAuditRepository(db *mongo.Database) *AuditRepository {
	return &AuditRepository{coll: db.Collection(auditCollection)}
}

// EnsureIndexes creates the lookup index and the retention TTL index.
func (r *AuditRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "email", Value: 1}, {Key: "at", Value: -1}}},
		{Keys: bson.D{{Key: "at", Value: 1}}, Options: options.Index().SetExpireAfterSeconds(int32(auditRetention.Seconds()))},
	})
	if err != nil {
		return fmt.Errorf("audit indexes: %w", err)
	}
	return nil
}

func (r *AuditRepository) Record(ctx context.Context, ev domain.SecurityEvent) error {
	if _, err := r.coll.InsertOne(ctx, toDocument(ev)); err != nil {
		return fmt.Errorf("insert security event: %w", err)
	}
	return nil
}

func toDocument(ev domain.SecurityEvent) bson.M {
	at := ev.At
	if at.IsZero() {
		at = time.Now()
	}
	doc := bson.M{
		"type": string(ev.Type),
		"at":   at.UTC(),
	}
	if ev.Email != "" {
		doc["email"] = ev.Email
	}
	if ev.UserID != 0 {
		doc["user_id"] = ev.UserID
	}
	if ev.Operation != "" {
		doc["operation"] = ev.Operation
	}
	if ev.Resource != 0 {
		doc["resource_id"] = ev.Resource
	}
	return doc
}
