package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	idempotencyTTL = 24 * time.Hour
	// pendingTTL bounds how long a crashed request can hold its key.
	pendingTTL    = time.Minute
	pendingMarker = "pending"
)

// IdempotencyStore maps client-supplied Idempotency-Key values to the id of
// the resource they created.
// Key format: idem:<scope>:<key>
type IdempotencyStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewIdempotencyStore creates an IdempotencyStore wrapping the given Redis client.
func NewIdempotencyStore(client *redis.Client) *IdempotencyStore {
	return &IdempotencyStore{client: client, ttl: idempotencyTTL}
}

// Reserve claims key with a pending marker. Exactly one concurrent caller
// gets reserved == true.
func (s *IdempotencyStore) Reserve(ctx context.Context, scope, key string) (int64, bool, error) {
	k := s.key(scope, key)
	ok, err := s.client.SetNX(ctx, k, pendingMarker, pendingTTL).Result()
	if err != nil {
		return 0, false, fmt.Errorf("idempotency reserve: %w", err)
	}
	if ok {
		return 0, true, nil
	}

	v, err := s.client.Get(ctx, k).Result()
	if errors.Is(err, redis.Nil) || v == pendingMarker {
		// Expired between the two calls, or still owned by the first request.
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("idempotency reserve: %w", err)
	}
	id, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, false, fmt.Errorf("idempotency reserve: corrupt value %q: %w", v, err)
	}
	return id, false, nil
}

// Complete stores id for key. It expires after the store TTL.
func (s *IdempotencyStore) Complete(ctx context.Context, scope, key string, id int64) error {
	if err := s.client.Set(ctx, s.key(scope, key), strconv.FormatInt(id, 10), s.ttl).Err(); err != nil {
		return fmt.Errorf("idempotency complete: %w", err)
	}
	return nil
}

// Release drops a reservation so the client can retry with the same key.
func (s *IdempotencyStore) Release(ctx context.Context, scope, key string) error {
	if err := s.client.Del(ctx, s.key(scope, key)).Err(); err != nil {
		return fmt.Errorf("idempotency release: %w", err)
	}
	return nil
}

func (s *IdempotencyStore) key(scope, key string) string {
	return fmt.Sprintf("idem:%s:%s", scope, key)
}
