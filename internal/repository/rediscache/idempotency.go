package rediscache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/viagens-moz/intercity/pkg/cache"
)

const (
	idempotencyPrefix = "idempotency:"
	pendingMarker     = "pending"
)

// ErrInFlight is returned when the same key is still being processed
var ErrInFlight = errors.New("request with this idempotency key is in progress")

// IdempotencyStore remembers the outcome of a submission per client key
type IdempotencyStore struct {
	client redis.Cmdable
	ttl    time.Duration
}

// NewIdempotencyStore creates a store keeping keys for ttl
func NewIdempotencyStore(client redis.Cmdable, ttl time.Duration) *IdempotencyStore {
	return &IdempotencyStore{client: client, ttl: ttl}
}

// Begin claims key. When the key was already completed its stored result
// is returned with claimed set to false.
func (s *IdempotencyStore) Begin(ctx context.Context, key string) (result string, claimed bool, err error) {
	claimed, err = cache.SetNX(ctx, s.client, idempotencyPrefix+key, pendingMarker, s.ttl)
	if err != nil {
		return "", false, fmt.Errorf("claim idempotency key: %w", err)
	}
	if claimed {
		return "", true, nil
	}

	result, err = cache.Get(ctx, s.client, idempotencyPrefix+key)
	if errors.Is(err, cache.ErrCacheMiss) {
		// expired between the two calls, try again once
		return s.retry(ctx, key)
	}
	if err != nil {
		return "", false, fmt.Errorf("read idempotency key: %w", err)
	}
	if result == pendingMarker {
		return "", false, ErrInFlight
	}
	return result, false, nil
}

func (s *IdempotencyStore) retry(ctx context.Context, key string) (string, bool, error) {
	claimed, err := cache.SetNX(ctx, s.client, idempotencyPrefix+key, pendingMarker, s.ttl)
	if err != nil {
		return "", false, fmt.Errorf("claim idempotency key: %w", err)
	}
	if !claimed {
		return "", false, ErrInFlight
	}
	return "", true, nil
}

// Complete stores the result for a claimed key
func (s *IdempotencyStore) Complete(ctx context.Context, key, result string) error {
	return cache.SetWithExpiry(ctx, s.client, idempotencyPrefix+key, result, s.ttl)
}

// Abort releases a claimed key so the client may retry
func (s *IdempotencyStore) Abort(ctx context.Context, key string) error {
	return cache.Delete(ctx, s.client, idempotencyPrefix+key)
}
