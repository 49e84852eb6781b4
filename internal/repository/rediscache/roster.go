// Package rediscache keeps short-lived state in Redis: the approved driver
// roster snapshot and idempotency keys for booking submissions.
package rediscache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/viagens-moz/intercity/internal/domain/driver"
	"github.com/viagens-moz/intercity/pkg/cache"
)

// RosterKey prefixes the JSON encoded approved driver roster. Snapshots
// are stored per generation as RosterKey:<generation>.
const RosterKey = "roster:approved"

// RosterGenerationKey is bumped on every roster change
const RosterGenerationKey = "roster:generation"

// RosterCache stores the roster snapshot the matcher runs on. A snapshot
// written under an outdated generation is never served.
type RosterCache struct {
	client redis.Cmdable
	ttl    time.Duration
}

// NewRosterCache creates a roster cache with the given TTL
func NewRosterCache(client redis.Cmdable, ttl time.Duration) *RosterCache {
	return &RosterCache{client: client, ttl: ttl}
}

// Get returns the roster cached for the current generation. On
// cache.ErrCacheMiss the generation is still returned so the caller can
// store a freshly loaded snapshot under it.
func (c *RosterCache) Get(ctx context.Context) ([]*driver.Driver, int64, error) {
	generation, err := c.generation(ctx)
	if err != nil {
		return nil, 0, err
	}

	var drivers []*driver.Driver
	if err := cache.GetJSON(ctx, c.client, snapshotKey(generation), &drivers); err != nil {
		return nil, generation, err
	}
	return drivers, generation, nil
}

// Set stores the roster snapshot loaded under generation
func (c *RosterCache) Set(ctx context.Context, generation int64, drivers []*driver.Driver) error {
	return cache.SetJSON(ctx, c.client, snapshotKey(generation), drivers, c.ttl)
}

// Invalidate moves to a new generation so the next read reloads
func (c *RosterCache) Invalidate(ctx context.Context) error {
	_, err := cache.Incr(ctx, c.client, RosterGenerationKey)
	return err
}

func (c *RosterCache) generation(ctx context.Context) (int64, error) {
	raw, err := cache.Get(ctx, c.client, RosterGenerationKey)
	if errors.Is(err, cache.ErrCacheMiss) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	generation, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("corrupt roster generation %q: %w", raw, err)
	}
	return generation, nil
}

func snapshotKey(generation int64) string {
	return RosterKey + ":" + strconv.FormatInt(generation, 10)
}
