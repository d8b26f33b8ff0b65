// Package cache provides an optional Redis read-through cache for
// availability grids. Bookability must be re-evaluated live against the
// active set, so cached grids get a short TTL and are invalidated on every
// booking write for the yacht.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"regatta/internal/availability"
)

// AvailabilityCache caches per-yacht date grids. A nil Redis client
// disables caching entirely.
type AvailabilityCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// New constructs a cache. Pass a nil client or non-positive TTL to disable.
func New(rdb *redis.Client, ttl time.Duration) *AvailabilityCache {
	return &AvailabilityCache{rdb: rdb, ttl: ttl}
}

func (c *AvailabilityCache) enabled() bool {
	return c != nil && c.rdb != nil && c.ttl > 0
}

func gridKey(yachtID, start, end string) string {
	return fmt.Sprintf("availability:%s:%s:%s", yachtID, start, end)
}

func yachtKeyPattern(yachtID string) string {
	return fmt.Sprintf("availability:%s:*", yachtID)
}

// GetGrid returns a cached grid, if present.
func (c *AvailabilityCache) GetGrid(ctx context.Context, yachtID, start, end string) ([]availability.DateStatus, bool) {
	if !c.enabled() {
		return nil, false
	}
	val, err := c.rdb.Get(ctx, gridKey(yachtID, start, end)).Result()
	if err != nil {
		return nil, false
	}
	var grid []availability.DateStatus
	if err := json.Unmarshal([]byte(val), &grid); err != nil {
		return nil, false
	}
	return grid, true
}

// SetGrid stores a grid with the configured TTL. Failures are ignored; the
// cache is advisory.
func (c *AvailabilityCache) SetGrid(ctx context.Context, yachtID, start, end string, grid []availability.DateStatus) {
	if !c.enabled() {
		return
	}
	data, err := json.Marshal(grid)
	if err != nil {
		return
	}
	_ = c.rdb.Set(ctx, gridKey(yachtID, start, end), data, c.ttl).Err()
}

// Invalidate drops all cached grids for a yacht. Called after every booking
// create or status change so stale grids never outlive a write.
func (c *AvailabilityCache) Invalidate(ctx context.Context, yachtID string) {
	if !c.enabled() {
		return
	}
	iter := c.rdb.Scan(ctx, 0, yachtKeyPattern(yachtID), 100).Iterator()
	for iter.Next(ctx) {
		_ = c.rdb.Del(ctx, iter.Val()).Err()
	}
}

// Ping checks the Redis connection for readiness probes.
func (c *AvailabilityCache) Ping(ctx context.Context) error {
	if !c.enabled() {
		return nil
	}
	return c.rdb.Ping(ctx).Err()
}
