// Package cache keeps a short-lived copy of the discoverable trip list in
// Redis so discovery requests from many viewers share one database fetch.
// The list is cached whole and replaced whole; it is never patched.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/pkordes/trip-companion/backend/internal/domain"
)

// DefaultKey is the Redis key holding the active trip list.
const DefaultKey = "discovery:active-trips"

// TripList is a Redis-backed cache of the active trip list.
type TripList struct {
	rdb *redis.Client
	key string
	ttl time.Duration
}

// NewTripList returns a cache storing the list under key for ttl.
func NewTripList(rdb *redis.Client, key string, ttl time.Duration) *TripList {
	if key == "" {
		key = DefaultKey
	}
	return &TripList{rdb: rdb, key: key, ttl: ttl}
}

// Get returns the cached list. ok is false on a cache miss.
func (c *TripList) Get(ctx context.Context) (trips []domain.Trip, ok bool, err error) {
	raw, err := c.rdb.Get(ctx, c.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("cache.TripList.Get: %w", err)
	}
	if err := json.Unmarshal(raw, &trips); err != nil {
		return nil, false, fmt.Errorf("cache.TripList.Get: decode: %w", err)
	}
	return trips, true, nil
}

// Set replaces the cached list.
func (c *TripList) Set(ctx context.Context, trips []domain.Trip) error {
	raw, err := json.Marshal(trips)
	if err != nil {
		return fmt.Errorf("cache.TripList.Set: encode: %w", err)
	}
	if err := c.rdb.Set(ctx, c.key, raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache.TripList.Set: %w", err)
	}
	return nil
}

// Invalidate drops the cached list so the next Get misses.
func (c *TripList) Invalidate(ctx context.Context) error {
	if err := c.rdb.Del(ctx, c.key).Err(); err != nil {
		return fmt.Errorf("cache.TripList.Invalidate: %w", err)
	}
	return nil
}

// Connect returns a Redis client for addr, or nil when addr is empty so
// callers can run without a cache.
func Connect(addr, password string) *redis.Client {
	if addr == "" {
		return nil
	}
	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
	})
}
