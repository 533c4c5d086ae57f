// Package cache provides a Redis-backed cache for serialized search
// responses, with request coalescing so concurrent identical queries hit the
// engine once.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/vkusplato/menu-search/pkg/logger"
	"github.com/vkusplato/menu-search/pkg/redis"
)

// DefaultTTL bounds how stale a cached response may get. Catalog changes
// also invalidate eagerly, so this is only a backstop.
const DefaultTTL = 60 * time.Second

const keyPrefix = "search:"

// Store is the key-value surface the cache needs. *redis.Client satisfies
// it; tests substitute an in-memory fake.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	FlushByPattern(ctx context.Context, pattern string) (int64, error)
}

// Stats is a point-in-time snapshot of cache effectiveness.
type Stats struct {
	Hits   int64 `json:"hits"`
	Misses int64 `json:"misses"`
}

// ResultCache caches serialized search responses keyed by normalised query
// and result limit. A nil *ResultCache is valid and degrades to computing
// every response, so the service runs without Redis.
type ResultCache struct {
	store  Store
	ttl    time.Duration
	group  singleflight.Group
	hits   atomic.Int64
	misses atomic.Int64
	logger *slog.Logger
}

// New creates a ResultCache over the given store. ttl <= 0 selects
// DefaultTTL.
func New(store Store, ttl time.Duration) *ResultCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &ResultCache{
		store:  store,
		ttl:    ttl,
		logger: logger.WithComponent("result-cache"),
	}
}

// Key derives the cache key for a query/limit pair. The normalised query is
// hashed so arbitrary user input never reaches Redis key space directly.
func Key(normalizedQuery string, limit int) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s|%d", normalizedQuery, limit)))
	return keyPrefix + hex.EncodeToString(sum[:16])
}

// GetOrCompute returns the cached response for key, or runs compute and
// caches its result. Concurrent callers with the same key share one compute.
// The boolean reports a cache hit. With a nil receiver or store, compute
// runs directly.
func (c *ResultCache) GetOrCompute(ctx context.Context, key string, compute func() ([]byte, error)) ([]byte, bool, error) {
	if c == nil || c.store == nil {
		body, err := compute()
		return body, false, err
	}

	if body, err := c.store.Get(ctx, key); err == nil {
		c.hits.Add(1)
		return []byte(body), true, nil
	} else if !redis.IsNilError(err) {
		c.logger.WarnContext(ctx, "cache read failed", "error", err)
	}
	c.misses.Add(1)

	v, err, _ := c.group.Do(key, func() (interface{}, error) {
		body, err := compute()
		if err != nil {
			return nil, err
		}
		if err := c.store.Set(ctx, key, string(body), c.ttl); err != nil {
			c.logger.WarnContext(ctx, "cache write failed", "error", err)
		}
		return body, nil
	})
	if err != nil {
		return nil, false, err
	}
	return v.([]byte), false, nil
}

// Invalidate drops every cached search response.
func (c *ResultCache) Invalidate(ctx context.Context) (int64, error) {
	if c == nil || c.store == nil {
		return 0, nil
	}
	return c.store.FlushByPattern(ctx, keyPrefix+"*")
}

// Stats returns hit/miss counters accumulated since startup.
func (c *ResultCache) Stats() Stats {
	if c == nil {
		return Stats{}
	}
	return Stats{Hits: c.hits.Load(), Misses: c.misses.Load()}
}
