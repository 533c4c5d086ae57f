package index

import (
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/vkusplato/menu-search/internal/catalog"
)

// DefaultTTL bounds how long a built index is served before a rebuild.
const DefaultTTL = 5 * time.Minute

type slot struct {
	items     []Item
	builtAt   time.Time
	itemCount int
}

// Cache memoises the built index in a single process-wide slot. The slot is
// keyed by item count only — a catalog edit that preserves the count can be
// served stale within the TTL window, which is why catalog mutations also
// publish explicit invalidation events. Concurrent misses share one rebuild
// through singleflight; a rebuild never publishes a partial index.
type Cache struct {
	ttl    time.Duration
	now    func() time.Time
	mu     sync.RWMutex
	slot   *slot
	group  singleflight.Group
	hits   atomic.Int64
	misses atomic.Int64
}

// NewCache creates a Cache with the given TTL, defaulting to DefaultTTL for
// non-positive values.
func NewCache(ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{
		ttl: ttl,
		now: time.Now,
	}
}

// Get returns the cached index when it is still valid for the given records,
// or rebuilds it. The boolean reports whether the cached copy was served.
func (c *Cache) Get(records []catalog.Record, forceRebuild bool) ([]Item, bool) {
	if !forceRebuild {
		if items, ok := c.lookup(len(records)); ok {
			c.hits.Add(1)
			return items, true
		}
	}
	c.misses.Add(1)

	v, _, _ := c.group.Do("rebuild", func() (interface{}, error) {
		if !forceRebuild {
			if items, ok := c.lookup(len(records)); ok {
				return items, nil
			}
		}
		return c.rebuild(records), nil
	})
	items := v.([]Item)

	// A shared singleflight result can belong to a concurrent caller whose
	// catalog snapshot had a different item count; rebuild for this one.
	if len(items) != len(records) {
		items = c.rebuild(records)
	}
	return items, false
}

// Invalidate clears the slot unconditionally. The next Get rebuilds.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	c.slot = nil
	c.mu.Unlock()
}

// Stats returns the cumulative hit and miss counts.
func (c *Cache) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

func (c *Cache) lookup(itemCount int) ([]Item, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s := c.slot
	if s == nil {
		return nil, false
	}
	if c.now().Sub(s.builtAt) >= c.ttl {
		return nil, false
	}
	if s.itemCount != itemCount {
		return nil, false
	}
	return s.items, true
}

func (c *Cache) rebuild(records []catalog.Record) []Item {
	items := Build(records)
	c.mu.Lock()
	c.slot = &slot{
		items:     items,
		builtAt:   c.now(),
		itemCount: len(records),
	}
	c.mu.Unlock()
	return items
}
