// Package cache holds the bounded search-result cache that fronts catalog reads.
// Entries expire by TTL; there is no per-product invalidation, so a cached page
// may lag a mutation by at most one TTL window ("near-real-time").
package cache

import (
	"sort"
	"strings"
	"sync"
	"time"
)

const (
	DefaultCapacity      = 500
	DefaultTTL           = 5 * time.Minute
	DefaultSweepInterval = 60 * time.Second
)

type Config struct {
	Capacity      int
	TTL           time.Duration
	SweepInterval time.Duration
	Now           func() time.Time
}

type entry struct {
	payload        any
	insertedAt     time.Time
	lastAccessedAt time.Time
	ttl            time.Duration
}

// SearchCache is safe for concurrent use; one mutex guards the whole map,
// which is fine at this capacity.
type SearchCache struct {
	mu      sync.Mutex
	entries map[string]*entry

	capacity int
	ttl      time.Duration
	interval time.Duration
	now      func() time.Time

	stop chan struct{}
	once sync.Once
}

func New(cfg Config) *SearchCache {
	if cfg.Capacity <= 0 {
		cfg.Capacity = DefaultCapacity
	}
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultTTL
	}
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = DefaultSweepInterval
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &SearchCache{
		entries:  make(map[string]*entry),
		capacity: cfg.Capacity,
		ttl:      cfg.TTL,
		interval: cfg.SweepInterval,
		now:      cfg.Now,
		stop:     make(chan struct{}),
	}
}

// Key builds a deterministic fingerprint for a query plus filter map.
// Filter keys are sorted so semantically identical requests collide.
func Key(query string, filters map[string]string) string {
	parts := make([]string, 0, len(filters)+1)
	parts = append(parts, "q="+strings.ToLower(strings.TrimSpace(query)))
	keys := make([]string, 0, len(filters))
	for k, v := range filters {
		if v == "" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		parts = append(parts, k+"="+filters[k])
	}
	return strings.Join(parts, "&")
}

// Get returns the cached payload, or false on absence or TTL expiry.
// A hit refreshes the entry's last access time for LRU ordering.
func (c *SearchCache) Get(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	now := c.now()
	if now.Sub(e.insertedAt) > e.ttl {
		delete(c.entries, key)
		return nil, false
	}
	e.lastAccessedAt = now
	return e.payload, true
}

// Set inserts or replaces an entry, evicting the least recently used entry
// first when the cache is full. An optional ttl overrides the default.
func (c *SearchCache) Set(key string, payload any, ttl ...time.Duration) {
	d := c.ttl
	if len(ttl) > 0 && ttl[0] > 0 {
		d = ttl[0]
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[key]; !exists && len(c.entries) >= c.capacity {
		c.evictLRULocked()
	}
	now := c.now()
	c.entries[key] = &entry{payload: payload, insertedAt: now, lastAccessedAt: now, ttl: d}
}

func (c *SearchCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// evictLRULocked removes the single entry with the oldest last access.
// Caller holds the mutex.
func (c *SearchCache) evictLRULocked() {
	var victim string
	var oldest time.Time
	for k, e := range c.entries {
		if victim == "" || e.lastAccessedAt.Before(oldest) {
			victim = k
			oldest = e.lastAccessedAt
		}
	}
	if victim != "" {
		delete(c.entries, victim)
	}
}

// Start launches the background sweep, which drops expired entries on a fixed
// interval regardless of access pattern. Close stops it.
func (c *SearchCache) Start() {
	go func() {
		t := time.NewTicker(c.interval)
		defer t.Stop()
		for {
			select {
			case <-t.C:
				c.Sweep()
			case <-c.stop:
				return
			}
		}
	}()
}

// Sweep removes every entry past its TTL. Exported so tests can trigger it
// without waiting for the ticker.
func (c *SearchCache) Sweep() {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	for k, e := range c.entries {
		if now.Sub(e.insertedAt) > e.ttl {
			delete(c.entries, k)
		}
	}
}

func (c *SearchCache) Close() {
	c.once.Do(func() { close(c.stop) })
}
