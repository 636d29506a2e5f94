package geocode

import (
	"context"
	"sync"
	"time"

	"github.com/pfrederiksen/ski-spot/internal/geo"
)

// Cache TTLs for hits and misses
const (
	DefaultTTL  = 7 * 24 * time.Hour
	NegativeTTL = time.Hour
)

// Entry is a cached lookup. Found is false for a cached miss.
type Entry struct {
	Point geo.Point `json:"point"`
	Found bool      `json:"found"`
}

// Cache stores lookup results by query key
type Cache interface {
	Get(ctx context.Context, key string) (Entry, bool)
	Set(ctx context.Context, key string, e Entry, ttl time.Duration)
}

// MemoryCache is an in-process Cache with per-entry TTL
type MemoryCache struct {
	mu      sync.Mutex
	entries map[string]Entry
	expires map[string]time.Time
	now     func() time.Time
}

// NewMemoryCache creates an empty MemoryCache
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		entries: make(map[string]Entry),
		expires: make(map[string]time.Time),
		now:     time.Now,
	}
}

// Get returns the entry for key if present and not expired
func (c *MemoryCache) Get(_ context.Context, key string) (Entry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return Entry{}, false
	}

	if !c.now().Before(c.expires[key]) {
		// Expired, remove from cache
		delete(c.entries, key)
		delete(c.expires, key)
		return Entry{}, false
	}
	return e, true
}

// Set stores e under key for ttl
func (c *MemoryCache) Set(_ context.Context, key string, e Entry, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = e
	c.expires[key] = c.now().Add(ttl)
}

// CleanExpired removes expired entries and returns how many were removed
func (c *MemoryCache) CleanExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	now := c.now()
	for key, exp := range c.expires {
		if !now.Before(exp) {
			delete(c.entries, key)
			delete(c.expires, key)
			removed++
		}
	}
	return removed
}

// Size returns the number of cached entries
func (c *MemoryCache) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
