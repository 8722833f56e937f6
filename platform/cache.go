package platform

import (
	"sync"
	"time"
)

// Cache is the persistent key-value capability. Values are opaque strings,
// ttl of zero means "no expiry". Get reports absence instead of returning an
// error - a missing entry is a normal condition, not a failure.
type Cache interface {
	Get(key string) (string, bool)
	Set(key, value string, ttl time.Duration)
}

type memoryEntry struct {
	value   string
	expires time.Time // zero means no expiry
}

// MemoryCache is a process-local Cache. It backs tests and request-scoped
// caching; the sqlite implementation provides persistence across processes.
type MemoryCache struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
}

// NewMemoryCache creates an empty in-memory cache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

// Get returns the stored value if present and not expired.
func (c *MemoryCache) Get(key string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return "", false
	}
	if !e.expires.IsZero() && c.now().After(e.expires) {
		delete(c.entries, key)
		return "", false
	}
	return e.value, true
}

// Set stores value under key. A positive ttl sets its expiry.
func (c *MemoryCache) Set(key, value string, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e := memoryEntry{value: value}
	if ttl > 0 {
		e.expires = c.now().Add(ttl)
	}
	c.entries[key] = e
}
