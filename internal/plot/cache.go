package plot

import (
	"sync"
	"time"
)

// Cache keeps rendered chart sets for a fixed time.
type Cache struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	entries map[string]cacheEntry
}

type cacheEntry struct {
	createdAt time.Time
	set       *Set
	report    string
}

func NewCache(ttl time.Duration) *Cache {
	return &Cache{ttl: ttl, now: time.Now, entries: map[string]cacheEntry{}}
}

// Get returns the set and report stored under key while it is fresh.
func (c *Cache) Get(key string) (*Set, string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		return nil, "", false
	}
	if !c.now().Before(e.createdAt.Add(c.ttl)) {
		delete(c.entries, key)
		return nil, "", false
	}
	return e.set, e.report, true
}

func (c *Cache) Set(key string, set *Set, report string) {
	c.mu.Lock()
	c.entries[key] = cacheEntry{createdAt: c.now(), set: set, report: report}
	c.mu.Unlock()
}
