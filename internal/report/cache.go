package report

import (
	"sync"
	"time"
)

// resultCache memoizes resolved report rows by request key. Entries are
// immutable once stored and expire a fixed TTL after creation, independent
// of access. The clock is injectable so TTL behavior is testable without
// sleeping.
type resultCache struct {
	mu      sync.RWMutex
	ttl     time.Duration
	now     func() time.Time
	entries map[string]cacheEntry
}

type cacheEntry struct {
	rows      any
	expiresAt time.Time
}

func newResultCache(ttl time.Duration, now func() time.Time) *resultCache {
	if now == nil {
		now = time.Now
	}
	return &resultCache{
		ttl:     ttl,
		now:     now,
		entries: make(map[string]cacheEntry),
	}
}

// get returns the cached rows for key if the entry has not expired.
func (c *resultCache) get(key string) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[key]
	if !ok || !c.now().Before(entry.expiresAt) {
		return nil, false
	}
	return entry.rows, true
}

// set stores rows under key with a fresh TTL, replacing any prior entry
// wholesale. Expired siblings are dropped on the way through so the map does
// not accumulate dead keys.
func (c *resultCache) set(key string, rows any) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	for k, e := range c.entries {
		if !now.Before(e.expiresAt) {
			delete(c.entries, k)
		}
	}
	c.entries[key] = cacheEntry{rows: rows, expiresAt: now.Add(c.ttl)}
}
