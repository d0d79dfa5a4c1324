package cache

import (
	"context"
	"sync"
	"time"
)

// DefaultMemoryEntries bounds a [MemoryCache] created with a non-positive
// limit.
const DefaultMemoryEntries = 256

// MemoryCache keeps entries in process memory. When full, Set evicts the
// entry closest to expiry, preferring already expired ones; entries without
// a TTL go last. It is safe for concurrent use.
type MemoryCache struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	limit   int
	now     func() time.Time
}

type memoryEntry struct {
	data      []byte
	expiresAt time.Time
	stored    time.Time
}

// NewMemoryCache creates a memory cache holding at most limit entries.
func NewMemoryCache(limit int) *MemoryCache {
	if limit <= 0 {
		limit = DefaultMemoryEntries
	}
	return &MemoryCache{
		entries: make(map[string]memoryEntry),
		limit:   limit,
		now:     time.Now,
	}
}

// Get retrieves a value from the cache.
func (c *MemoryCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return nil, false, nil
	}
	if e.expired(c.now()) {
		delete(c.entries, key)
		return nil, false, nil
	}
	return e.data, true, nil
}

// Set stores a copy of data.
func (c *MemoryCache) Set(_ context.Context, key string, data []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	e := memoryEntry{data: append([]byte(nil), data...), stored: now}
	if ttl > 0 {
		e.expiresAt = now.Add(ttl)
	}
	if _, ok := c.entries[key]; !ok && len(c.entries) >= c.limit {
		c.evict(now)
	}
	c.entries[key] = e
	return nil
}

// evict removes one entry. Must be called with mu held.
func (c *MemoryCache) evict(now time.Time) {
	var victim string
	var best memoryEntry
	found := false
	for k, e := range c.entries {
		if e.expired(now) {
			delete(c.entries, k)
			return
		}
		if !found || e.before(best) {
			victim, best, found = k, e, true
		}
	}
	if found {
		delete(c.entries, victim)
	}
}

// Delete removes a value from the cache.
func (c *MemoryCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
	return nil
}

// Len returns the number of stored entries, expired or not.
func (c *MemoryCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Close drops all entries.
func (c *MemoryCache) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	clear(c.entries)
	return nil
}

func (e memoryEntry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && now.After(e.expiresAt)
}

// before orders entries for eviction: earlier expiry first, then entries
// without expiry by age.
func (e memoryEntry) before(o memoryEntry) bool {
	switch {
	case e.expiresAt.IsZero() != o.expiresAt.IsZero():
		return !e.expiresAt.IsZero()
	case !e.expiresAt.IsZero():
		return e.expiresAt.Before(o.expiresAt)
	}
	return e.stored.Before(o.stored)
}

var _ Cache = (*MemoryCache)(nil)
