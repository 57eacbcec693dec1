package cache

import (
	"bytes"
	"sync/atomic"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// MemoryCache keeps generation responses in process memory. Entries expire
// after their TTL; nothing survives a restart.
type MemoryCache struct {
	items  *gocache.Cache
	hits   atomic.Int64
	misses atomic.Int64
}

// NewMemoryCache creates a cache whose expired entries are purged every
// cleanupInterval
func NewMemoryCache(defaultTTL time.Duration, cleanupInterval time.Duration) *MemoryCache {
	return &MemoryCache{
		items: gocache.New(defaultTTL, cleanupInterval),
	}
}

// Get returns the stored bytes for key
func (c *MemoryCache) Get(key string) ([]byte, bool) {
	if val, found := c.items.Get(key); found {
		if data, ok := val.([]byte); ok {
			c.hits.Add(1)
			return data, true
		}
	}
	c.misses.Add(1)
	return nil, false
}

// Set stores a copy of value; a zero ttl uses the cache default
func (c *MemoryCache) Set(key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = gocache.DefaultExpiration
	}
	c.items.Set(key, bytes.Clone(value), ttl)
	return nil
}

// Delete evicts key
func (c *MemoryCache) Delete(key string) error {
	c.items.Delete(key)
	return nil
}

// Stats returns hit and miss counters and the live entry count
func (c *MemoryCache) Stats() Stats {
	return Stats{
		Hits:    c.hits.Load(),
		Misses:  c.misses.Load(),
		Entries: c.items.ItemCount(),
	}
}
