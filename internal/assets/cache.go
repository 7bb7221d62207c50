package assets

import (
	"sync"
	"sync/atomic"
)

// Cache is an in-memory cache of parsed assets keyed by normalized path.
type Cache struct {
	data map[string]*Asset
	mu   sync.RWMutex

	// Stats
	hits   atomic.Int64
	misses atomic.Int64
}

// NewCache creates a new cache.
func NewCache() *Cache {
	return &Cache{
		data: make(map[string]*Asset),
	}
}

// Get retrieves an item from cache and counts the hit or miss.
func (c *Cache) Get(key string) (*Asset, bool) {
	c.mu.RLock()
	a, ok := c.data[key]
	c.mu.RUnlock()

	if ok {
		c.hits.Add(1)
	} else {
		c.misses.Add(1)
	}
	return a, ok
}

// Set stores an item in cache.
func (c *Cache) Set(key string, a *Asset) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = a
}

// Delete drops one entry and reports whether it was present.
func (c *Cache) Delete(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.data[key]
	delete(c.data, key)
	return ok
}

// Len returns the number of cached entries.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.data)
}

// Clear clears the cache and its statistics.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data = make(map[string]*Asset)
	c.hits.Store(0)
	c.misses.Store(0)
}

// Stats returns cache statistics.
func (c *Cache) Stats() (hits, misses int) {
	return int(c.hits.Load()), int(c.misses.Load())
}
