package loader

import (
	"sync"

	"golang.org/x/sync/singleflight"
)

// Cache memoizes file contents by key. Concurrent misses for the same key
// share a single fetch.
type Cache struct {
	entries map[string][]byte
	mu      sync.RWMutex
	group   singleflight.Group
}

// NewCache returns an empty cache.
func NewCache() *Cache {
	return &Cache{entries: make(map[string][]byte)}
}

// Get returns the cached bytes for key, calling fetch on a miss.
func (c *Cache) Get(key string, fetch func() ([]byte, error)) ([]byte, error) {
	if cached, ok := c.lookup(key); ok {
		return cached, nil
	}

	result, err, _ := c.group.Do(key, func() (any, error) {
		if cached, ok := c.lookup(key); ok {
			return cached, nil
		}

		b, err := fetch()
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		c.entries[key] = b
		c.mu.Unlock()

		return b, nil
	})
	if err != nil {
		return nil, err
	}

	return result.([]byte), nil
}

// Forget drops key from the cache.
func (c *Cache) Forget(key string) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
}

func (c *Cache) lookup(key string) ([]byte, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	b, ok := c.entries[key]
	return b, ok
}
