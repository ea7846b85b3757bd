package scenario

import (
	"sync"
)

// Cache provides thread-safe caching of decoded scenarios keyed by content digest
type Cache struct {
	mu    sync.RWMutex
	items map[string]*Scenario
}

// NewCache creates a new cache instance
func NewCache() *Cache {
	return &Cache{
		items: make(map[string]*Scenario),
	}
}

// Get retrieves a copy of a cached scenario
// Returns the scenario and true if found, nil and false otherwise
func (c *Cache) Get(key string) (*Scenario, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	s, found := c.items[key]
	return s.DeepCopy(), found
}

// Set stores a copy of a scenario in the cache
func (c *Cache) Set(key string, s *Scenario) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items[key] = s.DeepCopy()
}

// Size returns the number of items in the cache
func (c *Cache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.items)
}
