package pipeline

import (
	"crypto/sha256"
	"encoding/hex"
	"sync"
)

// DefaultCacheCapacity bounds the result cache. OCR responses are
// small, so a modest window of recent documents covers the common
// re-upload case without real memory cost.
const DefaultCacheCapacity = 100

// ResultCache memoizes successful pipeline responses keyed by the
// content hash of the raw image bytes. Eviction is insertion-order
// FIFO: once full, the oldest entry leaves regardless of how recently
// it was read.
type ResultCache struct {
	mu       sync.RWMutex
	capacity int
	entries  map[string]Response
	order    []string
}

func NewResultCache(capacity int) *ResultCache {
	if capacity <= 0 {
		capacity = DefaultCacheCapacity
	}
	return &ResultCache{
		capacity: capacity,
		entries:  make(map[string]Response, capacity),
	}
}

// CacheKey derives the content-addressed key for an image.
func CacheKey(imageData []byte) string {
	sum := sha256.Sum256(imageData)
	return hex.EncodeToString(sum[:])
}

// Get returns the cached response for a key, if any.
func (c *ResultCache) Get(key string) (Response, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	resp, ok := c.entries[key]
	return resp, ok
}

// Put stores a response. Re-inserting an existing key refreshes the
// value without changing its eviction position.
func (c *ResultCache) Put(key string, resp Response) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[key]; exists {
		c.entries[key] = resp
		return
	}

	if len(c.order) >= c.capacity {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.entries, oldest)
	}
	c.entries[key] = resp
	c.order = append(c.order, key)
}

// Len reports the current number of cached entries.
func (c *ResultCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Clear drops every entry.
func (c *ResultCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]Response, c.capacity)
	c.order = nil
}
