// Package scene loads glTF scenes for the baker.
package scene

import (
	"fmt"
	"path/filepath"
	"sync"

	"github.com/qmuntal/gltf"
)

// Cache keeps parsed glTF documents so descriptors that share a source file
// only parse it once per bake run.
type Cache struct {
	docs map[string]*gltf.Document
	mu   sync.RWMutex

	// Stats
	hits   int
	misses int
}

// NewCache creates a new cache.
func NewCache() *Cache {
	return &Cache{
		docs: make(map[string]*gltf.Document),
	}
}

// Load returns the parsed document at path, reading it on first use.
func (c *Cache) Load(path string) (*gltf.Document, error) {
	key := cacheKey(path)

	c.mu.Lock()
	defer c.mu.Unlock()

	if doc, ok := c.docs[key]; ok {
		c.hits++
		return doc, nil
	}
	c.misses++

	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("reading scene %s: %w", path, err)
	}
	c.docs[key] = doc
	return doc, nil
}

// Add stores an already parsed document under path.
func (c *Cache) Add(path string, doc *gltf.Document) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.docs[cacheKey(path)] = doc
}

// Forget drops the cached document at path, if any.
func (c *Cache) Forget(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.docs, cacheKey(path))
}

// Clear clears the cache.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.docs = make(map[string]*gltf.Document)
	c.hits = 0
	c.misses = 0
}

// Stats returns cache statistics.
func (c *Cache) Stats() (hits, misses int) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.hits, c.misses
}

func cacheKey(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return filepath.Clean(path)
}
