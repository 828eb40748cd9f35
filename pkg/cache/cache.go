// Package cache provides a thread-safe LRU cache for parsed expressions.
//
// The evaluator uses it when the WithCaching option is enabled, so the same
// source text is tokenized, parsed and validated once no matter how many
// states it is evaluated against.
//
// # Example
//
//	c := cache.New(1024)
//	expr, err := c.GetOrParse("add(1, user.age)", parse)
package cache

import (
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/sandrolain/goexpr/pkg/types"
)

// DefaultCapacity is used when New receives a non-positive capacity.
const DefaultCapacity = 256

// ParseFunc turns source text into a validated expression tree.
type ParseFunc func(text string) (*types.Expression, error)

// Cache is an LRU of parsed expressions keyed by source text.
// Safe for concurrent use by multiple goroutines.
type Cache struct {
	capacity int
	entries  *lru.Cache[string, *types.Expression]
}

// New creates a new LRU cache with the given capacity.
func New(capacity int) *Cache {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	// lru.New only fails for non-positive sizes.
	entries, _ := lru.New[string, *types.Expression](capacity)
	return &Cache{capacity: capacity, entries: entries}
}

// Get retrieves a parsed expression and marks it most recently used.
func (c *Cache) Get(text string) (*types.Expression, bool) {
	return c.entries.Get(text)
}

// Set inserts or replaces an expression, evicting the least recently used
// entry when full.
func (c *Cache) Set(text string, expr *types.Expression) {
	c.entries.Add(text, expr)
}

// GetOrParse returns the cached expression for text or parses and caches it.
// Parse errors are not cached.
func (c *Cache) GetOrParse(text string, parse ParseFunc) (*types.Expression, error) {
	expr, _, err := c.Lookup(text, parse)
	return expr, err
}

// Lookup is GetOrParse that also reports whether the entry was a hit.
func (c *Cache) Lookup(text string, parse ParseFunc) (*types.Expression, bool, error) {
	if expr, ok := c.entries.Get(text); ok {
		return expr, true, nil
	}
	expr, err := parse(text)
	if err != nil {
		return nil, false, err
	}
	c.entries.Add(text, expr)
	return expr, false, nil
}

// Len returns the number of entries currently in the cache.
func (c *Cache) Len() int {
	return c.entries.Len()
}

// Capacity returns the maximum number of entries the cache can hold.
func (c *Cache) Capacity() int {
	return c.capacity
}

// Invalidate removes a single entry.
func (c *Cache) Invalidate(text string) {
	c.entries.Remove(text)
}

// Clear removes all entries.
func (c *Cache) Clear() {
	c.entries.Purge()
}
