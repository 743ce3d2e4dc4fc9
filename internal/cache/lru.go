// Package cache provides bounded caches for values that are costly to build.
package cache

import (
	lru "github.com/hashicorp/golang-lru/v2"
)

// LRU is a thread-safe least-recently-used cache.
type LRU[K comparable, V any] struct {
	cache *lru.Cache[K, V]
}

// New creates an LRU cache holding at most maxItems values.
func New[K comparable, V any](maxItems int) (*LRU[K, V], error) {
	c, err := lru.New[K, V](maxItems)
	if err != nil {
		return nil, err
	}
	return &LRU[K, V]{cache: c}, nil
}

// Get retrieves a value by key and marks it as recently used.
// Returns the value and true if found, the zero value and false otherwise.
func (c *LRU[K, V]) Get(key K) (V, bool) {
	return c.cache.Get(key)
}

// Put adds or updates a value, evicting the least recently used one when full.
func (c *LRU[K, V]) Put(key K, value V) {
	c.cache.Add(key, value)
}

// Contains reports whether key is cached without updating its recency.
func (c *LRU[K, V]) Contains(key K) bool {
	return c.cache.Contains(key)
}

// Len returns the current number of items in the cache.
func (c *LRU[K, V]) Len() int {
	return c.cache.Len()
}
