// Package cache provides a small bounded TTL cache used by collaborators
// that memoize expensive external lookups (LLM assessments, news queries).
package cache

import (
	"sync"
	"time"
)

// TTL is a bounded key/value cache with per-entry expiry.
// The clock is injected so tests can control time.
type TTL[V any] struct {
	mu      sync.Mutex
	entries map[string]entry[V]
	ttl     time.Duration
	maxSize int
	now     func() time.Time
}

type entry[V any] struct {
	value  V
	expiry time.Time
}

// NewTTL creates a cache holding at most maxSize entries for ttl each.
func NewTTL[V any](ttl time.Duration, maxSize int) *TTL[V] {
	return &TTL[V]{
		entries: make(map[string]entry[V]),
		ttl:     ttl,
		maxSize: maxSize,
		now:     time.Now,
	}
}

// WithClock overrides the cache's time source. For tests.
func (c *TTL[V]) WithClock(now func() time.Time) *TTL[V] {
	c.now = now
	return c
}

// Get returns the cached value for key if present and not expired.
func (c *TTL[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok || c.now().After(e.expiry) {
		if ok {
			delete(c.entries, key)
		}
		var zero V
		return zero, false
	}
	return e.value, true
}

// Set stores value under key. When the cache is full, expired entries are
// evicted first; if none are expired, the entry closest to expiry goes.
func (c *TTL[V]) Set(key string, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.entries[key]; !ok && len(c.entries) >= c.maxSize {
		c.evictLocked()
	}
	c.entries[key] = entry[V]{value: value, expiry: c.now().Add(c.ttl)}
}

// Len returns the number of entries currently stored, expired or not.
func (c *TTL[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *TTL[V]) evictLocked() {
	now := c.now()
	var oldestKey string
	var oldestExpiry time.Time
	for k, e := range c.entries {
		if now.After(e.expiry) {
			delete(c.entries, k)
			return
		}
		if oldestKey == "" || e.expiry.Before(oldestExpiry) {
			oldestKey, oldestExpiry = k, e.expiry
		}
	}
	if oldestKey != "" {
		delete(c.entries, oldestKey)
	}
}
