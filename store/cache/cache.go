// Package cache provides a small in-memory TTL cache used to keep hot
// store lookups off the database.
package cache

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

// Config controls cache behavior. Zero values fall back to sane defaults.
type Config struct {
	// DefaultTTL is applied when Set is called with ttl <= 0.
	DefaultTTL time.Duration
	// CleanupInterval is how often expired entries are swept.
	CleanupInterval time.Duration
	// MaxItems bounds the cache size; 0 means unbounded.
	MaxItems int
	// OnEviction, if set, is invoked for entries removed by sweep or overflow.
	OnEviction func(key string, value any)
}

type entry struct {
	value     any
	expiresAt time.Time
}

// Cache is a concurrency-safe in-memory cache with per-entry TTL and a
// background sweeper. Close must be called to stop the sweeper.
type Cache struct {
	mu      sync.RWMutex
	items   map[string]entry
	config  Config
	done    chan struct{}
	closeMu sync.Once
}

// New creates a cache and starts its sweeper goroutine.
func New(config Config) *Cache {
	if config.DefaultTTL <= 0 {
		config.DefaultTTL = 10 * time.Minute
	}
	if config.CleanupInterval <= 0 {
		config.CleanupInterval = 5 * time.Minute
	}
	c := &Cache{
		items:  make(map[string]entry),
		config: config,
		done:   make(chan struct{}),
	}
	go c.sweepLoop()
	return c
}

// Get returns the cached value for key, or false if absent or expired.
func (c *Cache) Get(key string) (any, bool) {
	c.mu.RLock()
	e, ok := c.items[key]
	c.mu.RUnlock()
	if !ok || time.Now().After(e.expiresAt) {
		return nil, false
	}
	return e.value, true
}

// Set stores value under key. A ttl <= 0 uses the configured default.
func (c *Cache) Set(key string, value any, ttl time.Duration) {
	if ttl <= 0 {
		ttl = c.config.DefaultTTL
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.config.MaxItems > 0 && len(c.items) >= c.config.MaxItems {
		if _, exists := c.items[key]; !exists {
			c.evictOneLocked()
		}
	}
	c.items[key] = entry{value: value, expiresAt: time.Now().Add(ttl)}
}

// Delete removes key if present.
func (c *Cache) Delete(key string) {
	c.mu.Lock()
	delete(c.items, key)
	c.mu.Unlock()
}

// Len returns the number of entries, including not-yet-swept expired ones.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// Close stops the sweeper. Safe to call more than once.
func (c *Cache) Close() {
	c.closeMu.Do(func() {
		close(c.done)
	})
}

// evictOneLocked drops the entry closest to expiry. Caller holds mu.
func (c *Cache) evictOneLocked() {
	var victim string
	var earliest time.Time
	for k, e := range c.items {
		if victim == "" || e.expiresAt.Before(earliest) {
			victim = k
			earliest = e.expiresAt
		}
	}
	if victim != "" {
		e := c.items[victim]
		delete(c.items, victim)
		if c.config.OnEviction != nil {
			c.config.OnEviction(victim, e.value)
		}
	}
}

func (c *Cache) sweepLoop() {
	ticker := time.NewTicker(c.config.CleanupInterval)
	defer ticker.Stop()
	for {
		select {
		case <-c.done:
			return
		case <-ticker.C:
			c.sweep()
		}
	}
}

func (c *Cache) sweep() {
	now := time.Now()
	c.mu.Lock()
	defer c.mu.Unlock()
	for k, e := range c.items {
		if now.After(e.expiresAt) {
			delete(c.items, k)
			if c.config.OnEviction != nil {
				c.config.OnEviction(k, e.value)
			}
		}
	}
}

// Key builds a namespaced cache key from its parts.
func Key(parts ...any) string {
	ss := make([]string, 0, len(parts))
	for _, p := range parts {
		ss = append(ss, fmt.Sprintf("%v", p))
	}
	return strings.Join(ss, ":")
}
