package cache

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/flanksource/commons/logger"
	"github.com/hashicorp/golang-lru/v2/simplelru"
)

type entry[T any] struct {
	value     T
	expiresAt time.Time
}

// Stats is a point-in-time view of a cache instance.
type Stats struct {
	Name       string        `json:"name"`
	TTL        time.Duration `json:"ttl"`
	MaxEntries int           `json:"maxEntries"`
	Entries    int           `json:"entries"`
	Hits       uint64        `json:"hits"`
	Misses     uint64        `json:"misses"`
	Evictions  uint64        `json:"evictions"`
}

type options struct {
	now func() time.Time
}

type Option func(*options)

// WithClock replaces time.Now, used by tests to step over TTL boundaries.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// Cache is a bounded LRU whose entries also expire TTL after they were set.
// Expired entries are dropped lazily on read.
type Cache[T any] struct {
	name       string
	ttl        time.Duration
	maxEntries int
	now        func() time.Time

	mu        sync.Mutex
	lru       *simplelru.LRU[string, entry[T]]
	hits      uint64
	misses    uint64
	evictions uint64
}

func New[T any](name string, ttl time.Duration, maxEntries int, opts ...Option) (*Cache[T], error) {
	if ttl <= 0 {
		return nil, fmt.Errorf("cache %s: ttl must be positive, got %s", name, ttl)
	}
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	lru, err := simplelru.NewLRU[string, entry[T]](maxEntries, nil)
	if err != nil {
		return nil, fmt.Errorf("cache %s: %w", name, err)
	}
	return &Cache[T]{
		name:       name,
		ttl:        ttl,
		maxEntries: maxEntries,
		now:        o.now,
		lru:        lru,
	}, nil
}

func (c *Cache[T]) Name() string { return c.name }

// Get returns the value stored under params if it has not expired.
func (c *Cache[T]) Get(params Params) (T, bool) {
	key := Key(c.name, params)

	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.lru.Get(key)
	if ok && c.now().Before(e.expiresAt) {
		c.hits++
		logger.Tracef("cache hit: %s", key)
		return e.value, true
	}
	if ok {
		c.lru.Remove(key)
	}
	c.misses++
	logger.Tracef("cache miss: %s", key)
	var zero T
	return zero, false
}

// Set stores value under params, evicting the least recently used entry when full.
func (c *Cache[T]) Set(params Params, value T) {
	key := Key(c.name, params)

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.lru.Add(key, entry[T]{value: value, expiresAt: c.now().Add(c.ttl)}) {
		c.evictions++
	}
}

// Invalidate removes every entry whose key carries all the name:value pairs
// of partial, and returns how many were removed. An empty partial clears the cache.
func (c *Cache[T]) Invalidate(partial Params) int {
	wanted := fragments(partial)

	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for _, key := range c.lru.Keys() {
		if matchesAll(key, wanted) {
			c.lru.Remove(key)
			removed++
		}
	}
	if removed > 0 {
		logger.Debugf("cache %s: invalidated %d entries matching %v", c.name, removed, wanted)
	}
	return removed
}

func matchesAll(key string, wanted []string) bool {
	for _, fragment := range wanted {
		if !strings.Contains(key, fragment) {
			return false
		}
	}
	return true
}

func (c *Cache[T]) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lru.Purge()
}

func (c *Cache[T]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Len()
}

func (c *Cache[T]) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Stats{
		Name:       c.name,
		TTL:        c.ttl,
		MaxEntries: c.maxEntries,
		Entries:    c.lru.Len(),
		Hits:       c.hits,
		Misses:     c.misses,
		Evictions:  c.evictions,
	}
}
