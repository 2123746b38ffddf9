package search

import (
	"fmt"
	"sync"
	"time"

	"github.com/golang/groupcache/lru"
)

const DefaultCacheSize = 100

// CacheKey identifies a memoized search.
type CacheKey struct {
	Text    string
	Engine  Engine
	Variant int
}

func (k CacheKey) String() string {
	return fmt.Sprintf("%s/%d/%s", k.Engine, k.Variant, k.Text)
}

type cacheEntry struct {
	results  []SearchResult
	storedAt time.Time
}

// ResultCache keeps the results of the most recent distinct searches and
// evicts the least recently used one past its bound. Safe for concurrent use.
type ResultCache struct {
	mu      sync.Mutex
	entries *lru.Cache
	now     func() time.Time
	onEvict func(key CacheKey, storedAt time.Time)
}

type CacheOption func(*ResultCache)

// WithClock sets the time source used to stamp and age entries.
func WithClock(now func() time.Time) CacheOption {
	return func(c *ResultCache) {
		c.now = now
	}
}

// WithEvictionHook registers fn to run when an entry is pushed out. fn runs
// with the cache locked and must not call back into it.
func WithEvictionHook(fn func(key CacheKey, storedAt time.Time)) CacheOption {
	return func(c *ResultCache) {
		c.onEvict = fn
	}
}

func NewResultCache(size int, opts ...CacheOption) *ResultCache {
	if size <= 0 {
		size = DefaultCacheSize
	}

	c := &ResultCache{
		entries: lru.New(size),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}

	c.entries.OnEvicted = func(key lru.Key, value interface{}) {
		if c.onEvict != nil {
			c.onEvict(key.(CacheKey), value.(cacheEntry).storedAt)
		}
	}

	return c
}

// Get returns the cached results for key and how long ago they were stored.
// A hit marks the key as most recently used.
func (c *ResultCache) Get(key CacheKey) ([]SearchResult, time.Duration, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	v, ok := c.entries.Get(key)
	if !ok {
		return nil, 0, false
	}
	entry := v.(cacheEntry)
	return entry.results, c.now().Sub(entry.storedAt), true
}

func (c *ResultCache) Add(key CacheKey, results []SearchResult) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries.Add(key, cacheEntry{results: results, storedAt: c.now()})
}

func (c *ResultCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.entries.Len()
}
