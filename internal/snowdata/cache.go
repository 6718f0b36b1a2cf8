package snowdata

import (
	"context"
	"sync"
	"time"

	"mcass/internal/types"
)

// CachedLoader wraps a Loader with an in-memory LRU cache. Entries expire
// after the configured TTL so a freshly written export is picked up without
// a restart. Only successful loads are cached; failures are retried on the
// next request.
type CachedLoader struct {
	inner   Loader
	cache   *lruCache
	ttl     time.Duration
	clock   types.Clock
	metrics Metrics
}

// NewCachedLoader creates a cache decorator around a loader. maxBasins bounds
// the number of cached datasets; metrics may be nil.
func NewCachedLoader(inner Loader, maxBasins int, ttl time.Duration, clock types.Clock, metrics Metrics) *CachedLoader {
	return &CachedLoader{
		inner:   inner,
		cache:   newLRUCache(maxBasins),
		ttl:     ttl,
		clock:   clock,
		metrics: metrics,
	}
}

// LoadBasin returns the cached dataset when present and fresh, delegating to
// the inner loader otherwise.
func (c *CachedLoader) LoadBasin(ctx context.Context, basin types.Basin) (*types.BasinDataset, error) {
	now := c.clock.Now()

	if ds, ok := c.cache.get(basin.Code, now); ok {
		c.recordLookup(true)
		return ds, nil
	}
	c.recordLookup(false)

	ds, err := c.inner.LoadBasin(ctx, basin)
	if err != nil {
		return nil, err
	}
	c.cache.put(basin.Code, ds, now.Add(c.ttl))
	return ds, nil
}

func (c *CachedLoader) recordLookup(hit bool) {
	if c.metrics != nil {
		c.metrics.RecordCacheLookup(hit)
	}
}

// lruCache is a thread-safe LRU cache of basin datasets with per-entry
// expiry.
type lruCache struct {
	maxEntries int
	mu         sync.Mutex
	entries    map[string]*cacheEntry
	head       *cacheEntry // most recently used
	tail       *cacheEntry // least recently used
}

type cacheEntry struct {
	key       string
	value     *types.BasinDataset
	expiresAt time.Time
	prev      *cacheEntry
	next      *cacheEntry
}

func newLRUCache(maxEntries int) *lruCache {
	return &lruCache{
		maxEntries: maxEntries,
		entries:    make(map[string]*cacheEntry),
	}
}

func (c *lruCache) get(key string, now time.Time) (*types.BasinDataset, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if !now.Before(e.expiresAt) {
		delete(c.entries, e.key)
		c.remove(e)
		return nil, false
	}
	c.moveToFront(e)
	return e.value, true
}

func (c *lruCache) put(key string, value *types.BasinDataset, expiresAt time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[key]; ok {
		e.value = value
		e.expiresAt = expiresAt
		c.moveToFront(e)
		return
	}

	e := &cacheEntry{key: key, value: value, expiresAt: expiresAt}
	c.entries[key] = e
	c.addToFront(e)

	if len(c.entries) > c.maxEntries {
		c.evictTail()
	}
}

func (c *lruCache) moveToFront(e *cacheEntry) {
	if e == c.head {
		return
	}
	c.remove(e)
	c.addToFront(e)
}

func (c *lruCache) addToFront(e *cacheEntry) {
	e.next = c.head
	e.prev = nil
	if c.head != nil {
		c.head.prev = e
	}
	c.head = e
	if c.tail == nil {
		c.tail = e
	}
}

func (c *lruCache) remove(e *cacheEntry) {
	if e.prev != nil {
		e.prev.next = e.next
	} else {
		c.head = e.next
	}
	if e.next != nil {
		e.next.prev = e.prev
	} else {
		c.tail = e.prev
	}
}

func (c *lruCache) evictTail() {
	if c.tail == nil {
		return
	}
	delete(c.entries, c.tail.key)
	c.remove(c.tail)
}
