package rasterhttp

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/couchcryptid/rainfall-anomaly-service/internal/domain"
	"github.com/couchcryptid/rainfall-anomaly-service/internal/observability"
	"github.com/couchcryptid/rainfall-anomaly-service/internal/pipeline"
)

// CachedSource wraps a RasterSource with an in-memory LRU cache keyed by
// window and region bound. Cached series are shared; they are immutable.
type CachedSource struct {
	inner   pipeline.RasterSource
	cache   *lruCache
	metrics *observability.Metrics
}

// NewCachedSource creates a cache decorator around a raster source.
func NewCachedSource(inner pipeline.RasterSource, maxEntries int, metrics *observability.Metrics) *CachedSource {
	return &CachedSource{
		inner:   inner,
		cache:   newLRUCache(maxEntries),
		metrics: metrics,
	}
}

func (c *CachedSource) Filter(ctx context.Context, window domain.TimeRange, region *domain.Region) (domain.TimeSeries, error) {
	key := cacheKey(window, region)
	if series, ok := c.cache.get(key); ok {
		c.metrics.SourceCache.WithLabelValues("hit").Inc()
		return series, nil
	}
	c.metrics.SourceCache.WithLabelValues("miss").Inc()

	series, err := c.inner.Filter(ctx, window, region)
	if err != nil {
		return series, err
	}
	// Empty windows are not cached so late-arriving images are picked up.
	if series.Len() > 0 {
		c.cache.put(key, series)
	}
	return series, nil
}

func cacheKey(window domain.TimeRange, region *domain.Region) string {
	key := window.Start.UTC().Format(time.DateOnly) + "|" + window.End.UTC().Format(time.DateOnly)
	if region != nil {
		b := region.Bound()
		key += fmt.Sprintf("|%g,%g,%g,%g", b.Min.X(), b.Min.Y(), b.Max.X(), b.Max.Y())
	}
	return key
}

// lruCache is a simple thread-safe LRU cache of time series.
type lruCache struct {
	maxEntries int
	mu         sync.Mutex
	entries    map[string]*entry
	head       *entry // most recently used
	tail       *entry // least recently used
}

type entry struct {
	key   string
	value domain.TimeSeries
	prev  *entry
	next  *entry
}

func newLRUCache(maxEntries int) *lruCache {
	if maxEntries <= 0 {
		maxEntries = 1
	}
	return &lruCache{
		maxEntries: maxEntries,
		entries:    make(map[string]*entry),
	}
}

func (c *lruCache) get(key string) (domain.TimeSeries, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return domain.TimeSeries{}, false
	}
	c.moveToFront(e)
	return e.value, true
}

func (c *lruCache) put(key string, value domain.TimeSeries) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[key]; ok {
		e.value = value
		c.moveToFront(e)
		return
	}

	e := &entry{key: key, value: value}
	c.entries[key] = e
	c.addToFront(e)

	if len(c.entries) > c.maxEntries {
		c.evictTail()
	}
}

func (c *lruCache) size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *lruCache) moveToFront(e *entry) {
	if e == c.head {
		return
	}
	c.remove(e)
	c.addToFront(e)
}

func (c *lruCache) addToFront(e *entry) {
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

func (c *lruCache) remove(e *entry) {
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
