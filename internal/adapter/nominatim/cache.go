package nominatim

import (
	"container/list"
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/couchcryptid/rainwater-estimator-service/internal/domain"
	"github.com/couchcryptid/rainwater-estimator-service/internal/observability"
)

// CachedGeocoder wraps a Geocoder with an in-memory LRU cache.
type CachedGeocoder struct {
	inner   domain.Geocoder
	search  *lruCache[domain.Coordinates]
	reverse *lruCache[domain.Address]
	metrics *observability.Metrics
}

// NewCachedGeocoder creates a cache decorator around a geocoder. Each method
// gets its own cache of maxEntries.
func NewCachedGeocoder(inner domain.Geocoder, maxEntries int, metrics *observability.Metrics) *CachedGeocoder {
	return &CachedGeocoder{
		inner:   inner,
		search:  newLRUCache[domain.Coordinates](maxEntries),
		reverse: newLRUCache[domain.Address](maxEntries),
		metrics: metrics,
	}
}

func (c *CachedGeocoder) Search(ctx context.Context, text string) (domain.Coordinates, error) {
	key := strings.ToLower(strings.TrimSpace(text))
	if coords, ok := c.search.get(key); ok {
		c.metrics.GeocodeCache.WithLabelValues("search", "hit").Inc()
		return coords, nil
	}
	c.metrics.GeocodeCache.WithLabelValues("search", "miss").Inc()

	coords, err := c.inner.Search(ctx, text)
	if err != nil {
		// Errors, including not found, are never cached so they can be retried.
		return coords, err
	}
	c.search.put(key, coords)
	return coords, nil
}

func (c *CachedGeocoder) Reverse(ctx context.Context, lat, lon float64) (domain.Address, error) {
	key := fmt.Sprintf("%.6f,%.6f", lat, lon)
	if addr, ok := c.reverse.get(key); ok {
		c.metrics.GeocodeCache.WithLabelValues("reverse", "hit").Inc()
		return addr, nil
	}
	c.metrics.GeocodeCache.WithLabelValues("reverse", "miss").Inc()

	addr, err := c.inner.Reverse(ctx, lat, lon)
	if err != nil {
		return addr, err
	}
	if addr.Text() != "" {
		c.reverse.put(key, addr)
	}
	return addr, nil
}

// lruCache is a thread-safe LRU cache. The front of order is the most
// recently used entry.
type lruCache[V any] struct {
	maxEntries int
	mu         sync.Mutex
	entries    map[string]*list.Element
	order      *list.List
}

type entry[V any] struct {
	key   string
	value V
}

func newLRUCache[V any](maxEntries int) *lruCache[V] {
	return &lruCache[V]{
		maxEntries: maxEntries,
		entries:    make(map[string]*list.Element),
		order:      list.New(),
	}
}

func (c *lruCache[V]) get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.entries[key]
	if !ok {
		var zero V
		return zero, false
	}
	c.order.MoveToFront(el)
	return el.Value.(*entry[V]).value, true
}

func (c *lruCache[V]) put(key string, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.entries[key]; ok {
		el.Value.(*entry[V]).value = value
		c.order.MoveToFront(el)
		return
	}

	c.entries[key] = c.order.PushFront(&entry[V]{key: key, value: value})
	if c.order.Len() > c.maxEntries {
		oldest := c.order.Back()
		c.order.Remove(oldest)
		delete(c.entries, oldest.Value.(*entry[V]).key)
	}
}

func (c *lruCache[V]) size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}
