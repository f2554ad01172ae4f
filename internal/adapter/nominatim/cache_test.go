package nominatim

import (
	"context"
	"fmt"
	"testing"

	"github.com/couchcryptid/rainwater-estimator-service/internal/domain"
	"github.com/couchcryptid/rainwater-estimator-service/internal/observability"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- mock for cache tests ---

type countingGeocoder struct {
	searchCalls  int
	reverseCalls int
	coords       domain.Coordinates
	addr         domain.Address
	err          error
}

func (m *countingGeocoder) Search(_ context.Context, _ string) (domain.Coordinates, error) {
	m.searchCalls++
	return m.coords, m.err
}

func (m *countingGeocoder) Reverse(_ context.Context, _, _ float64) (domain.Address, error) {
	m.reverseCalls++
	return m.addr, m.err
}

// --- CachedGeocoder tests ---

func TestCachedGeocoder_SearchCacheHit(t *testing.T) {
	inner := &countingGeocoder{coords: domain.Coordinates{Lat: 12.97, Lon: 77.64}}
	metrics := observability.NewMetricsForTesting()
	cached := NewCachedGeocoder(inner, 10, metrics)

	c1, err := cached.Search(context.Background(), "Bengaluru")
	require.NoError(t, err)
	c2, err := cached.Search(context.Background(), "  bengaluru ")
	require.NoError(t, err)

	assert.Equal(t, c1, c2)
	assert.Equal(t, 1, inner.searchCalls, "should only call inner once")
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.GeocodeCache.WithLabelValues("search", "hit")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.GeocodeCache.WithLabelValues("search", "miss")))
}

func TestCachedGeocoder_ReverseCacheHit(t *testing.T) {
	inner := &countingGeocoder{addr: domain.Address{District: "Bengaluru Urban", Country: "India"}}
	cached := NewCachedGeocoder(inner, 10, observability.NewMetricsForTesting())

	_, err := cached.Reverse(context.Background(), 12.9719, 77.6412)
	require.NoError(t, err)
	_, err = cached.Reverse(context.Background(), 12.9719, 77.6412)
	require.NoError(t, err)

	assert.Equal(t, 1, inner.reverseCalls, "should only call inner once")
}

func TestCachedGeocoder_EmptyAddressNotCached(t *testing.T) {
	inner := &countingGeocoder{}
	cached := NewCachedGeocoder(inner, 10, observability.NewMetricsForTesting())

	_, _ = cached.Reverse(context.Background(), 1, 2)
	_, _ = cached.Reverse(context.Background(), 1, 2)

	assert.Equal(t, 2, inner.reverseCalls)
}

func TestCachedGeocoder_ErrorsNotCached(t *testing.T) {
	inner := &countingGeocoder{err: fmt.Errorf("search: %w", domain.ErrNotFound)}
	cached := NewCachedGeocoder(inner, 10, observability.NewMetricsForTesting())

	_, err := cached.Search(context.Background(), "Atlantis")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, _ = cached.Search(context.Background(), "Atlantis")

	assert.Equal(t, 2, inner.searchCalls)
}

func TestCachedGeocoder_DifferentKeysMiss(t *testing.T) {
	inner := &countingGeocoder{coords: domain.Coordinates{Lat: 1, Lon: 1}}
	cached := NewCachedGeocoder(inner, 10, observability.NewMetricsForTesting())

	_, _ = cached.Search(context.Background(), "Bengaluru")
	_, _ = cached.Search(context.Background(), "Chennai")

	assert.Equal(t, 2, inner.searchCalls)
}

// --- LRU cache unit tests ---

func TestLRUCache_BasicGetPut(t *testing.T) {
	c := newLRUCache[string](3)

	c.put("a", "A")
	c.put("b", "B")

	v, ok := c.get("a")
	assert.True(t, ok)
	assert.Equal(t, "A", v)

	_, ok = c.get("missing")
	assert.False(t, ok)
}

func TestLRUCache_Eviction(t *testing.T) {
	c := newLRUCache[string](2)

	c.put("a", "A")
	c.put("b", "B")
	c.put("c", "C") // evicts "a"

	_, ok := c.get("a")
	assert.False(t, ok, "a should have been evicted")

	v, ok := c.get("b")
	assert.True(t, ok)
	assert.Equal(t, "B", v)

	v, ok = c.get("c")
	assert.True(t, ok)
	assert.Equal(t, "C", v)
	assert.Equal(t, 2, c.size())
}

func TestLRUCache_AccessPromotesEntry(t *testing.T) {
	c := newLRUCache[string](2)

	c.put("a", "A")
	c.put("b", "B")
	c.get("a")
	c.put("c", "C")

	_, ok := c.get("a")
	assert.True(t, ok, "a was accessed recently, should not be evicted")

	_, ok = c.get("b")
	assert.False(t, ok, "b should have been evicted")
}

func TestLRUCache_UpdateExisting(t *testing.T) {
	c := newLRUCache[string](2)

	c.put("a", "A1")
	c.put("a", "A2")

	v, ok := c.get("a")
	assert.True(t, ok)
	assert.Equal(t, "A2", v)
	assert.Equal(t, 1, c.size())
}
