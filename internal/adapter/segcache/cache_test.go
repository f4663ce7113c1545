package segcache

import (
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/flight-wx-triggers/internal/domain"
	"github.com/couchcryptid/flight-wx-triggers/internal/observability"
)

const testTAF = "TAF KDEN 191720Z 1918/2024 24012KT P6SM SCT250 FM192100 27015G25KT P6SM BKN015"

var testNow = time.Date(2026, 3, 19, 17, 30, 0, 0, time.UTC)

// --- mock for cache tests ---

type countingSegmenter struct {
	mu    sync.Mutex
	calls int
}

func (c *countingSegmenter) Segments(raw string, now time.Time) domain.TafSegments {
	c.mu.Lock()
	c.calls++
	c.mu.Unlock()
	return domain.BuildTafSegments(raw, now)
}

func TestCachedSegmenter_Hit(t *testing.T) {
	inner := &countingSegmenter{}
	metrics := observability.NewMetricsForTesting()
	cached := New(inner, 10, time.Hour, metrics)

	first := cached.Segments(testTAF, testNow)
	second := cached.Segments(testTAF, testNow.Add(30*time.Minute))

	require.True(t, first.OK)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, inner.calls, "should only call inner once")
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.SegmentCache.WithLabelValues("hit")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.SegmentCache.WithLabelValues("miss")))
}

func TestCachedSegmenter_DifferentTextMiss(t *testing.T) {
	inner := &countingSegmenter{}
	cached := New(inner, 10, time.Hour, nil)

	cached.Segments(testTAF, testNow)
	cached.Segments(testTAF+" TEMPO 1922/2002 3SM BR", testNow)

	assert.Equal(t, 2, inner.calls)
	assert.Equal(t, 2, cached.Len())
}

func TestCachedSegmenter_MonthIsPartOfKey(t *testing.T) {
	inner := &countingSegmenter{}
	cached := New(inner, 10, time.Hour, nil)

	march := cached.Segments(testTAF, testNow)
	april := cached.Segments(testTAF, testNow.AddDate(0, 1, 0))

	assert.Equal(t, 2, inner.calls)
	assert.Equal(t, time.March, march.ValidFrom.Month())
	assert.Equal(t, time.April, april.ValidFrom.Month())
}

func TestCachedSegmenter_CachesUnparseable(t *testing.T) {
	inner := &countingSegmenter{}
	cached := New(inner, 10, time.Hour, nil)

	assert.False(t, cached.Segments("TAF KDEN NIL", testNow).OK)
	assert.False(t, cached.Segments("TAF KDEN NIL", testNow).OK)
	assert.Equal(t, 1, inner.calls)
}

func TestCachedSegmenter_EvictsLeastRecent(t *testing.T) {
	inner := &countingSegmenter{}
	cached := New(inner, 2, time.Hour, nil)

	a := testTAF
	b := testTAF + " BECMG 2003/2005 VRB05KT"
	c := testTAF + " BECMG 2006/2008 VRB08KT"

	cached.Segments(a, testNow)
	cached.Segments(b, testNow)
	cached.Segments(a, testNow) // a is now most recent
	cached.Segments(c, testNow) // evicts b
	assert.Equal(t, 3, inner.calls)

	cached.Segments(a, testNow)
	assert.Equal(t, 3, inner.calls, "a should still be cached")
	cached.Segments(b, testNow)
	assert.Equal(t, 4, inner.calls, "b should have been evicted")
}

func TestCachedSegmenter_EngineIntegration(t *testing.T) {
	inner := &countingSegmenter{}
	cached := New(inner, 10, time.Hour, nil)
	engine := domain.NewEngine(domain.WithSegmenter(cached))

	flight := domain.Flight{Dest: "KDEN", ETA: "2200"}
	wx := domain.Weather{TAF: testTAF}
	for range 5 {
		engine.DestinationRequiresAlternate(flight, wx)
	}
	assert.Equal(t, 1, inner.calls)
}

func TestCacheKey(t *testing.T) {
	k1 := cacheKey(testTAF, testNow)
	assert.Equal(t, k1, cacheKey(testTAF, testNow.Add(48*time.Hour)))
	assert.NotEqual(t, k1, cacheKey(testTAF+" ", testNow))
	assert.Contains(t, k1, "202603:")
}
