// Package segcache memoizes TAF segmentation keyed by a hash of the raw text.
//
// The same TAF is evaluated once per flight that touches the airport, so a
// busy destination's bulletin is segmented many times per fetch cycle. The
// cache lets those evaluations share one result until the bulletin changes
// or the entry expires.
package segcache

import (
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/couchcryptid/flight-wx-triggers/internal/domain"
	"github.com/couchcryptid/flight-wx-triggers/internal/observability"
)

// CachedSegmenter wraps a Segmenter with a size-bounded, expiring LRU cache.
type CachedSegmenter struct {
	inner   domain.Segmenter
	cache   *expirable.LRU[string, domain.TafSegments]
	metrics *observability.Metrics
}

// New creates a cache decorator around a segmenter. Pass nil metrics to skip
// hit/miss accounting.
func New(inner domain.Segmenter, size int, ttl time.Duration, metrics *observability.Metrics) *CachedSegmenter {
	return &CachedSegmenter{
		inner:   inner,
		cache:   expirable.NewLRU[string, domain.TafSegments](size, nil, ttl),
		metrics: metrics,
	}
}

// Segments returns the cached segmentation of raw, building it on a miss.
// Unparseable TAFs are cached too; the answer for the same text and month
// never changes.
func (c *CachedSegmenter) Segments(raw string, now time.Time) domain.TafSegments {
	key := cacheKey(raw, now)
	if segs, ok := c.cache.Get(key); ok {
		c.record("hit")
		return segs
	}
	c.record("miss")

	segs := c.inner.Segments(raw, now)
	c.cache.Add(key, segs)
	return segs
}

// Len returns the number of live entries.
func (c *CachedSegmenter) Len() int { return c.cache.Len() }

func (c *CachedSegmenter) record(result string) {
	if c.metrics == nil {
		return
	}
	c.metrics.SegmentCache.WithLabelValues(result).Inc()
}

// cacheKey combines the text hash with the reference month, since TAF
// timestamps carry no month of their own.
func cacheKey(raw string, now time.Time) string {
	sum := sha256.Sum256([]byte(raw))
	return now.UTC().Format("200601") + ":" + hex.EncodeToString(sum[:])
}
