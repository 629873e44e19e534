// Package metrics tracks cache hit and miss counters and derived rates.
package metrics

import (
	"sync"
	"sync/atomic"
	"time"
)

// Collector accumulates cache counters. All methods are safe for
// concurrent use. Reset realigns the counters and the lastReset stamp;
// increments racing a reset land on whichever side the scheduler picks,
// which is acceptable for monotonic operational counters.
type Collector struct {
	hits              atomic.Int64
	misses            atomic.Int64
	exactMatches      atomic.Int64
	similarityMatches atomic.Int64
	memoryHits        atomic.Int64
	errors            atomic.Int64
	evictions         atomic.Int64

	mu        sync.Mutex
	lastReset time.Time
	now       func() time.Time
}

// New returns a Collector stamped with the current time. A nil now falls
// back to time.Now.
func New(now func() time.Time) *Collector {
	if now == nil {
		now = time.Now
	}
	return &Collector{now: now, lastReset: now()}
}

// ExactHit records a hit resolved by normalized-key equality.
func (c *Collector) ExactHit() {
	c.hits.Add(1)
	c.exactMatches.Add(1)
}

// SimilarityHit records a hit resolved by token-overlap scoring.
func (c *Collector) SimilarityHit() {
	c.hits.Add(1)
	c.similarityMatches.Add(1)
}

// MemoryHit records a hit served from the hot-path cache.
func (c *Collector) MemoryHit() {
	c.hits.Add(1)
	c.memoryHits.Add(1)
}

// Miss records a lookup that found nothing.
func (c *Collector) Miss() {
	c.misses.Add(1)
}

// Error records an internal failure or a rejected caller value.
func (c *Collector) Error() {
	c.errors.Add(1)
}

// Evictions records n entries removed by an eviction pass.
func (c *Collector) Evictions(n int) {
	if n > 0 {
		c.evictions.Add(int64(n))
	}
}

// Counters is a point-in-time copy of the raw counters.
type Counters struct {
	Hits              int64
	Misses            int64
	ExactMatches      int64
	SimilarityMatches int64
	MemoryHits        int64
	Errors            int64
	Evictions         int64
	LastReset         time.Time
}

// Snapshot copies the current counter values.
func (c *Collector) Snapshot() Counters {
	c.mu.Lock()
	lastReset := c.lastReset
	c.mu.Unlock()
	return Counters{
		Hits:              c.hits.Load(),
		Misses:            c.misses.Load(),
		ExactMatches:      c.exactMatches.Load(),
		SimilarityMatches: c.similarityMatches.Load(),
		MemoryHits:        c.memoryHits.Load(),
		Errors:            c.errors.Load(),
		Evictions:         c.evictions.Load(),
		LastReset:         lastReset,
	}
}

// Reset zeroes all counters and stamps a new lastReset.
func (c *Collector) Reset() {
	c.mu.Lock()
	c.lastReset = c.now()
	c.mu.Unlock()
	c.hits.Store(0)
	c.misses.Store(0)
	c.exactMatches.Store(0)
	c.similarityMatches.Store(0)
	c.memoryHits.Store(0)
	c.errors.Store(0)
	c.evictions.Store(0)
}

// Uptime is the time elapsed since the last reset.
func (c *Collector) Uptime() time.Duration {
	c.mu.Lock()
	lastReset := c.lastReset
	c.mu.Unlock()
	return c.now().Sub(lastReset)
}

// HitRate is hits/(hits+misses), or 0 with no lookups.
func (s Counters) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}

// ExactMatchRate is exactMatches/hits, or 0 with no hits.
func (s Counters) ExactMatchRate() float64 {
	if s.Hits == 0 {
		return 0
	}
	return float64(s.ExactMatches) / float64(s.Hits)
}

// SimilarityMatchRate is similarityMatches/hits, or 0 with no hits.
func (s Counters) SimilarityMatchRate() float64 {
	if s.Hits == 0 {
		return 0
	}
	return float64(s.SimilarityMatches) / float64(s.Hits)
}

// MemoryHitRate is memoryHits/hits, or 0 with no hits.
func (s Counters) MemoryHitRate() float64 {
	if s.Hits == 0 {
		return 0
	}
	return float64(s.MemoryHits) / float64(s.Hits)
}
