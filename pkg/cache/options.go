package cache

import (
	"time"

	"go.uber.org/zap"

	"github.com/recall-ai/recall/pkg/similarity"
	"github.com/recall-ai/recall/pkg/snapshot"
)

// Defaults applied by New for options left at their zero value.
const (
	DefaultMaxEntries        = 10000
	DefaultSoftThreshold     = 9000
	DefaultSoftTarget        = 8000
	DefaultMaxEntryAge       = 720 * time.Hour
	DefaultMinAccessCount    = 2
	DefaultHotPathSize       = 100
	DefaultMaxQuestionLength = 2000
	DefaultMaxScanEntries    = 5000
	DefaultBreakerThreshold  = 3
	DefaultBreakerCooldown   = 30 * time.Second
)

// Options configures a Cache. The zero value is usable: every field
// falls back to a default.
type Options struct {
	// Store persists snapshots. Defaults to an in-memory store.
	Store snapshot.Store

	// Logger receives operational logs. Defaults to a no-op logger.
	Logger *zap.Logger

	// Now supplies timestamps. Defaults to time.Now.
	Now func() time.Time

	// MaxEntries is the hard ceiling on stored entries.
	MaxEntries int

	// SoftThreshold is the size at which a proactive recency prune
	// runs, trimming down to SoftTarget.
	SoftThreshold int
	SoftTarget    int

	// MaxEntryAge and MinAccessCount select stale entries during a
	// hard-ceiling pass: entries older than MaxEntryAge with fewer
	// than MinAccessCount accesses are removed first.
	MaxEntryAge    time.Duration
	MinAccessCount int64

	// HotPathSize bounds the cache of recently resolved literal
	// queries.
	HotPathSize int

	// MaxQuestionLength caps accepted question length in bytes.
	MaxQuestionLength int

	// SimilarityThreshold is the minimum token-overlap score for an
	// approximate match.
	SimilarityThreshold float64

	// MaxScanEntries caps the store size at which full similarity
	// scans still run. Above it approximate lookup is skipped unless
	// UseIndex is set.
	MaxScanEntries int

	// UseIndex maintains an inverted token index so approximate
	// lookup stays available past MaxScanEntries.
	UseIndex bool

	// BreakerThreshold is the number of consecutive save failures
	// that opens the save breaker; BreakerCooldown is how long it
	// stays open before probing again.
	BreakerThreshold int
	BreakerCooldown  time.Duration
}

func (o Options) withDefaults() Options {
	if o.Store == nil {
		o.Store = snapshot.NewMemoryStore()
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	if o.MaxEntries <= 0 {
		o.MaxEntries = DefaultMaxEntries
	}
	if o.SoftThreshold <= 0 {
		o.SoftThreshold = DefaultSoftThreshold
	}
	if o.SoftTarget <= 0 {
		o.SoftTarget = DefaultSoftTarget
	}
	if o.MaxEntryAge <= 0 {
		o.MaxEntryAge = DefaultMaxEntryAge
	}
	if o.MinAccessCount <= 0 {
		o.MinAccessCount = DefaultMinAccessCount
	}
	if o.HotPathSize <= 0 {
		o.HotPathSize = DefaultHotPathSize
	}
	if o.MaxQuestionLength <= 0 {
		o.MaxQuestionLength = DefaultMaxQuestionLength
	}
	if o.SimilarityThreshold <= 0 {
		o.SimilarityThreshold = similarity.DefaultThreshold
	}
	if o.MaxScanEntries <= 0 {
		o.MaxScanEntries = DefaultMaxScanEntries
	}
	if o.BreakerThreshold <= 0 {
		o.BreakerThreshold = DefaultBreakerThreshold
	}
	if o.BreakerCooldown <= 0 {
		o.BreakerCooldown = DefaultBreakerCooldown
	}
	return o
}

// Tunables are the options safe to adjust on a running cache. Zero
// fields leave the current value in place.
type Tunables struct {
	SimilarityThreshold float64
	MaxScanEntries      int
	SoftThreshold       int
	SoftTarget          int
	MaxEntryAge         time.Duration
	MinAccessCount      int64
	MaxQuestionLength   int
}

// SetTunables applies the non-zero fields of t.
func (c *Cache) SetTunables(t Tunables) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if t.SimilarityThreshold > 0 {
		c.opts.SimilarityThreshold = t.SimilarityThreshold
	}
	if t.MaxScanEntries > 0 {
		c.opts.MaxScanEntries = t.MaxScanEntries
	}
	if t.SoftThreshold > 0 {
		c.opts.SoftThreshold = t.SoftThreshold
	}
	if t.SoftTarget > 0 {
		c.opts.SoftTarget = t.SoftTarget
	}
	if t.MaxEntryAge > 0 {
		c.opts.MaxEntryAge = t.MaxEntryAge
	}
	if t.MinAccessCount > 0 {
		c.opts.MinAccessCount = t.MinAccessCount
	}
	if t.MaxQuestionLength > 0 {
		c.opts.MaxQuestionLength = t.MaxQuestionLength
	}
}
