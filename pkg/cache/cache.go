// Package cache implements a single-process response cache with exact
// and approximate lookup, bounded size, and best-effort snapshot
// persistence.
package cache

import (
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/recall-ai/recall/pkg/metrics"
	"github.com/recall-ai/recall/pkg/models"
	"github.com/recall-ai/recall/pkg/similarity"
	"github.com/recall-ai/recall/pkg/snapshot"
	"github.com/recall-ai/recall/pkg/textkey"
)

// Match classifies how a lookup was resolved.
type Match int

const (
	LookupMiss Match = iota
	LookupExact
	LookupSimilarity
	LookupMemory
)

func (m Match) String() string {
	switch m {
	case LookupExact:
		return "exact"
	case LookupSimilarity:
		return "similarity"
	case LookupMemory:
		return "memory"
	default:
		return "miss"
	}
}

// Cache answers free-text questions from previously stored responses.
// One instance is built at process start and shared by every caller;
// all methods are safe for concurrent use.
type Cache struct {
	opts Options

	mu             sync.Mutex
	store          *entryStore
	hot            *hotPath
	index          *similarity.Index // built lazily, nil until first use
	dirty          bool
	gen            uint64
	degraded       bool
	degradedReason string

	saveMu  sync.Mutex
	pruneMu sync.Mutex

	breaker *gobreaker.CircuitBreaker
	stats   *metrics.Collector
	log     *zap.Logger
	now     func() time.Time
}

// New builds a Cache and loads any existing snapshot. Load failures
// never block startup: the cache starts empty and reports itself
// degraded instead.
func New(opts Options) *Cache {
	opts = opts.withDefaults()
	c := &Cache{
		opts:  opts,
		store: newEntryStore(),
		hot:   newHotPath(opts.HotPathSize),
		stats: metrics.New(opts.Now),
		log:   opts.Logger,
		now:   opts.Now,
	}
	c.breaker = newSaveBreaker(opts, c.log)

	entries, err := opts.Store.Load()
	switch {
	case errors.Is(err, snapshot.ErrVersionMismatch):
		// Old formats are discarded wholesale, never migrated.
		c.log.Warn("snapshot format changed, starting fresh",
			zap.String("store", opts.Store.Name()))
		c.dirty = true
		c.gen++
	case err != nil:
		c.degraded = true
		c.degradedReason = err.Error()
		c.stats.Error()
		c.log.Warn("snapshot load failed, starting empty",
			zap.String("store", opts.Store.Name()),
			zap.Error(err))
	default:
		c.loadEntries(entries)
		c.log.Info("snapshot loaded",
			zap.String("store", opts.Store.Name()),
			zap.Int("entries", c.store.size()))
	}
	return c
}

// loadEntries rebuilds the store in (created at, key) order so that
// iteration order is stable across restarts.
func (c *Cache) loadEntries(entries map[string]models.Entry) {
	loaded := make([]*models.Entry, 0, len(entries))
	for k, e := range entries {
		e := e
		e.Key = k
		if e.AccessCount < 1 {
			e.AccessCount = 1
		}
		loaded = append(loaded, &e)
	}
	sort.Slice(loaded, func(i, j int) bool {
		if !loaded[i].CreatedAt.Equal(loaded[j].CreatedAt) {
			return loaded[i].CreatedAt.Before(loaded[j].CreatedAt)
		}
		return loaded[i].Key < loaded[j].Key
	})
	for _, e := range loaded {
		c.store.put(e)
	}
}

func newSaveBreaker(o Options, log *zap.Logger) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "snapshot-save",
		MaxRequests: 1,
		Timeout:     o.BreakerCooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= uint32(o.BreakerThreshold)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("save breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	})
}

// Lookup resolves a query to a cached entry, checking the hot path,
// then the exact normalized key, then similarity search. scope
// restricts approximate matches to entries stored with the same
// context tag. The returned entry is a copy.
func (c *Cache) Lookup(query, scope string) (models.Entry, Match) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(query) > c.opts.MaxQuestionLength {
		c.stats.Error()
		c.stats.Miss()
		c.log.Debug("lookup rejected", zap.Int("query_length", len(query)))
		return models.Entry{}, LookupMiss
	}

	hk := hotKey{query: query, scope: scope}
	if storeKey, ok := c.hot.get(hk); ok {
		if e, ok := c.store.get(storeKey); ok {
			c.touchLocked(e)
			c.stats.MemoryHit()
			return *e, LookupMemory
		}
		// The entry was evicted after the hot path recorded it.
		c.hot.drop(hk)
	}

	key := textkey.Key(query)
	if e, ok := c.store.get(key); ok {
		c.touchLocked(e)
		c.hot.put(hk, key)
		c.stats.ExactHit()
		return *e, LookupExact
	}

	if e := c.similarLocked(query, scope); e != nil {
		c.touchLocked(e)
		c.hot.put(hk, e.Key)
		c.stats.SimilarityHit()
		return *e, LookupSimilarity
	}

	c.stats.Miss()
	return models.Entry{}, LookupMiss
}

// similarLocked scans for the best token-overlap match at or above the
// configured threshold. The scan walks insertion order, so the first
// entry reaching the best score wins ties.
func (c *Cache) similarLocked(query, scope string) *models.Entry {
	size := c.store.size()
	if size == 0 {
		return nil
	}
	if !c.opts.UseIndex && size > c.opts.MaxScanEntries {
		// Full scans are capped; past the cap approximate lookup is
		// traded away for bounded latency.
		return nil
	}

	scorer := similarity.NewScorer(query)
	if scorer.Empty() {
		return nil
	}

	var candidates map[string]int
	if c.opts.UseIndex {
		candidates = c.indexLocked().Candidates(similarity.Tokenize(query))
		if len(candidates) == 0 {
			return nil
		}
	}

	minLen := len(query) / 2
	maxLen := len(query) + len(query)/2
	threshold := c.opts.SimilarityThreshold

	var best *models.Entry
	var bestScore float64
	c.store.each(func(e *models.Entry) bool {
		if candidates != nil {
			if _, ok := candidates[e.Key]; !ok {
				return true
			}
		}
		if e.Context != scope {
			return true
		}
		if len(e.Question) < minLen || len(e.Question) > maxLen {
			return true
		}
		if score := scorer.Score(e.Question); score >= threshold && score > bestScore {
			best, bestScore = e, score
		}
		return true
	})
	if best != nil {
		c.log.Debug("similarity match",
			zap.String("key", best.Key),
			zap.Float64("score", bestScore))
	}
	return best
}

// indexLocked returns the inverted token index, building it from the
// store on first use.
func (c *Cache) indexLocked() *similarity.Index {
	if c.index == nil {
		idx := similarity.NewIndex()
		c.store.each(func(e *models.Entry) bool {
			idx.Add(e.Key, similarity.Tokenize(e.Question))
			return true
		})
		c.index = idx
	}
	return c.index
}

// Insert stores an answered question. Inserting a question that
// normalizes to an existing key refreshes the stored answer in place
// instead of creating a second entry. A successful insert schedules an
// asynchronous save and may trigger an eviction pass.
func (c *Cache) Insert(question, answer, scope string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.validateLocked(question, answer); err != nil {
		c.stats.Error()
		c.log.Debug("insert rejected", zap.Error(err))
		return err
	}

	now := c.now()
	key := textkey.Key(question)
	if e, ok := c.store.get(key); ok {
		if c.index != nil && e.Question != question {
			c.index.Remove(key, similarity.Tokenize(e.Question))
			c.index.Add(key, similarity.Tokenize(question))
		}
		e.Question = question
		e.Answer = answer
		e.Context = scope
		e.CreatedAt = now
	} else {
		e := &models.Entry{
			Key:          key,
			Question:     question,
			Answer:       answer,
			Context:      scope,
			CreatedAt:    now,
			AccessCount:  1,
			LastAccessed: now,
		}
		c.store.put(e)
		if c.index != nil {
			c.index.Add(key, similarity.Tokenize(question))
		}
	}
	c.markDirtyLocked()

	if c.store.size() > c.opts.MaxEntries || c.store.size() >= c.opts.SoftThreshold {
		c.evictLocked()
	}

	go c.saveAsync()
	return nil
}

func (c *Cache) validateLocked(question, answer string) error {
	if strings.TrimSpace(question) == "" {
		return ErrEmptyQuestion
	}
	if len(question) > c.opts.MaxQuestionLength {
		return ErrQuestionTooLong
	}
	if strings.TrimSpace(answer) == "" {
		return ErrEmptyAnswer
	}
	return nil
}

// touchLocked records a hit on an entry.
func (c *Cache) touchLocked(e *models.Entry) {
	e.AccessCount++
	e.LastAccessed = c.now()
	c.markDirtyLocked()
}

// markDirtyLocked flags in-memory state as diverged from the snapshot.
// The generation counter keeps a concurrent save from clearing the
// flag over mutations it did not capture.
func (c *Cache) markDirtyLocked() {
	c.dirty = true
	c.gen++
}

// MaintainResult reports the work done by one maintenance pass.
type MaintainResult struct {
	Evicted int  `json:"evicted"`
	Saved   bool `json:"saved"`
}

// Maintain runs one eviction pass and persists the snapshot if dirty.
// Hosts call it periodically; it is also safe to call by hand.
func (c *Cache) Maintain() MaintainResult {
	c.mu.Lock()
	evicted := c.evictLocked()
	c.mu.Unlock()

	saved, _ := c.saveIfDirty()
	return MaintainResult{Evicted: evicted, Saved: saved}
}

// Clear removes every entry and schedules a save of the now-empty
// snapshot. It returns the number of entries removed.
func (c *Cache) Clear() int {
	c.mu.Lock()
	n := c.store.size()
	c.store.clear()
	c.hot.clear()
	c.index = nil
	c.markDirtyLocked()
	c.mu.Unlock()

	go c.saveAsync()
	return n
}

// saveAsync is the asynchronous save path. A save already in flight
// makes this a no-op; the next dirty-triggered save catches up.
func (c *Cache) saveAsync() {
	if !c.saveMu.TryLock() {
		return
	}
	defer c.saveMu.Unlock()
	c.save(false)
}

// saveIfDirty persists the snapshot when in-memory state has diverged
// from it, waiting for any in-flight save first.
func (c *Cache) saveIfDirty() (bool, error) {
	c.saveMu.Lock()
	defer c.saveMu.Unlock()
	return c.save(false)
}

// SaveNow synchronously writes the current snapshot whether or not it
// is dirty, waiting for any in-flight save first.
func (c *Cache) SaveNow() error {
	c.saveMu.Lock()
	defer c.saveMu.Unlock()
	_, err := c.save(true)
	return err
}

// save writes a snapshot through the breaker. Caller holds saveMu.
// The file write happens outside mu so lookups and inserts keep
// running during I/O; the dirty flag is cleared only if no mutation
// arrived while the write was in flight.
func (c *Cache) save(force bool) (bool, error) {
	c.mu.Lock()
	if !force && !c.dirty {
		c.mu.Unlock()
		return false, nil
	}
	snap := c.store.snapshot()
	gen := c.gen
	c.mu.Unlock()

	_, err := c.breaker.Execute(func() (any, error) {
		return nil, c.opts.Store.Save(snap)
	})
	if err != nil {
		c.stats.Error()
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			c.log.Debug("snapshot save skipped, breaker open")
		} else {
			c.log.Warn("snapshot save failed",
				zap.String("store", c.opts.Store.Name()),
				zap.Error(err))
		}
		return false, err
	}

	c.mu.Lock()
	if c.gen == gen {
		c.dirty = false
	}
	c.mu.Unlock()
	return true, nil
}

// Shutdown writes a final snapshot if one is outstanding, then closes
// the store. The cache must not be used afterwards.
func (c *Cache) Shutdown() error {
	c.saveMu.Lock()
	_, err := c.save(false)
	c.saveMu.Unlock()

	if cerr := c.opts.Store.Close(); cerr != nil && err == nil {
		err = cerr
	}
	return err
}

// Stats returns a full operational snapshot.
func (c *Cache) Stats() models.CacheStats {
	c.mu.Lock()
	entries := c.store.size()
	hot := c.hot.len()
	dirty := c.dirty
	degraded := c.degraded
	reason := c.degradedReason
	c.mu.Unlock()

	s := c.stats.Snapshot()
	return models.CacheStats{
		Entries:           entries,
		HotEntries:        hot,
		Hits:              s.Hits,
		Misses:            s.Misses,
		ExactMatches:      s.ExactMatches,
		SimilarityMatches: s.SimilarityMatches,
		MemoryHits:        s.MemoryHits,
		Errors:            s.Errors,
		Evictions:         s.Evictions,
		HitRate:           s.HitRate(),
		ExactMatchRate:    s.ExactMatchRate(),
		Uptime:            c.stats.Uptime(),
		LastReset:         s.LastReset,
		Dirty:             dirty,
		Degraded:          degraded,
		DegradedReason:    reason,
		StoreDriver:       c.opts.Store.Name(),
		SaverState:        c.breaker.State().String(),
	}
}

// HitRateStats returns the derived-rates view of cache performance.
func (c *Cache) HitRateStats() models.HitRateStats {
	s := c.stats.Snapshot()
	return models.HitRateStats{
		Hits:                s.Hits,
		Misses:              s.Misses,
		HitRate:             s.HitRate(),
		ExactMatchRate:      s.ExactMatchRate(),
		SimilarityMatchRate: s.SimilarityMatchRate(),
		MemoryHitRate:       s.MemoryHitRate(),
		Uptime:              c.stats.Uptime(),
	}
}

// ResetStats zeroes the counters and stamps a new baseline. Stored
// entries are untouched.
func (c *Cache) ResetStats() {
	c.stats.Reset()
}

// Metrics exposes the underlying counters, for the Prometheus bridge.
func (c *Cache) Metrics() *metrics.Collector {
	return c.stats
}

// EntryCount reports live entries, recounted from the store.
func (c *Cache) EntryCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.store.size()
}

// HotEntryCount reports occupied hot-path slots.
func (c *Cache) HotEntryCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hot.len()
}

// Dirty reports whether in-memory state has diverged from the last
// persisted snapshot.
func (c *Cache) Dirty() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dirty
}

// Degraded reports whether the snapshot failed to load at startup,
// along with the load error text.
func (c *Cache) Degraded() (bool, string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.degraded, c.degradedReason
}
