package cache

import (
	"sort"

	"go.uber.org/zap"

	"github.com/recall-ai/recall/pkg/models"
	"github.com/recall-ai/recall/pkg/similarity"
)

// evictLocked enforces both size signals: the hard entry ceiling and
// the lower soft threshold. A pass already in flight makes this a
// no-op rather than queuing a second pass. Caller holds mu.
func (c *Cache) evictLocked() int {
	if !c.pruneMu.TryLock() {
		return 0
	}
	defer c.pruneMu.Unlock()

	removed := 0
	if c.store.size() > c.opts.MaxEntries {
		removed += c.hardPassLocked()
	}
	if c.store.size() >= c.opts.SoftThreshold {
		removed += c.softPassLocked()
	}
	if removed > 0 {
		c.stats.Evictions(removed)
		c.log.Debug("eviction pass finished",
			zap.Int("removed", removed),
			zap.Int("entries", c.store.size()))
	}
	return removed
}

// hardPassLocked first sweeps entries that are both stale and rarely
// accessed, then if the store is still over the ceiling removes the
// lowest-ranked entries by (access count, last access) until it is
// back to 90% of the ceiling. The headroom keeps the very next insert
// from re-triggering the pass.
func (c *Cache) hardPassLocked() int {
	now := c.now()
	var stale []*models.Entry
	c.store.each(func(e *models.Entry) bool {
		if now.Sub(e.CreatedAt) > c.opts.MaxEntryAge && e.AccessCount < c.opts.MinAccessCount {
			stale = append(stale, e)
		}
		return true
	})
	removed := 0
	for _, e := range stale {
		c.removeLocked(e)
		removed++
	}

	if c.store.size() <= c.opts.MaxEntries {
		return removed
	}
	target := c.opts.MaxEntries * 9 / 10
	ranked := c.store.entries()
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].AccessCount != ranked[j].AccessCount {
			return ranked[i].AccessCount < ranked[j].AccessCount
		}
		return ranked[i].LastAccessed.Before(ranked[j].LastAccessed)
	})
	for _, e := range ranked {
		if c.store.size() <= target {
			break
		}
		c.removeLocked(e)
		removed++
	}
	return removed
}

// softPassLocked trims the store to SoftTarget in pure recency order,
// oldest access first.
func (c *Cache) softPassLocked() int {
	ranked := c.store.entries()
	sort.SliceStable(ranked, func(i, j int) bool {
		if !ranked[i].LastAccessed.Equal(ranked[j].LastAccessed) {
			return ranked[i].LastAccessed.Before(ranked[j].LastAccessed)
		}
		return ranked[i].AccessCount < ranked[j].AccessCount
	})
	removed := 0
	for _, e := range ranked {
		if c.store.size() <= c.opts.SoftTarget {
			break
		}
		c.removeLocked(e)
		removed++
	}
	return removed
}

// removeLocked deletes one entry, keeps the inverted index in step,
// and marks the store dirty.
func (c *Cache) removeLocked(e *models.Entry) {
	if !c.store.delete(e.Key) {
		return
	}
	if c.index != nil {
		c.index.Remove(e.Key, similarity.Tokenize(e.Question))
	}
	c.markDirtyLocked()
}
