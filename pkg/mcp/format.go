package mcp

import (
	"fmt"
	"strings"
	"time"

	"github.com/recall-ai/recall/pkg/cache"
	"github.com/recall-ai/recall/pkg/models"
)

// formatEntry formats a cache hit as text.
func formatEntry(e models.Entry, match cache.Match) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Answer (%s match):\n%s\n\n", match, e.Answer)
	fmt.Fprintf(&b, "  Question: %s\n", e.Question)
	if e.Context != "" {
		fmt.Fprintf(&b, "  Context:  %s\n", e.Context)
	}
	fmt.Fprintf(&b, "  Stored:   %s\n", e.CreatedAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&b, "  Accesses: %d\n", e.AccessCount)
	return b.String()
}

// formatStats formats cache statistics as text.
func formatStats(stats models.CacheStats) string {
	var b strings.Builder
	b.WriteString("Cache Statistics\n")
	fmt.Fprintf(&b, "  Entries:     %d (%d hot)\n", stats.Entries, stats.HotEntries)
	fmt.Fprintf(&b, "  Hits:        %d (exact %d, similarity %d, memory %d)\n",
		stats.Hits, stats.ExactMatches, stats.SimilarityMatches, stats.MemoryHits)
	fmt.Fprintf(&b, "  Misses:      %d\n", stats.Misses)
	fmt.Fprintf(&b, "  Hit rate:    %.1f%%\n", stats.HitRate*100)
	fmt.Fprintf(&b, "  Evictions:   %d\n", stats.Evictions)
	fmt.Fprintf(&b, "  Errors:      %d\n", stats.Errors)
	fmt.Fprintf(&b, "  Store:       %s (saver %s, dirty %t)\n",
		stats.StoreDriver, stats.SaverState, stats.Dirty)
	if stats.Degraded {
		fmt.Fprintf(&b, "  Degraded:    %s\n", stats.DegradedReason)
	}
	fmt.Fprintf(&b, "  Uptime:      %s\n", stats.Uptime.Round(time.Second))
	return b.String()
}

// formatMaintain formats a maintenance pass result as text.
func formatMaintain(res cache.MaintainResult) string {
	saved := "snapshot unchanged"
	if res.Saved {
		saved = "snapshot saved"
	}
	return fmt.Sprintf("Maintenance pass complete: %d entries evicted, %s.", res.Evicted, saved)
}
