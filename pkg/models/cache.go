package models

import "time"

// Entry is one cached answer, keyed by the hash of the normalized question.
type Entry struct {
	Key          string    `json:"key"`
	Question     string    `json:"question"`
	Answer       string    `json:"answer"`
	Context      string    `json:"context,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	AccessCount  int64     `json:"access_count"`
	LastAccessed time.Time `json:"last_accessed"`
}

// CacheStats is a full operational snapshot of the cache.
type CacheStats struct {
	Entries           int           `json:"entries"`
	HotEntries        int           `json:"hot_entries"`
	Hits              int64         `json:"hits"`
	Misses            int64         `json:"misses"`
	ExactMatches      int64         `json:"exact_matches"`
	SimilarityMatches int64         `json:"similarity_matches"`
	MemoryHits        int64         `json:"memory_hits"`
	Errors            int64         `json:"errors"`
	Evictions         int64         `json:"evictions"`
	HitRate           float64       `json:"hit_rate"`
	ExactMatchRate    float64       `json:"exact_match_rate"`
	Uptime            time.Duration `json:"uptime"`
	LastReset         time.Time     `json:"last_reset"`
	Dirty             bool          `json:"dirty"`
	Degraded          bool          `json:"degraded"`
	DegradedReason    string        `json:"degraded_reason,omitempty"`
	StoreDriver       string        `json:"store_driver"`
	SaverState        string        `json:"saver_state"`
}

// HitRateStats is the derived-rates view of cache performance.
type HitRateStats struct {
	Hits                int64         `json:"hits"`
	Misses              int64         `json:"misses"`
	HitRate             float64       `json:"hit_rate"`
	ExactMatchRate      float64       `json:"exact_match_rate"`
	SimilarityMatchRate float64       `json:"similarity_match_rate"`
	MemoryHitRate       float64       `json:"memory_hit_rate"`
	Uptime              time.Duration `json:"uptime"`
}
