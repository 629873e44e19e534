package metrics

import "github.com/prometheus/client_golang/prometheus"

// GaugeSource reports live cache state for gauge metrics.
type GaugeSource interface {
	EntryCount() int
	HotEntryCount() int
	Dirty() bool
}

// PromCollector exposes a Collector and live cache gauges to a Prometheus
// registry without double-counting: values are read on scrape.
type PromCollector struct {
	counters *Collector
	source   GaugeSource

	hits              *prometheus.Desc
	misses            *prometheus.Desc
	exactMatches      *prometheus.Desc
	similarityMatches *prometheus.Desc
	memoryHits        *prometheus.Desc
	errors            *prometheus.Desc
	evictions         *prometheus.Desc
	entries           *prometheus.Desc
	hotEntries        *prometheus.Desc
	dirty             *prometheus.Desc
}

const (
	namespace = "recall"
	subsystem = "cache"
)

func desc(name, help string) *prometheus.Desc {
	return prometheus.NewDesc(prometheus.BuildFQName(namespace, subsystem, name), help, nil, nil)
}

// NewPromCollector wires counters and src into a prometheus.Collector.
func NewPromCollector(counters *Collector, src GaugeSource) *PromCollector {
	return &PromCollector{
		counters:          counters,
		source:            src,
		hits:              desc("hits_total", "Lookups served from the cache."),
		misses:            desc("misses_total", "Lookups that found no cached answer."),
		exactMatches:      desc("exact_matches_total", "Hits resolved by normalized-key equality."),
		similarityMatches: desc("similarity_matches_total", "Hits resolved by token-overlap scoring."),
		memoryHits:        desc("memory_hits_total", "Hits served from the hot-path cache."),
		errors:            desc("errors_total", "Internal failures and rejected caller values."),
		evictions:         desc("evictions_total", "Entries removed by eviction passes."),
		entries:           desc("entries", "Live entries in the store."),
		hotEntries:        desc("hot_entries", "Entries in the hot-path cache."),
		dirty:             desc("dirty", "1 when in-memory state has diverged from the snapshot."),
	}
}

// Describe implements prometheus.Collector.
func (p *PromCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- p.hits
	ch <- p.misses
	ch <- p.exactMatches
	ch <- p.similarityMatches
	ch <- p.memoryHits
	ch <- p.errors
	ch <- p.evictions
	ch <- p.entries
	ch <- p.hotEntries
	ch <- p.dirty
}

// Collect implements prometheus.Collector.
func (p *PromCollector) Collect(ch chan<- prometheus.Metric) {
	s := p.counters.Snapshot()
	ch <- prometheus.MustNewConstMetric(p.hits, prometheus.CounterValue, float64(s.Hits))
	ch <- prometheus.MustNewConstMetric(p.misses, prometheus.CounterValue, float64(s.Misses))
	ch <- prometheus.MustNewConstMetric(p.exactMatches, prometheus.CounterValue, float64(s.ExactMatches))
	ch <- prometheus.MustNewConstMetric(p.similarityMatches, prometheus.CounterValue, float64(s.SimilarityMatches))
	ch <- prometheus.MustNewConstMetric(p.memoryHits, prometheus.CounterValue, float64(s.MemoryHits))
	ch <- prometheus.MustNewConstMetric(p.errors, prometheus.CounterValue, float64(s.Errors))
	ch <- prometheus.MustNewConstMetric(p.evictions, prometheus.CounterValue, float64(s.Evictions))

	dirty := 0.0
	if p.source.Dirty() {
		dirty = 1.0
	}
	ch <- prometheus.MustNewConstMetric(p.entries, prometheus.GaugeValue, float64(p.source.EntryCount()))
	ch <- prometheus.MustNewConstMetric(p.hotEntries, prometheus.GaugeValue, float64(p.source.HotEntryCount()))
	ch <- prometheus.MustNewConstMetric(p.dirty, prometheus.GaugeValue, dirty)
}
