package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	Decisions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "icondb_decisions_total",
			Help: "Total validity decisions by outcome",
		},
		[]string{"decision"},
	)

	Builds = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "icondb_builds_total",
			Help: "Total build attempts by result",
		},
		[]string{"result"},
	)

	BuildDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "icondb_build_duration_seconds",
			Help:    "Duration of artifact builds",
			Buckets: prometheus.ExponentialBuckets(1, 2, 12),
		},
	)

	Evictions = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "icondb_evictions_total",
			Help: "Total archive entries evicted",
		},
	)

	ArchiveEntries = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "icondb_archive_entries",
			Help: "Current archive entries by build status",
		},
		[]string{"status"},
	)

	ResourceCacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "icondb_resource_cache_hits_total",
			Help: "Resource byte cache hits by level",
		},
		[]string{"level"},
	)

	ResourceCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "icondb_resource_cache_misses_total",
			Help: "Resource byte cache misses",
		},
	)

	FetchedBytes = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "icondb_fetched_bytes_total",
			Help: "Raw bytes fetched from the resource",
		},
	)

	FetchRetries = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "icondb_fetch_retries_total",
			Help: "Fetch attempts retried after a transient failure",
		},
	)
)

// RecordDecision records one validity decision.
func RecordDecision(decision string) {
	Decisions.WithLabelValues(decision).Inc()
}

// RecordBuild records a build attempt with its duration.
func RecordBuild(result string, seconds float64) {
	Builds.WithLabelValues(result).Inc()
	BuildDuration.Observe(seconds)
}

// RecordEviction records one evicted archive entry.
func RecordEviction() {
	Evictions.Inc()
}

// UpdateArchiveEntries sets the per-status entry gauges.
func UpdateArchiveEntries(counts map[string]int) {
	ArchiveEntries.Reset()
	for status, n := range counts {
		ArchiveEntries.WithLabelValues(status).Set(float64(n))
	}
}

// RecordResourceCacheHit records a byte cache hit at the given level.
func RecordResourceCacheHit(level string) {
	ResourceCacheHits.WithLabelValues(level).Inc()
}

// RecordResourceCacheMiss records a byte cache miss.
func RecordResourceCacheMiss() {
	ResourceCacheMisses.Inc()
}

// RecordFetch records a completed fetch of n raw bytes.
func RecordFetch(n int) {
	FetchedBytes.Add(float64(n))
}

// RecordFetchRetry records one retried fetch attempt.
func RecordFetchRetry() {
	FetchRetries.Inc()
}
