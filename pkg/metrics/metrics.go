// Package metrics defines the Prometheus metric collectors used by the
// indexing pipeline and query engine, and exposes an HTTP handler for
// scraping when run alongside cmd/search.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus collectors for the indexer and query engine.
type Metrics struct {
	DocsIndexedTotal     prometheus.Counter
	DocsSkippedTotal     prometheus.Counter
	PartialFlushesTotal  prometheus.Counter
	MergePassesTotal     prometheus.Counter
	IndexBuildDuration   prometheus.Histogram
	AccumulatorSizeBytes prometheus.Gauge

	QueriesTotal    *prometheus.CounterVec
	QueryLatency    *prometheus.HistogramVec
	QueryResultSize prometheus.Histogram
	CacheHitsTotal  prometheus.Counter
	CacheMissTotal  prometheus.Counter
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	m := &Metrics{
		DocsIndexedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "htsearch_docs_indexed_total",
			Help: "Total documents successfully assigned a doc_id and indexed.",
		}),
		DocsSkippedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "htsearch_docs_skipped_total",
			Help: "Total corpus documents skipped for being malformed.",
		}),
		PartialFlushesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "htsearch_partial_flushes_total",
			Help: "Total times the in-memory posting accumulator spilled to a partial-index file.",
		}),
		MergePassesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "htsearch_merge_passes_total",
			Help: "Total external k-way merge passes run over partial-index files.",
		}),
		IndexBuildDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "htsearch_index_build_duration_seconds",
			Help:    "Wall-clock duration of a full indexing run.",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 12),
		}),
		AccumulatorSizeBytes: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "htsearch_accumulator_size_bytes",
			Help: "Estimated current size of the in-memory posting accumulator.",
		}),
		QueriesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "htsearch_queries_total",
				Help: "Total queries served, labeled by outcome.",
			},
			[]string{"outcome"},
		),
		QueryLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "htsearch_query_latency_seconds",
				Help:    "Query latency in seconds, labeled by cache status.",
				Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.2, 0.3, 0.5, 1},
			},
			[]string{"cache_status"},
		),
		QueryResultSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "htsearch_query_result_count",
			Help:    "Number of results returned per query.",
			Buckets: []float64{0, 1, 2, 3, 4, 5, 10, 25},
		}),
		CacheHitsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "htsearch_cache_hits_total",
			Help: "Total query-result cache hits.",
		}),
		CacheMissTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "htsearch_cache_misses_total",
			Help: "Total query-result cache misses.",
		}),
	}

	prometheus.MustRegister(
		m.DocsIndexedTotal,
		m.DocsSkippedTotal,
		m.PartialFlushesTotal,
		m.MergePassesTotal,
		m.IndexBuildDuration,
		m.AccumulatorSizeBytes,
		m.QueriesTotal,
		m.QueryLatency,
		m.QueryResultSize,
		m.CacheHitsTotal,
		m.CacheMissTotal,
	)

	return m
}

// Handler returns the Prometheus scrape HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
