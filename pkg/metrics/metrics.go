// Package metrics defines the Prometheus metric collectors used by the menu
// search service and exposes an HTTP handler for scraping.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus collectors for the service.
type Metrics struct {
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge
	SearchQueriesTotal   *prometheus.CounterVec
	SearchLatency        *prometheus.HistogramVec
	SearchResultsCount   prometheus.Histogram
	IndexCacheHitsTotal  prometheus.Counter
	IndexCacheMissTotal  prometheus.Counter
	IndexBuildDuration   prometheus.Histogram
	IndexedItems         prometheus.Gauge
	AutoNavigateTotal    prometheus.Counter
	RateLimitedTotal     prometheus.Counter
	CatalogFetchErrors   prometheus.Counter
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests by method, path, and status.",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request latency in seconds.",
				Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
			},
			[]string{"method", "path"},
		),
		HTTPRequestsInFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "http_requests_in_flight",
				Help: "Number of HTTP requests currently being processed.",
			},
		),
		SearchQueriesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "menu_search_queries_total",
				Help: "Total search queries by outcome (results, zero_results, short_query, error).",
			},
			[]string{"outcome"},
		),
		SearchLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "menu_search_latency_seconds",
				Help:    "Search query latency in seconds.",
				Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
			},
			[]string{"cache_status"},
		),
		SearchResultsCount: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "menu_search_results_count",
				Help:    "Number of results returned per search query.",
				Buckets: []float64{0, 1, 2, 5, 10},
			},
		),
		IndexCacheHitsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "menu_index_cache_hits_total",
				Help: "Total search index cache hits.",
			},
		),
		IndexCacheMissTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "menu_index_cache_misses_total",
				Help: "Total search index cache misses (rebuilds).",
			},
		),
		IndexBuildDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "menu_index_build_duration_seconds",
				Help:    "Time spent rebuilding the search index.",
				Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
			},
		),
		IndexedItems: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "menu_indexed_items",
				Help: "Number of catalog items in the current search index.",
			},
		),
		AutoNavigateTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "menu_search_auto_navigate_total",
				Help: "Total searches that produced an auto-navigate hint.",
			},
		),
		RateLimitedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "menu_search_rate_limited_total",
				Help: "Total requests rejected by the rate limiter.",
			},
		),
		CatalogFetchErrors: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "menu_catalog_fetch_errors_total",
				Help: "Total failed catalog fetches.",
			},
		),
	}

	prometheus.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.HTTPRequestsInFlight,
		m.SearchQueriesTotal,
		m.SearchLatency,
		m.SearchResultsCount,
		m.IndexCacheHitsTotal,
		m.IndexCacheMissTotal,
		m.IndexBuildDuration,
		m.IndexedItems,
		m.AutoNavigateTotal,
		m.RateLimitedTotal,
		m.CatalogFetchErrors,
	)

	return m
}

// Handler returns the Prometheus scrape HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
