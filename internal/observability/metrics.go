// Package observability provides Prometheus instrumentation for the dashboard
// service: HTTP request telemetry plus domain counters for basin data loading,
// chart rendering, caching, and snapshot generation.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"mcass/internal/core"
	"mcass/internal/snowdata"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// dashboard service.
type Metrics struct {
	// HTTP request metrics. Endpoint is the matched route pattern.
	HTTPRequests *prometheus.CounterVec   // labels: method, endpoint, status
	HTTPDuration *prometheus.HistogramVec // labels: method, endpoint

	// Basin data loading metrics.
	BasinLoads   *prometheus.CounterVec // labels: outcome={success,missing,malformed,empty,error}
	RowsSkipped  *prometheus.CounterVec // labels: reason
	CacheLookups *prometheus.CounterVec // labels: result={hit,miss}

	// Chart rendering metrics.
	ChartRenders        *prometheus.CounterVec // labels: quantity, format
	ChartRenderDuration prometheus.Histogram

	// Snapshot generation metrics.
	SnapshotDuration    prometheus.Histogram
	SnapshotBasinErrors prometheus.Counter

	// CatalogBasins reports the number of basins discovered in the data
	// directory during the most recent scan.
	CatalogBasins prometheus.Gauge
}

// NewMetrics creates and registers all dashboard metrics with the default
// Prometheus registry. The namespace prefixes every metric name.
func NewMetrics(namespace string) *Metrics {
	m := newMetrics(namespace)

	prometheus.MustRegister(
		m.HTTPRequests,
		m.HTTPDuration,
		m.BasinLoads,
		m.RowsSkipped,
		m.CacheLookups,
		m.ChartRenders,
		m.ChartRenderDuration,
		m.SnapshotDuration,
		m.SnapshotBasinErrors,
		m.CatalogBasins,
	)

	return m
}

// NewMetricsForTesting creates Metrics without registering them, avoiding
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics("mcass_test")
}

func newMetrics(namespace string) *Metrics {
	return &Metrics{
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "API requests by method, route pattern, and status code.",
		}, []string{"method", "endpoint", "status"}),
		HTTPDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "API request duration by method and route pattern.",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"method", "endpoint"}),
		BasinLoads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "basin_loads_total",
			Help:      "Basin data load attempts by outcome.",
		}, []string{"outcome"}),
		RowsSkipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_skipped_total",
			Help:      "Export file rows skipped during parsing, by reason.",
		}, []string{"reason"}),
		CacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_lookups_total",
			Help:      "Basin dataset cache lookups by result.",
		}, []string{"result"}),
		ChartRenders: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "chart_renders_total",
			Help:      "Chart renders by quantity and image format.",
		}, []string{"quantity", "format"}),
		ChartRenderDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "chart_render_duration_seconds",
			Help:      "Duration of a single chart render including encoding.",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}),
		SnapshotDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "snapshot_duration_seconds",
			Help:      "Duration of a complete snapshot build across all basins.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10},
		}),
		SnapshotBasinErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "snapshot_basin_errors_total",
			Help:      "Basins that failed to load during snapshot builds.",
		}),
		CatalogBasins: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "catalog_basins",
			Help:      "Number of basins discovered in the data directory.",
		}),
	}
}

// RecordRequest implements core.MetricsCollector.
func (m *Metrics) RecordRequest(method, endpoint, status string, duration time.Duration) {
	m.HTTPRequests.WithLabelValues(method, endpoint, status).Inc()
	m.HTTPDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// RecordBasinLoad counts a basin data load attempt by outcome.
func (m *Metrics) RecordBasinLoad(outcome string) {
	m.BasinLoads.WithLabelValues(outcome).Inc()
}

// RecordRowSkipped counts a skipped export file row by reason.
func (m *Metrics) RecordRowSkipped(reason string) {
	m.RowsSkipped.WithLabelValues(reason).Inc()
}

// RecordCacheLookup counts a cache hit or miss.
func (m *Metrics) RecordCacheLookup(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	m.CacheLookups.WithLabelValues(result).Inc()
}

// RecordChartRender counts a chart render and observes its duration.
func (m *Metrics) RecordChartRender(quantity, format string, duration time.Duration) {
	m.ChartRenders.WithLabelValues(quantity, format).Inc()
	m.ChartRenderDuration.Observe(duration.Seconds())
}

// RecordSnapshot observes the duration of a snapshot build and counts the
// basins that failed to load during it.
func (m *Metrics) RecordSnapshot(duration time.Duration, basinErrors int) {
	m.SnapshotDuration.Observe(duration.Seconds())
	m.SnapshotBasinErrors.Add(float64(basinErrors))
}

// SetCatalogBasins records the basin count from the latest directory scan.
func (m *Metrics) SetCatalogBasins(n int) {
	m.CatalogBasins.Set(float64(n))
}

// Metrics must keep satisfying every consumer-side interface.
var (
	_ core.MetricsCollector = (*Metrics)(nil)
	_ snowdata.Metrics      = (*Metrics)(nil)
)
