package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "datacommons"

// Metrics holds the Prometheus counters, histograms, and gauges for the client and sync loop.
type Metrics struct {
	// Data Commons API metrics.
	APIRequests *prometheus.CounterVec   // labels: endpoint, outcome={success,error}
	APIDuration *prometheus.HistogramVec // labels: endpoint

	// Enrichment metrics.
	RowsProduced    *prometheus.CounterVec // labels: kind={point,series}
	PerCapitaMisses prometheus.Counter

	// Sync loop metrics.
	SyncRunning      prometheus.Gauge
	SyncDuration     prometheus.Histogram
	SyncErrors       prometheus.Counter
	MessagesProduced prometheus.Counter
}

// NewMetrics creates and registers all metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.APIRequests,
		m.APIDuration,
		m.RowsProduced,
		m.PerCapitaMisses,
		m.SyncRunning,
		m.SyncDuration,
		m.SyncErrors,
		m.MessagesProduced,
	)
	return m
}

// NewUnregisteredMetrics creates Metrics that are not exposed on /metrics.
// One-shot tools use it when nothing scrapes the process.
func NewUnregisteredMetrics() *Metrics {
	return newMetrics()
}

// NewMetricsForTesting creates Metrics without registering them, avoiding
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		APIRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "api_requests_total",
			Help:      "Data Commons API requests by endpoint and outcome.",
		}, []string{"endpoint", "outcome"}),
		APIDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "api_duration_seconds",
			Help:      "Data Commons API request duration in seconds.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"endpoint"}),
		RowsProduced: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_produced_total",
			Help:      "Enriched data rows produced by kind.",
		}, []string{"kind"}),
		PerCapitaMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "per_capita_misses_total",
			Help:      "Rows requested per capita for which no denominator series was found.",
		}),
		SyncRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sync_running",
			Help:      "1 when the sync loop is active, 0 when shut down.",
		}),
		SyncDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "sync_duration_seconds",
			Help:      "Duration of a complete fetch-enrich-publish cycle.",
			Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
		}),
		SyncErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sync_errors_total",
			Help:      "Sync cycles that failed to fetch or publish.",
		}),
		MessagesProduced: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_produced_total",
			Help:      "Total messages written to the sink topic.",
		}),
	}
}
