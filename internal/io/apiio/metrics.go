package apiio

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters of the API server.
type Metrics struct {
	RequestsTotal *prometheus.CounterVec // labels: method, code
	RowsImported  *prometheus.CounterVec // labels: entity={hydrodata,fish}
	ImportErrors  prometheus.Counter
}

// NewMetrics creates and registers all API metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		RequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hydromon",
			Name:      "http_requests_total",
			Help:      "Total HTTP requests by method and status code.",
		}, []string{"method", "code"}),
		RowsImported: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hydromon",
			Name:      "rows_imported_total",
			Help:      "Total rows committed through bulk imports.",
		}, []string{"entity"}),
		ImportErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "hydromon",
			Name:      "import_errors_total",
			Help:      "Total bulk imports rejected on a bad row.",
		}),
	}

	prometheus.MustRegister(
		m.RequestsTotal,
		m.RowsImported,
		m.ImportErrors,
	)

	return m
}

// NewMetricsForTesting creates Metrics with a fresh registry to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		RequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hydromon", Name: "http_requests_total",
		}, []string{"method", "code"}),
		RowsImported: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hydromon", Name: "rows_imported_total",
		}, []string{"entity"}),
		ImportErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "hydromon", Name: "import_errors_total",
		}),
	}
}
