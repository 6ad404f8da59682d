package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsRegistry holds all Prometheus metrics for the service
type MetricsRegistry struct {
	// HTTP Metrics
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight *prometheus.GaugeVec

	// Cache Metrics
	CacheHitsTotal   *prometheus.CounterVec
	CacheMissesTotal *prometheus.CounterVec

	// Business Metrics
	RecordsCreatedTotal *prometheus.CounterVec
	RecordsDeletedTotal *prometheus.CounterVec
	ExportsTotal        *prometheus.CounterVec
	ExportRows          *prometheus.HistogramVec
	ImagesStoredTotal   prometheus.Counter
	OrphansSweptTotal   prometheus.Counter
	LoginsTotal         *prometheus.CounterVec
	JobDuration         *prometheus.HistogramVec
}

// NewMetricsRegistry registers every metric on reg. main passes
// prometheus.DefaultRegisterer; tests pass a fresh prometheus.NewRegistry().
func NewMetricsRegistry(reg prometheus.Registerer) *MetricsRegistry {
	factory := promauto.With(reg)

	return &MetricsRegistry{
		// HTTP Metrics
		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "lent_http_requests_total",
				Help: "Total HTTP requests processed by endpoint, method, and status code",
			},
			[]string{"endpoint", "method", "status_code"},
		),
		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "lent_http_request_duration_seconds",
				Help:    "HTTP request latency distribution in seconds",
				Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
			[]string{"endpoint", "method"},
		),
		HTTPRequestsInFlight: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "lent_http_requests_in_flight",
				Help: "Number of HTTP requests currently being processed",
			},
			[]string{"method"},
		),

		// Cache Metrics
		CacheHitsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "lent_cache_hits_total",
				Help: "Total list cache hits by resource",
			},
			[]string{"resource"},
		),
		CacheMissesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "lent_cache_misses_total",
				Help: "Total list cache misses by resource",
			},
			[]string{"resource"},
		),

		// Business Metrics
		RecordsCreatedTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "lent_records_created_total",
				Help: "Records created by resource",
			},
			[]string{"resource"},
		),
		RecordsDeletedTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "lent_records_deleted_total",
				Help: "Records deleted by resource",
			},
			[]string{"resource"},
		),
		ExportsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "lent_exports_total",
				Help: "Exports served by resource and format",
			},
			[]string{"resource", "format"},
		),
		ExportRows: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "lent_export_rows",
				Help:    "Rows written per export",
				Buckets: []float64{1, 10, 50, 100, 500, 1000, 5000, 10000},
			},
			[]string{"resource"},
		),
		ImagesStoredTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "lent_images_stored_total",
				Help: "Images written to storage",
			},
		),
		OrphansSweptTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "lent_orphan_images_swept_total",
				Help: "Unreferenced images removed by the sweeper",
			},
		),
		LoginsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "lent_logins_total",
				Help: "Login attempts by result",
			},
			[]string{"result"},
		),
		JobDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "lent_job_duration_seconds",
				Help:    "Background job execution time in seconds",
				Buckets: []float64{0.05, 0.1, 0.5, 1, 5, 10, 30, 60, 120},
			},
			[]string{"job_name"},
		),
	}
}
