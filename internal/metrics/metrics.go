package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the admin client.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	// API call metrics
	APIRequests *prometheus.CounterVec
	APILatency  *prometheus.HistogramVec
	APIErrors   *prometheus.CounterVec

	// Resource cache metrics
	CacheHits          *prometheus.CounterVec
	CacheMisses        *prometheus.CounterVec
	CacheInvalidations *prometheus.CounterVec

	// Mutation metrics
	Mutations *prometheus.CounterVec

	// Asset upload metrics
	Uploads        *prometheus.CounterVec
	UploadDuration prometheus.Histogram

	// Error metrics (by error code from structured errors)
	Errors *prometheus.CounterVec
}

// NewMetrics creates a new Metrics instance with all metrics registered
func NewMetrics(registry prometheus.Registerer) *Metrics {
	factory := promauto.With(registry)

	return &Metrics{
		APIRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rezai_admin_api_requests_total",
				Help: "Total number of admin API requests",
			},
			[]string{"method", "route", "status"},
		),
		APILatency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "rezai_admin_api_latency_seconds",
				Help:    "Admin API request latency in seconds",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0},
			},
			[]string{"method", "route"},
		),
		APIErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rezai_admin_api_errors_total",
				Help: "Total number of failed admin API requests",
			},
			[]string{"method", "route", "kind"},
		),

		CacheHits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rezai_admin_cache_hits_total",
				Help: "Total number of resource cache hits",
			},
			[]string{"resource"},
		),
		CacheMisses: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rezai_admin_cache_misses_total",
				Help: "Total number of resource cache misses",
			},
			[]string{"resource"},
		),
		CacheInvalidations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rezai_admin_cache_invalidations_total",
				Help: "Total number of resource cache invalidations",
			},
			[]string{"resource"},
		),

		Mutations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rezai_admin_mutations_total",
				Help: "Total number of resource mutations",
			},
			[]string{"resource", "action", "success"},
		),

		Uploads: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rezai_admin_uploads_total",
				Help: "Total number of icon uploads",
			},
			[]string{"success"},
		),
		UploadDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "rezai_admin_upload_duration_seconds",
				Help:    "Icon upload duration in seconds",
				Buckets: []float64{0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0},
			},
		),

		Errors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rezai_admin_errors_total",
				Help: "Total number of errors by code",
			},
			[]string{"error_code"},
		),
	}
}

// ObserveRequest records one finished API call. status is 0 when the
// request never got a response.
func (m *Metrics) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.APIRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.APILatency.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// ObserveRequestError records a failed API call by failure kind
// (network, status, decode).
func (m *Metrics) ObserveRequestError(method, route, kind string) {
	if m == nil {
		return
	}
	m.APIErrors.WithLabelValues(method, route, kind).Inc()
}

// CacheHit records a cache hit for resource.
func (m *Metrics) CacheHit(resource string) {
	if m == nil {
		return
	}
	m.CacheHits.WithLabelValues(resource).Inc()
}

// CacheMiss records a cache miss for resource.
func (m *Metrics) CacheMiss(resource string) {
	if m == nil {
		return
	}
	m.CacheMisses.WithLabelValues(resource).Inc()
}

// CacheInvalidated records an invalidation of resource.
func (m *Metrics) CacheInvalidated(resource string) {
	if m == nil {
		return
	}
	m.CacheInvalidations.WithLabelValues(resource).Inc()
}

// ObserveMutation records a create, update, or delete.
func (m *Metrics) ObserveMutation(resource, action string, success bool) {
	if m == nil {
		return
	}
	m.Mutations.WithLabelValues(resource, action, strconv.FormatBool(success)).Inc()
}

// ObserveUpload records one icon upload.
func (m *Metrics) ObserveUpload(success bool, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.Uploads.WithLabelValues(strconv.FormatBool(success)).Inc()
	m.UploadDuration.Observe(elapsed.Seconds())
}

// ObserveError records an error by code.
func (m *Metrics) ObserveError(code string) {
	if m == nil || code == "" {
		return
	}
	m.Errors.WithLabelValues(code).Inc()
}
