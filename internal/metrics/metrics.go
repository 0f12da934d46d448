// Package metrics provides Prometheus metrics for the kahuna service.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTP request metrics
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kahuna_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "kahuna_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// Gateway metrics
	gatewayRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kahuna_gateway_requests_total",
			Help: "Total requests sent to the media services",
		},
		[]string{"operation", "status"},
	)

	gatewayRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "kahuna_gateway_request_duration_seconds",
			Help:    "Media service request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	// Pagination metrics
	walkDepth = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "kahuna_search_walk_pages",
			Help:    "Gateway pages fetched per fetch-more call",
			Buckets: []float64{1, 2, 3, 5, 8, 13, 21},
		},
	)

	searchSessionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "kahuna_search_sessions_active",
			Help: "Number of live search sessions",
		},
	)

	// Crop metrics
	cropSubmissionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kahuna_crop_submissions_total",
			Help: "Total crop submissions by result",
		},
		[]string{"result"},
	)

	// Local store metrics
	storeOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "kahuna_localstore_operation_duration_seconds",
			Help:    "Local store operation duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"backend", "operation"},
	)
)

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordHTTPRequest records an HTTP request metric.
func RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	httpRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordGatewayRequest records a media service call. Status 0 marks a transport failure.
func RecordGatewayRequest(operation string, status int, duration time.Duration) {
	gatewayRequestsTotal.WithLabelValues(operation, strconv.Itoa(status)).Inc()
	gatewayRequestDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// RecordWalk records how many gateway pages a fetch-more call consumed.
func RecordWalk(pages int) {
	walkDepth.Observe(float64(pages))
}

// SetSearchSessions sets the number of live search sessions.
func SetSearchSessions(count int) {
	searchSessionsActive.Set(float64(count))
}

// RecordCropSubmission records a crop submission outcome.
func RecordCropSubmission(result string) {
	cropSubmissionsTotal.WithLabelValues(result).Inc()
}

// RecordStoreOperation records a local store operation duration.
func RecordStoreOperation(backend, operation string, duration time.Duration) {
	storeOperationDuration.WithLabelValues(backend, operation).Observe(duration.Seconds())
}

// responseWriter wraps http.ResponseWriter to capture status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}

// Middleware returns HTTP middleware that records request metrics.
// Requests are labelled by their matched mux pattern to bound cardinality.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rw, r)

		path := r.Pattern
		if path == "" {
			path = "unmatched"
		}
		RecordHTTPRequest(r.Method, path, rw.statusCode, time.Since(start))
	})
}
