package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestsTotal tracks total HTTP requests
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// RequestDuration tracks HTTP request duration
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// CheckoutsTotal tracks checkout submissions by outcome
	// (approved, declined, duplicate, failed).
	CheckoutsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "checkouts_total",
			Help: "Total number of checkout submissions",
		},
		[]string{"outcome"},
	)

	// PaymentAmount tracks charged amounts
	PaymentAmount = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "payment_amount_dollars",
			Help:    "Charge amounts in dollars",
			Buckets: []float64{10, 50, 100, 500, 1000, 5000},
		},
	)

	// StatusUpdatesTotal tracks admin status changes by target status
	StatusUpdatesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "order_status_updates_total",
			Help: "Total number of order status updates",
		},
		[]string{"status"},
	)

	// GatewayState tracks the payment gateway circuit breaker state
	// (0=closed, 1=open, 2=half-open).
	GatewayState = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "payment_gateway_circuit_state",
			Help: "Payment gateway circuit breaker state (0=closed, 1=open, 2=half-open)",
		},
	)
)

// Middleware records request counts and latency for every route.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		duration := time.Since(start).Seconds()

		// Use the matched route pattern so path params don't explode the
		// label cardinality.
		path := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			path = rctx.RoutePattern()
		}

		RequestsTotal.WithLabelValues(r.Method, path, strconv.Itoa(ww.Status())).Inc()
		RequestDuration.WithLabelValues(r.Method, path).Observe(duration)
	})
}
