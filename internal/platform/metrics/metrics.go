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

// Metrics holds the process-wide HTTP metrics.
type Metrics struct {
	// Request latency by route pattern, method and status
	RequestLatency *prometheus.HistogramVec

	UsersCreated prometheus.Counter

	// Posts and comments written, by kind
	ContentCreated *prometheus.CounterVec
}

// New creates and registers the HTTP metrics on reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		RequestLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "eureka_http_request_duration_seconds",
			Help:    "Duration of HTTP requests by route, method and status",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}, []string{"route", "method", "status"}),

		UsersCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "eureka_users_created_total",
			Help: "Total number of users created in the system",
		}),

		ContentCreated: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "eureka_content_created_total",
			Help: "Posts and comments created, by kind",
		}, []string{"kind"}),
	}
}

// IncrementUsersCreated increments the users created counter by 1
func (m *Metrics) IncrementUsersCreated() {
	if m != nil {
		m.UsersCreated.Inc()
	}
}

// IncrementContentCreated counts one post or comment.
func (m *Metrics) IncrementContentCreated(kind string) {
	if m != nil {
		m.ContentCreated.WithLabelValues(kind).Inc()
	}
}

// Middleware records request latency keyed by chi route pattern so path
// params do not explode label cardinality.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if p := rctx.RoutePattern(); p != "" {
				route = p
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		m.RequestLatency.WithLabelValues(route, r.Method, strconv.Itoa(status)).Observe(time.Since(start).Seconds())
	})
}
