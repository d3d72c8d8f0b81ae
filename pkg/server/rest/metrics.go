package rest

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
)

type Metrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
	attempts prometheus.Histogram
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "rodroute",
			Name:      "http_requests_total",
			Help:      "Number of http requests by path, method and status code.",
		}, []string{"path", "method", "code"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "rodroute",
			Name:      "http_request_duration_seconds",
			Help:      "Duration of http requests.",
			Buckets:   []float64{.005, .01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		}, []string{"path", "method"}),
		attempts: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "rodroute",
			Name:      "route_generation_attempts",
			Help:      "Attempts needed to generate a successful route.",
			Buckets:   prometheus.LinearBuckets(1, 1, 10),
		}),
	}
	reg.MustRegister(m.requests, m.duration, m.attempts)
	return m
}

// PromeHttpMiddleware records the count and duration of every request. Paths are the chi route
// patterns so that ids in urls do not blow up the label space.
func PromeHttpMiddleware(m *Metrics) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			path := r.URL.Path
			if rctx := chi.RouteContext(r.Context()); rctx != nil {
				if pattern := rctx.RoutePattern(); pattern != "" {
					path = pattern
				}
			}
			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			m.requests.WithLabelValues(path, r.Method, strconv.Itoa(status)).Inc()
			m.duration.WithLabelValues(path, r.Method).Observe(time.Since(start).Seconds())
		})
	}
}
