// Package metrics exposes Prometheus metrics for the web server and the catalog loader.
//
// Every method is safe on a nil *Metrics so callers can leave metrics out.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the application's collectors and the registry they are registered with.
type Metrics struct {
	// HTTP requests by route pattern, method and status
	Requests *prometheus.CounterVec

	// HTTP request latency by route pattern
	RequestLatency *prometheus.HistogramVec

	// TMDB request latency by category and outcome
	CategoryLatency *prometheus.HistogramVec

	// Page loads by outcome
	PageLoads *prometheus.CounterVec

	registry *prometheus.Registry
}

// New creates the collectors and registers them with reg. A nil reg gets a fresh registry.
func New(reg *prometheus.Registry) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	factory := promauto.With(reg)

	return &Metrics{
		Requests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "reelx_http_requests_total",
			Help: "Total HTTP requests by route, method and status",
		}, []string{"route", "method", "status"}),

		RequestLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "reelx_http_request_duration_seconds",
			Help:    "Duration of HTTP requests by route",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"route"}),

		CategoryLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "reelx_catalog_category_duration_seconds",
			Help:    "Duration of TMDB category requests by category and outcome",
			Buckets: []float64{0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"category", "outcome"}),

		PageLoads: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "reelx_catalog_page_loads_total",
			Help: "Total catalog page loads by outcome",
		}, []string{"outcome"}),

		registry: reg,
	}
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// ObserveCategory records one category request.
func (m *Metrics) ObserveCategory(category string, d time.Duration, err error) {
	if m != nil {
		m.CategoryLatency.WithLabelValues(category, outcome(err)).Observe(d.Seconds())
	}
}

// IncrementPageLoad records the outcome of one page load.
func (m *Metrics) IncrementPageLoad(err error) {
	if m != nil {
		m.PageLoads.WithLabelValues(outcome(err)).Inc()
	}
}

// ObserveRequest records one HTTP request.
func (m *Metrics) ObserveRequest(route, method string, status int, d time.Duration) {
	if m != nil {
		m.Requests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
		m.RequestLatency.WithLabelValues(route).Observe(d.Seconds())
	}
}

// Middleware records every request under the pattern that matched it.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		route := r.Pattern
		if route == "" {
			route = "unmatched"
		}
		m.ObserveRequest(route, r.Method, status, time.Since(start))
	})
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
