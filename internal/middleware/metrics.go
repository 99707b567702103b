package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the service's Prometheus collectors on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	requestsTotal    *prometheus.CounterVec
	requestsInFlight prometheus.Gauge
	requestDuration  *prometheus.HistogramVec

	analysesTotal    *prometheus.CounterVec
	analysisDuration prometheus.Histogram
	pollAttempts     prometheus.Histogram
}

func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,
		requestsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "ux_http_requests_total",
			Help: "Total HTTP requests, partitioned by method, route and status.",
		}, []string{"method", "route", "status"}),
		requestsInFlight: f.NewGauge(prometheus.GaugeOpts{
			Name: "ux_http_requests_in_progress",
			Help: "HTTP requests currently being served.",
		}),
		requestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "ux_http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: []float64{0.01, 0.1, 0.5, 1, 5, 15, 30, 60, 120, 300, 600},
		}, []string{"method", "route"}),
		analysesTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "ux_analyses_total",
			Help: "Video analyses, partitioned by outcome.",
		}, []string{"outcome"}),
		analysisDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "ux_analysis_duration_seconds",
			Help:    "End-to-end analysis time including remote processing.",
			Buckets: []float64{1, 5, 10, 30, 60, 120, 300, 600},
		}),
		pollAttempts: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "ux_remote_poll_attempts",
			Help:    "Readiness polls needed per remote asset.",
			Buckets: prometheus.ExponentialBuckets(1, 2, 10),
		}),
	}
}

// AnalysisFinished records one Analyze call.
func (m *Metrics) AnalysisFinished(outcome string, d time.Duration) {
	m.analysesTotal.WithLabelValues(outcome).Inc()
	m.analysisDuration.Observe(d.Seconds())
}

// PollAttempts records how many readiness polls one asset needed.
func (m *Metrics) PollAttempts(n int) {
	m.pollAttempts.Observe(float64(n))
}

// Middleware tracks request metrics
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		m.requestsInFlight.Inc()
		defer m.requestsInFlight.Dec()

		wrapped := wrapWriter(w)
		next.ServeHTTP(wrapped, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		m.requestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(wrapped.statusCode)).Inc()
		m.requestDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}

// Handler exposes the registry in Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
