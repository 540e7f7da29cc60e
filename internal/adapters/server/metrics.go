package server

import (
	"net/http"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// requestMetrics holds the HTTP collectors registered for one server instance.
type requestMetrics struct {
	routes          []string
	mcpEndpoint     string
	registry        *prometheus.Registry
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	inFlight        prometheus.Gauge
}

// newRequestMetrics registers HTTP collectors on a private registry.
func newRequestMetrics(cfg Config) *requestMetrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)
	return &requestMetrics{
		routes: []string{
			cfg.APIEndpoint + "/tasks",
			cfg.APIEndpoint + "/task",
			cfg.APIEndpoint + "/move",
			cfg.APIEndpoint + "/delete",
			"/healthz",
			"/readyz",
			"/metrics",
		},
		mcpEndpoint: cfg.MCPEndpoint,
		registry:    registry,
		requestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		requestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Duration of HTTP requests in seconds",
				Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.3, 1, 3},
			},
			[]string{"method", "route"},
		),
		inFlight: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "http_in_flight_requests",
				Help: "Current number of in-flight HTTP requests",
			},
		),
	}
}

// handler serves the registry in the Prometheus exposition format.
func (m *requestMetrics) handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// middleware records request counts, durations, and in-flight gauges.
func (m *requestMetrics) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m.inFlight.Inc()
		defer m.inFlight.Dec()

		start := time.Now()
		wrapped, ok := w.(*statusRecorder)
		if !ok {
			wrapped = &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}
		}
		next.ServeHTTP(wrapped, r)

		route := m.routeLabel(r.URL.Path)
		m.requestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(wrapped.statusCode)).Inc()
		m.requestDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}

// statusRecorder captures the response status code.
type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

// WriteHeader records and forwards the status code.
func (rw *statusRecorder) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Flush forwards streaming flushes used by the MCP transport.
func (rw *statusRecorder) Flush() {
	if flusher, ok := rw.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}

// Unwrap exposes the wrapped writer to http.ResponseController.
func (rw *statusRecorder) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}

// routeLabel maps request paths onto a fixed label set to bound cardinality.
func (m *requestMetrics) routeLabel(path string) string {
	path = "/" + strings.Trim(strings.TrimSpace(path), "/")
	if slices.Contains(m.routes, path) {
		return path
	}
	if path == m.mcpEndpoint || strings.HasPrefix(path, m.mcpEndpoint+"/") {
		return m.mcpEndpoint
	}
	return "other"
}
