// Package metrics exposes Prometheus instrumentation for the simulation
// loop, eclipse detector and frame stream.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	frameDurationSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "orrery_frame_eval_duration_seconds",
			Help:    "Time to evaluate every body for one frame.",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1},
		},
	)

	eclipseScansTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "orrery_eclipse_scans_total",
			Help: "Total number of pairwise alignment scans.",
		},
	)

	eclipseEventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "orrery_eclipse_events_total",
			Help: "Alignments accepted by the eclipse detector.",
		},
		[]string{"inner", "outer"},
	)

	streamClients = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "orrery_stream_clients",
			Help: "Connected websocket frame stream clients.",
		},
	)

	streamFramesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "orrery_stream_frames_total",
			Help: "Frames written to websocket clients.",
		},
	)

	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "orrery_http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"path", "method", "code"},
	)

	httpDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "orrery_http_duration_seconds",
			Help:    "HTTP request duration in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"path", "method"},
	)
)

func init() {
	prometheus.MustRegister(frameDurationSeconds)
	prometheus.MustRegister(eclipseScansTotal)
	prometheus.MustRegister(eclipseEventsTotal)
	prometheus.MustRegister(streamClients)
	prometheus.MustRegister(streamFramesTotal)
	prometheus.MustRegister(httpRequestsTotal)
	prometheus.MustRegister(httpDurationSeconds)
}

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveFrame records the time spent evaluating one frame.
func ObserveFrame(d time.Duration) {
	frameDurationSeconds.Observe(d.Seconds())
}

// EclipseScan counts one alignment scan.
func EclipseScan() {
	eclipseScansTotal.Inc()
}

// EclipseEvent counts one accepted alignment between two planets.
func EclipseEvent(inner, outer string) {
	eclipseEventsTotal.WithLabelValues(inner, outer).Inc()
}

// StreamConnected tracks a websocket client joining.
func StreamConnected() {
	streamClients.Inc()
}

// StreamDisconnected tracks a websocket client leaving.
func StreamDisconnected() {
	streamClients.Dec()
}

// StreamFrame counts one frame sent.
func StreamFrame() {
	streamFramesTotal.Inc()
}

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Middleware records request count and duration for each request.
// Websocket upgrades pass straight through since they hijack the writer.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := normalizeRoute(r.URL.Path)
		if path == "/ws" {
			next.ServeHTTP(w, r)
			return
		}

		start := time.Now()
		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rw, r)

		httpRequestsTotal.WithLabelValues(path, r.Method, strconv.Itoa(rw.statusCode)).Inc()
		httpDurationSeconds.WithLabelValues(path, r.Method).Observe(time.Since(start).Seconds())
	})
}

// normalizeRoute collapses unknown paths into one label.
func normalizeRoute(path string) string {
	switch path {
	case "/", "/ws", "/metrics", "/healthz", "/api/snapshot", "/api/transfer", "/api/events", "/api/eclipses", "/api/gravity":
		return path
	default:
		return "other"
	}
}
