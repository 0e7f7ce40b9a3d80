package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the camera's stream counters
type Metrics struct {
	// Session tracking
	ActiveSessions prometheus.Gauge
	TotalSessions  prometheus.Counter

	// Frame delivery
	FramesSent *prometheus.CounterVec // labelled by content type
	BytesSent  prometheus.Counter

	// Error counters
	ReadErrors  prometheus.Counter
	WriteErrors prometheus.Counter

	registry *prometheus.Registry
}

// New creates a Metrics instance registered on a private registry
func New() *Metrics {
	m := &Metrics{
		ActiveSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "fakecam_active_sessions",
			Help: "Number of streams currently being served",
		}),
		TotalSessions: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "fakecam_sessions_total",
			Help: "Total streams started",
		}),
		FramesSent: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fakecam_frames_sent_total",
			Help: "Total multipart frames written to clients",
		}, []string{"content_type"}),
		BytesSent: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "fakecam_frame_bytes_sent_total",
			Help: "Total image payload bytes written to clients",
		}),
		ReadErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "fakecam_frame_read_errors_total",
			Help: "Image reads that terminated a stream",
		}),
		WriteErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "fakecam_client_write_errors_total",
			Help: "Writes that failed because the client went away",
		}),
		registry: prometheus.NewRegistry(),
	}

	m.registry.MustRegister(
		m.ActiveSessions,
		m.TotalSessions,
		m.FramesSent,
		m.BytesSent,
		m.ReadErrors,
		m.WriteErrors,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return m
}

// SessionStarted records a new stream
func (m *Metrics) SessionStarted() {
	m.TotalSessions.Inc()
	m.ActiveSessions.Inc()
}

// SessionEnded records the end of a stream
func (m *Metrics) SessionEnded() {
	m.ActiveSessions.Dec()
}

// FrameSent records one delivered part
func (m *Metrics) FrameSent(contentType string, size int) {
	m.FramesSent.WithLabelValues(contentType).Inc()
	m.BytesSent.Add(float64(size))
}

// Handler returns the Prometheus HTTP handler
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// StartServer serves /metrics on addr until the listener fails
func (m *Metrics) StartServer(addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	return http.ListenAndServe(addr, mux)
}
