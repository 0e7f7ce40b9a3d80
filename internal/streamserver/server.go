package streamserver

import (
	"net/http"

	"github.com/dj-oyu/rdk-x5_smart-pet-camera/fakecam/internal/camera"
	"github.com/dj-oyu/rdk-x5_smart-pet-camera/fakecam/internal/metrics"
)

// Server serves the emulated camera feed.
type Server struct {
	cfg     camera.Config
	source  *camera.Source
	metrics *metrics.Metrics
}

// NewServer validates cfg and returns a server streaming its images.
// A nil m gets a private Metrics instance.
func NewServer(cfg camera.Config, m *metrics.Metrics) (*Server, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	source, err := camera.NewSource(cfg.Images, cfg.Interval)
	if err != nil {
		return nil, err
	}
	if m == nil {
		m = metrics.New()
	}

	return &Server{
		cfg:     cfg,
		source:  source,
		metrics: m,
	}, nil
}

// Metrics returns the server's counters
func (s *Server) Metrics() *metrics.Metrics {
	return s.metrics
}

// Handler exposes the HTTP handler for the server.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleStream)
	return mux
}
