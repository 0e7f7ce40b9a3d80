package streamserver

import (
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/dj-oyu/rdk-x5_smart-pet-camera/fakecam/internal/camera"
	"github.com/dj-oyu/rdk-x5_smart-pet-camera/fakecam/internal/logger"
	"github.com/dj-oyu/rdk-x5_smart-pet-camera/fakecam/internal/mjpeg"
	"github.com/dj-oyu/rdk-x5_smart-pet-camera/fakecam/pkg/types"
)

// handleStream runs one stream session: a fresh image cycle encoded as
// multipart/x-mixed-replace until the client leaves or a read fails.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming unsupported", http.StatusInternalServerError)
		return
	}

	enc := mjpeg.NewEncoder(w, s.cfg.Boundary)
	w.Header().Set("Content-Type", enc.ContentType())
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Pragma", "no-cache")
	w.WriteHeader(http.StatusOK)

	if r.Method == http.MethodHead {
		return
	}
	flusher.Flush()

	id := uuid.NewString()
	s.metrics.SessionStarted()
	defer s.metrics.SessionEnded()
	logger.Info("Stream", "Session %s started (remote=%s, images=%d)", id, r.RemoteAddr, s.source.Len())

	frames := 0
	err := enc.Stream(s.source.Frames(r.Context()), func(frame *types.Frame) {
		flusher.Flush()
		frames++
		s.metrics.FrameSent(frame.ContentType(), len(frame.Data))
		logger.Debug("Stream", "Session %s sent frame #%d (%s, %d bytes)", id, frames, frame.Path, len(frame.Data))
	})

	switch {
	case err == nil:
		logger.Info("Stream", "Session %s ended by client after %d frames", id, frames)
	case errors.Is(err, camera.ErrFrameRead):
		s.metrics.ReadErrors.Inc()
		logger.Error("Stream", "Session %s terminated after %d frames: %v", id, frames, err)
		// Drop the connection so the client sees a truncated stream.
		panic(http.ErrAbortHandler)
	default:
		s.metrics.WriteErrors.Inc()
		logger.Debug("Stream", "Session %s client disconnected during write: %v", id, err)
	}
}
