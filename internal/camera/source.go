package camera

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"os"
	"slices"
	"time"

	"github.com/dj-oyu/rdk-x5_smart-pet-camera/fakecam/pkg/types"
)

// ErrFrameRead marks a stream that ended because an image could not be read.
var ErrFrameRead = errors.New("read frame")

// Source cycles through a fixed list of image files.
type Source struct {
	paths    []string
	interval time.Duration
}

// NewSource creates a source over a copy of paths, pacing frames by interval.
func NewSource(paths []string, interval time.Duration) (*Source, error) {
	if len(paths) == 0 {
		return nil, ErrNoImages
	}
	if interval <= 0 {
		return nil, fmt.Errorf("%w: %s", ErrInvalidInterval, interval)
	}
	return &Source{
		paths:    slices.Clone(paths),
		interval: interval,
	}, nil
}

// Len returns the number of configured images
func (s *Source) Len() int {
	return len(s.paths)
}

// Interval returns the pacing interval between frames
func (s *Source) Interval() time.Duration {
	return s.interval
}

// Frames returns an infinite sequence of frames starting at the first image.
// Each call starts an independent cycle. The sequence waits one interval
// after every yielded frame and stops when ctx is done. A read failure is
// yielded once as an error wrapping ErrFrameRead and ends the sequence.
func (s *Source) Frames(ctx context.Context) iter.Seq2[*types.Frame, error] {
	return func(yield func(*types.Frame, error) bool) {
		for i := 0; ; i = (i + 1) % len(s.paths) {
			if ctx.Err() != nil {
				return
			}

			frame, err := s.readFrame(i)
			if err != nil {
				yield(nil, err)
				return
			}
			if !yield(frame, nil) {
				return
			}

			if !sleep(ctx, s.interval) {
				return
			}
		}
	}
}

func (s *Source) readFrame(i int) (*types.Frame, error) {
	path := s.paths[i]
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFrameRead, err)
	}
	return types.NewFrame(path, i, ContentType(path), data), nil
}

// sleep waits for d and reports false if ctx ended first.
func sleep(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
