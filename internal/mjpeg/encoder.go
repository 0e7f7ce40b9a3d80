package mjpeg

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"iter"
	"slices"
	"strings"

	"github.com/dj-oyu/rdk-x5_smart-pet-camera/fakecam/pkg/types"
)

// ErrInvalidHeader is returned for part headers that would break framing.
var ErrInvalidHeader = errors.New("invalid part header")

// Encoder writes frames as parts of a multipart/x-mixed-replace body.
//
// Every part is laid out as
//
//	--<boundary>\r\n
//	Name: value\r\n ...
//	\r\n
//	<payload>\r\n
//
// Payloads are written verbatim and are not checked for the boundary.
type Encoder struct {
	w        *bufio.Writer
	boundary string
}

// NewEncoder returns an encoder writing to w with the given boundary token.
func NewEncoder(w io.Writer, boundary string) *Encoder {
	return &Encoder{
		w:        bufio.NewWriter(w),
		boundary: boundary,
	}
}

// Boundary returns the boundary token
func (e *Encoder) Boundary() string {
	return e.boundary
}

// ContentType returns the response Content-Type for this encoder's stream.
func (e *Encoder) ContentType() string {
	return ContentType(e.boundary)
}

// ContentType returns the multipart/x-mixed-replace media type for boundary.
func ContentType(boundary string) string {
	return "multipart/x-mixed-replace; boundary=" + boundary
}

// WriteFrame writes one complete part and pushes it to the underlying writer.
func (e *Encoder) WriteFrame(frame *types.Frame) error {
	keys := make([]string, 0, len(frame.Header))
	for k, vv := range frame.Header {
		if !validHeaderField(k) {
			return fmt.Errorf("%w: name %q", ErrInvalidHeader, k)
		}
		for _, v := range vv {
			if !validHeaderField(v) {
				return fmt.Errorf("%w: %s value %q", ErrInvalidHeader, k, v)
			}
		}
		keys = append(keys, k)
	}
	slices.Sort(keys)

	fmt.Fprintf(e.w, "--%s\r\n", e.boundary)
	for _, k := range keys {
		for _, v := range frame.Header[k] {
			fmt.Fprintf(e.w, "%s: %s\r\n", k, v)
		}
	}
	e.w.WriteString("\r\n")
	e.w.Write(frame.Data)
	e.w.WriteString("\r\n")

	return e.w.Flush()
}

// Stream writes every frame of seq in order until seq ends or fails. sent,
// when non-nil, runs after each part is written. Sequence errors are returned
// as is.
func (e *Encoder) Stream(seq iter.Seq2[*types.Frame, error], sent func(*types.Frame)) error {
	for frame, err := range seq {
		if err != nil {
			return err
		}
		if err := e.WriteFrame(frame); err != nil {
			return err
		}
		if sent != nil {
			sent(frame)
		}
	}
	return nil
}

func validHeaderField(s string) bool {
	return s != "" && !strings.ContainsAny(s, "\r\n")
}
