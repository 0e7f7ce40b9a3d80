package types

import (
	"net/textproto"
	"strconv"
)

// Frame is one emitted image of the simulated camera feed
type Frame struct {
	Header textproto.MIMEHeader // Part headers (Content-Type, Content-Length)
	Data   []byte               // Raw file contents
	Path   string               // Source file path
	Index  int                  // Position in the configured image list
}

// NewFrame builds a frame with Content-Type and Content-Length set for data
func NewFrame(path string, index int, contentType string, data []byte) *Frame {
	h := make(textproto.MIMEHeader, 2)
	h.Set("Content-Type", contentType)
	h.Set("Content-Length", strconv.Itoa(len(data)))
	return &Frame{
		Header: h,
		Data:   data,
		Path:   path,
		Index:  index,
	}
}

// ContentType returns the part's Content-Type header
func (f *Frame) ContentType() string {
	return f.Header.Get("Content-Type")
}
