package stream

import (
	"bytes"
	"strings"
)

// dataMarker is the record prefix carrying an event payload. The backend
// uses SSE-style framing but only the data field; event:/id: fields never
// appear.
const dataMarker = "data: "

// FrameBuffer accumulates decoded stream bytes and splits them into
// newline-delimited records, holding any incomplete trailing record until
// the bytes that complete it arrive. Only records that begin with the
// "data: " marker after whitespace trimming yield a payload; a bare
// "data:" record is a keep-alive and everything else is discarded
// silently.
//
// The zero value is ready to use.
type FrameBuffer struct {
	buf []byte
}

// Write appends a chunk to the buffer. Chunks may split records, the
// marker, or multi-byte characters at any byte position.
func (f *FrameBuffer) Write(p []byte) {
	f.buf = append(f.buf, p...)
}

// Next extracts the next complete event payload, if one is buffered.
// Records that do not qualify (keep-alives, non-data lines) are consumed
// and skipped. Returns ok=false when no complete qualifying record
// remains; an incomplete tail stays buffered for the next Write.
func (f *FrameBuffer) Next() (payload string, ok bool) {
	for {
		i := bytes.IndexByte(f.buf, '\n')
		if i < 0 {
			return "", false
		}
		line := strings.TrimSpace(string(f.buf[:i]))
		f.buf = f.buf[i+1:]

		if !strings.HasPrefix(line, dataMarker) {
			// Keep-alives ("data:" with nothing after it), blank
			// separator lines and unknown fields are all dropped.
			continue
		}
		data := line[len(dataMarker):]
		if strings.TrimSpace(data) == "" {
			continue
		}
		return data, true
	}
}

// Pending reports whether an incomplete record is still buffered.
func (f *FrameBuffer) Pending() bool {
	return len(f.buf) > 0
}
