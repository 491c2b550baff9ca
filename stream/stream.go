// Package stream consumes the SSE-like framing the ChemAgent backend uses
// for streamed chat responses: newline-delimited records prefixed
// "data: ", each carrying a JSON event envelope tagged by a "type" field.
//
// The pipeline is ChunkReader → FrameBuffer → DecodeEvent, wrapped by
// Stream which yields typed events in arrival order. Records are never
// reordered and no record is emitted before all of its bytes arrive.
package stream

import "io"

// Stream reads typed events from a streamed chat response body.
type Stream struct {
	body   io.ReadCloser
	chunks *ChunkReader
	frames FrameBuffer
	done   bool
}

// New wraps a response body. The caller owns closing via Close.
func New(body io.ReadCloser) *Stream {
	return &Stream{
		body:   body,
		chunks: NewChunkReader(body),
	}
}

// Next returns the next decoded event. Returns io.EOF when the server
// closes the connection; any other error is a transport failure.
// Keep-alive records, malformed frames and unknown event types are
// consumed silently.
func (s *Stream) Next() (Event, error) {
	if s.done {
		return nil, io.EOF
	}

	for {
		// Drain buffered records first.
		for {
			payload, ok := s.frames.Next()
			if !ok {
				break
			}
			if ev := DecodeEvent(payload); ev != nil {
				return ev, nil
			}
		}

		chunk, err := s.chunks.Next()
		if err == io.EOF {
			// A trailing record with no newline is never emitted;
			// the server terminates every frame before closing.
			s.done = true
			return nil, io.EOF
		}
		if err != nil {
			s.done = true
			return nil, err
		}
		s.frames.Write(chunk)
	}
}

// Close releases the underlying body. Safe to call after Next returned
// io.EOF.
func (s *Stream) Close() error {
	s.done = true
	return s.body.Close()
}
