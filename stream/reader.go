package stream

import "io"

// defaultChunkSize matches a typical TCP read; the framing layer does not
// care how bytes are grouped, so the size only affects allocation churn.
const defaultChunkSize = 4096

// ChunkReader pulls raw byte chunks from a streamed response body.
// It performs no framing or decoding: a chunk boundary may fall anywhere,
// including inside a multi-byte UTF-8 sequence or inside a record marker.
// Reassembly is the FrameBuffer's job.
type ChunkReader struct {
	r   io.Reader
	buf []byte
}

func NewChunkReader(r io.Reader) *ChunkReader {
	return &ChunkReader{
		r:   r,
		buf: make([]byte, defaultChunkSize),
	}
}

// Next returns the next available chunk, or io.EOF when the body is
// exhausted. Transport errors are returned as-is; there is no retry at
// this layer. The returned slice is only valid until the next call.
func (c *ChunkReader) Next() ([]byte, error) {
	for {
		n, err := c.r.Read(c.buf)
		if n > 0 {
			return c.buf[:n], nil
		}
		if err != nil {
			return nil, err
		}
	}
}
