package stream

import (
	"context"
	"io"
)

// FromReader adapts an io.Reader (typically an HTTP response body) into a
// chunk source for Decode. Reading stops when the reader is drained, fails,
// or ctx is cancelled. The returned channel is closed when reading ends; a
// read error is forwarded as the final chunk's Err (io.EOF excepted).
func FromReader(ctx context.Context, r io.Reader, chunkSize int) <-chan Chunk {
	if chunkSize <= 0 {
		chunkSize = 4096
	}
	out := make(chan Chunk)
	go func() {
		defer close(out)
		for {
			buf := make([]byte, chunkSize)
			n, err := r.Read(buf)
			if n > 0 {
				select {
				case out <- Chunk{Data: buf[:n]}:
				case <-ctx.Done():
					return
				}
			}
			if err != nil {
				if err != io.EOF {
					select {
					case out <- Chunk{Err: err}:
					case <-ctx.Done():
					}
				}
				return
			}
		}
	}()
	return out
}

// FromSlices builds a closed chunk source from in-memory byte slices.
// Intended for tests and replaying captured responses.
func FromSlices(chunks ...[]byte) <-chan Chunk {
	out := make(chan Chunk, len(chunks))
	for _, c := range chunks {
		out <- Chunk{Data: c}
	}
	close(out)
	return out
}
