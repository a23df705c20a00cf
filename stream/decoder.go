// Package stream converts chunked, line-delimited byte sources (SSE-style
// backend responses) into an ordered sequence of typed tokens. Decoding is
// tolerant: a malformed line yields an in-band error and the stream
// continues; only a failure of the chunk source itself stops consumption.
package stream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/agentwire/agentwire/core"
)

// Chunk is one unit of raw input. A non-nil Err marks a transport failure of
// the source; Data is ignored in that case.
type Chunk struct {
	Data []byte
	Err  error
}

// Token is one unit of decoded output. Exactly one token per stream has
// Finish set, and it is always the last element emitted.
type Token struct {
	Content  string          `json:"content"`
	Finish   bool            `json:"is_finish"`
	Metadata json.RawMessage `json:"metadata,omitempty"`
}

// Result pairs a token with an in-band error. Err is non-nil for malformed
// lines (*core.DecodeError, stream continues) and source failures
// (*core.TransportError, stream finishes).
type Result struct {
	Token Token
	Err   error
}

// ParseFunc turns the body of one framed line into token content.
type ParseFunc func(line []byte) (string, error)

// Options configure a Decode run.
type Options struct {
	// BufferSize bounds the output channel. When the consumer lags, the
	// producing goroutine blocks on send rather than dropping tokens.
	BufferSize int

	// LinePrefix is the SSE-style framing prefix stripped from each line
	// when present.
	LinePrefix string

	// DoneMarker is the sentinel line body that is skipped silently.
	DoneMarker string

	// Parse converts a framed line into token content.
	Parse ParseFunc
}

// RawJSON returns a ParseFunc that accepts any valid JSON value and yields
// it compacted. This is the default parser.
func RawJSON() ParseFunc {
	return func(line []byte) (string, error) {
		if !json.Valid(line) {
			return "", fmt.Errorf("invalid JSON")
		}
		var buf bytes.Buffer
		if err := json.Compact(&buf, line); err != nil {
			return "", err
		}
		return buf.String(), nil
	}
}

// ParseAs returns a ParseFunc that decodes each line into T and re-encodes
// it, so the emitted content carries exactly the caller-specified shape.
func ParseAs[T any]() ParseFunc {
	return func(line []byte) (string, error) {
		var v T
		if err := json.Unmarshal(line, &v); err != nil {
			return "", err
		}
		out, err := json.Marshal(v)
		if err != nil {
			return "", err
		}
		return string(out), nil
	}
}

// Decode consumes chunks and emits tokens on a bounded channel.
//
// Lines are reassembled across chunk boundaries and processed in arrival
// order: blank lines and the done marker are skipped, the line prefix is
// stripped, and the remainder is parsed. A parse failure emits a
// *core.DecodeError and decoding continues. A chunk with a non-nil Err emits
// a *core.TransportError and stops consumption. In every case the channel
// ends with exactly one finish token and is then closed.
//
// Decode never blocks the chunk producer beyond its own internal buffering,
// and it never leaks: every send selects on ctx.Done(), so an abandoned
// consumer costs at most one pending send attempt.
func Decode(ctx context.Context, chunks <-chan Chunk, optFns ...func(o *Options)) <-chan Result {
	opts := Options{
		BufferSize: 100,
		LinePrefix: "data: ",
		DoneMarker: "[DONE]",
		Parse:      RawJSON(),
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	out := make(chan Result, opts.BufferSize)
	go func() {
		defer close(out)

		emit := func(r Result) bool {
			select {
			case out <- r:
				return true
			case <-ctx.Done():
				return false
			}
		}

		var buf []byte
	consume:
		for {
			select {
			case <-ctx.Done():
				return
			case chunk, ok := <-chunks:
				if !ok {
					break consume
				}
				if chunk.Err != nil {
					if !emit(Result{Err: &core.TransportError{Err: chunk.Err}}) {
						return
					}
					break consume
				}
				buf = append(buf, chunk.Data...)
				for {
					idx := bytes.IndexByte(buf, '\n')
					if idx < 0 {
						break
					}
					line := bytes.TrimSpace(buf[:idx])
					buf = buf[idx+1:]
					if r, skip := decodeLine(line, opts); !skip {
						if !emit(r) {
							return
						}
					}
				}
			}
		}

		// A trailing fragment without a terminator is never a complete
		// line; it is discarded, matching SSE framing.
		emit(Result{Token: Token{Finish: true}})
	}()
	return out
}

// decodeLine processes one fully assembled line. skip reports lines that
// produce no output (blank lines and the done marker).
func decodeLine(line []byte, opts Options) (r Result, skip bool) {
	if len(line) == 0 {
		return Result{}, true
	}
	body := bytes.TrimPrefix(line, []byte(opts.LinePrefix))
	if string(body) == opts.DoneMarker {
		return Result{}, true
	}
	content, err := opts.Parse(body)
	if err != nil {
		return Result{Err: &core.DecodeError{Line: string(line), Err: err}}, false
	}
	return Result{Token: Token{Content: content}}, false
}
