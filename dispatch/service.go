// Package dispatch orchestrates request handling between the transport
// layer and the agent registry: protocol framing checks, routing, and the
// streaming fan-out of responses into bounded token channels.
package dispatch

import (
	"context"
	"encoding/json"

	"github.com/agentwire/agentwire/conversation"
	"github.com/agentwire/agentwire/core"
	"github.com/agentwire/agentwire/logging"
	"github.com/agentwire/agentwire/registry"
	"github.com/agentwire/agentwire/stream"
)

// Options configure a Service.
type Options struct {
	// Conversations is the session store exposed to transports and agents.
	Conversations *conversation.Store

	// StreamBufferSize bounds the channel returned by HandleStream.
	StreamBufferSize int

	// Logger receives dispatch diagnostics. Defaults to a no-op logger.
	Logger logging.Logger
}

// Service is the request-handling orchestration invoked by the HTTP layer.
// A magic mismatch is a soft failure: the caller gets a well-formed "error"
// envelope, never a transport error. Routing and agent failures surface as
// errors for the transport to map onto its own error responses.
type Service struct {
	registry      *registry.Registry
	conversations *conversation.Store
	bufSize       int
	logger        logging.Logger
}

// New creates a dispatch service around the given registry.
func New(reg *registry.Registry, optFns ...func(o *Options)) *Service {
	opts := Options{
		StreamBufferSize: 100,
		Logger:           logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Service{
		registry:      reg,
		conversations: opts.Conversations,
		bufSize:       opts.StreamBufferSize,
		logger:        opts.Logger,
	}
}

// Registry returns the underlying agent registry.
func (s *Service) Registry() *registry.Registry { return s.registry }

// Conversations returns the conversation store, or nil when conversation
// tracking is disabled.
func (s *Service) Conversations() *conversation.Store { return s.conversations }

// Handle processes one request envelope. A message without the protocol
// magic yields the soft "error" envelope with a nil error; a dispatchable
// message is routed through the registry and its errors are propagated.
func (s *Service) Handle(ctx context.Context, msg core.Message) (core.Message, error) {
	if !msg.Valid() {
		s.logger.Warn("rejected message with invalid magic", "magic", msg.Magic)
		return core.ErrorMessage("invalid magic: " + msg.Magic), nil
	}
	resp, err := s.registry.Dispatch(ctx, msg)
	if err != nil {
		s.logger.Error("dispatch failed", "command", msg.Command, "error", err)
		return core.Message{}, err
	}
	return resp, nil
}

// HandleStream processes one request envelope on a background goroutine and
// returns a bounded result channel. The response (or the soft error
// envelope) is emitted as a single content token; routing errors are
// delivered in-band. Exactly one finish token terminates the channel. Every
// send selects on ctx.Done(), so a disconnected consumer stops the
// background task after at most one pending send attempt.
func (s *Service) HandleStream(ctx context.Context, msg core.Message) <-chan stream.Result {
	out := make(chan stream.Result, s.bufSize)
	go func() {
		defer close(out)

		emit := func(r stream.Result) bool {
			select {
			case out <- r:
				return true
			case <-ctx.Done():
				return false
			}
		}

		if !msg.Valid() {
			if !emit(envelopeResult(core.ErrorMessage("invalid magic: " + msg.Magic))) {
				return
			}
			emit(stream.Result{Token: stream.Token{Finish: true}})
			return
		}

		resp, err := s.registry.Dispatch(ctx, msg)
		if err != nil {
			s.logger.Error("stream dispatch failed", "command", msg.Command, "error", err)
			if !emit(stream.Result{Err: err}) {
				return
			}
		} else if !emit(envelopeResult(resp)) {
			return
		}
		emit(stream.Result{Token: stream.Token{Finish: true}})
	}()
	return out
}

// envelopeResult wraps a response envelope as a single content token.
func envelopeResult(msg core.Message) stream.Result {
	data, err := json.Marshal(msg)
	if err != nil {
		return stream.Result{Err: &core.AgentError{Err: err}}
	}
	return stream.Result{Token: stream.Token{Content: string(data)}}
}
