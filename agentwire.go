// Package agentwire provides a high-level façade over the dispatch service
// and its supporting pieces (registry, conversation store, streaming &
// logging) enabling rapid construction of envelope-routing backends. Most
// applications interact with this package by:
//  1. Creating an AgentWire via New() (optionally overriding the defaults)
//  2. Registering one or more agents (openai, deepseek, anthropic, custom)
//  3. Dispatching envelopes synchronously (Dispatch) or as a token stream
//     (DispatchStream)
//
// The façade delegates routing to dispatch.Service while keeping setup and
// usage ergonomics concise. All defaults are safe for local development and
// testing; production deployments typically supply a structured logger and
// run the HTTP server from the server package on top of Service().
package agentwire

import (
	"context"
	"time"

	"github.com/agentwire/agentwire/conversation"
	"github.com/agentwire/agentwire/core"
	"github.com/agentwire/agentwire/dispatch"
	"github.com/agentwire/agentwire/logging"
	"github.com/agentwire/agentwire/registry"
	"github.com/agentwire/agentwire/stream"
)

// Options configures the AgentWire instance.
type Options struct {
	// ConversationMaxAge is the idle lifetime applied by SweepExpired.
	// Conversations whose last update is older than this are eligible for
	// removal. Expiry only happens when a sweep runs; the store keeps no
	// timer of its own.
	ConversationMaxAge time.Duration

	// StreamBufferSize sets the channel buffer size for token streaming.
	// Larger buffers reduce blocking but increase memory usage.
	StreamBufferSize int

	// Conversations overrides the default in-memory store.
	Conversations *conversation.Store

	// Logger (defaults to NoOp logger if nil)
	Logger logging.Logger
}

// AgentWire is the high-level façade aggregating the registry, the
// conversation store and the dispatch service.
type AgentWire struct {
	opts    Options
	service *dispatch.Service
}

// New creates a new AgentWire instance with optional overrides. An unset
// conversation store is initialized with an in-memory implementation.
func New(optFns ...func(o *Options)) *AgentWire {
	opts := Options{
		ConversationMaxAge: time.Hour,
		StreamBufferSize:   100,
		Logger:             logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.Conversations == nil {
		opts.Conversations = conversation.NewStore(opts.ConversationMaxAge)
	}

	svc := dispatch.New(registry.New(), func(o *dispatch.Options) {
		o.Conversations = opts.Conversations
		o.StreamBufferSize = opts.StreamBufferSize
		o.Logger = opts.Logger
	})

	return &AgentWire{opts: opts, service: svc}
}

// RegisterAgent adds an agent to the underlying registry. Registering the
// same name twice replaces the earlier agent.
func (w *AgentWire) RegisterAgent(a core.Agent) { w.service.Registry().Register(a) }

// Dispatch routes one envelope to its agent and returns the response
// envelope.
func (w *AgentWire) Dispatch(ctx context.Context, msg core.Message) (core.Message, error) {
	return w.service.Handle(ctx, msg)
}

// DispatchStream routes one envelope and returns the response as a token
// stream terminated by a finish token.
func (w *AgentWire) DispatchStream(ctx context.Context, msg core.Message) <-chan stream.Result {
	return w.service.HandleStream(ctx, msg)
}

// Service exposes the underlying dispatch service, e.g. for mounting the
// HTTP server on top of it.
func (w *AgentWire) Service() *dispatch.Service { return w.service }

// Conversations exposes the conversation store.
func (w *AgentWire) Conversations() *conversation.Store { return w.opts.Conversations }
