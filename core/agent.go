package core

import "context"

// Agent is the capability contract every backend handler implements.
//
// Implementations must be safe for concurrent Handle calls: the registry
// invokes a single instance from arbitrarily many request goroutines. An
// agent receives the full request envelope, is solely responsible for
// validating its payload fields, and returns either a response envelope or
// an error. Errors crossing the registry boundary are wrapped into
// *AgentError so callers have a single shape to branch on.
type Agent interface {
	// Name returns the identifier used as the command prefix ("<name>:<action>").
	Name() string

	// Handle processes one request and returns the response envelope.
	Handle(ctx context.Context, msg Message) (Message, error)
}
