package core

import (
	"errors"
	"fmt"
)

// ErrInvalidCommandFormat is returned when a command string does not contain
// the "<agent>:<action>" separator.
var ErrInvalidCommandFormat = errors.New(`invalid command format (expected "agent:action")`)

// NotRegisteredError reports a routing miss: no agent is registered under
// the command's agent key.
type NotRegisteredError struct {
	Agent string
}

func (e *NotRegisteredError) Error() string {
	return fmt.Sprintf("agent %q is not registered", e.Agent)
}

// AgentError wraps any failure raised by an agent's Handle: missing payload
// fields, backend call failures, non-success backend statuses or response
// shape mismatches. The registry guarantees every capability error leaves
// its boundary as an *AgentError.
type AgentError struct {
	Agent string
	Err   error
}

func (e *AgentError) Error() string {
	if e.Agent == "" {
		return fmt.Sprintf("agent error: %v", e.Err)
	}
	return fmt.Sprintf("agent %q: %v", e.Agent, e.Err)
}

func (e *AgentError) Unwrap() error { return e.Err }

// DecodeError reports a single malformed line in a token stream. It is
// delivered in-band and does not terminate the stream.
type DecodeError struct {
	Line string
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode stream line %q: %v", e.Line, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// TransportError reports a failure of the chunk source itself. It is fatal
// to the stream: the decoder stops consuming and emits its finish token.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("stream transport: %v", e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }
