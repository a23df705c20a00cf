package core

import (
	"encoding/json"
	"strings"
)

const (
	// Magic is the protocol sentinel every dispatchable message must carry.
	Magic = "MCP0"

	// Version is the current protocol version.
	Version = 1

	// CommandSeparator splits a command into its agent key and action.
	CommandSeparator = ":"
)

// Message is the protocol envelope exchanged between clients, the dispatch
// service and agents. Request and response share the same shape. Messages
// are value types: copies, not in-place edits, flow through the system.
//
// Payload is opaque to the envelope and routing layers; only the agent
// addressed by Command interprets its fields.
type Message struct {
	Magic   string          `json:"magic"`
	Version int             `json:"version"`
	Command string          `json:"command"`
	Payload json.RawMessage `json:"payload"`
}

// New creates a message with the fixed protocol magic and version. The
// payload is marshaled to JSON; a value that cannot be marshaled degrades to
// JSON null so that construction never fails.
func New(command string, payload any) Message {
	raw, err := json.Marshal(payload)
	if err != nil {
		raw = json.RawMessage("null")
	}
	return NewRaw(command, raw)
}

// NewRaw creates a message from an already encoded payload.
func NewRaw(command string, payload json.RawMessage) Message {
	return Message{
		Magic:   Magic,
		Version: Version,
		Command: command,
		Payload: payload,
	}
}

// ErrorMessage builds the soft "error" response envelope used when a request
// fails protocol framing (e.g. wrong magic). It is a success-shaped message,
// not a transport error.
func ErrorMessage(detail string) Message {
	return New("error", map[string]string{"message": detail})
}

// ResponseCommand returns the conventional response command for an agent,
// e.g. "openai" -> "openai_response".
func ResponseCommand(agent string) string {
	return agent + "_response"
}

// SplitCommand splits Command into (agent, action) on the first separator.
// Only the first occurrence matters: the action part may itself contain the
// separator. Returns ErrInvalidCommandFormat when no separator is present.
func (m Message) SplitCommand() (agent, action string, err error) {
	agent, action, ok := strings.Cut(m.Command, CommandSeparator)
	if !ok {
		return "", "", ErrInvalidCommandFormat
	}
	return agent, action, nil
}

// Valid reports whether the message carries the protocol magic and is
// therefore dispatchable.
func (m Message) Valid() bool {
	return m.Magic == Magic
}
