package agent

import (
	"context"

	"github.com/agentwire/agentwire/core"
)

// Echo is a capability that replies with the request payload unchanged.
// It needs no backend and is useful for tests, demos and health probes.
type Echo struct{}

// Name returns "echo".
func (Echo) Name() string { return "echo" }

// Handle returns an "echo_response" envelope carrying the request payload.
func (Echo) Handle(_ context.Context, msg core.Message) (core.Message, error) {
	return core.NewRaw(core.ResponseCommand("echo"), msg.Payload), nil
}
