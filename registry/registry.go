// Package registry implements the command-to-agent dispatch table. Agents
// are registered by name and looked up via the command prefix of inbound
// messages. Registration normally happens once at startup, but the table is
// safe for concurrent registration and dispatch.
package registry

import (
	"context"
	"errors"
	"sync"

	"github.com/agentwire/agentwire/core"
)

// Registry routes messages to agents keyed by the agent name derived from
// the message command. A single RWMutex guards the table; dispatch resolves
// the agent once and invokes it outside the lock, so an agent's backend call
// never executes while the registry is locked.
type Registry struct {
	mu     sync.RWMutex
	agents map[string]core.Agent
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{agents: make(map[string]core.Agent)}
}

// Register makes an agent reachable under its Name. Registering a second
// agent under the same name replaces the first (last write wins); in-flight
// dispatches that already resolved the old agent are unaffected.
func (r *Registry) Register(agent core.Agent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.agents[agent.Name()] = agent
}

// Get returns the agent registered under name, if any.
func (r *Registry) Get(name string) (core.Agent, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	agent, ok := r.agents[name]
	return agent, ok
}

// Names returns the currently registered agent names.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.agents))
	for name := range r.agents {
		names = append(names, name)
	}
	return names
}

// Dispatch routes a message to the agent addressed by its command prefix.
//
// Errors: core.ErrInvalidCommandFormat when the command has no separator,
// *core.NotRegisteredError on a routing miss, and *core.AgentError for any
// failure the agent itself returns (wrapped if the agent returned a bare
// error).
func (r *Registry) Dispatch(ctx context.Context, msg core.Message) (core.Message, error) {
	agentKey, _, err := msg.SplitCommand()
	if err != nil {
		return core.Message{}, err
	}

	r.mu.RLock()
	agent, ok := r.agents[agentKey]
	r.mu.RUnlock()
	if !ok {
		return core.Message{}, &core.NotRegisteredError{Agent: agentKey}
	}

	resp, err := agent.Handle(ctx, msg)
	if err != nil {
		var agentErr *core.AgentError
		if !errors.As(err, &agentErr) {
			err = &core.AgentError{Agent: agentKey, Err: err}
		}
		return core.Message{}, err
	}
	return resp, nil
}
