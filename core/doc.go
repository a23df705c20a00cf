// Package core defines the domain contracts shared by every AgentWire
// package: the wire Message envelope, the Agent capability interface and the
// protocol error taxonomy. Higher level packages (registry, dispatch, stream,
// server) depend only on these types, never on each other's concrete
// implementations.
package core
