// Package agent contains the built-in capability implementations and the
// payload/history helpers they share. Backend-specific agents live in
// sub-packages (openai, deepseek, anthropic) so callers only link the SDKs
// they actually register.
package agent
