// Package anthropic implements the "anthropic" capability using the Claude
// Messages API via the official Go SDK. Payload contract matches the other
// chat agents.
package anthropic

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/agentwire/agentwire/agent"
	"github.com/agentwire/agentwire/conversation"
	"github.com/agentwire/agentwire/core"
)

// Options configure the Anthropic agent.
type Options struct {
	APIKey      string
	Model       anthropic.Model
	Temperature float64
	MaxTokens   int64

	// Conversations enables multi-turn context, see the openai agent.
	Conversations *conversation.Store
}

// Agent wraps the Anthropic Messages API behind the core.Agent contract.
type Agent struct {
	client *anthropic.Client
	opts   Options
}

var _ core.Agent = (*Agent)(nil)

// New creates an Anthropic agent. An empty APIKey falls back to the SDK's
// environment handling.
func New(optFns ...func(o *Options)) *Agent {
	opts := applyOptions(optFns)
	var clientOpts []option.RequestOption
	if opts.APIKey != "" {
		clientOpts = append(clientOpts, option.WithAPIKey(opts.APIKey))
	}
	client := anthropic.NewClient(clientOpts...)
	return &Agent{client: &client, opts: opts}
}

// NewFromClient creates an Anthropic agent from an existing client.
func NewFromClient(client *anthropic.Client, optFns ...func(o *Options)) *Agent {
	return &Agent{client: client, opts: applyOptions(optFns)}
}

func applyOptions(optFns []func(o *Options)) Options {
	opts := Options{
		Model:       anthropic.ModelClaude3_5Sonnet20241022,
		Temperature: 0.7,
		MaxTokens:   4096,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return opts
}

// Name returns "anthropic".
func (a *Agent) Name() string { return "anthropic" }

// Handle sends the payload's prompt (plus conversation history) to the
// Messages API and maps the text blocks into an "anthropic_response"
// envelope.
func (a *Agent) Handle(ctx context.Context, msg core.Message) (core.Message, error) {
	req, err := agent.DecodeChatRequest(msg)
	if err != nil {
		return core.Message{}, err
	}
	history, err := req.History(a.opts.Conversations)
	if err != nil {
		return core.Message{}, err
	}

	params := anthropic.MessageNewParams{
		Model:       a.opts.Model,
		Messages:    buildMessages(history),
		MaxTokens:   a.opts.MaxTokens,
		Temperature: anthropic.Float(a.opts.Temperature),
	}
	if req.Temperature != nil {
		params.Temperature = anthropic.Float(*req.Temperature)
	}
	if req.MaxTokens != nil {
		params.MaxTokens = *req.MaxTokens
	}

	resp, err := a.client.Messages.New(ctx, params)
	if err != nil {
		return core.Message{}, fmt.Errorf("anthropic api error: %w", err)
	}

	var answer strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			answer.WriteString(block.AsText().Text)
		}
	}
	if answer.Len() == 0 {
		return core.Message{}, fmt.Errorf("no text content in response")
	}

	if err := req.RecordExchange(a.opts.Conversations, answer.String()); err != nil {
		return core.Message{}, err
	}

	return core.New(core.ResponseCommand(a.Name()), map[string]any{
		"answer":      answer.String(),
		"model":       resp.Model,
		"stop_reason": resp.StopReason,
	}), nil
}

// buildMessages converts conversation history into Messages API turns.
// System entries are folded into the first user turn since the Messages API
// takes system prompts separately.
func buildMessages(history []conversation.Message) []anthropic.MessageParam {
	messages := make([]anthropic.MessageParam, 0, len(history))
	for _, m := range history {
		block := anthropic.NewTextBlock(m.Content)
		if m.Role == "assistant" {
			messages = append(messages, anthropic.NewAssistantMessage(block))
		} else {
			messages = append(messages, anthropic.NewUserMessage(block))
		}
	}
	return messages
}
