// Package deepseek implements the "deepseek" capability. DeepSeek exposes an
// OpenAI-compatible wire format, so the agent drives it through the OpenAI
// Go SDK with a base URL override. Payload contract matches the openai
// agent; the response additionally carries the completion id and
// finish_reason.
package deepseek

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/agentwire/agentwire/agent"
	"github.com/agentwire/agentwire/conversation"
	"github.com/agentwire/agentwire/core"
)

// DefaultEndpoint is the public DeepSeek API base URL.
const DefaultEndpoint = "https://api.deepseek.com"

// Options configure the DeepSeek agent.
type Options struct {
	APIKey      string
	Endpoint    string
	Model       string
	Temperature float64
	MaxTokens   int64

	// Conversations enables multi-turn context, see the openai agent.
	Conversations *conversation.Store
}

// Agent drives DeepSeek's OpenAI-compatible chat API behind the core.Agent
// contract.
type Agent struct {
	client *openai.Client
	opts   Options
}

var _ core.Agent = (*Agent)(nil)

// New creates a DeepSeek agent. An empty APIKey falls back to the SDK's
// environment handling.
func New(optFns ...func(o *Options)) *Agent {
	opts := applyOptions(optFns)
	clientOpts := []option.RequestOption{option.WithBaseURL(opts.Endpoint)}
	if opts.APIKey != "" {
		clientOpts = append(clientOpts, option.WithAPIKey(opts.APIKey))
	}
	client := openai.NewClient(clientOpts...)
	return &Agent{client: &client, opts: opts}
}

// NewFromClient creates a DeepSeek agent from an existing client. Useful for
// tests pointing the SDK at a local server.
func NewFromClient(client *openai.Client, optFns ...func(o *Options)) *Agent {
	return &Agent{client: client, opts: applyOptions(optFns)}
}

func applyOptions(optFns []func(o *Options)) Options {
	opts := Options{
		Endpoint:    DefaultEndpoint,
		Model:       "deepseek-chat",
		Temperature: 0.7,
		MaxTokens:   4096,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return opts
}

// Name returns "deepseek".
func (a *Agent) Name() string { return "deepseek" }

// Handle sends the payload's prompt (plus conversation history) to DeepSeek
// and maps the first choice into a "deepseek_response" envelope carrying
// answer, id and finish_reason.
func (a *Agent) Handle(ctx context.Context, msg core.Message) (core.Message, error) {
	req, err := agent.DecodeChatRequest(msg)
	if err != nil {
		return core.Message{}, err
	}
	history, err := req.History(a.opts.Conversations)
	if err != nil {
		return core.Message{}, err
	}

	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(history))
	for _, m := range history {
		switch m.Role {
		case "system":
			messages = append(messages, openai.SystemMessage(m.Content))
		case "assistant":
			messages = append(messages, openai.AssistantMessage(m.Content))
		default:
			messages = append(messages, openai.UserMessage(m.Content))
		}
	}

	params := openai.ChatCompletionNewParams{
		Messages:    messages,
		Model:       a.opts.Model,
		Temperature: openai.Float(a.opts.Temperature),
		MaxTokens:   openai.Int(a.opts.MaxTokens),
	}
	if req.Temperature != nil {
		params.Temperature = openai.Float(*req.Temperature)
	}
	if req.MaxTokens != nil {
		params.MaxTokens = openai.Int(*req.MaxTokens)
	}

	resp, err := a.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return core.Message{}, fmt.Errorf("deepseek api error: %w", err)
	}
	if len(resp.Choices) == 0 {
		return core.Message{}, fmt.Errorf("no response choices")
	}
	choice := resp.Choices[0]

	if err := req.RecordExchange(a.opts.Conversations, choice.Message.Content); err != nil {
		return core.Message{}, err
	}

	return core.New(core.ResponseCommand(a.Name()), map[string]any{
		"answer":        choice.Message.Content,
		"id":            resp.ID,
		"finish_reason": choice.FinishReason,
	}), nil
}
