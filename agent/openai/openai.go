// Package openai implements the "openai" capability using the OpenAI Chat
// Completions API via the official Go SDK. Payload contract: user_prompt
// (required), conversation_id, temperature, max_tokens (optional). Responses
// use command "openai_response" with an "answer" field.
package openai

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"

	"github.com/agentwire/agentwire/agent"
	"github.com/agentwire/agentwire/conversation"
	"github.com/agentwire/agentwire/core"
)

// Options configure the OpenAI agent. Fields mirror a minimal subset of the
// Chat Completion parameters; per-request payload fields override them.
type Options struct {
	Model               string
	Temperature         float64
	MaxCompletionTokens int64

	// Conversations enables multi-turn context: prior messages of the
	// payload's conversation_id are sent to the model and the exchange is
	// recorded after success. Nil disables history.
	Conversations *conversation.Store
}

// Agent wraps the OpenAI Chat Completions API behind the core.Agent contract.
type Agent struct {
	client *openai.Client
	opts   Options
}

var _ core.Agent = (*Agent)(nil)

// New creates an OpenAI agent using the default client (API key from the
// OPENAI_API_KEY environment variable).
func New(optFns ...func(o *Options)) *Agent {
	client := openai.NewClient()
	return NewFromClient(&client, optFns...)
}

// NewFromClient creates an OpenAI agent from an existing client. Useful for
// custom base URLs, middlewares or tests.
func NewFromClient(client *openai.Client, optFns ...func(o *Options)) *Agent {
	opts := Options{
		Model:               openai.ChatModelGPT4oMini,
		Temperature:         0.7,
		MaxCompletionTokens: 4096,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Agent{client: client, opts: opts}
}

// Name returns "openai".
func (a *Agent) Name() string { return "openai" }

// Handle sends the payload's prompt (plus any conversation history) to the
// Chat Completions API and maps the first choice back into the response
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

	params := openai.ChatCompletionNewParams{
		Messages:            buildMessages(history),
		Model:               a.opts.Model,
		Temperature:         openai.Float(a.opts.Temperature),
		MaxCompletionTokens: openai.Int(a.opts.MaxCompletionTokens),
	}
	if req.Temperature != nil {
		params.Temperature = openai.Float(*req.Temperature)
	}
	if req.MaxTokens != nil {
		params.MaxCompletionTokens = openai.Int(*req.MaxTokens)
	}

	resp, err := a.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return core.Message{}, fmt.Errorf("openai api error: %w", err)
	}
	if len(resp.Choices) == 0 {
		return core.Message{}, fmt.Errorf("no response choices")
	}
	answer := resp.Choices[0].Message.Content

	if err := req.RecordExchange(a.opts.Conversations, answer); err != nil {
		return core.Message{}, err
	}

	return core.New(core.ResponseCommand(a.Name()), map[string]any{
		"answer":        answer,
		"model":         resp.Model,
		"finish_reason": resp.Choices[0].FinishReason,
	}), nil
}

// buildMessages converts conversation history into chat messages.
func buildMessages(history []conversation.Message) []openai.ChatCompletionMessageParamUnion {
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
	return messages
}
