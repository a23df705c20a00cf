package agent

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/agentwire/agentwire/conversation"
	"github.com/agentwire/agentwire/core"
)

// ChatRequest is the payload shape shared by the chat-style agents. Only
// UserPrompt is required; the rest tune the backend call or attach the
// exchange to a stored conversation.
type ChatRequest struct {
	UserPrompt     string   `json:"user_prompt"`
	ConversationID string   `json:"conversation_id,omitempty"`
	Temperature    *float64 `json:"temperature,omitempty"`
	MaxTokens      *int64   `json:"max_tokens,omitempty"`
}

// ErrMissingUserPrompt reports a chat payload without the required
// user_prompt field.
var ErrMissingUserPrompt = errors.New("missing user_prompt")

// DecodeChatRequest parses and validates a chat payload.
func DecodeChatRequest(msg core.Message) (ChatRequest, error) {
	var req ChatRequest
	if len(msg.Payload) > 0 {
		if err := json.Unmarshal(msg.Payload, &req); err != nil {
			return ChatRequest{}, fmt.Errorf("decode payload: %w", err)
		}
	}
	if req.UserPrompt == "" {
		return ChatRequest{}, ErrMissingUserPrompt
	}
	return req, nil
}

// History returns the prior messages of the request's conversation plus the
// new user prompt as the final entry. With no store or no conversation id it
// degrades to the single prompt message.
func (r ChatRequest) History(store *conversation.Store) ([]conversation.Message, error) {
	prompt := conversation.Message{Role: "user", Content: r.UserPrompt}
	if store == nil || r.ConversationID == "" {
		return []conversation.Message{prompt}, nil
	}
	conv, ok := store.Get(r.ConversationID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", conversation.ErrNotFound, r.ConversationID)
	}
	return append(conv.Messages, prompt), nil
}

// RecordExchange appends the user prompt and the assistant answer to the
// request's conversation. A request without a conversation id is a no-op.
func (r ChatRequest) RecordExchange(store *conversation.Store, answer string) error {
	if store == nil || r.ConversationID == "" {
		return nil
	}
	if err := store.AppendMessage(r.ConversationID, "user", r.UserPrompt); err != nil {
		return err
	}
	return store.AppendMessage(r.ConversationID, "assistant", answer)
}
