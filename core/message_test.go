package core

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMessage(t *testing.T) {
	msg := New("openai:chat", map[string]string{"user_prompt": "hello"})

	assert.Equal(t, Magic, msg.Magic)
	assert.Equal(t, Version, msg.Version)
	assert.Equal(t, "openai:chat", msg.Command)
	assert.JSONEq(t, `{"user_prompt":"hello"}`, string(msg.Payload))
	assert.True(t, msg.Valid())
}

func TestNewMessageUnmarshalablePayload(t *testing.T) {
	// Channels cannot be marshaled; the constructor must not fail.
	msg := New("test:action", make(chan int))
	assert.Equal(t, json.RawMessage("null"), msg.Payload)
}

func TestMessageRoundTrip(t *testing.T) {
	msg := New("deepseek:chat", map[string]any{"user_prompt": "hi", "max_tokens": 10})

	data, err := json.Marshal(msg)
	require.NoError(t, err)

	var decoded Message
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, msg.Command, decoded.Command)
	assert.Equal(t, msg.Magic, decoded.Magic)
	assert.JSONEq(t, string(msg.Payload), string(decoded.Payload))
}

func TestSplitCommand(t *testing.T) {
	tests := []struct {
		name    string
		command string
		agent   string
		action  string
		wantErr bool
	}{
		{name: "simple", command: "openai:chat", agent: "openai", action: "chat"},
		{name: "action contains separator", command: "openai:chat:stream", agent: "openai", action: "chat:stream"},
		{name: "empty action", command: "openai:", agent: "openai", action: ""},
		{name: "no separator", command: "openai-chat", wantErr: true},
		{name: "empty command", command: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			agent, action, err := New(tt.command, nil).SplitCommand()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidCommandFormat)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.agent, agent)
			assert.Equal(t, tt.action, action)
		})
	}
}

func TestErrorMessage(t *testing.T) {
	msg := ErrorMessage("invalid magic")

	assert.Equal(t, "error", msg.Command)
	assert.True(t, msg.Valid())
	assert.JSONEq(t, `{"message":"invalid magic"}`, string(msg.Payload))
}

func TestResponseCommand(t *testing.T) {
	assert.Equal(t, "openai_response", ResponseCommand("openai"))
}
