package deepseek

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentwire/agentwire/agent"
	"github.com/agentwire/agentwire/core"
)

func newBackend(t *testing.T, handler http.HandlerFunc) *Agent {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	client := openai.NewClient(
		option.WithBaseURL(srv.URL),
		option.WithAPIKey("test-key"),
	)
	return NewFromClient(&client)
}

func TestHandleMissingPrompt(t *testing.T) {
	a := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("backend must not be called for invalid payloads")
	})

	_, err := a.Handle(context.Background(), core.New("deepseek:chat", map[string]any{}))
	assert.ErrorIs(t, err, agent.ErrMissingUserPrompt)
}

func TestHandleSuccess(t *testing.T) {
	a := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		var req map[string]any
		require.NoError(t, json.Unmarshal(body, &req))
		assert.Equal(t, "deepseek-chat", req["model"])

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "ds-42",
			"object": "chat.completion",
			"model": "deepseek-chat",
			"choices": [{
				"index": 0,
				"finish_reason": "stop",
				"message": {"role": "assistant", "content": "Quantum computing uses qubits."}
			}]
		}`))
	})

	resp, err := a.Handle(context.Background(), core.New("deepseek:chat", map[string]any{
		"user_prompt": "What is quantum computing?",
		"max_tokens":  64,
	}))
	require.NoError(t, err)
	assert.Equal(t, "deepseek_response", resp.Command)

	var payload struct {
		Answer       string `json:"answer"`
		ID           string `json:"id"`
		FinishReason string `json:"finish_reason"`
	}
	require.NoError(t, json.Unmarshal(resp.Payload, &payload))
	assert.Equal(t, "Quantum computing uses qubits.", payload.Answer)
	assert.Equal(t, "ds-42", payload.ID)
	assert.Equal(t, "stop", payload.FinishReason)
}

func TestHandleBackendStatusError(t *testing.T) {
	a := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error": {"message": "invalid key"}}`, http.StatusUnauthorized)
	})

	_, err := a.Handle(context.Background(), core.New("deepseek:chat", map[string]any{
		"user_prompt": "hi",
	}))
	assert.Error(t, err)
}

func TestDefaultOptions(t *testing.T) {
	a := New(func(o *Options) { o.APIKey = "k" })
	assert.Equal(t, "deepseek", a.Name())
	assert.Equal(t, DefaultEndpoint, a.opts.Endpoint)
	assert.Equal(t, "deepseek-chat", a.opts.Model)
}
