package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentwire/agentwire/core"
)

func TestNewMessageForAgent(t *testing.T) {
	msg := NewMessageForAgent("openai", "chat", map[string]string{"user_prompt": "hi"})

	assert.True(t, msg.Valid())
	assert.Equal(t, "openai:chat", msg.Command)
	assert.JSONEq(t, `{"user_prompt":"hi"}`, string(msg.Payload))
}

func TestSend(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/mcp", r.URL.Path)
		gotAuth = r.Header.Get("Authorization")

		var msg core.Message
		require.NoError(t, json.NewDecoder(r.Body).Decode(&msg))
		assert.Equal(t, "echo:say", msg.Command)

		resp := core.NewRaw("echo_response", msg.Payload)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	c := New(srv.URL, func(o *Options) {
		o.Token = "secret"
	})

	out, err := c.Send(context.Background(), NewMessageForAgent("echo", "say", map[string]string{"text": "hi"}))
	require.NoError(t, err)
	assert.Equal(t, "echo_response", out.Command)
	assert.JSONEq(t, `{"text":"hi"}`, string(out.Payload))
	assert.Equal(t, "Bearer secret", gotAuth)
}

func TestSendServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "agent ghost is not registered"})
	}))
	defer srv.Close()

	_, err := New(srv.URL).Send(context.Background(), NewMessageForAgent("ghost", "say", nil))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
	assert.Contains(t, err.Error(), "ghost")
}

func TestStream(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/mcp/stream", r.URL.Path)
		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, "data: {\"content\":\"hello\",\"is_finish\":false}\n\n")
		fmt.Fprint(w, "data: {\"content\":\" world\",\"is_finish\":false}\n\n")
		fmt.Fprint(w, "data: {\"content\":\"\",\"is_finish\":true}\n\n")
	}))
	defer srv.Close()

	results, err := New(srv.URL).Stream(context.Background(), NewMessageForAgent("echo", "say", nil))
	require.NoError(t, err)

	var contents []string
	var finished bool
	for r := range results {
		require.NoError(t, r.Err)
		if r.Token.Finish {
			finished = true
			continue
		}
		contents = append(contents, r.Token.Content)
	}
	assert.Equal(t, []string{"hello", " world"}, contents)
	assert.True(t, finished)
}

func TestStreamServerErrorEvent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, "data: {\"error\":\"agent ghost is not registered\"}\n\n")
		fmt.Fprint(w, "data: {\"content\":\"\",\"is_finish\":true}\n\n")
	}))
	defer srv.Close()

	results, err := New(srv.URL).Stream(context.Background(), NewMessageForAgent("ghost", "say", nil))
	require.NoError(t, err)

	first := <-results
	require.Error(t, first.Err)
	assert.Contains(t, first.Err.Error(), "ghost")

	second := <-results
	require.NoError(t, second.Err)
	assert.True(t, second.Token.Finish)
}

func TestStreamRejectedRequest(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "invalid or missing bearer token"})
	}))
	defer srv.Close()

	_, err := New(srv.URL).Stream(context.Background(), NewMessageForAgent("echo", "say", nil))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}
