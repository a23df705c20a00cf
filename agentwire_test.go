package agentwire

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentwire/agentwire/agent"
	"github.com/agentwire/agentwire/conversation"
	"github.com/agentwire/agentwire/core"
)

func TestDispatch(t *testing.T) {
	w := New()
	w.RegisterAgent(agent.Echo{})

	resp, err := w.Dispatch(context.Background(), core.New("echo:say", map[string]string{"text": "hi"}))
	require.NoError(t, err)
	assert.Equal(t, "echo_response", resp.Command)
	assert.JSONEq(t, `{"text":"hi"}`, string(resp.Payload))
}

func TestDispatchUnknownAgent(t *testing.T) {
	w := New()

	_, err := w.Dispatch(context.Background(), core.New("ghost:say", nil))
	var notRegistered *core.NotRegisteredError
	require.ErrorAs(t, err, &notRegistered)
	assert.Equal(t, "ghost", notRegistered.Agent)
}

func TestDispatchStream(t *testing.T) {
	w := New()
	w.RegisterAgent(agent.Echo{})

	var tokens []string
	var finished bool
	for r := range w.DispatchStream(context.Background(), core.New("echo:say", map[string]string{"text": "hi"})) {
		require.NoError(t, r.Err)
		if r.Token.Finish {
			finished = true
			continue
		}
		tokens = append(tokens, r.Token.Content)
	}
	require.Len(t, tokens, 1)
	assert.True(t, finished)

	var inner core.Message
	require.NoError(t, json.Unmarshal([]byte(tokens[0]), &inner))
	assert.Equal(t, "echo_response", inner.Command)
}

func TestConversationsDefault(t *testing.T) {
	w := New(func(o *Options) {
		o.ConversationMaxAge = 30 * time.Minute
	})

	store := w.Conversations()
	require.NotNil(t, store)
	assert.Equal(t, 30*time.Minute, store.MaxAge())
}

func TestConversationsOverride(t *testing.T) {
	custom := conversation.NewStore(time.Minute)
	w := New(func(o *Options) {
		o.Conversations = custom
	})

	assert.Same(t, custom, w.Conversations())
	assert.Same(t, custom, w.Service().Conversations())
}
