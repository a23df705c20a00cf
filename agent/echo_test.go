package agent

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentwire/agentwire/core"
)

var _ core.Agent = Echo{}

func TestEchoAgent(t *testing.T) {
	resp, err := Echo{}.Handle(context.Background(), core.New("echo:say", map[string]string{"text": "back at you"}))
	require.NoError(t, err)
	assert.Equal(t, "echo_response", resp.Command)
	assert.JSONEq(t, `{"text":"back at you"}`, string(resp.Payload))
}
