// Command agentwired runs the AgentWire HTTP server. Configuration comes
// from AGENTWIRE_-prefixed environment variables; chat backends are
// registered for every API key that is set.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	anthropicsdk "github.com/anthropics/anthropic-sdk-go"
	openaisdk "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/agentwire/agentwire"
	"github.com/agentwire/agentwire/agent"
	"github.com/agentwire/agentwire/agent/anthropic"
	"github.com/agentwire/agentwire/agent/deepseek"
	"github.com/agentwire/agentwire/agent/openai"
	"github.com/agentwire/agentwire/auth"
	"github.com/agentwire/agentwire/config"
	"github.com/agentwire/agentwire/logging"
	"github.com/agentwire/agentwire/server"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "agentwired: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := logging.New(cfg.LogLevel, cfg.LogFormat, os.Stderr)

	wire := agentwire.New(func(o *agentwire.Options) {
		o.ConversationMaxAge = cfg.ConversationMaxAge
		o.StreamBufferSize = cfg.StreamBufferSize
		o.Logger = logger
	})

	registerAgents(wire, cfg)

	tokens, err := loadTokens(cfg)
	if err != nil {
		return err
	}

	srv := server.New(wire.Service(), func(o *server.Options) {
		o.Addr = cfg.Addr
		o.Auth = tokens
		o.SweepInterval = cfg.SweepInterval
		o.Logger = logger
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := srv.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// registerAgents wires a chat agent for every backend whose API key is
// configured, plus the echo agent for smoke testing.
func registerAgents(wire *agentwire.AgentWire, cfg *config.Config) {
	wire.RegisterAgent(agent.Echo{})

	if cfg.OpenAIAPIKey != "" {
		client := openaisdk.NewClient(option.WithAPIKey(cfg.OpenAIAPIKey))
		wire.RegisterAgent(openai.NewFromClient(&client, func(o *openai.Options) {
			if cfg.OpenAIModel != "" {
				o.Model = cfg.OpenAIModel
			}
			o.Conversations = wire.Conversations()
		}))
	}

	if cfg.DeepSeekAPIKey != "" {
		wire.RegisterAgent(deepseek.New(func(o *deepseek.Options) {
			o.APIKey = cfg.DeepSeekAPIKey
			if cfg.DeepSeekEndpoint != "" {
				o.Endpoint = cfg.DeepSeekEndpoint
			}
			if cfg.DeepSeekModel != "" {
				o.Model = cfg.DeepSeekModel
			}
			o.Conversations = wire.Conversations()
		}))
	}

	if cfg.AnthropicAPIKey != "" {
		wire.RegisterAgent(anthropic.New(func(o *anthropic.Options) {
			o.APIKey = cfg.AnthropicAPIKey
			if cfg.AnthropicModel != "" {
				o.Model = anthropicsdk.Model(cfg.AnthropicModel)
			}
			o.Conversations = wire.Conversations()
		}))
	}
}

// loadTokens assembles the bearer-token set from the token file and the
// inline token list. Returns nil when neither is configured, which leaves
// the server unauthenticated.
func loadTokens(cfg *config.Config) (*auth.TokenSet, error) {
	if cfg.TokenFile == "" && len(cfg.Tokens) == 0 {
		return nil, nil
	}
	set := auth.NewTokenSet(cfg.Tokens...)
	if cfg.TokenFile != "" {
		fromFile, err := auth.LoadFile(cfg.TokenFile)
		if err != nil {
			return nil, err
		}
		for _, token := range cfg.Tokens {
			fromFile.Add(token)
		}
		return fromFile, nil
	}
	return set, nil
}
