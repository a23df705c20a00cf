// Package config loads server configuration from the environment. All
// variables carry the AGENTWIRE_ prefix, e.g. AGENTWIRE_ADDR.
package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds everything the agentwired binary needs.
type Config struct {
	// Addr is the HTTP listen address.
	Addr string `envconfig:"ADDR" default:":3000"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	// LogFormat is json or text.
	LogFormat string `envconfig:"LOG_FORMAT" default:"json"`

	// ConversationMaxAge is the idle lifetime of a conversation.
	ConversationMaxAge time.Duration `envconfig:"CONVERSATION_MAX_AGE" default:"1h"`

	// SweepInterval drives the expiry sweeper. Zero disables it.
	SweepInterval time.Duration `envconfig:"SWEEP_INTERVAL" default:"10m"`

	// StreamBufferSize bounds the dispatch token channel.
	StreamBufferSize int `envconfig:"STREAM_BUFFER_SIZE" default:"100"`

	// TokenFile points at a YAML bearer-token file. Empty plus no Tokens
	// means the server runs unauthenticated.
	TokenFile string `envconfig:"TOKEN_FILE"`

	// Tokens is a comma-separated list of accepted bearer tokens, merged
	// with the contents of TokenFile.
	Tokens []string `envconfig:"TOKENS"`

	// OpenAIAPIKey enables the openai agent when set.
	OpenAIAPIKey string `envconfig:"OPENAI_API_KEY"`

	// OpenAIModel overrides the default chat model.
	OpenAIModel string `envconfig:"OPENAI_MODEL"`

	// DeepSeekAPIKey enables the deepseek agent when set.
	DeepSeekAPIKey string `envconfig:"DEEPSEEK_API_KEY"`

	// DeepSeekEndpoint overrides the DeepSeek API base URL.
	DeepSeekEndpoint string `envconfig:"DEEPSEEK_ENDPOINT"`

	// DeepSeekModel overrides the default DeepSeek model.
	DeepSeekModel string `envconfig:"DEEPSEEK_MODEL"`

	// AnthropicAPIKey enables the anthropic agent when set.
	AnthropicAPIKey string `envconfig:"ANTHROPIC_API_KEY"`

	// AnthropicModel overrides the default Anthropic model.
	AnthropicModel string `envconfig:"ANTHROPIC_MODEL"`
}

// Load reads configuration from AGENTWIRE_-prefixed environment variables
// and validates it.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("agentwire", &cfg); err != nil {
		return nil, fmt.Errorf("process environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects configurations the server cannot run with.
func (c *Config) Validate() error {
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level %q", c.LogLevel)
	}
	switch c.LogFormat {
	case "json", "text":
	default:
		return fmt.Errorf("invalid log format %q", c.LogFormat)
	}
	if c.ConversationMaxAge <= 0 {
		return fmt.Errorf("conversation max age must be positive, got %s", c.ConversationMaxAge)
	}
	if c.SweepInterval < 0 {
		return fmt.Errorf("sweep interval must not be negative, got %s", c.SweepInterval)
	}
	if c.StreamBufferSize < 0 {
		return fmt.Errorf("stream buffer size must not be negative, got %d", c.StreamBufferSize)
	}
	return nil
}
