// Package client provides a small HTTP client for AgentWire servers:
// envelope construction, the /mcp round trip and consumption of the
// /mcp/stream SSE endpoint.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/agentwire/agentwire/core"
	"github.com/agentwire/agentwire/stream"
)

// NewMessageForAgent builds a request envelope addressed to an agent action,
// e.g. NewMessageForAgent("openai", "chat", payload).
func NewMessageForAgent(agent, action string, payload any) core.Message {
	return core.New(agent+core.CommandSeparator+action, payload)
}

// Options configure a Client.
type Options struct {
	// HTTPClient overrides the default http.Client.
	HTTPClient *http.Client

	// Token is sent as a bearer token when non-empty.
	Token string
}

// Client talks to one AgentWire server.
type Client struct {
	baseURL string
	opts    Options
}

// New creates a client for the server at baseURL (no trailing slash).
func New(baseURL string, optFns ...func(o *Options)) *Client {
	opts := Options{HTTPClient: http.DefaultClient}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Client{baseURL: baseURL, opts: opts}
}

// Send posts the envelope to /mcp and returns the response envelope. A
// non-2xx status is returned as an error carrying the server's error body.
func (c *Client) Send(ctx context.Context, msg core.Message) (core.Message, error) {
	resp, err := c.post(ctx, "/mcp", msg)
	if err != nil {
		return core.Message{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return core.Message{}, decodeErrorBody(resp)
	}

	var out core.Message
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return core.Message{}, fmt.Errorf("decode response: %w", err)
	}
	return out, nil
}

// Stream posts the envelope to /mcp/stream and returns the decoded token
// stream. Cancelling ctx closes the underlying response body and ends the
// stream.
func (c *Client) Stream(ctx context.Context, msg core.Message) (<-chan stream.Result, error) {
	resp, err := c.post(ctx, "/mcp/stream", msg)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		return nil, decodeErrorBody(resp)
	}

	out := make(chan stream.Result)
	go func() {
		defer close(out)
		defer resp.Body.Close()
		for r := range stream.Decode(ctx, stream.FromReader(ctx, resp.Body, 4096)) {
			token, err := rewrap(r)
			select {
			case out <- stream.Result{Token: token, Err: err}:
			case <-ctx.Done():
				return
			}
			if token.Finish {
				return
			}
		}
	}()
	return out, nil
}

// rewrap converts a decoded SSE line back into the token the server framed.
// Each event's JSON is either a token object or an {"error": ...} body.
func rewrap(r stream.Result) (stream.Token, error) {
	if r.Err != nil {
		return stream.Token{}, r.Err
	}
	if r.Token.Finish {
		return r.Token, nil
	}
	var wire struct {
		Content string          `json:"content"`
		Finish  bool            `json:"is_finish"`
		Meta    json.RawMessage `json:"metadata"`
		Error   string          `json:"error"`
	}
	if err := json.Unmarshal([]byte(r.Token.Content), &wire); err != nil {
		return stream.Token{}, &core.DecodeError{Line: r.Token.Content, Err: err}
	}
	if wire.Error != "" {
		return stream.Token{}, fmt.Errorf("server stream error: %s", wire.Error)
	}
	return stream.Token{Content: wire.Content, Finish: wire.Finish, Metadata: wire.Meta}, nil
}

func (c *Client) post(ctx context.Context, path string, msg core.Message) (*http.Response, error) {
	data, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.opts.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.opts.Token)
	}
	resp, err := c.opts.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	return resp, nil
}

func decodeErrorBody(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	var errBody struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &errBody); err == nil && errBody.Error != "" {
		return fmt.Errorf("server returned %d: %s", resp.StatusCode, errBody.Error)
	}
	return fmt.Errorf("server returned %d", resp.StatusCode)
}
