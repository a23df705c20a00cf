// Package auth provides bearer-token authentication for the AgentWire
// server: a mutable set of accepted tokens, a YAML file loader and an HTTP
// middleware. The dispatch core never consults it; authentication happens
// strictly before dispatch.
package auth

import (
	"crypto/subtle"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// TokenSet is a concurrency-safe membership set of accepted bearer tokens.
type TokenSet struct {
	mu     sync.RWMutex
	tokens map[string]struct{}
}

// NewTokenSet creates a token set preloaded with the given tokens.
func NewTokenSet(tokens ...string) *TokenSet {
	s := &TokenSet{tokens: make(map[string]struct{}, len(tokens))}
	for _, t := range tokens {
		if t != "" {
			s.tokens[t] = struct{}{}
		}
	}
	return s
}

// tokenFile is the YAML shape accepted by LoadFile.
type tokenFile struct {
	Tokens []string `yaml:"tokens"`
}

// LoadFile reads a YAML token file of the form:
//
//	tokens:
//	  - secret-one
//	  - secret-two
func LoadFile(path string) (*TokenSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read token file: %w", err)
	}
	var tf tokenFile
	if err := yaml.Unmarshal(data, &tf); err != nil {
		return nil, fmt.Errorf("parse token file %s: %w", path, err)
	}
	return NewTokenSet(tf.Tokens...), nil
}

// Add inserts a token into the set.
func (s *TokenSet) Add(token string) {
	if token == "" {
		return
	}
	s.mu.Lock()
	s.tokens[token] = struct{}{}
	s.mu.Unlock()
}

// Remove deletes a token from the set.
func (s *TokenSet) Remove(token string) {
	s.mu.Lock()
	delete(s.tokens, token)
	s.mu.Unlock()
}

// IsValid reports whether the presented token is a member of the set.
// Comparison is constant-time per candidate so membership testing does not
// leak token contents through timing.
func (s *TokenSet) IsValid(token string) bool {
	if token == "" {
		return false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	for candidate := range s.tokens {
		if len(candidate) == len(token) &&
			subtle.ConstantTimeCompare([]byte(candidate), []byte(token)) == 1 {
			return true
		}
	}
	return false
}

// Len returns the number of accepted tokens.
func (s *TokenSet) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.tokens)
}

// ExtractBearerToken pulls the bearer token out of an Authorization header.
func ExtractBearerToken(r *http.Request) (string, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", fmt.Errorf("missing Authorization header")
	}
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return "", fmt.Errorf("invalid Authorization header format")
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, prefix))
	if token == "" {
		return "", fmt.Errorf("empty bearer token")
	}
	return token, nil
}

// Middleware rejects requests without a valid bearer token with a 401 JSON
// body. Compatible with chi's Use.
func (s *TokenSet) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, err := ExtractBearerToken(r)
		if err != nil || !s.IsValid(token) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "invalid or missing bearer token"})
			return
		}
		next.ServeHTTP(w, r)
	})
}
