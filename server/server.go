// Package server exposes the dispatch service over HTTP: the /mcp envelope
// endpoint, an SSE streaming variant, conversation management endpoints and
// a health probe. It also owns the conversation expiry ticker; the store
// itself has no timer.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/agentwire/agentwire/auth"
	"github.com/agentwire/agentwire/core"
	"github.com/agentwire/agentwire/dispatch"
	"github.com/agentwire/agentwire/logging"
)

// Options configure the Server.
type Options struct {
	// Addr is the listen address, e.g. ":3000".
	Addr string

	// Auth guards the /mcp and /conversation routes when non-nil. /health
	// stays open.
	Auth *auth.TokenSet

	// SweepInterval drives the conversation expiry ticker. Zero disables
	// sweeping.
	SweepInterval time.Duration

	// Logger receives server diagnostics.
	Logger logging.Logger

	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Server serves the AgentWire protocol over HTTP.
type Server struct {
	service *dispatch.Service
	opts    Options
	http    *http.Server
}

// New creates a server around the dispatch service.
func New(service *dispatch.Service, optFns ...func(o *Options)) *Server {
	opts := Options{
		Addr:          ":3000",
		SweepInterval: 10 * time.Minute,
		Logger:        logging.NoOpLogger{},
		ReadTimeout:   30 * time.Second,
		// The streaming endpoint holds response writers open; keep the
		// write timeout generous.
		WriteTimeout: 5 * time.Minute,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Server{service: service, opts: opts}
}

// Handler builds the chi router. Exposed for tests and embedding.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("OK"))
	})

	r.Group(func(r chi.Router) {
		if s.opts.Auth != nil {
			r.Use(s.opts.Auth.Middleware)
		}
		r.Post("/mcp", s.handleMCP)
		r.Post("/mcp/stream", s.handleMCPStream)
		r.Post("/conversation", s.handleCreateConversation)
		r.Get("/conversation/{id}", s.handleGetConversation)
		r.Delete("/conversation/{id}", s.handleDeleteConversation)
	})

	return r
}

// Start runs the server until ctx is cancelled, then shuts down gracefully.
// It also runs the conversation sweep ticker when enabled.
func (s *Server) Start(ctx context.Context) error {
	s.http = &http.Server{
		Addr:         s.opts.Addr,
		Handler:      s.Handler(),
		ReadTimeout:  s.opts.ReadTimeout,
		WriteTimeout: s.opts.WriteTimeout,
	}

	if s.opts.SweepInterval > 0 && s.service.Conversations() != nil {
		go s.runSweeper(ctx)
	}

	s.opts.Logger.Info("server starting", "addr", s.opts.Addr)

	errCh := make(chan error, 1)
	go func() {
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		s.opts.Logger.Info("server shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.http.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown: %w", err)
		}
		return ctx.Err()
	case err := <-errCh:
		return fmt.Errorf("server: %w", err)
	}
}

// runSweeper periodically removes expired conversations.
func (s *Server) runSweeper(ctx context.Context) {
	ticker := time.NewTicker(s.opts.SweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := s.service.Conversations().SweepExpired(); removed > 0 {
				s.opts.Logger.Info("swept expired conversations", "removed", removed)
			}
		}
	}
}

// handleMCP processes one envelope request/response round trip.
func (s *Server) handleMCP(w http.ResponseWriter, r *http.Request) {
	var msg core.Message
	if err := json.NewDecoder(r.Body).Decode(&msg); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("malformed request body: %v", err))
		return
	}

	resp, err := s.service.Handle(r.Context(), msg)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleMCPStream processes an envelope request and streams the result as
// Server-Sent Events. Each token becomes one "data:" event; the terminal
// event carries is_finish.
func (s *Server) handleMCPStream(w http.ResponseWriter, r *http.Request) {
	var msg core.Message
	if err := json.NewDecoder(r.Body).Decode(&msg); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("malformed request body: %v", err))
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	for result := range s.service.HandleStream(r.Context(), msg) {
		var data []byte
		if result.Err != nil {
			data, _ = json.Marshal(map[string]string{"error": result.Err.Error()})
		} else {
			data, _ = json.Marshal(result.Token)
		}
		if _, err := fmt.Fprintf(w, "data: %s\n\n", data); err != nil {
			return
		}
		flusher.Flush()
	}
}

// handleCreateConversation mints a new conversation.
func (s *Server) handleCreateConversation(w http.ResponseWriter, _ *http.Request) {
	store := s.service.Conversations()
	if store == nil {
		writeError(w, http.StatusNotImplemented, "conversation tracking is not enabled")
		return
	}
	conv := store.Create()
	writeJSON(w, http.StatusCreated, map[string]any{
		"conversation_id": conv.ID,
		"created_at":      conv.CreatedAt,
	})
}

// handleGetConversation returns a conversation snapshot.
func (s *Server) handleGetConversation(w http.ResponseWriter, r *http.Request) {
	store := s.service.Conversations()
	if store == nil {
		writeError(w, http.StatusNotImplemented, "conversation tracking is not enabled")
		return
	}
	conv, ok := store.Get(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusNotFound, "conversation not found")
		return
	}
	writeJSON(w, http.StatusOK, conv)
}

// handleDeleteConversation removes a conversation.
func (s *Server) handleDeleteConversation(w http.ResponseWriter, r *http.Request) {
	store := s.service.Conversations()
	if store == nil {
		writeError(w, http.StatusNotImplemented, "conversation tracking is not enabled")
		return
	}
	if !store.Delete(chi.URLParam(r, "id")) {
		writeError(w, http.StatusNotFound, "conversation not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// statusFor maps dispatch errors onto HTTP statuses.
func statusFor(err error) int {
	var notRegistered *core.NotRegisteredError
	var agentErr *core.AgentError
	switch {
	case errors.Is(err, core.ErrInvalidCommandFormat):
		return http.StatusBadRequest
	case errors.As(err, &notRegistered):
		return http.StatusNotFound
	case errors.As(err, &agentErr):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
