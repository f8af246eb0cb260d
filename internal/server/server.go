// SPDX-License-Identifier: AGPL-3.0-only

// Package server exposes the agent over HTTP: conversation CRUD, a health
// probe, and the chat endpoint with optional SSE streaming.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/rodman1980/ai-dial-ums-ui-agent/internal/agent"
	"github.com/rodman1980/ai-dial-ums-ui-agent/internal/config"
	"github.com/rodman1980/ai-dial-ums-ui-agent/internal/logging"
	"github.com/rodman1980/ai-dial-ums-ui-agent/internal/model"
)

// ConversationService is the surface of the conversation manager the
// transport layer depends on.
type ConversationService interface {
	Create(title string) (*model.Conversation, error)
	Get(id string) (*model.Conversation, error)
	List() ([]model.ConversationSummary, error)
	Delete(id string) error
	Chat(ctx context.Context, id, userMessage string) (string, error)
	ChatStream(ctx context.Context, id, userMessage string, emit agent.EmitFunc) (string, error)
}

// Server is the HTTP front of the agent.
type Server struct {
	service    ConversationService
	httpServer *http.Server
	logger     *logging.Logger
}

// New creates a Server listening on the configured address and port.
func New(cfg *config.Config, service ConversationService, logger *logging.Logger) *Server {
	if logger == nil {
		logger = logging.GetDefaultLogger()
	}
	s := &Server{
		service: service,
		logger:  logger,
	}
	s.httpServer = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Address, cfg.Server.Port),
		Handler:           corsMiddleware(s.routes()),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// routes builds the request mux.
func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("POST /conversations", s.handleCreateConversation)
	mux.HandleFunc("GET /conversations", s.handleListConversations)
	mux.HandleFunc("GET /conversations/{id}", s.handleGetConversation)
	mux.HandleFunc("DELETE /conversations/{id}", s.handleDeleteConversation)
	mux.HandleFunc("POST /conversations/{id}/chat", s.handleChat)
	return mux
}

// Start runs the HTTP server. It blocks until the server stops; a regular
// shutdown returns nil.
func (s *Server) Start() error {
	s.logger.Infof("HTTP server listening on %s", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Stop gracefully shuts the server down, letting in-flight requests finish
// until ctx expires.
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Infof("HTTP server shutting down")
	return s.httpServer.Shutdown(ctx)
}

// corsMiddleware allows browser clients served from other origins, matching
// the UI's expectations during local development.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
