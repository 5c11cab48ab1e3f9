// Package api exposes the gateway as a local JSON HTTP service.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/dhidargpt/dhidar/internal/llm"
	"github.com/gorilla/mux"
)

// Gateway is the part of llm.Gateway the server uses.
type Gateway interface {
	Models() llm.Models
	StartChat(ctx context.Context, model string, history []llm.ChatMessage) *llm.Session
	SendChatMessage(ctx context.Context, session *llm.Session, message string) (*llm.Session, llm.Result)
	Summarize(ctx context.Context, text string) llm.Result
	GenerateOrEditImage(ctx context.Context, prompt string, image *llm.ImageInput) llm.Result
}

var _ Gateway = (*llm.Gateway)(nil)

// Server represents the API server
type Server struct {
	gateway Gateway
	started time.Time

	// mu guards the single chat session slot; the last chat/start wins.
	mu      sync.Mutex
	session *llm.Session

	// turn serializes chat messages. It is never held together with mu
	// across a provider call.
	turn sync.Mutex

	httpServer *http.Server
}

// NewServer creates a new API server
func NewServer(gateway Gateway) *Server {
	return &Server{
		gateway: gateway,
		started: time.Now(),
	}
}

// Handler returns the routed handler with middleware applied.
func (s *Server) Handler() http.Handler {
	return s.setupRoutes()
}

// Start serves on addr until ctx is cancelled.
func (s *Server) Start(ctx context.Context, addr string) error {
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("Starting API server", "addr", addr)
		errCh <- s.httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("api server: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.Stop(shutdownCtx)
	}
}

// Stop gracefully shuts down the HTTP server
func (s *Server) Stop(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	log.Info("Stopping API server")
	return s.httpServer.Shutdown(ctx)
}

// setupRoutes configures all API routes
func (s *Server) setupRoutes() *mux.Router {
	router := mux.NewRouter()

	router.Use(requestIDMiddleware)
	router.Use(s.corsMiddleware)

	api := router.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/health", s.handleHealth).Methods("GET")
	api.HandleFunc("/models", s.handleModels).Methods("GET")
	api.HandleFunc("/chat/start", s.handleChatStart).Methods("POST", "OPTIONS")
	api.HandleFunc("/chat/message", s.handleChatMessage).Methods("POST", "OPTIONS")
	api.HandleFunc("/summarize", s.handleSummarize).Methods("POST", "OPTIONS")
	api.HandleFunc("/image", s.handleImage).Methods("POST", "OPTIONS")

	return router
}

// corsMiddleware adds CORS headers for localhost origins
func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if isLocalhostOrigin(origin) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-Request-ID")
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func isLocalhostOrigin(origin string) bool {
	for _, prefix := range []string{"http://localhost:", "http://127.0.0.1:", "http://[::1]:"} {
		if strings.HasPrefix(origin, prefix) {
			return true
		}
	}
	return false
}

// Response helpers
func (s *Server) writeJSON(w http.ResponseWriter, code int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Error("failed to encode response", "err", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, message string, code int) {
	s.writeJSON(w, code, errorResponse{Status: llm.ResultFailure.String(), Error: message})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	model := ""
	if s.session != nil {
		model = s.session.Model()
	}
	s.mu.Unlock()

	s.writeJSON(w, http.StatusOK, map[string]any{
		"status":    "healthy",
		"timestamp": time.Now().Unix(),
		"uptime":    time.Since(s.started).Round(time.Second).String(),
		"chatModel": model,
	})
}
