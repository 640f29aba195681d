// Package server exposes the sanitization and rehydration engines over a
// small HTTP API, mirroring the CLI commands for callers that keep the
// models warm across many documents.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/leedsrising/pdf-to-text/internal/evidence"
	pkgotel "github.com/leedsrising/pdf-to-text/internal/otel"
	"github.com/leedsrising/pdf-to-text/internal/rehydrate"
	"github.com/leedsrising/pdf-to-text/internal/sanitize"
)

// Server routes HTTP requests to the engines.
type Server struct {
	engine      *sanitize.Engine
	rehydrators map[string]rehydrate.Rehydrator
	store       *evidence.Store // optional; nil disables the audit trail
	httpServer  *http.Server
}

// New creates a server. rehydrators maps strategy names to implementations;
// store may be nil.
func New(addr string, engine *sanitize.Engine, rehydrators map[string]rehydrate.Rehydrator, store *evidence.Store) *Server {
	s := &Server{
		engine:      engine,
		rehydrators: rehydrators,
		store:       store,
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(requestID)
	r.Use(pkgotel.Middleware())

	r.Get("/healthz", s.handleHealth)
	r.Post("/v1/sanitize", s.handleSanitize)
	r.Post("/v1/rehydrate", s.handleRehydrate)
	r.Get("/v1/runs", s.handleRuns)

	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// ListenAndServe blocks serving requests until Shutdown or a listener error.
func (s *Server) ListenAndServe() error {
	log.Info().Str("addr", s.httpServer.Addr).Msg("http server listening")
	return s.httpServer.ListenAndServe()
}

// Shutdown drains in-flight requests and stops the listener.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// requestID assigns a correlation ID to each request, echoed in the
// X-Request-ID response header.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)
		next.ServeHTTP(w, r.WithContext(withRequestID(r.Context(), id)))
	})
}

type ctxKey int

const requestIDKey ctxKey = 0

func withRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestIDFrom returns the correlation ID assigned to the request, if any.
func RequestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}
