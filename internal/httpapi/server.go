// Package httpapi exposes sessions, score submission and the leaderboard
// over HTTP.
//
// Routes:
//   - POST /api/sessions    start a play session (rate limited per client)
//   - POST /api/scores      submit a finished run for verification
//   - GET  /api/leaderboard top entries, ?limit=N (at most 100)
//   - GET  /api/rules       published constants, runner physics, fingerprint
//   - GET  /health          liveness
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/vovakirdan/arcade-verifier/internal/config"
	"github.com/vovakirdan/arcade-verifier/internal/ratelimit"
	"github.com/vovakirdan/arcade-verifier/internal/session"
	"github.com/vovakirdan/arcade-verifier/internal/storage"
	"github.com/vovakirdan/arcade-verifier/internal/verify"
)

// Config wires the server to its collaborators.
type Config struct {
	Sessions *session.Manager
	Pipeline *verify.Pipeline
	Scores   storage.ScoreStore
	Runner   config.Runner
	Limiter  *ratelimit.Limiter // nil disables rate limiting
	Logger   *log.Logger

	// CORSOrigin is sent as Access-Control-Allow-Origin.
	CORSOrigin string
	// RequestTimeout bounds handler time. Zero means 10 seconds.
	RequestTimeout time.Duration
}

// Server is the HTTP front end.
type Server struct {
	cfg    Config
	rules  config.Rules
	r      *chi.Mux
	http   *http.Server
	logger *log.Logger
}

// New constructs a Server, installs middleware, and registers routes.
func New(cfg Config) *Server {
	if cfg.Logger == nil {
		cfg.Logger = log.Default()
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 10 * time.Second
	}
	if cfg.CORSOrigin == "" {
		cfg.CORSOrigin = "*"
	}

	s := &Server{
		cfg:    cfg,
		rules:  cfg.Sessions.Rules(),
		r:      chi.NewRouter(),
		logger: cfg.Logger,
	}

	s.r.Use(chimw.RequestID)
	s.r.Use(chimw.RealIP)
	s.r.Use(s.requestLogger)
	s.r.Use(chimw.Recoverer)
	s.r.Use(chimw.Timeout(cfg.RequestTimeout))
	s.r.Use(jsonContentType)
	s.r.Use(s.cors)

	s.r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
	})

	s.r.Route("/api", func(r chi.Router) {
		r.With(s.rateLimit).Post("/sessions", s.handleCreateSession)
		r.Post("/scores", s.handleSubmitScore)
		r.Get("/leaderboard", s.handleLeaderboard)
		r.Get("/rules", s.handleRules)
	})

	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "not found")
	})
	s.r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	return s
}

// Handler returns the root handler (useful for tests).
func (s *Server) Handler() http.Handler {
	return s.r
}

// ListenAndServe serves on addr until ctx is done, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	s.http = &http.Server{
		Addr:              addr,
		Handler:           s.r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting HTTP server", "address", addr)
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.http.Shutdown(shutdownCtx)
}

// ----------------------------- middleware ----------------------------------

// jsonContentType sets a default JSON Content-Type header on all responses.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next.ServeHTTP(w, r)
	})
}

// cors allows browser clients from the configured origin.
func (s *Server) cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Vary", "Origin")
		w.Header().Set("Access-Control-Allow-Origin", s.cfg.CORSOrigin)
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// requestLogger logs one line per request.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", chimw.GetReqID(r.Context()),
		)
	})
}

// rateLimit rejects clients that create sessions too quickly.
func (s *Server) rateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.cfg.Limiter != nil && !s.cfg.Limiter.Allow(clientKey(r)) {
			w.Header().Set("Retry-After", "60")
			writeError(w, http.StatusTooManyRequests, "rate limited")
			return
		}
		next.ServeHTTP(w, r)
	})
}
