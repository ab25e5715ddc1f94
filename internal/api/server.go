package api

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/MikeSquared-Agency/snare/internal/observability"
	"github.com/MikeSquared-Agency/snare/internal/processor"
	"github.com/MikeSquared-Agency/snare/internal/session"
)

// TurnProcessor is satisfied by *processor.Processor.
type TurnProcessor interface {
	ProcessTurn(ctx context.Context, conversationID, message string) processor.Report
	Dossier(conversationID string) (session.Snapshot, int64, bool)
}

type Server struct {
	router  *chi.Mux
	port    int
	apiKey  string
	proc    TurnProcessor
	metrics *observability.Metrics
	logger  *slog.Logger
}

// NewServer wires the HTTP routes. metrics may be nil, in which case
// /metrics is not mounted.
func NewServer(port int, apiKey string, proc TurnProcessor, metrics *observability.Metrics, logger *slog.Logger) *Server {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	s := &Server{
		router:  router,
		port:    port,
		apiKey:  apiKey,
		proc:    proc,
		metrics: metrics,
		logger:  logger,
	}

	router.Get("/", s.root)
	router.Get("/health", s.health)
	if metrics != nil {
		router.Handle("/metrics", metrics.Handler())
	}

	router.Get("/webhook", s.webhookProbe)
	router.With(APIKeyMiddleware(apiKey, s.rejected)).Post("/webhook", s.webhook)

	router.Route("/api/v1", func(r chi.Router) {
		r.Use(APIKeyMiddleware(apiKey, s.rejected))
		r.Get("/conversations/{id}", s.conversation)
	})

	return s
}

func (s *Server) Handler() http.Handler {
	return s.router
}

// HTTPServer returns a server bound to the configured port. The caller owns
// ListenAndServe and Shutdown.
func (s *Server) HTTPServer() *http.Server {
	return &http.Server{
		Addr:              fmt.Sprintf(":%d", s.port),
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
}

func (s *Server) root(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"message": "Agentic Scam Honeypot API is running",
		"usage":   "POST /webhook with API key",
	})
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) rejected(reason string) {
	if s.metrics != nil {
		s.metrics.ObserveRejection(reason)
	}
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("failed to write response", "error", err)
	}
}

func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, map[string]string{"error": msg})
}
