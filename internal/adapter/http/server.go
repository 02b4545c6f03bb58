// Package http exposes the NEO API, health probes, and metrics over HTTP.
package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/couchcryptid/neo-impact-service/internal/observability"
)

// Options configures cross-cutting server behavior.
type Options struct {
	// CORSOrigins lists allowed browser origins; "*" allows any.
	CORSOrigins []string
}

// Server serves the NEO API plus /health, /healthz, /readyz, and /metrics.
type Server struct {
	httpServer *http.Server
	api        API
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewServer creates an HTTP server with API, health, readiness, and metrics routes.
func NewServer(addr string, api API, ready sharedobs.ReadinessChecker, opts Options, metrics *observability.Metrics, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		api:     api,
		metrics: metrics,
		logger:  logger,
	}
	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      withRequestID(withCORS(opts.CORSOrigins, s.instrument(mux))),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	mux.HandleFunc("GET /health", handleHealth)
	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(ready))
	mux.Handle("GET /metrics", promhttp.Handler())

	mux.HandleFunc("GET /neo/feed", s.handleFeed)
	mux.HandleFunc("GET /neo/browse", s.handleBrowse)
	mux.HandleFunc("GET /neo/scan", s.handleScan)
	mux.HandleFunc("GET /neo/{id}", s.handleNEO)
	mux.HandleFunc("GET /neo/{id}/enrichment", s.handleEnrichment)
	mux.HandleFunc("GET /neo/{id}/impact", s.handleImpact)
	mux.HandleFunc("GET /neo/{id}/detail", s.handleDetail)

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	sharedobs.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
