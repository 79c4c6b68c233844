// Package server exposes the scanner's HTTP + WebSocket API: the merged
// odds view, reconciliation diagnostics, alert history, runtime settings,
// and the scraper ingest endpoint.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/alanyoungcy/boredraw/internal/server/handler"
	"github.com/alanyoungcy/boredraw/internal/server/middleware"
	"github.com/alanyoungcy/boredraw/internal/server/ws"
)

// Config holds the HTTP server configuration.
type Config struct {
	Port        int
	CORSOrigins []string
	// IngestToken guards the scraper upload endpoint. If empty, ingest
	// authentication is disabled.
	IngestToken string
}

// Handlers aggregates all HTTP handlers that the server needs to register.
type Handlers struct {
	Health    *handler.HealthHandler
	Games     *handler.GamesHandler
	Unmatched *handler.UnmatchedHandler
	Alerts    *handler.AlertsHandler
	Settings  *handler.SettingsHandler
	Ingest    *handler.IngestHandler
}

// Server is the headless HTTP + WebSocket API server for the scanner.
type Server struct {
	httpServer *http.Server
	mux        *http.ServeMux
	logger     *slog.Logger
}

// NewServer creates a new Server with all routes registered on the ServeMux.
// It wires up middleware (logging, CORS, ingest auth) and attaches the
// WebSocket hub.
func NewServer(cfg Config, handlers Handlers, wsHub *ws.Hub, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	// Health check.
	mux.HandleFunc("GET /api/health", handlers.Health.HealthCheck)

	// Merged view and reconciliation diagnostics.
	mux.HandleFunc("GET /api/games", handlers.Games.ListGames)
	mux.HandleFunc("GET /api/unmatched/{source}", handlers.Unmatched.GetUnmatched)

	// Alert history.
	mux.HandleFunc("GET /api/alerts/recent", handlers.Alerts.ListRecent)

	// Runtime settings.
	mux.HandleFunc("GET /api/settings", handlers.Settings.GetSettings)
	mux.HandleFunc("PUT /api/settings", handlers.Settings.UpdateSettings)

	// Scraper ingest, guarded by its own token so scrapers can be granted
	// write access without opening the rest of the API.
	ingestAuth := middleware.Auth(cfg.IngestToken)
	mux.Handle("POST /api/ingest/{source}", ingestAuth(http.HandlerFunc(handlers.Ingest.PostSnapshot)))

	// WebSocket endpoint.
	if wsHub != nil {
		mux.HandleFunc("GET /ws", wsHub.HandleWS)
	}

	// Build the middleware chain.
	var h http.Handler = mux
	h = middleware.Logging(logger)(h)
	h = middleware.CORS(cfg.CORSOrigins)(h)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      h,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &Server{
		httpServer: srv,
		mux:        mux,
		logger:     logger,
	}
}

// Start begins listening for HTTP requests. It blocks until the server
// encounters an error or is shut down.
func (s *Server) Start() error {
	s.logger.Info("server: starting",
		slog.String("addr", s.httpServer.Addr),
	)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server: listen: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server, waiting for in-flight requests
// to complete within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("server: shutting down")
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server: shutdown: %w", err)
	}
	return nil
}
