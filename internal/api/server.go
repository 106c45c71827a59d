package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/stocklens/backend/pkg/config"
	"github.com/stocklens/backend/pkg/logger"
	"github.com/stocklens/backend/pkg/metrics"
)

// Server represents an HTTP server
// ⭐ SSOT: API 서버 설정은 이 파일에서만
type Server struct {
	httpServer *http.Server
	logger     *logger.Logger
	name       string
}

// New creates a new API server
func New(cfg *config.Config, log *logger.Logger, router http.Handler) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:         ":" + cfg.Port,
			Handler:      router,
			ReadTimeout:  15 * time.Second,
			// analyze may wait on three retry rounds of upstream calls
			WriteTimeout: 120 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		logger: log.WithField("env", cfg.Env),
		name:   "api",
	}
}

// NewMetricsServer creates the Prometheus scrape server on METRICS_PORT
func NewMetricsServer(cfg *config.Config, log *logger.Logger) *Server {
	r := mux.NewRouter()
	r.Handle("/metrics", metrics.Handler()).Methods("GET")

	return &Server{
		httpServer: &http.Server{
			Addr:         ":" + cfg.MetricsPort,
			Handler:      r,
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 10 * time.Second,
		},
		logger: log,
		name:   "metrics",
	}
}

// Addr returns the listen address
func (s *Server) Addr() string {
	return s.httpServer.Addr
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.logger.WithFields(map[string]interface{}{
		"server": s.name,
		"addr":   s.httpServer.Addr,
	}).Info("Starting HTTP server")

	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start %s server: %w", s.name, err)
	}

	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.WithField("server", s.name).Info("Shutting down HTTP server")

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown %s server: %w", s.name, err)
	}

	return nil
}
