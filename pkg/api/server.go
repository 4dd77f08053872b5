package api

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/veterinaryhq/userd/internal/logger"
	"github.com/veterinaryhq/userd/pkg/config"
	"github.com/veterinaryhq/userd/pkg/store"
)

// Server provides the operational HTTP server.
//
// The server exposes health probes and the Prometheus metrics endpoint.
// It never serves user data; the gRPC listener is the only data surface.
//
// Endpoints:
//   - GET /health: Liveness probe
//   - GET /health/ready: Readiness probe
//   - GET /metrics: Prometheus exposition
//
// The server supports graceful shutdown with configurable timeout.
type Server struct {
	server       *http.Server
	config       config.OpsConfig
	shutdownOnce sync.Once
}

// NewServer creates a new operational HTTP server.
//
// The server is created in a stopped state. Call Start() to begin serving
// requests.
//
// Parameters:
//   - cfg: Server configuration (port, timeouts)
//   - st: User store for readiness checks (may be nil for liveness only)
//
// Returns a configured but not yet started Server.
func NewServer(cfg config.OpsConfig, st store.UserStore) *Server {
	router := NewRouter(st)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &Server{
		server: server,
		config: cfg,
	}
}

// Start starts the operational HTTP server and blocks until the context is
// cancelled or an error occurs.
//
// When the context is cancelled, Start initiates graceful shutdown and returns.
//
// Returns:
//   - nil on graceful shutdown
//   - error if the server fails to start or shutdown encounters an error
func (s *Server) Start(ctx context.Context) error {
	errChan := make(chan error, 1)
	go func() {
		logger.Info("ops server listening",
			logger.Component("ops"),
			"port", s.config.Port)

		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			select {
			case errChan <- err:
			default:
				// Context was cancelled, error is not needed
			}
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("ops server shutdown signal received", logger.Component("ops"))
		// Create new context with timeout for graceful shutdown
		// Don't use the cancelled ctx as it would cause immediate shutdown
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.Stop(shutdownCtx)
	case err := <-errChan:
		return fmt.Errorf("ops server failed: %w", err)
	}
}

// Stop initiates graceful shutdown of the operational server.
//
// Stop is safe to call multiple times and safe to call concurrently with
// Start().
func (s *Server) Stop(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		logger.Debug("ops server shutdown initiated", logger.Component("ops"))

		if err := s.server.Shutdown(ctx); err != nil {
			shutdownErr = fmt.Errorf("ops server shutdown error: %w", err)
			logger.Error("ops server shutdown error", logger.Err(err))
		} else {
			logger.Info("ops server stopped gracefully", logger.Component("ops"))
		}
	})
	return shutdownErr
}

// Port returns the TCP port the server is listening on.
func (s *Server) Port() int {
	return s.config.Port
}
