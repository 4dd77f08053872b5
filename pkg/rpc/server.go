package rpc

import (
	"context"
	"fmt"
	"net"
	"sync"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"

	"github.com/veterinaryhq/userd/internal/logger"
	"github.com/veterinaryhq/userd/pkg/config"
	"github.com/veterinaryhq/userd/pkg/metrics"
	"github.com/veterinaryhq/userd/pkg/store"
	"github.com/veterinaryhq/userd/pkg/userpb"
)

// Server wraps the gRPC listener serving the user service.
//
// The server is created in a stopped state. Call Start() to begin serving.
// Shutdown is graceful: in-flight requests get the configured grace period
// to complete before remaining connections are forcibly closed.
type Server struct {
	grpcServer      *grpc.Server
	config          config.ServerConfig
	shutdownTimeout time.Duration
	shutdownOnce    sync.Once
}

// NewServer creates a gRPC server for the user service.
//
// TLS is enabled when the config carries a certificate pair; in production
// the config layer has already rejected a missing pair, so a plaintext
// production listener cannot be constructed through normal startup.
//
// Parameters:
//   - cfg: Listener configuration (address, TLS)
//   - shutdownTimeout: Grace period for in-flight requests on shutdown
//   - st: User store backing the service
//   - m: RPC metrics (may be nil to disable collection)
//
// Returns a configured but not yet started Server.
func NewServer(cfg config.ServerConfig, shutdownTimeout time.Duration, st store.UserStore, m metrics.RPCMetrics) (*Server, error) {
	opts := []grpc.ServerOption{
		grpc.ChainUnaryInterceptor(
			RecoveryInterceptor(),
			ContextInterceptor(),
			MetricsInterceptor(m),
		),
	}

	if cfg.TLS.Enabled() {
		creds, err := credentials.NewServerTLSFromFile(cfg.TLS.CertFile, cfg.TLS.KeyFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load TLS credentials: %w", err)
		}
		opts = append(opts, grpc.Creds(creds))
	} else {
		logger.Warn("TLS is not configured, serving plaintext gRPC")
	}

	grpcServer := grpc.NewServer(opts...)
	userpb.RegisterUserServiceServer(grpcServer, NewUserService(st))

	return &Server{
		grpcServer:      grpcServer,
		config:          cfg,
		shutdownTimeout: shutdownTimeout,
	}, nil
}

// Start starts the gRPC server and blocks until the context is cancelled
// or an error occurs.
//
// When the context is cancelled, Start initiates graceful shutdown and
// returns once shutdown completes.
//
// Returns:
//   - nil on graceful shutdown
//   - error if the listener fails to bind or serving fails
func (s *Server) Start(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	return s.serve(ctx, lis)
}

// serve runs the gRPC server on the given listener until the context is
// cancelled or serving fails.
func (s *Server) serve(ctx context.Context, lis net.Listener) error {
	errChan := make(chan error, 1)
	go func() {
		logger.Info("gRPC server listening",
			logger.Component("rpc"),
			logger.Address(lis.Addr().String()),
			"tls", s.config.TLS.Enabled())

		if err := s.grpcServer.Serve(lis); err != nil {
			select {
			case errChan <- err:
			default:
				// Context was cancelled, error is not needed
			}
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("gRPC server shutdown signal received", logger.Component("rpc"))
		s.Stop()
		return nil
	case err := <-errChan:
		return fmt.Errorf("gRPC server failed: %w", err)
	}
}

// Stop initiates graceful shutdown of the gRPC server.
//
// GracefulStop waits for in-flight requests; if they do not complete within
// the shutdown timeout, remaining connections are closed forcibly.
//
// Stop is safe to call multiple times and safe to call concurrently with
// Start().
func (s *Server) Stop() {
	s.shutdownOnce.Do(func() {
		logger.Debug("gRPC server shutdown initiated",
			logger.Component("rpc"),
			"grace_period", s.shutdownTimeout)

		done := make(chan struct{})
		go func() {
			s.grpcServer.GracefulStop()
			close(done)
		}()

		select {
		case <-done:
			logger.Info("gRPC server stopped gracefully", logger.Component("rpc"))
		case <-time.After(s.shutdownTimeout):
			logger.Warn("graceful stop timed out, closing remaining connections",
				logger.Component("rpc"),
				"grace_period", s.shutdownTimeout)
			s.grpcServer.Stop()
			<-done
		}
	})
}

// Port returns the configured TCP port.
func (s *Server) Port() int {
	return s.config.Port
}
