// Package runtime coordinates the process lifecycle: the user store, the
// gRPC listener, and the operational HTTP server.
package runtime

import (
	"context"
	"sync"
	"time"

	"github.com/veterinaryhq/userd/internal/logger"
	"github.com/veterinaryhq/userd/pkg/store"
)

// Component is a long-running server started by the runtime.
//
// Start blocks until the context is cancelled or serving fails, and returns
// only after the component has fully shut down. Both the gRPC server and
// the ops server satisfy this.
type Component interface {
	Start(ctx context.Context) error
}

// Runtime owns startup and shutdown ordering.
//
// Startup: the store is connected before the runtime exists, so listeners
// never accept a request the backend cannot serve. Shutdown is the reverse:
// listeners stop first (with the grace period applied inside each
// component), and the connection pool closes last, after the final in-flight
// request has released its connection.
type Runtime struct {
	store           store.UserStore
	shutdownTimeout time.Duration

	rpcServer Component
	opsServer Component
}

// New creates a runtime for the given connected store.
func New(st store.UserStore, shutdownTimeout time.Duration) *Runtime {
	return &Runtime{
		store:           st,
		shutdownTimeout: shutdownTimeout,
	}
}

// SetRPCServer registers the gRPC server component.
func (r *Runtime) SetRPCServer(c Component) {
	r.rpcServer = c
}

// SetOpsServer registers the operational HTTP server component.
// Optional; skipped when nil.
func (r *Runtime) SetOpsServer(c Component) {
	r.opsServer = c
}

// Serve starts all registered components and blocks until the context is
// cancelled or a component fails.
//
// On return all components have stopped and the store is closed, in that
// order. The first component error wins; a failure in one component shuts
// down the rest.
func (r *Runtime) Serve(ctx context.Context) error {
	serverCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	errChan := make(chan error, 2)
	var wg sync.WaitGroup

	startComponent := func(name string, c Component) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := c.Start(serverCtx); err != nil {
				logger.Error("component failed", logger.Component(name), logger.Err(err))
				select {
				case errChan <- err:
				default:
				}
			}
		}()
	}

	if r.opsServer != nil {
		startComponent("ops", r.opsServer)
	}
	if r.rpcServer != nil {
		startComponent("rpc", r.rpcServer)
	}

	var serveErr error
	select {
	case <-ctx.Done():
		logger.Info("runtime shutdown initiated", "grace_period", r.shutdownTimeout)
	case serveErr = <-errChan:
		cancel()
	}

	// Components drain in-flight requests before returning; the pool must
	// outlive them so every request can release its connection.
	wg.Wait()

	if err := r.store.Close(); err != nil {
		logger.Error("store close error", logger.Err(err))
		if serveErr == nil {
			serveErr = err
		}
	}

	logger.Info("runtime stopped")
	return serveErr
}
