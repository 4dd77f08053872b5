package postgres

import (
	"context"

	"github.com/veterinaryhq/userd/internal/telemetry"
	"github.com/veterinaryhq/userd/pkg/store"
)

// Healthcheck verifies the PostgreSQL connection pool is healthy.
//
// Ping acquires a connection, runs a trivial round trip, and returns it to
// the pool. Used by the readiness endpoint and container probes.
//
// Thread Safety: Safe for concurrent use.
func (s *Store) Healthcheck(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	ctx, span := telemetry.StartStoreSpan(ctx, telemetry.SpanStoreHealthcheck)
	defer span.End()

	if err := s.pool.Ping(ctx); err != nil {
		return store.NewUnavailableError("postgres health check failed", err)
	}

	return nil
}
