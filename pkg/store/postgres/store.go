// Package postgres implements store.UserStore on PostgreSQL using pgxpool.
//
// Connection discipline: every operation acquires a single connection from
// the pool for the duration of one query and releases it on every exit path,
// including scan errors and early returns. Helpers in pool.go enforce this.
package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/veterinaryhq/userd/internal/logger"
	"github.com/veterinaryhq/userd/pkg/store"
)

// Store implements store.UserStore backed by a PostgreSQL connection pool.
type Store struct {
	pool   *pgxpool.Pool
	config *Config
	logger *slog.Logger

	// closeOnce makes Close idempotent
	closeOnce sync.Once
}

var _ store.UserStore = (*Store)(nil)

// New creates a PostgreSQL-backed user store.
//
// Configuration is defaulted and validated before any connection attempt, so
// an inconsistent pool sizing (min_conns > max_conns) fails here and the
// process never starts serving. The pool is pinged before New returns; a
// store handed to callers is connected.
func New(ctx context.Context, cfg *Config) (*Store, error) {
	cfg.ApplyDefaults()

	log := logger.With(logger.KeyComponent, "postgres_user_store")

	pool, err := createConnectionPool(ctx, cfg, log)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if cfg.AutoMigrate {
		log.Info("auto_migrate is enabled, running migrations")
		if err := runMigrations(ctx, cfg.ConnectionString(), log); err != nil {
			pool.Close()
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}
	} else {
		log.Debug("auto_migrate is disabled, run 'userd migrate' to apply migrations manually")
	}

	s := &Store{
		pool:   pool,
		config: cfg,
		logger: log,
	}

	log.Info("postgres user store initialized",
		"host", cfg.Host,
		"database", cfg.Database,
		"max_conns", cfg.MaxConns,
		"min_conns", cfg.MinConns,
	)

	return s, nil
}

// Close closes the connection pool and releases resources. Safe to call more
// than once; only the first call does any work.
func (s *Store) Close() error {
	s.closeOnce.Do(func() {
		s.logger.Info("closing postgres user store")
		closeConnectionPool(s.pool, s.logger)
		s.logger.Info("postgres user store closed")
	})
	return nil
}

// Stat returns a snapshot of pool utilization for metrics collection.
func (s *Store) Stat() *pgxpool.Stat {
	return s.pool.Stat()
}
