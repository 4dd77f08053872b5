package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/veterinaryhq/userd/pkg/store"
)

// poolAcquireTimeout is the maximum time to wait for a connection from the
// pool. pgxpool has no built-in acquire timeout: when all connections are in
// use, Query/QueryRow/Exec block until the context expires. gRPC handler
// contexts may carry no deadline, so without this cap a saturated pool would
// hang calls forever instead of failing them as Unavailable.
const poolAcquireTimeout = 10 * time.Second

// createConnectionPool creates a new PostgreSQL connection pool with the given configuration
func createConnectionPool(ctx context.Context, cfg *Config, logger *slog.Logger) (*pgxpool.Pool, error) {
	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	poolConfig, err := pgxpool.ParseConfig(cfg.ConnectionString())
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection string: %w", err)
	}

	poolConfig.MaxConns = cfg.MaxConns
	poolConfig.MinConns = cfg.MinConns
	poolConfig.MaxConnLifetime = cfg.MaxConnLifetime
	poolConfig.MaxConnIdleTime = cfg.MaxConnIdleTime
	poolConfig.HealthCheckPeriod = cfg.HealthCheckPeriod

	// Set query timeout as statement timeout
	if cfg.QueryTimeout > 0 {
		poolConfig.ConnConfig.RuntimeParams["statement_timeout"] = fmt.Sprintf("%dms", cfg.QueryTimeout.Milliseconds())
	}

	logger.Info("creating postgres connection pool",
		"host", cfg.Host,
		"port", cfg.Port,
		"database", cfg.Database,
		"user", cfg.User,
		"max_conns", cfg.MaxConns,
		"min_conns", cfg.MinConns,
		"ssl_mode", cfg.SSLMode,
	)

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}

	logger.Info("postgres connection pool ready")

	return pool, nil
}

// closeConnectionPool closes the PostgreSQL connection pool gracefully
func closeConnectionPool(pool *pgxpool.Pool, logger *slog.Logger) {
	if pool == nil {
		return
	}

	stat := pool.Stat()
	logger.Info("closing postgres connection pool",
		"pool_total", stat.TotalConns(),
		"pool_in_use", stat.AcquiredConns(),
	)
	pool.Close()
}

// queryRow executes a query that returns at most one row with connection
// acquire timeout. The connection is released when the returned Row is
// scanned, whether the scan succeeds or not.
func (s *Store) queryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	if err := ctx.Err(); err != nil {
		return &errorRow{err: store.NewUnavailableError("request canceled", err)}
	}

	acquireCtx, cancel := context.WithTimeout(ctx, poolAcquireTimeout)
	defer cancel()

	conn, err := s.pool.Acquire(acquireCtx)
	if err != nil {
		return &errorRow{err: mapAcquireError(ctx, acquireCtx, err)}
	}

	row := conn.QueryRow(ctx, sql, args...)
	return &poolRow{row: row, conn: conn}
}

// query executes a query that returns rows with connection acquire timeout.
// Caller MUST close the returned Rows; closing releases the connection.
func (s *Store) query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	if err := ctx.Err(); err != nil {
		return nil, store.NewUnavailableError("request canceled", err)
	}

	acquireCtx, cancel := context.WithTimeout(ctx, poolAcquireTimeout)
	defer cancel()

	conn, err := s.pool.Acquire(acquireCtx)
	if err != nil {
		return nil, mapAcquireError(ctx, acquireCtx, err)
	}

	rows, err := conn.Query(ctx, sql, args...)
	if err != nil {
		conn.Release()
		return nil, mapPgError(err, "query")
	}

	return &poolRows{rows: rows, conn: conn}, nil
}

// exec executes a statement with connection acquire timeout. The connection
// is released before exec returns on every path.
func (s *Store) exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	if err := ctx.Err(); err != nil {
		return pgconn.CommandTag{}, store.NewUnavailableError("request canceled", err)
	}

	acquireCtx, cancel := context.WithTimeout(ctx, poolAcquireTimeout)
	defer cancel()

	conn, err := s.pool.Acquire(acquireCtx)
	if err != nil {
		return pgconn.CommandTag{}, mapAcquireError(ctx, acquireCtx, err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, sql, args...)
	if err != nil {
		return pgconn.CommandTag{}, mapPgError(err, "exec")
	}
	return tag, nil
}

// mapAcquireError classifies a failed pool acquire. Exhaustion and a closed
// pool are both Unavailable: the request was well-formed, the backend just
// cannot take it right now.
func mapAcquireError(ctx, acquireCtx context.Context, err error) error {
	if acquireCtx.Err() == context.DeadlineExceeded && ctx.Err() == nil {
		return store.NewUnavailableError(
			fmt.Sprintf("connection acquire timeout after %v: pool may be exhausted", poolAcquireTimeout), err)
	}
	return mapPgError(err, "acquire")
}

// errorRow implements pgx.Row for returning errors
type errorRow struct {
	err error
}

func (r *errorRow) Scan(dest ...any) error {
	return r.err
}

// poolRow wraps a pgx.Row and releases the connection after Scan
type poolRow struct {
	row  pgx.Row
	conn *pgxpool.Conn
}

func (r *poolRow) Scan(dest ...any) error {
	err := r.row.Scan(dest...)
	r.conn.Release()
	return err
}

// poolRows wraps pgx.Rows and releases the connection when closed
type poolRows struct {
	rows pgx.Rows
	conn *pgxpool.Conn
}

func (r *poolRows) Close() {
	r.rows.Close()
	r.conn.Release()
}

func (r *poolRows) Err() error {
	return r.rows.Err()
}

func (r *poolRows) Next() bool {
	return r.rows.Next()
}

func (r *poolRows) Scan(dest ...any) error {
	return r.rows.Scan(dest...)
}

func (r *poolRows) Values() ([]any, error) {
	return r.rows.Values()
}

func (r *poolRows) RawValues() [][]byte {
	return r.rows.RawValues()
}

func (r *poolRows) FieldDescriptions() []pgconn.FieldDescription {
	return r.rows.FieldDescriptions()
}

func (r *poolRows) CommandTag() pgconn.CommandTag {
	return r.rows.CommandTag()
}

func (r *poolRows) Conn() *pgx.Conn {
	return r.rows.Conn()
}
