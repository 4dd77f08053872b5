package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/puddle/v2"

	"github.com/veterinaryhq/userd/internal/logger"
	"github.com/veterinaryhq/userd/pkg/store"
)

// mapPgError maps PostgreSQL errors to store errors.
//
// Every error leaving this package goes through here (or the acquire path in
// pool.go), so callers can rely on store.CodeOf for classification.
func mapPgError(err error, operation string) error {
	if err == nil {
		return nil
	}

	// Already classified (acquire failures are mapped before the query runs)
	var se *store.StoreError
	if errors.As(err, &se) {
		return err
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return &store.StoreError{
			Code:    store.ErrNotFound,
			Message: fmt.Sprintf("%s: not found", operation),
			Cause:   err,
		}
	}

	// Acquiring from a pool that Close has already torn down
	if errors.Is(err, puddle.ErrClosedPool) {
		return store.NewUnavailableError(fmt.Sprintf("%s: connection pool is closed", operation), err)
	}

	// Caller cancellation surfacing mid-acquire or mid-query. Same class as
	// the pre-acquire check in pool.go: the request was abandoned or timed
	// out, the backend is not at fault.
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return store.NewUnavailableError(fmt.Sprintf("%s: request canceled", operation), err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return mapPgErrorCode(pgErr, operation)
	}

	return store.NewBackendError(fmt.Sprintf("%s: %v", operation, err), err)
}

// mapPgErrorCode maps PostgreSQL error codes to store errors.
// Codes: https://www.postgresql.org/docs/current/errcodes-appendix.html
func mapPgErrorCode(pgErr *pgconn.PgError, operation string) error {
	switch pgErr.Code {
	// 23505: unique_violation. The database is the sole authority on
	// uniqueness; this is where duplicate ids and emails surface.
	case "23505":
		return &store.StoreError{
			Code:       store.ErrAlreadyExists,
			Message:    fmt.Sprintf("%s: already exists", operation),
			Constraint: pgErr.ConstraintName,
			Cause:      pgErr,
		}

	// 23503: foreign_key_violation
	case "23503":
		return &store.StoreError{
			Code:       store.ErrNotFound,
			Message:    fmt.Sprintf("%s: referenced record not found", operation),
			Constraint: pgErr.ConstraintName,
			Cause:      pgErr,
		}

	// 23502: not_null_violation
	case "23502":
		return store.NewInvalidArgumentError(fmt.Sprintf("%s: missing required field %s", operation, pgErr.ColumnName))

	// 23514: check_constraint_violation
	case "23514":
		return &store.StoreError{
			Code:       store.ErrInvalidArgument,
			Message:    fmt.Sprintf("%s: invalid value", operation),
			Constraint: pgErr.ConstraintName,
			Cause:      pgErr,
		}

	// 53300: too_many_connections
	case "53300":
		return store.NewUnavailableError(fmt.Sprintf("%s: too many connections", operation), pgErr)

	// 57P01: admin_shutdown, 57P02: crash_shutdown, 57P03: cannot_connect_now
	case "57P01", "57P02", "57P03":
		return store.NewUnavailableError(fmt.Sprintf("%s: database is shutting down", operation), pgErr)

	// 08000-08006: connection errors
	case "08000", "08001", "08003", "08004", "08006":
		return store.NewUnavailableError(fmt.Sprintf("%s: database connection error", operation), pgErr)

	// 40001: serialization_failure, 40P01: deadlock_detected
	case "40001", "40P01":
		return store.NewBackendError(fmt.Sprintf("%s: transaction conflict, retry", operation), pgErr)

	// 57014: query_canceled. Raised for a caller cancellation that reached
	// the server and for statement_timeout; in both cases the query was cut
	// short, not broken.
	case "57014":
		return store.NewUnavailableError(fmt.Sprintf("%s: query canceled", operation), pgErr)

	default:
		logger.Debug("unmapped database error",
			logger.SQLState(pgErr.Code),
			logger.Table(pgErr.TableName),
			logger.Operation(operation),
		)
		return store.NewBackendError(fmt.Sprintf("%s: database error [%s] %s", operation, pgErr.Code, pgErr.Message), pgErr)
	}
}
