package logger

import (
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"strings"
)

// Standard field keys for structured logging.
// Use these keys consistently across all log statements so that log
// aggregation and querying works across the whole service.
const (
	// ========================================================================
	// Distributed Tracing
	// ========================================================================
	KeyTraceID = "trace_id" // OpenTelemetry trace ID for request correlation
	KeySpanID  = "span_id"  // OpenTelemetry span ID for operation tracking

	// ========================================================================
	// RPC Surface
	// ========================================================================
	KeyRPCMethod  = "rpc_method" // Full gRPC method name (/user.v1.UserService/GetUserById)
	KeyRPCCode    = "rpc_code"   // gRPC status code returned to the caller
	KeyRequestID  = "request_id" // Request identifier for correlation
	KeyClientIP   = "client_ip"  // Client IP address
	KeyDurationMs = "duration_ms"

	// ========================================================================
	// Domain Entities
	// ========================================================================
	KeyUserID = "user_id" // User identifier (UUID)
	// KeyEmailDigest carries a truncated SHA-256 of an email address. Raw
	// email addresses never appear in logs.
	KeyEmailDigest = "email_digest"
	KeyUserStatus  = "user_status" // Lifecycle status: active, disabled, pending

	// ========================================================================
	// Database & Pool
	// ========================================================================
	KeyErrorCode    = "error_code"   // Store error code (not_found, conflict, ...)
	KeyConstraint   = "constraint"   // Violated database constraint name
	KeyTable        = "table"        // Table involved in the operation
	KeySQLState     = "sqlstate"     // PostgreSQL SQLSTATE code
	KeyPoolTotal    = "pool_total"   // Total connections in the pool
	KeyPoolIdle     = "pool_idle"    // Idle connections in the pool
	KeyPoolAcquired = "pool_in_use"  // Connections currently acquired
	KeyPoolWaiters  = "pool_waiters" // Goroutines waiting for a connection
	KeyMigration    = "migration"    // Schema migration version

	// ========================================================================
	// Lifecycle
	// ========================================================================
	KeyComponent = "component" // Subsystem: grpc, pool, ops, telemetry
	KeyAddress   = "address"   // Listen or dial address
	KeyEnv       = "env"       // Environment mode: development, staging, production
	KeySignal    = "signal"    // OS signal that triggered shutdown
	KeyVersion   = "version"   // Build version

	// ========================================================================
	// Operation Metadata
	// ========================================================================
	KeyError     = "error"     // Error message
	KeyOperation = "operation" // Sub-operation type for complex operations
)

// ============================================================================
// Field constructors for type safety
// ============================================================================

// TraceID returns a slog.Attr for OpenTelemetry trace ID
func TraceID(id string) slog.Attr {
	return slog.String(KeyTraceID, id)
}

// SpanID returns a slog.Attr for OpenTelemetry span ID
func SpanID(id string) slog.Attr {
	return slog.String(KeySpanID, id)
}

// RPCMethod returns a slog.Attr for the full gRPC method name
func RPCMethod(method string) slog.Attr {
	return slog.String(KeyRPCMethod, method)
}

// RPCCode returns a slog.Attr for the gRPC status code string
func RPCCode(code string) slog.Attr {
	return slog.String(KeyRPCCode, code)
}

// RequestID returns a slog.Attr for request identifier
func RequestID(id string) slog.Attr {
	return slog.String(KeyRequestID, id)
}

// ClientIP returns a slog.Attr for client IP address
func ClientIP(addr string) slog.Attr {
	return slog.String(KeyClientIP, addr)
}

// DurationMs returns a slog.Attr for duration in milliseconds
func DurationMs(ms float64) slog.Attr {
	return slog.Float64(KeyDurationMs, ms)
}

// UserID returns a slog.Attr for a user identifier
func UserID(id string) slog.Attr {
	return slog.String(KeyUserID, id)
}

// EmailDigest returns a slog.Attr carrying a non-reversible digest of the
// given email address. The digest is the first 12 hex characters of the
// SHA-256 of the lowercased address, enough to correlate log lines for the
// same address without ever recording it.
func EmailDigest(email string) slog.Attr {
	return slog.String(KeyEmailDigest, DigestEmail(email))
}

// DigestEmail computes the digest used by EmailDigest.
func DigestEmail(email string) string {
	sum := sha256.Sum256([]byte(strings.ToLower(email)))
	return hex.EncodeToString(sum[:])[:12]
}

// UserStatus returns a slog.Attr for a user lifecycle status
func UserStatus(status string) slog.Attr {
	return slog.String(KeyUserStatus, status)
}

// ErrorCode returns a slog.Attr for a store error code
func ErrorCode(code string) slog.Attr {
	return slog.String(KeyErrorCode, code)
}

// Constraint returns a slog.Attr for a violated constraint name
func Constraint(name string) slog.Attr {
	return slog.String(KeyConstraint, name)
}

// Table returns a slog.Attr for the table involved in an operation
func Table(name string) slog.Attr {
	return slog.String(KeyTable, name)
}

// SQLState returns a slog.Attr for a PostgreSQL SQLSTATE code
func SQLState(code string) slog.Attr {
	return slog.String(KeySQLState, code)
}

// PoolTotal returns a slog.Attr for total pool connections
func PoolTotal(n int32) slog.Attr {
	return slog.Int(KeyPoolTotal, int(n))
}

// PoolIdle returns a slog.Attr for idle pool connections
func PoolIdle(n int32) slog.Attr {
	return slog.Int(KeyPoolIdle, int(n))
}

// PoolAcquired returns a slog.Attr for acquired pool connections
func PoolAcquired(n int32) slog.Attr {
	return slog.Int(KeyPoolAcquired, int(n))
}

// Migration returns a slog.Attr for a schema migration version
func Migration(version uint) slog.Attr {
	return slog.Uint64(KeyMigration, uint64(version))
}

// Component returns a slog.Attr for the subsystem emitting the log line
func Component(name string) slog.Attr {
	return slog.String(KeyComponent, name)
}

// Address returns a slog.Attr for a listen or dial address
func Address(addr string) slog.Attr {
	return slog.String(KeyAddress, addr)
}

// Env returns a slog.Attr for the environment mode
func Env(env string) slog.Attr {
	return slog.String(KeyEnv, env)
}

// Signal returns a slog.Attr for the OS signal that triggered shutdown
func Signal(sig string) slog.Attr {
	return slog.String(KeySignal, sig)
}

// Version returns a slog.Attr for the build version
func Version(v string) slog.Attr {
	return slog.String(KeyVersion, v)
}

// Err returns a slog.Attr for an error
func Err(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.String(KeyError, err.Error())
}

// Operation returns a slog.Attr for sub-operation type
func Operation(op string) slog.Attr {
	return slog.String(KeyOperation, op)
}
