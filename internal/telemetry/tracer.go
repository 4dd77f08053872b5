package telemetry

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Common attribute keys for RPC and store operations.
// These follow OpenTelemetry semantic conventions where applicable.
const (
	// ========================================================================
	// Client attributes
	// ========================================================================
	AttrClientIP   = "client.ip"
	AttrClientAddr = "client.address"

	// ========================================================================
	// RPC attributes
	// ========================================================================
	AttrRPCSystem  = "rpc.system"
	AttrRPCService = "rpc.service"
	AttrRPCMethod  = "rpc.method"
	AttrRPCCode    = "rpc.grpc.status_code"

	// ========================================================================
	// User attributes
	// ========================================================================
	AttrUserID      = "user.id"
	AttrEmailDigest = "user.email_digest"
	AttrUserStatus  = "user.status"

	// ========================================================================
	// Store attributes
	// ========================================================================
	AttrDBSystem   = "db.system"
	AttrDBName     = "db.name"
	AttrDBOp       = "db.operation"
	AttrConstraint = "db.constraint"
	AttrErrorCode  = "error.code"
)

// Span names for operations.
// Format: <component>.<operation>
const (
	// Root span for gRPC request processing
	SpanRPCRequest = "rpc.request"

	// Store operations
	SpanStoreGetUserByID    = "store.get_user_by_id"
	SpanStoreGetUserByEmail = "store.get_user_by_email"
	SpanStoreCreateUser     = "store.create_user"
	SpanStoreGetProfile     = "store.get_profile"
	SpanStoreHealthcheck    = "store.healthcheck"
)

// ClientIP returns an attribute for client IP address
func ClientIP(ip string) attribute.KeyValue {
	return attribute.String(AttrClientIP, ip)
}

// ClientAddr returns an attribute for full client address
func ClientAddr(addr string) attribute.KeyValue {
	return attribute.String(AttrClientAddr, addr)
}

// RPCMethod returns an attribute for the gRPC method name
func RPCMethod(method string) attribute.KeyValue {
	return attribute.String(AttrRPCMethod, method)
}

// RPCCode returns an attribute for the gRPC status code
func RPCCode(code int) attribute.KeyValue {
	return attribute.Int(AttrRPCCode, code)
}

// UserID returns an attribute for user ID
func UserID(id string) attribute.KeyValue {
	return attribute.String(AttrUserID, id)
}

// EmailDigest returns an attribute for the non-reversible email digest.
// Never attach the raw address to a span.
func EmailDigest(digest string) attribute.KeyValue {
	return attribute.String(AttrEmailDigest, digest)
}

// UserStatus returns an attribute for user status
func UserStatus(status string) attribute.KeyValue {
	return attribute.String(AttrUserStatus, status)
}

// Constraint returns an attribute for a violated database constraint
func Constraint(name string) attribute.KeyValue {
	return attribute.String(AttrConstraint, name)
}

// ErrorCode returns an attribute for the store error code
func ErrorCode(code string) attribute.KeyValue {
	return attribute.String(AttrErrorCode, code)
}

// StartRPCSpan starts a server span for a gRPC method.
// This is a convenience function that sets common attributes.
func StartRPCSpan(ctx context.Context, service, method string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	allAttrs := []attribute.KeyValue{
		attribute.String(AttrRPCSystem, "grpc"),
		attribute.String(AttrRPCService, service),
		RPCMethod(method),
	}
	allAttrs = append(allAttrs, attrs...)

	return StartSpan(ctx, service+"/"+method,
		trace.WithSpanKind(trace.SpanKindServer),
		trace.WithAttributes(allAttrs...))
}

// StartStoreSpan starts a span for a user store operation.
func StartStoreSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	allAttrs := []attribute.KeyValue{
		attribute.String(AttrDBSystem, "postgresql"),
	}
	allAttrs = append(allAttrs, attrs...)

	return StartSpan(ctx, name, trace.WithAttributes(allAttrs...))
}
