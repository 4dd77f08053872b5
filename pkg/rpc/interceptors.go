package rpc

import (
	"context"
	"net"
	"strings"
	"time"

	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/peer"
	"google.golang.org/grpc/status"

	"github.com/veterinaryhq/userd/internal/logger"
	"github.com/veterinaryhq/userd/internal/telemetry"
	"github.com/veterinaryhq/userd/pkg/metrics"
)

// serviceName is the fully qualified gRPC service name used in spans.
const serviceName = "user.v1.UserService"

// ContextInterceptor attaches a request-scoped log context and a server span
// to every incoming call, and logs the call outcome.
//
// Each request gets a fresh request ID. The raw request payload is never
// logged; handlers decide which fields are safe to attach.
func ContextInterceptor() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		method := shortMethod(info.FullMethod)

		lc := logger.NewLogContext(method, clientIP(ctx)).
			WithRequestID(uuid.NewString())

		ctx, span := telemetry.StartRPCSpan(ctx, serviceName, method,
			telemetry.ClientIP(lc.ClientIP))
		defer span.End()

		lc = lc.WithTrace(telemetry.TraceID(ctx), telemetry.SpanID(ctx))
		ctx = logger.WithContext(ctx, lc)

		resp, err := handler(ctx, req)

		code := status.Code(err)
		telemetry.SetAttributes(ctx, telemetry.RPCCode(int(code)))
		if err != nil {
			telemetry.RecordError(ctx, err)
		}

		logCompletion(ctx, code, lc.DurationMs(), err)
		return resp, err
	}
}

// logCompletion logs one line per request. Client-caused outcomes log at
// lower severity than server faults.
func logCompletion(ctx context.Context, code codes.Code, durationMs float64, err error) {
	args := []any{
		logger.RPCCode(code.String()),
		logger.DurationMs(durationMs),
	}
	if err != nil {
		args = append(args, logger.Err(err))
	}

	switch code {
	case codes.OK:
		logger.InfoCtx(ctx, "rpc completed", args...)
	case codes.Internal, codes.Unknown, codes.DataLoss:
		logger.ErrorCtx(ctx, "rpc failed", args...)
	case codes.Unavailable:
		logger.WarnCtx(ctx, "rpc rejected", args...)
	default:
		logger.InfoCtx(ctx, "rpc completed", args...)
	}
}

// MetricsInterceptor records request counts, latency, and in-flight gauges.
// With nil metrics the interceptor is a passthrough.
func MetricsInterceptor(m metrics.RPCMetrics) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		if m == nil {
			return handler(ctx, req)
		}

		method := shortMethod(info.FullMethod)
		start := time.Now()

		m.RecordRequestStart(method)
		defer m.RecordRequestEnd(method)

		resp, err := handler(ctx, req)

		m.RecordRequest(method, time.Since(start), status.Code(err).String())
		return resp, err
	}
}

// RecoveryInterceptor converts handler panics into Internal errors so a
// single bad request cannot take the process down.
func RecoveryInterceptor() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (resp any, err error) {
		defer func() {
			if r := recover(); r != nil {
				logger.ErrorCtx(ctx, "panic in handler",
					logger.RPCMethod(shortMethod(info.FullMethod)),
					"panic", r)
				err = status.Error(codes.Internal, "internal error")
			}
		}()
		return handler(ctx, req)
	}
}

// shortMethod strips the service prefix from a full method name
// ("/user.v1.UserService/GetUserById" -> "GetUserById").
func shortMethod(fullMethod string) string {
	if i := strings.LastIndex(fullMethod, "/"); i >= 0 {
		return fullMethod[i+1:]
	}
	return fullMethod
}

// clientIP extracts the peer address without the port.
func clientIP(ctx context.Context) string {
	p, ok := peer.FromContext(ctx)
	if !ok || p.Addr == nil {
		return ""
	}
	host, _, err := net.SplitHostPort(p.Addr.String())
	if err != nil {
		return p.Addr.String()
	}
	return host
}
