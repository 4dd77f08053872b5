package metrics

import (
	"time"
)

// RPCMetrics provides observability for gRPC request handling.
//
// Implementations can collect metrics about request counts, latency, and
// in-flight requests. This interface is optional - pass nil to disable
// metrics collection with zero overhead.
//
// Example usage:
//
//	// With metrics enabled
//	metrics.InitRegistry()
//	rpcMetrics := prometheus.NewRPCMetrics()
//	server := rpc.NewServer(cfg, store, rpcMetrics)
//
//	// Without metrics (pass nil for zero overhead)
//	server := rpc.NewServer(cfg, store, nil)
type RPCMetrics interface {
	// RecordRequest records a completed gRPC request with its method name,
	// duration, and final status code.
	//
	// Parameters:
	//   - method: Short method name (e.g., "GetUserById", "CreateUser")
	//   - duration: Time taken to process the request
	//   - code: Canonical gRPC status code string (e.g., "OK", "NotFound")
	RecordRequest(method string, duration time.Duration, code string)

	// RecordRequestStart increments the in-flight request counter.
	// Should be called when starting to process a request.
	RecordRequestStart(method string)

	// RecordRequestEnd decrements the in-flight request counter.
	// Should be called when request processing completes.
	RecordRequestEnd(method string)
}
