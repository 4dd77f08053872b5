package prometheus

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/veterinaryhq/userd/pkg/metrics"
)

// rpcMetrics is the Prometheus implementation of metrics.RPCMetrics.
type rpcMetrics struct {
	requestsTotal    *prometheus.CounterVec
	requestDuration  *prometheus.HistogramVec
	requestsInFlight *prometheus.GaugeVec
}

// NewRPCMetrics creates a new Prometheus-backed RPCMetrics instance.
//
// Returns nil if metrics are not enabled (InitRegistry not called).
func NewRPCMetrics() metrics.RPCMetrics {
	if !metrics.IsEnabled() {
		return nil
	}

	reg := metrics.GetRegistry()

	return &rpcMetrics{
		requestsTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "userd_rpc_requests_total",
				Help: "Total number of gRPC requests by method and status code",
			},
			[]string{"method", "code"},
		),
		requestDuration: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "userd_rpc_request_duration_milliseconds",
				Help: "Duration of gRPC requests in milliseconds",
				Buckets: []float64{
					1,    // 1ms - cache-warm lookups
					5,    // 5ms - typical single-row queries
					10,   // 10ms
					25,   // 25ms
					50,   // 50ms
					100,  // 100ms - pool contention
					250,  // 250ms
					500,  // 500ms
					1000, // 1s
					5000, // 5s - statement timeout territory
				},
			},
			[]string{"method"},
		),
		requestsInFlight: promauto.With(reg).NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "userd_rpc_requests_in_flight",
				Help: "Current number of gRPC requests being processed",
			},
			[]string{"method"},
		),
	}
}

func (m *rpcMetrics) RecordRequest(method string, duration time.Duration, code string) {
	m.requestsTotal.WithLabelValues(method, code).Inc()
	m.requestDuration.WithLabelValues(method).Observe(float64(duration.Milliseconds()))
}

func (m *rpcMetrics) RecordRequestStart(method string) {
	m.requestsInFlight.WithLabelValues(method).Inc()
}

func (m *rpcMetrics) RecordRequestEnd(method string) {
	m.requestsInFlight.WithLabelValues(method).Dec()
}
