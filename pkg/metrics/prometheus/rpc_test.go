package prometheus

import (
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veterinaryhq/userd/pkg/metrics"
)

// Constructors share the process-global registry, so the disabled check
// must run before InitRegistry.
func TestMetricsInstances(t *testing.T) {
	t.Run("NilWhenDisabled", func(t *testing.T) {
		assert.Nil(t, NewRPCMetrics())
		assert.NoError(t, RegisterPoolCollector(func() *pgxpool.Stat { return nil }))
	})

	metrics.InitRegistry()

	t.Run("RPCMetricsRecord", func(t *testing.T) {
		m := NewRPCMetrics()
		require.NotNil(t, m)

		m.RecordRequestStart("GetUserById")
		m.RecordRequest("GetUserById", 3*time.Millisecond, "OK")
		m.RecordRequest("GetUserById", 12*time.Millisecond, "NotFound")
		m.RecordRequestEnd("GetUserById")

		families, err := metrics.GetRegistry().Gather()
		require.NoError(t, err)

		names := make(map[string]bool, len(families))
		for _, f := range families {
			names[f.GetName()] = true
		}
		assert.True(t, names["userd_rpc_requests_total"])
		assert.True(t, names["userd_rpc_request_duration_milliseconds"])
		assert.True(t, names["userd_rpc_requests_in_flight"])
	})

	t.Run("PoolCollectorWithNilStat", func(t *testing.T) {
		require.NoError(t, RegisterPoolCollector(func() *pgxpool.Stat { return nil }))

		// A nil stat sample must not break scrapes
		_, err := metrics.GetRegistry().Gather()
		assert.NoError(t, err)
	})
}
