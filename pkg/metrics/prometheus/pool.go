package prometheus

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/veterinaryhq/userd/pkg/metrics"
)

// poolCollector exposes pgxpool statistics as Prometheus metrics.
//
// The pool is sampled at scrape time, so gauges always reflect the current
// pool state rather than the state at the last operation.
type poolCollector struct {
	stat func() *pgxpool.Stat

	totalConns        *prometheus.Desc
	idleConns         *prometheus.Desc
	acquiredConns     *prometheus.Desc
	constructingConns *prometheus.Desc
	maxConns          *prometheus.Desc
	acquireCount      *prometheus.Desc
	acquireDuration   *prometheus.Desc
	emptyAcquireCount *prometheus.Desc
	canceledAcquires  *prometheus.Desc
}

// RegisterPoolCollector registers a collector that samples the given pool
// statistics function on every scrape.
//
// No-op if metrics are not enabled (InitRegistry not called).
func RegisterPoolCollector(stat func() *pgxpool.Stat) error {
	if !metrics.IsEnabled() {
		return nil
	}

	c := &poolCollector{
		stat: stat,
		totalConns: prometheus.NewDesc(
			"userd_db_pool_total_conns",
			"Total number of connections currently in the pool",
			nil, nil,
		),
		idleConns: prometheus.NewDesc(
			"userd_db_pool_idle_conns",
			"Number of idle connections in the pool",
			nil, nil,
		),
		acquiredConns: prometheus.NewDesc(
			"userd_db_pool_acquired_conns",
			"Number of connections currently checked out of the pool",
			nil, nil,
		),
		constructingConns: prometheus.NewDesc(
			"userd_db_pool_constructing_conns",
			"Number of connections currently being established",
			nil, nil,
		),
		maxConns: prometheus.NewDesc(
			"userd_db_pool_max_conns",
			"Configured maximum pool size",
			nil, nil,
		),
		acquireCount: prometheus.NewDesc(
			"userd_db_pool_acquires_total",
			"Cumulative number of successful connection acquires",
			nil, nil,
		),
		acquireDuration: prometheus.NewDesc(
			"userd_db_pool_acquire_duration_seconds_total",
			"Cumulative time spent waiting for connection acquires",
			nil, nil,
		),
		emptyAcquireCount: prometheus.NewDesc(
			"userd_db_pool_empty_acquires_total",
			"Cumulative number of acquires that waited for a connection",
			nil, nil,
		),
		canceledAcquires: prometheus.NewDesc(
			"userd_db_pool_canceled_acquires_total",
			"Cumulative number of acquires canceled by context",
			nil, nil,
		),
	}

	return metrics.GetRegistry().Register(c)
}

func (c *poolCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.totalConns
	ch <- c.idleConns
	ch <- c.acquiredConns
	ch <- c.constructingConns
	ch <- c.maxConns
	ch <- c.acquireCount
	ch <- c.acquireDuration
	ch <- c.emptyAcquireCount
	ch <- c.canceledAcquires
}

func (c *poolCollector) Collect(ch chan<- prometheus.Metric) {
	stat := c.stat()
	if stat == nil {
		return
	}

	ch <- prometheus.MustNewConstMetric(c.totalConns, prometheus.GaugeValue, float64(stat.TotalConns()))
	ch <- prometheus.MustNewConstMetric(c.idleConns, prometheus.GaugeValue, float64(stat.IdleConns()))
	ch <- prometheus.MustNewConstMetric(c.acquiredConns, prometheus.GaugeValue, float64(stat.AcquiredConns()))
	ch <- prometheus.MustNewConstMetric(c.constructingConns, prometheus.GaugeValue, float64(stat.ConstructingConns()))
	ch <- prometheus.MustNewConstMetric(c.maxConns, prometheus.GaugeValue, float64(stat.MaxConns()))
	ch <- prometheus.MustNewConstMetric(c.acquireCount, prometheus.CounterValue, float64(stat.AcquireCount()))
	ch <- prometheus.MustNewConstMetric(c.acquireDuration, prometheus.CounterValue, stat.AcquireDuration().Seconds())
	ch <- prometheus.MustNewConstMetric(c.emptyAcquireCount, prometheus.CounterValue, float64(stat.EmptyAcquireCount()))
	ch <- prometheus.MustNewConstMetric(c.canceledAcquires, prometheus.CounterValue, float64(stat.CanceledAcquireCount()))
}
