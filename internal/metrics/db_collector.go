package metrics

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
)

// DBPoolStatFunc returns a snapshot of the pgx pool statistics.
type DBPoolStatFunc func() *pgxpool.Stat

// DBPoolCollector exposes pgx connection pool stats as gauges, collected
// on scrape rather than on a timer.
type DBPoolCollector struct {
	statFunc DBPoolStatFunc

	acquiredConns *prometheus.Desc
	idleConns     *prometheus.Desc
	totalConns    *prometheus.Desc
	maxConns      *prometheus.Desc
	acquireCount  *prometheus.Desc
	emptyAcquires *prometheus.Desc
}

// NewDBPoolCollector creates a collector reading stats via statFunc.
func NewDBPoolCollector(statFunc DBPoolStatFunc) *DBPoolCollector {
	return &DBPoolCollector{
		statFunc: statFunc,
		acquiredConns: prometheus.NewDesc(
			"pilotage_db_pool_acquired_conns",
			"Number of connections currently in use.", nil, nil),
		idleConns: prometheus.NewDesc(
			"pilotage_db_pool_idle_conns",
			"Number of idle connections in the pool.", nil, nil),
		totalConns: prometheus.NewDesc(
			"pilotage_db_pool_total_conns",
			"Total number of connections in the pool.", nil, nil),
		maxConns: prometheus.NewDesc(
			"pilotage_db_pool_max_conns",
			"Maximum size of the pool.", nil, nil),
		acquireCount: prometheus.NewDesc(
			"pilotage_db_pool_acquire_count",
			"Cumulative number of successful acquires.", nil, nil),
		emptyAcquires: prometheus.NewDesc(
			"pilotage_db_pool_empty_acquire_count",
			"Cumulative number of acquires that waited for a free connection.", nil, nil),
	}
}

func (c *DBPoolCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.acquiredConns
	ch <- c.idleConns
	ch <- c.totalConns
	ch <- c.maxConns
	ch <- c.acquireCount
	ch <- c.emptyAcquires
}

func (c *DBPoolCollector) Collect(ch chan<- prometheus.Metric) {
	stat := c.statFunc()
	if stat == nil {
		return
	}
	ch <- prometheus.MustNewConstMetric(c.acquiredConns, prometheus.GaugeValue, float64(stat.AcquiredConns()))
	ch <- prometheus.MustNewConstMetric(c.idleConns, prometheus.GaugeValue, float64(stat.IdleConns()))
	ch <- prometheus.MustNewConstMetric(c.totalConns, prometheus.GaugeValue, float64(stat.TotalConns()))
	ch <- prometheus.MustNewConstMetric(c.maxConns, prometheus.GaugeValue, float64(stat.MaxConns()))
	ch <- prometheus.MustNewConstMetric(c.acquireCount, prometheus.CounterValue, float64(stat.AcquireCount()))
	ch <- prometheus.MustNewConstMetric(c.emptyAcquires, prometheus.CounterValue, float64(stat.EmptyAcquireCount()))
}
