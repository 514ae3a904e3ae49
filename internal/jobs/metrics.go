package jobmetrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics exposes Prometheus collectors for background jobs.
type Metrics struct {
	runs       *prometheus.CounterVec
	failures   *prometheus.CounterVec
	duration   *prometheus.HistogramVec
	stockLevel *prometheus.GaugeVec
	lastScan   prometheus.Gauge
}

var (
	defaultOnce    sync.Once
	defaultMetrics *Metrics
)

// NewMetrics registers the job metrics against the provided registerer. When the
// registerer is nil the default Prometheus registerer is used.
func NewMetrics(registerer prometheus.Registerer) *Metrics {
	if registerer == nil {
		defaultOnce.Do(func() {
			defaultMetrics = buildMetrics(prometheus.DefaultRegisterer)
		})
		return defaultMetrics
	}
	return buildMetrics(registerer)
}

// Tracker provides lifecycle instrumentation helpers for a single job run.
type Tracker struct {
	metrics *Metrics
	job     string
	start   time.Time
}

// Track spawns a tracker for the given job name.
func (m *Metrics) Track(job string) *Tracker {
	if m == nil {
		return &Tracker{job: job, start: time.Now()}
	}
	return &Tracker{metrics: m, job: job, start: time.Now()}
}

// End finalises the tracker, recording duration, success/failure counts and
// returning the provided error untouched.
func (t *Tracker) End(err error) error {
	if t == nil || t.metrics == nil || t.job == "" {
		return err
	}
	status := "success"
	if err != nil {
		status = "failure"
		t.metrics.failures.WithLabelValues(t.job).Inc()
	}
	t.metrics.runs.WithLabelValues(t.job, status).Inc()
	t.metrics.duration.WithLabelValues(t.job).Observe(time.Since(t.start).Seconds())
	return err
}

// SetStockLevels publishes the item count per stock status from the latest
// scan. Listed statuses missing from counts are reset to zero.
func (m *Metrics) SetStockLevels(counts map[string]int, statuses ...string) {
	if m == nil {
		return
	}
	for _, status := range statuses {
		if _, ok := counts[status]; !ok {
			m.stockLevel.WithLabelValues(status).Set(0)
		}
	}
	for status, n := range counts {
		m.stockLevel.WithLabelValues(status).Set(float64(n))
	}
	m.lastScan.SetToCurrentTime()
}

func buildMetrics(registerer prometheus.Registerer) *Metrics {
	runs := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "stockroom_jobs_total",
		Help: "Total job executions partitioned by job name and status.",
	}, []string{"job", "status"})
	failures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "stockroom_jobs_failures_total",
		Help: "Total failures observed for background jobs.",
	}, []string{"job"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "stockroom_job_duration_seconds",
		Help:    "Duration in seconds of background job executions.",
		Buckets: prometheus.DefBuckets,
	}, []string{"job"})
	stockLevel := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "stockroom_inventory_items",
		Help: "Items per stock status observed by the last low stock scan.",
	}, []string{"status"})
	lastScan := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "stockroom_low_stock_scan_timestamp_seconds",
		Help: "Unix time of the last completed low stock scan.",
	})
	registerer.MustRegister(runs, failures, duration, stockLevel, lastScan)
	return &Metrics{runs: runs, failures: failures, duration: duration, stockLevel: stockLevel, lastScan: lastScan}
}
