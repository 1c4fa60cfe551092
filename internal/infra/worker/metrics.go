package worker

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"newshub/internal/pkg/config"
)

// Metrics exposes Prometheus metrics for the worker process. It embeds
// the shared configuration metrics and adds job execution tracking.
//
// Worker-specific series:
//   - worker_job_runs_total{status}:          runs by completed/failed/timed_out
//   - worker_job_duration_seconds:            job execution histogram
//   - worker_job_items_ingested_total:        articles ingested across runs
//   - worker_job_last_success_timestamp:      Unix time of last successful run
type Metrics struct {
	*config.ConfigMetrics

	JobRunsTotal         *prometheus.CounterVec
	JobDurationSeconds   prometheus.Histogram
	ItemsIngestedTotal   prometheus.Counter
	LastSuccessTimestamp prometheus.Gauge
}

// NewMetrics creates and registers the worker metrics. Registration
// happens via promauto, so call this once per process.
func NewMetrics() *Metrics {
	return &Metrics{
		ConfigMetrics: config.NewConfigMetrics("worker"),

		JobRunsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "worker_job_runs_total",
			Help: "Total number of crawl job runs by final status",
		}, []string{"status"}),

		JobDurationSeconds: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "worker_job_duration_seconds",
			Help:    "Duration of crawl job execution in seconds",
			Buckets: []float64{1, 5, 30, 60, 300, 900, 1800},
		}),

		ItemsIngestedTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "worker_job_items_ingested_total",
			Help: "Total number of articles ingested across all job runs",
		}),

		LastSuccessTimestamp: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "worker_job_last_success_timestamp",
			Help: "Unix timestamp of the last successful job run",
		}),
	}
}

// RecordJobRun increments the run counter for the given final status.
func (m *Metrics) RecordJobRun(status string) {
	m.JobRunsTotal.WithLabelValues(status).Inc()
}

// RecordJobDuration observes a job execution duration in seconds.
func (m *Metrics) RecordJobDuration(seconds float64) {
	m.JobDurationSeconds.Observe(seconds)
}

// RecordItemsIngested adds to the running total of ingested articles.
func (m *Metrics) RecordItemsIngested(count int) {
	m.ItemsIngestedTotal.Add(float64(count))
}

// RecordLastSuccess stamps the current time as the last successful run.
func (m *Metrics) RecordLastSuccess() {
	m.LastSuccessTimestamp.SetToCurrentTime()
}
