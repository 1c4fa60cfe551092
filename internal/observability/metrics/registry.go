package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP metrics track HTTP request patterns and performance
var (
	// HTTPRequestsTotal counts total HTTP requests by method, path, and status
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// HTTPRequestDuration measures HTTP request duration in seconds
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)

// Ingestion metrics track the crawler-to-database pipeline
var (
	// ArticlesIngestedTotal counts ingestion results by outcome
	ArticlesIngestedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "articles_ingested_total",
			Help: "Total number of ingestion attempts by outcome",
		},
		[]string{"outcome"}, // outcome: inserted, skipped, failed, poison
	)

	// ArticlesPurgedTotal counts articles removed by the retention sweep
	ArticlesPurgedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "articles_purged_total",
			Help: "Total number of articles removed by the retention sweep",
		},
	)

	// ArticlesTotal tracks total number of articles in database
	ArticlesTotal = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "articles_total",
			Help: "Total number of articles in the database",
		},
	)
)

// Cache metrics track read-path cache effectiveness
var (
	// CacheRequestsTotal counts cache lookups by result
	CacheRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_requests_total",
			Help: "Total number of cache lookups by result",
		},
		[]string{"result"}, // result: hit, miss, error
	)
)

// Crawler metrics track external crawler process runs
var (
	// CrawlerRunsTotal counts crawler runs by job and status
	CrawlerRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crawler_runs_total",
			Help: "Total number of crawler runs",
		},
		[]string{"job", "status"}, // status: completed, failed, timed_out, skipped
	)

	// CrawlerRunDuration measures crawler run duration per job
	CrawlerRunDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "crawler_run_duration_seconds",
			Help:    "Crawler run duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.5, 2, 10),
		},
		[]string{"job"},
	)
)

// Notification metrics track fan-out delivery
var (
	// NotificationsPublishedTotal counts push publishes by status
	NotificationsPublishedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notifications_published_total",
			Help: "Total number of notification pushes",
		},
		[]string{"status"}, // status: success, failure
	)
)

// Database metrics track database performance
var (
	// DBQueryDuration measures database query duration
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "db_query_duration_seconds",
			Help:    "Database query duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 10),
		},
		[]string{"operation"},
	)

	// DBConnectionsActive tracks active database connections
	DBConnectionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "db_connections_active",
			Help: "Number of active database connections",
		},
	)

	// DBConnectionsIdle tracks idle database connections
	DBConnectionsIdle = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "db_connections_idle",
			Help: "Number of idle database connections",
		},
	)
)

// RecordHTTPRequest records an HTTP request with its metadata
func RecordHTTPRequest(method, path, status string, duration time.Duration) {
	HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

// RecordOperationDuration records the duration of a named operation
func RecordOperationDuration(operation string, duration time.Duration) {
	DBQueryDuration.WithLabelValues(operation).Observe(duration.Seconds())
}
