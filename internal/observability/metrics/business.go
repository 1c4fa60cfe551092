package metrics

import "time"

// Ingest outcomes. These match the outcome label values on
// ArticlesIngestedTotal.
const (
	OutcomeInserted = "inserted"
	OutcomeSkipped  = "skipped"
	OutcomeFailed   = "failed"
	OutcomePoison   = "poison"
)

// RecordIngest records the result of one ingestion attempt.
func RecordIngest(outcome string) {
	ArticlesIngestedTotal.WithLabelValues(outcome).Inc()
}

// RecordCacheHit records a cache lookup that returned a value.
func RecordCacheHit() {
	CacheRequestsTotal.WithLabelValues("hit").Inc()
}

// RecordCacheMiss records a cache lookup that found nothing.
func RecordCacheMiss() {
	CacheRequestsTotal.WithLabelValues("miss").Inc()
}

// RecordCacheError records a cache lookup that failed. Errors are
// counted separately from misses so that a Redis outage is visible even
// though the read path degrades silently.
func RecordCacheError() {
	CacheRequestsTotal.WithLabelValues("error").Inc()
}

// RecordCrawlerRun records one crawler run with its terminal status and
// duration.
func RecordCrawlerRun(job, status string, duration time.Duration) {
	CrawlerRunsTotal.WithLabelValues(job, status).Inc()
	CrawlerRunDuration.WithLabelValues(job).Observe(duration.Seconds())
}

// RecordCrawlerSkipped records a run that was not started because the
// previous run of the same job is still in flight.
func RecordCrawlerSkipped(job string) {
	CrawlerRunsTotal.WithLabelValues(job, "skipped").Inc()
}

// RecordNotificationPublished records a push delivery attempt.
func RecordNotificationPublished(success bool) {
	status := "success"
	if !success {
		status = "failure"
	}
	NotificationsPublishedTotal.WithLabelValues(status).Inc()
}

// RecordArticlesPurged records the row count removed by a retention sweep.
func RecordArticlesPurged(count int64) {
	ArticlesPurgedTotal.Add(float64(count))
}

// UpdateArticlesTotal updates the total count of articles in the database.
// This gauge should be updated periodically to reflect the current state.
func UpdateArticlesTotal(count int64) {
	ArticlesTotal.Set(float64(count))
}

// UpdateDBConnectionStats updates database connection pool statistics.
func UpdateDBConnectionStats(active, idle int) {
	DBConnectionsActive.Set(float64(active))
	DBConnectionsIdle.Set(float64(idle))
}
