// Package metrics provides Prometheus metrics registry and recording utilities.
//
// This package centralizes all application metrics including:
//   - HTTP request metrics (duration, count)
//   - Ingestion metrics (inserted, skipped, failed, poison)
//   - Cache metrics (hits, misses, errors)
//   - Crawler, notification, and database metrics
//
// All metrics are automatically registered with the Prometheus default registry
// and exposed via the /metrics endpoint.
//
// Example usage:
//
//	import "newshub/internal/observability/metrics"
//
//	func ingestOne(ctx context.Context) {
//	    start := time.Now()
//	    // ... ingest article ...
//	    metrics.RecordIngest(metrics.OutcomeInserted)
//	    metrics.RecordOperationDuration("ingest_article", time.Since(start))
//	}
package metrics
