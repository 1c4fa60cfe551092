// Package observability provides the structured logging and Prometheus
// metrics infrastructure shared by the API server and the worker.
//
// Subpackages:
//   - logging: structured logging utilities with slog
//   - metrics: Prometheus metrics registry and recorders
//
// Example usage:
//
//	import (
//	    "newshub/internal/observability/logging"
//	    "newshub/internal/observability/metrics"
//	)
//
//	func main() {
//	    logger := logging.NewLogger()
//	    logger.Info("application started")
//
//	    metrics.RecordIngest("inserted")
//	}
package observability
