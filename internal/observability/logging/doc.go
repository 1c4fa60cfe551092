// Package logging builds the process-wide slog logger and enriches it
// with request-scoped fields.
//
// Example usage:
//
//	func main() {
//	    logger := logging.NewLogger()
//	    logger.Info("application started", slog.String("version", "1.0"))
//	}
//
//	func handleRequest(ctx context.Context, logger *slog.Logger) {
//	    logging.WithRequestID(ctx, logger).Info("processing request")
//	}
package logging
