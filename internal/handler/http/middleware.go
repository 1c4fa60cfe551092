// Package http provides the shared HTTP middleware and health endpoints
// for the API server. Route handlers live in the feature subpackages
// (news, weather, notification, admin).
package http

import (
	"log/slog"
	"net/http"
	"runtime/debug"
	"strconv"
	"time"

	"newshub/internal/handler/http/pathutil"
	"newshub/internal/handler/http/respond"
	"newshub/internal/handler/http/responsewriter"
	"newshub/internal/observability/logging"
	"newshub/internal/observability/metrics"
)

// Logging returns middleware that logs each request with structured
// fields and records the request in the Prometheus HTTP metrics. The
// metrics path label is normalized to keep cardinality bounded.
func Logging(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			wrapped := responsewriter.Wrap(w)
			next.ServeHTTP(wrapped, r)

			duration := time.Since(start)
			normalized := pathutil.NormalizePath(r.URL.Path)

			logging.WithRequestID(r.Context(), logger).Info("http request",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", wrapped.StatusCode()),
				slog.Int("bytes", wrapped.BytesWritten()),
				slog.Duration("duration", duration),
				slog.String("remote", r.RemoteAddr),
			)

			metrics.RecordHTTPRequest(r.Method, normalized,
				strconv.Itoa(wrapped.StatusCode()), duration)
		})
	}
}

// Recover returns middleware that converts handler panics into 500
// responses instead of tearing down the connection.
func Recover(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					logging.WithRequestID(r.Context(), logger).Error("panic recovered",
						slog.String("path", r.URL.Path),
						slog.Any("panic", rec),
						slog.String("stack", string(debug.Stack())),
					)
					respond.JSON(w, http.StatusInternalServerError,
						map[string]string{"error": "internal server error"})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// Chain applies middlewares to h in reverse order, so the first
// middleware in the list is the outermost.
func Chain(h http.Handler, middlewares ...func(http.Handler) http.Handler) http.Handler {
	for i := len(middlewares) - 1; i >= 0; i-- {
		h = middlewares[i](h)
	}
	return h
}
