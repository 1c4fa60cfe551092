package logging

import (
	"context"
	"log/slog"
	"os"

	"newshub/internal/handler/http/requestid"
)

// NewLogger returns the process logger: JSON output on stdout, minimum
// level taken from LOG_LEVEL (debug, info, warn, error; anything else
// means info). Source locations are attached unless the level filters
// warnings out.
func NewLogger() *slog.Logger {
	level := parseLevel(os.Getenv("LOG_LEVEL"))
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level:     level,
		AddSource: level <= slog.LevelWarn,
	}))
}

func parseLevel(raw string) slog.Level {
	switch raw {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// WithRequestID returns the logger with the request id from ctx
// attached, or the logger unchanged when the context carries none.
func WithRequestID(ctx context.Context, logger *slog.Logger) *slog.Logger {
	id := requestid.FromContext(ctx)
	if id == "" {
		return logger
	}
	return logger.With(slog.String("request_id", id))
}
