// Package logger configures the process-wide slog logger and provides
// small helpers for tagging log lines with a component name or an
// in-flight query's identifier.
package logger

import (
	"context"
	"log/slog"
	"os"
)

type contextKey struct{}

// Setup installs a JSON or text slog.Handler as the process default,
// matching the level and format named in the configuration.
func Setup(level string, format string) {
	opts := &slog.HandlerOptions{Level: parseLevel(level)}
	var handler slog.Handler
	switch format {
	case "json":
		handler = slog.NewJSONHandler(os.Stdout, opts)
	default:
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))
}

// WithQueryID attaches a query identifier to ctx so that FromContext can
// recover it for correlating the query-engine's log lines across a single
// search() call.
func WithQueryID(ctx context.Context, queryID string) context.Context {
	return context.WithValue(ctx, contextKey{}, queryID)
}

// FromContext returns the default logger, tagged with the query ID if ctx
// carries one.
func FromContext(ctx context.Context) *slog.Logger {
	l := slog.Default()
	if queryID, ok := ctx.Value(contextKey{}).(string); ok {
		l = l.With("query_id", queryID)
	}
	return l
}

// WithComponent returns the default logger tagged with a component name.
func WithComponent(component string) *slog.Logger {
	return slog.Default().With("component", component)
}

func parseLevel(level string) slog.Level {
	switch level {
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
