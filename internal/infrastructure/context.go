package infrastructure

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
)

// NewTraceID returns a random correlation id.
func NewTraceID() string {
	return uuid.New().String()
}

// EnsureTraceID returns ctx with a trace id, keeping one already present.
// Background work (startup load, watcher reloads) uses it so its log lines
// correlate the way request logs do.
func EnsureTraceID(ctx context.Context) context.Context {
	if GetTraceID(ctx) != "" {
		return ctx
	}
	return WithTraceID(ctx, NewTraceID())
}

// WithComponent tags logger with the subsystem it belongs to.
func WithComponent(logger *slog.Logger, component string) *slog.Logger {
	return logger.With(slog.String("component", component))
}
