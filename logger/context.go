package logger

import (
	"context"
	"log/slog"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httplog/v2"
)

// ContextKey is a type for context keys to avoid collisions
type ContextKey string

// Logger context keys
const (
	LoggerKey ContextKey = "logger"
)

// FromContext retrieves the logger from the context.
// A logger stored with WithLogger wins, then the httplog request logger,
// then the default logger.
func FromContext(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(LoggerKey).(*slog.Logger); ok {
		return logger
	}
	entry, ok := ctx.Value(middleware.LogEntryCtxKey).(*httplog.RequestLoggerEntry)
	if ok && entry != nil && entry.Logger != nil {
		return entry.Logger
	}
	return slog.Default()
}

// WithLogger adds a logger to the context
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, LoggerKey, logger)
}

// WithUser tags the logger in the context with the acting user
func WithUser(ctx context.Context, userUUID string) context.Context {
	logger := FromContext(ctx)
	return WithLogger(ctx, logger.With("user_uuid", userUUID))
}
