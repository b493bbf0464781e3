package logging

import (
	"context"

	"go.uber.org/zap"
)

type contextKey string

const (
	contextKeyLogger contextKey = "logger"
)

// NewContextWithLogger returns a context carrying a request-scoped logger.
func NewContextWithLogger(ctx context.Context, logger *zap.Logger) context.Context {
	return context.WithValue(ctx, contextKeyLogger, logger)
}

// FromContext returns the logger attached to the context, falling back to
// the global logger when none was attached.
func FromContext(ctx context.Context) *zap.Logger {
	logger, ok := ctx.Value(contextKeyLogger).(*zap.Logger)
	if !ok {
		return zap.L()
	}
	return logger
}
