package logger

import (
	"context"

	"go.uber.org/zap"
)

type contextKey string

const loggerKey contextKey = "logger"

// RequestIDKey is the gin context key holding the request id.
const RequestIDKey = "request_id"

func FromContext(ctx context.Context) *zap.Logger {
	if ctx == nil {
		return Get()
	}
	l, ok := ctx.Value(loggerKey).(*zap.Logger)
	if !ok {
		return Get()
	}
	return l
}

func WithContext(ctx context.Context, l *zap.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}
