package logger

import (
	"context"

	"go.uber.org/zap"
)

type ctxKey string

const (
	requestIDKey ctxKey = "request_id"
	userIDKey    ctxKey = "user_id"
)

func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

func RequestIDFrom(ctx context.Context) string {
	if v, ok := ctx.Value(requestIDKey).(string); ok {
		return v
	}
	return ""
}

// WithUserID tags every log line of the request with the authenticated user.
func WithUserID(ctx context.Context, userID uint) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// FromCtx returns logger with request_id (and user_id when known) added
func FromCtx(ctx context.Context) *zap.Logger {
	l := L()
	if reqID := RequestIDFrom(ctx); reqID != "" {
		l = l.With(zap.String("request_id", reqID))
	}
	if uid, ok := ctx.Value(userIDKey).(uint); ok {
		l = l.With(zap.Uint("user_id", uid))
	}
	return l
}
