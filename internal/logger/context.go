package logger

import (
	"context"

	"go.uber.org/zap"
)

type ctxKey struct{}

// WithRequestID stores the id RequestIDMiddleware assigned to the request.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ctxKey{}, requestID)
}

func RequestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}

// FromCtx is the logger every handler and service should start from: the
// global logger, tagged with request_id when the request carries one so a
// checkout can be followed from page load to webhook.
func FromCtx(ctx context.Context) *zap.Logger {
	if id := RequestIDFrom(ctx); id != "" {
		return L().With(zap.String("request_id", id))
	}
	return L()
}
