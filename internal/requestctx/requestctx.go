// Package requestctx carries per-request values that both middleware and
// handlers read without importing each other.
package requestctx

import "context"

type requestIDKey struct{}

func WithRequestID(ctx context.Context, requestID string) context.Context {
	if requestID == "" {
		return ctx
	}
	return context.WithValue(ctx, requestIDKey{}, requestID)
}

// RequestID reports the id stored by WithRequestID, if any.
func RequestID(ctx context.Context) (string, bool) {
	value, ok := ctx.Value(requestIDKey{}).(string)
	return value, ok
}

func GetRequestID(ctx context.Context) string {
	value, _ := RequestID(ctx)
	return value
}
