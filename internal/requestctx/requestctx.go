// Package requestctx carries the per-request correlation id through the
// context so handlers can stamp it onto responses and audit rows.
package requestctx

import "context"

type ctxKey int

const requestIDKey ctxKey = iota

func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// GetRequestID returns the id set by the RequestID middleware, or "" for
// contexts that never passed through it (jobs, tests).
func GetRequestID(ctx context.Context) string {
	value, _ := ctx.Value(requestIDKey).(string)
	return value
}
