package infrastructure

import "context"

type contextKey string

// traceIDKey stores the request trace id in a context.
const traceIDKey contextKey = "trace_id"

// WithTraceID returns a context carrying the given trace id.
func WithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, traceIDKey, traceID)
}

// GetTraceID returns the trace id stored in the context, or "".
func GetTraceID(ctx context.Context) string {
	if v, ok := ctx.Value(traceIDKey).(string); ok {
		return v
	}
	return ""
}
