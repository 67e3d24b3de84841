package ctxutil

import (
	"context"
)

type ctxKey string

const (
	visitorIDKey ctxKey = "visitor_id"
	requestIDKey ctxKey = "request_id"
	adminKey     ctxKey = "admin"
)

// WithVisitorID stores the anonymous visitor ID in the context.
func WithVisitorID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, visitorIDKey, id)
}

// VisitorIDFromCtx extracts the visitor ID from the context.
// Returns an empty string and false if the value is missing or empty.
func VisitorIDFromCtx(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(visitorIDKey).(string)
	if !ok || id == "" {
		return "", false
	}
	return id, true
}

// WithRequestID stores the request ID in the context.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestIDFromCtx extracts the request ID from the context.
// Returns an empty string if absent.
func RequestIDFromCtx(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// WithAdmin marks the context as authenticated by an admin token.
func WithAdmin(ctx context.Context) context.Context {
	return context.WithValue(ctx, adminKey, true)
}

// IsAdminCtx reports whether the request carries a valid admin token.
func IsAdminCtx(ctx context.Context) bool {
	v, _ := ctx.Value(adminKey).(bool)
	return v
}
