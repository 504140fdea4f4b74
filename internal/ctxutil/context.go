// Package ctxutil provides type-safe context value management.
// Uses private key types to prevent collisions.
package ctxutil

import "context"

type contextKey string

const (
	userIDKey    contextKey = "ctxutil.userID"
	requestIDKey contextKey = "ctxutil.requestID"
)

// WithUserID adds a user ID to the context. The user ID comes from the
// chat frontend and keys the per-user cache and rate limits.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// GetUserID retrieves the user ID from the context, or "" when absent.
func GetUserID(ctx context.Context) string {
	if v, ok := ctx.Value(userIDKey).(string); ok {
		return v
	}
	return ""
}

// WithRequestID adds a request ID to the context for log correlation.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// GetRequestID retrieves the request ID from the context, or "" when absent.
func GetRequestID(ctx context.Context) string {
	if v, ok := ctx.Value(requestIDKey).(string); ok {
		return v
	}
	return ""
}
