// Package requestcontext provides HTTP-independent context accessors for
// request-scoped values.
//
// Context keys and getter/setter functions live here for values that are set
// by middleware but consumed by services. Keeping this package free of
// net/http dependencies means services import only what they need.
//
// Usage in services (read values):
//
//	subject := requestcontext.Subject(ctx)
//	requestID := requestcontext.RequestID(ctx)
//
// Usage in middleware (set values):
//
//	ctx = requestcontext.WithSubject(ctx, claims.Subject)
//	ctx = requestcontext.WithRequestID(ctx, requestID)
package requestcontext

import "context"

// Context key types (unexported for encapsulation).
type (
	subjectKey   struct{}
	requestIDKey struct{}
)

// Exported context keys for tests that need context.WithValue directly.
var (
	ContextKeySubject   = subjectKey{}
	ContextKeyRequestID = requestIDKey{}
)

// Subject retrieves the authenticated principal's username from the context.
// Returns "" if the request is unauthenticated.
func Subject(ctx context.Context) string {
	if subject, ok := ctx.Value(ContextKeySubject).(string); ok {
		return subject
	}
	return ""
}

// WithSubject injects an authenticated username into the context.
func WithSubject(ctx context.Context, subject string) context.Context {
	return context.WithValue(ctx, ContextKeySubject, subject)
}

// RequestID retrieves the request ID from the context.
func RequestID(ctx context.Context) string {
	if reqID, ok := ctx.Value(ContextKeyRequestID).(string); ok {
		return reqID
	}
	return ""
}

// WithRequestID injects a request ID into the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ContextKeyRequestID, requestID)
}
