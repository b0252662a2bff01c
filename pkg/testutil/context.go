package testutil

import (
	"net/http"

	"clinrec/pkg/requestcontext"
)

// WithSubject adds an authenticated username to the request context,
// simulating what the auth middleware does for a valid bearer token.
func WithSubject(req *http.Request, subject string) *http.Request {
	return req.WithContext(requestcontext.WithSubject(req.Context(), subject))
}

// WithRequestID adds a request ID to the request context.
func WithRequestID(req *http.Request, requestID string) *http.Request {
	return req.WithContext(requestcontext.WithRequestID(req.Context(), requestID))
}
