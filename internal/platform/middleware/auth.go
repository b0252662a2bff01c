package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	dErrors "clinrec/pkg/domain-errors"
	"clinrec/pkg/platform/httputil"
	"clinrec/pkg/requestcontext"
)

// TokenValidator verifies a bearer token and returns the subject it was
// issued for.
type TokenValidator interface {
	ValidateToken(tokenString string) (subject string, err error)
}

// RequireAuth rejects requests without a valid bearer token and puts the
// authenticated subject into the request context.
func RequireAuth(validator TokenValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			requestID := requestcontext.RequestID(ctx)

			authHeader := r.Header.Get("Authorization")
			const bearerPrefix = "Bearer "
			token, ok := strings.CutPrefix(authHeader, bearerPrefix)
			if !ok {
				logger.WarnContext(ctx, "unauthorized access - missing token",
					"request_id", requestID,
				)
				httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "missing or invalid Authorization header"))
				return
			}

			subject, err := validator.ValidateToken(token)
			if err != nil {
				logger.WarnContext(ctx, "unauthorized access - invalid token",
					"request_id", requestID,
					"error", err,
				)
				httputil.WriteError(w, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(requestcontext.WithSubject(ctx, subject)))
		})
	}
}
