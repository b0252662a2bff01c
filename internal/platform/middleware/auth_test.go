package middleware

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "clinrec/pkg/domain-errors"
	"clinrec/pkg/requestcontext"
)

type stubValidator struct {
	subject string
	err     error
	token   string
}

func (v *stubValidator) ValidateToken(tokenString string) (string, error) {
	v.token = tokenString
	if v.err != nil {
		return "", v.err
	}
	return v.subject, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func protectedEndpoint(validator TokenValidator, gotSubject *string) http.Handler {
	return RequireAuth(validator, discardLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*gotSubject = requestcontext.Subject(r.Context())
		w.WriteHeader(http.StatusOK)
	}))
}

func TestRequireAuth(t *testing.T) {
	t.Run("valid token passes the subject through", func(t *testing.T) {
		validator := &stubValidator{subject: "alice"}
		var subject string
		h := protectedEndpoint(validator, &subject)

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer good-token")
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "alice", subject)
		assert.Equal(t, "good-token", validator.token)
	})

	t.Run("missing header is rejected before validation", func(t *testing.T) {
		validator := &stubValidator{subject: "alice"}
		var subject string
		h := protectedEndpoint(validator, &subject)

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Empty(t, validator.token)
	})

	t.Run("non-bearer scheme is rejected", func(t *testing.T) {
		var subject string
		h := protectedEndpoint(&stubValidator{subject: "alice"}, &subject)

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Basic YWxpY2U6czNjcmV0")
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("validator rejection is surfaced", func(t *testing.T) {
		var subject string
		h := protectedEndpoint(&stubValidator{err: dErrors.New(dErrors.CodeUnauthorized, "token has expired")}, &subject)

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer stale-token")
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "token has expired")
		assert.Empty(t, subject)
	})
}

func TestRequestID(t *testing.T) {
	echo := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(requestcontext.RequestID(r.Context())))
	}))

	t.Run("honors a caller-supplied id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Request-ID", "caller-id-1")
		w := httptest.NewRecorder()
		echo.ServeHTTP(w, req)

		assert.Equal(t, "caller-id-1", w.Body.String())
		assert.Equal(t, "caller-id-1", w.Header().Get("X-Request-ID"))
	})

	t.Run("generates one otherwise", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		w := httptest.NewRecorder()
		echo.ServeHTTP(w, req)

		generated := w.Header().Get("X-Request-ID")
		_, err := uuid.Parse(generated)
		require.NoError(t, err)
		assert.Equal(t, generated, w.Body.String())
	})
}
