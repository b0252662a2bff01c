package test

import (
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"

	"clinrec/internal/auth"
	authhandler "clinrec/internal/auth/handler"
	authstore "clinrec/internal/auth/store"
	"clinrec/internal/platform/middleware"
	"clinrec/pkg/testutil"
)

// newRouter mounts the public surface the way cmd/server does, without the
// recommendation backends. Route wiring and middleware order are what is
// under test here.
func newRouter() chi.Router {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	tokens := auth.NewTokenService("scaffold-test-key", time.Hour)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	authhandler.New(auth.NewService(authstore.NewMemory(), tokens), logger).Register(r)
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(tokens, logger))
		r.Post("/evaluate", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusOK)
		})
	})
	return r
}

func TestRouterScaffold(t *testing.T) {
	router := newRouter()

	testutil.Given(t, "the HTTP router", func(t *testing.T) {
		testutil.When(t, "calling GET /healthz", func(t *testing.T) {
			rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/healthz"))

			testutil.Then(t, "the service reports healthy", func(t *testing.T) {
				assert.Equal(t, http.StatusOK, rr.Code)
			})
		})

		testutil.When(t, "calling POST /login with an empty body", func(t *testing.T) {
			rr := testutil.DoRequest(router, testutil.NewRequestWithBody(t, http.MethodPost, "/login", `{}`))

			testutil.Then(t, "the request is rejected as invalid", func(t *testing.T) {
				assert.Equal(t, http.StatusBadRequest, rr.Code)
			})
		})

		testutil.When(t, "calling POST /evaluate without a token", func(t *testing.T) {
			rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodPost, "/evaluate"))

			testutil.Then(t, "the middleware rejects the request", func(t *testing.T) {
				assert.Equal(t, http.StatusUnauthorized, rr.Code)
			})
		})

		testutil.When(t, "calling an unknown route", func(t *testing.T) {
			rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/nope"))

			testutil.Then(t, "the router answers 404", func(t *testing.T) {
				assert.Equal(t, http.StatusNotFound, rr.Code)
			})
		})

		testutil.When(t, "echoing the request ID", func(t *testing.T) {
			req := testutil.NewRequest(t, http.MethodGet, "/healthz")
			req.Header.Set("X-Request-ID", "scaffold-1")
			rr := testutil.DoRequest(router, req)

			testutil.Then(t, "the response carries the same ID", func(t *testing.T) {
				assert.Equal(t, "scaffold-1", rr.Header().Get("X-Request-ID"))
			})
		})
	})
}
