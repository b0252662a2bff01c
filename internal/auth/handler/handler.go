package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"clinrec/internal/auth"
	"clinrec/pkg/platform/httputil"
	"clinrec/pkg/requestcontext"
)

// Service defines the interface for authentication operations.
type Service interface {
	Login(ctx context.Context, username, password string) (*auth.TokenResult, error)
}

// Handler wires the login endpoint to the auth service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs an auth handler with its dependencies.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts auth endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/login", h.HandleLogin)
}

// HandleLogin handles POST /login requests.
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[LoginRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	result, err := h.service.Login(ctx, req.Username, req.Password)
	if err != nil {
		h.logger.WarnContext(ctx, "login failed",
			"request_id", requestID,
			"username", req.Username,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "login succeeded",
		"request_id", requestID,
		"username", req.Username,
	)

	httputil.WriteJSON(w, http.StatusOK, TokenResponse{
		AccessToken: result.AccessToken,
		TokenType:   result.TokenType,
	})
}
