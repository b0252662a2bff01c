package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"clinrec/internal/recommendation"
	dErrors "clinrec/pkg/domain-errors"
	"clinrec/pkg/platform/httputil"
	"clinrec/pkg/requestcontext"
)

// Service defines the interface for recommendation operations.
type Service interface {
	Evaluate(ctx context.Context, owner string, patient recommendation.PatientData) (*recommendation.Recommendation, error)
	Retrieve(ctx context.Context, subject, id string) (*recommendation.Recommendation, error)
}

// Handler wires recommendation endpoints to the recommendation service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs a recommendation handler with its dependencies.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts recommendation endpoints on the router. The router is
// expected to already enforce authentication.
func (h *Handler) Register(r chi.Router) {
	r.Post("/evaluate", h.HandleEvaluate)
	r.Get("/recommendation/{id}", h.HandleGet)
}

// HandleEvaluate handles POST /evaluate requests.
func (h *Handler) HandleEvaluate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()

	subject := requestcontext.Subject(ctx)
	if subject == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return
	}

	req, ok := httputil.DecodeAndPrepare[EvaluateRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	result, err := h.service.Evaluate(ctx, subject, req.Patient())
	if err != nil {
		h.logger.ErrorContext(ctx, "evaluation failed",
			"request_id", requestID,
			"owner", subject,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "patient evaluated",
		"request_id", requestID,
		"owner", subject,
		"recommendation_id", result.RecommendationID,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	httputil.WriteJSON(w, http.StatusOK, FromRecommendation(result))
}

// HandleGet handles GET /recommendation/{id} requests.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	subject := requestcontext.Subject(ctx)
	if subject == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return
	}

	id := chi.URLParam(r, "id")
	if _, err := uuid.Parse(id); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "recommendation id must be a valid UUID"))
		return
	}

	result, err := h.service.Retrieve(ctx, subject, id)
	if err != nil {
		if !dErrors.HasCode(err, dErrors.CodeNotFound) {
			h.logger.ErrorContext(ctx, "retrieval failed",
				"request_id", requestID,
				"recommendation_id", id,
				"error", err,
			)
		}
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, FromRecommendation(result))
}
