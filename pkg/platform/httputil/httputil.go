// Package httputil centralizes JSON encoding and domain error translation for
// HTTP handlers. Handlers stay thin: decode, validate, call the service, and
// hand any error to WriteError.
package httputil

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	dErrors "clinrec/pkg/domain-errors"
)

var statusByCode = map[dErrors.Code]int{
	dErrors.CodeValidation:   http.StatusBadRequest,
	dErrors.CodeBadRequest:   http.StatusBadRequest,
	dErrors.CodeUnauthorized: http.StatusUnauthorized,
	dErrors.CodeNotFound:     http.StatusNotFound,
	dErrors.CodeDependency:   http.StatusInternalServerError,
	dErrors.CodeInternal:     http.StatusInternalServerError,
}

// ToHTTPStatus maps a domain error code to its HTTP status.
func ToHTTPStatus(code dErrors.Code) int {
	if status, ok := statusByCode[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

type errorBody struct {
	Error       string `json:"error"`
	Description string `json:"error_description,omitempty"`
}

// WriteError renders a domain error as a JSON envelope with a stable machine
// code. Internal and dependency errors omit the description so infrastructure
// details never leak to callers.
func WriteError(w http.ResponseWriter, err error) {
	code := dErrors.CodeOf(err)
	body := errorBody{Error: string(code)}

	switch code {
	case dErrors.CodeInternal, dErrors.CodeDependency:
		// description withheld
	default:
		var de *dErrors.Error
		if errors.As(err, &de) {
			body.Description = de.Message
		}
	}

	WriteJSON(w, ToHTTPStatus(code), body)
}

// WriteJSON encodes v as JSON with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Validatable is implemented by request types that validate themselves after
// decoding. Validate returns a domain error on the first violation.
type Validatable interface {
	Validate() error
}

// DecodeAndPrepare decodes the request body into T and runs its validation.
// On failure it writes the error response and returns ok=false; the handler
// should simply return.
func DecodeAndPrepare[T any, PT interface {
	*T
	Validatable
}](w http.ResponseWriter, r *http.Request, logger *slog.Logger, ctx context.Context, requestID string) (PT, bool) {
	req := PT(new(T))
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		if logger != nil {
			logger.WarnContext(ctx, "failed to decode request body",
				"request_id", requestID,
				"error", err,
			)
		}
		WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return nil, false
	}
	if err := req.Validate(); err != nil {
		WriteError(w, err)
		return nil, false
	}
	return req, true
}
