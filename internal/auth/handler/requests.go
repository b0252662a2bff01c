package handler

import (
	"strings"

	dErrors "clinrec/pkg/domain-errors"
)

// LoginRequest is the HTTP request body for POST /login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Validate checks required fields.
// Implements the Validatable interface for httputil.DecodeAndPrepare.
func (r *LoginRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	r.Username = strings.TrimSpace(r.Username)
	if r.Username == "" {
		return dErrors.New(dErrors.CodeValidation, "username is required")
	}
	if r.Password == "" {
		return dErrors.New(dErrors.CodeValidation, "password is required")
	}
	return nil
}

// TokenResponse is the HTTP response for POST /login.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}
