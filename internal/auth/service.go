package auth

import (
	"context"
	"errors"

	"golang.org/x/crypto/bcrypt"

	dErrors "clinrec/pkg/domain-errors"
	"clinrec/pkg/platform/sentinel"
)

// UserStore reads principals. Users are never written by this service.
type UserStore interface {
	FindByUsername(ctx context.Context, username string) (User, error)
}

// Service authenticates principals and issues access tokens.
type Service struct {
	users  UserStore
	tokens *TokenService
}

func NewService(users UserStore, tokens *TokenService) *Service {
	return &Service{users: users, tokens: tokens}
}

// Login verifies the credentials and returns a bearer token. An unknown
// username and a wrong password produce the same error so callers cannot
// enumerate accounts.
func (s *Service) Login(ctx context.Context, username, password string) (*TokenResult, error) {
	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid username or password")
		}
		return nil, dErrors.Wrap(dErrors.CodeDependency, "could not look up user", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid username or password")
	}

	token, err := s.tokens.IssueToken(user.Username)
	if err != nil {
		return nil, dErrors.Wrap(dErrors.CodeInternal, "could not issue token", err)
	}

	return &TokenResult{AccessToken: token, TokenType: "bearer"}, nil
}
