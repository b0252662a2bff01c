package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	dErrors "clinrec/pkg/domain-errors"
)

// TokenService handles JWT creation and validation. Tokens are stateless:
// validity depends only on the signature and expiry at verification time.
type TokenService struct {
	signingKey []byte
	ttl        time.Duration
}

func NewTokenService(signingKey string, ttl time.Duration) *TokenService {
	return &TokenService{
		signingKey: []byte(signingKey),
		ttl:        ttl,
	}
}

// IssueToken signs an HS256 token carrying the subject and an expiry.
func (s *TokenService) IssueToken(subject string) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   subject,
		ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		IssuedAt:  jwt.NewNumericDate(now),
	})

	signed, err := token.SignedString(s.signingKey)
	if err != nil {
		return "", err
	}
	return signed, nil
}

// ValidateToken verifies the signature and expiry and returns the subject.
// It fails closed: any parse problem is an unauthorized error.
func (s *TokenService) ValidateToken(tokenString string) (string, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenUnverifiable
		}
		return s.signingKey, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", dErrors.New(dErrors.CodeUnauthorized, "token has expired")
		}
		return "", dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}
	if !parsed.Valid {
		return "", dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}

	claims, ok := parsed.Claims.(*jwt.RegisteredClaims)
	if !ok || claims.Subject == "" {
		return "", dErrors.New(dErrors.CodeUnauthorized, "invalid token claims")
	}

	return claims.Subject, nil
}
