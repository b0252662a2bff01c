// Package store persists authentication principals in PostgreSQL.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"clinrec/internal/auth"
	"clinrec/pkg/platform/sentinel"
)

// Postgres reads users from the users table.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

// FindByUsername returns the principal or sentinel.ErrNotFound.
func (s *Postgres) FindByUsername(ctx context.Context, username string) (auth.User, error) {
	var user auth.User
	query := `SELECT username, password FROM users WHERE username = $1`
	err := s.db.QueryRowContext(ctx, query, username).Scan(&user.Username, &user.PasswordHash)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return auth.User{}, sentinel.ErrNotFound
		}
		return auth.User{}, fmt.Errorf("find user: %w", err)
	}
	return user, nil
}
