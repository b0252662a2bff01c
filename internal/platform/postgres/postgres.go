// Package postgres owns the process-wide database handle. The pool is opened
// once at startup with a bounded retry loop; exhausting it is fatal to the
// process.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	_ "github.com/lib/pq"

	"clinrec/pkg/platform/retry"
)

// Connect opens a Postgres pool and verifies it with a ping, retrying up to
// five times with a fixed 5s backoff.
func Connect(ctx context.Context, databaseURL string, logger *slog.Logger) (*sql.DB, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	attempt := 0
	policy := retry.New()
	err = policy.Do(ctx, func(ctx context.Context) error {
		attempt++
		if pingErr := db.PingContext(ctx); pingErr != nil {
			logger.Warn("database connection failed",
				"attempt", attempt,
				"max_attempts", retry.DefaultMaxAttempts,
				"error", pingErr,
			)
			return pingErr
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("connect postgres after %d attempts: %w", attempt, err)
	}

	logger.Info("database connection established")
	return db, nil
}
