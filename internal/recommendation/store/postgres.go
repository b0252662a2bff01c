package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"clinrec/internal/recommendation"
	"clinrec/pkg/platform/sentinel"
)

// Postgres stores recommendations in the recommendations table.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

// Insert writes one recommendation inside a transaction. Any driver error
// rolls the transaction back so no partial row persists.
func (s *Postgres) Insert(ctx context.Context, rec recommendation.Recommendation) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin insert recommendation: %w", err)
	}

	query := `
		INSERT INTO recommendations (recommendation_id, patient_id, recommendation, timestamp, created_by)
		VALUES ($1, $2, $3, $4, $5)
	`
	if _, err := tx.ExecContext(ctx, query,
		rec.RecommendationID,
		rec.PatientID,
		rec.Text,
		rec.CreatedAt,
		rec.Owner,
	); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("insert recommendation: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit recommendation: %w", err)
	}
	return nil
}

// FindByID returns the recommendation or sentinel.ErrNotFound.
func (s *Postgres) FindByID(ctx context.Context, id string) (recommendation.Recommendation, error) {
	query := `
		SELECT recommendation_id, patient_id, recommendation, timestamp, created_by
		FROM recommendations
		WHERE recommendation_id = $1
	`

	var rec recommendation.Recommendation
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&rec.RecommendationID,
		&rec.PatientID,
		&rec.Text,
		&rec.CreatedAt,
		&rec.Owner,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return recommendation.Recommendation{}, sentinel.ErrNotFound
		}
		return recommendation.Recommendation{}, fmt.Errorf("find recommendation: %w", err)
	}
	return rec, nil
}
