// Package store persists recommendations. The relational store is the source
// of truth; the cache layer in the sibling package only mirrors it.
package store

import (
	"context"

	"clinrec/internal/recommendation"
)

// Store is the persistence contract for recommendations.
type Store interface {
	// Insert durably writes a recommendation. The write is transactional:
	// on error nothing persists.
	Insert(ctx context.Context, rec recommendation.Recommendation) error
	// FindByID is a point lookup by primary key. Absence is reported as
	// sentinel.ErrNotFound, distinguished from infrastructure errors.
	FindByID(ctx context.Context, id string) (recommendation.Recommendation, error)
}
