// Package cache mirrors recommendations in a fast keyed lookup layer with a
// bounded lifetime. Entries carry the owner so authorization is re-checked on
// every hit, not just on population.
package cache

import (
	"context"
	"time"

	"clinrec/internal/recommendation"
)

// Cache is the read-through/write-through contract used by the retrieval
// path. Misses are reported as sentinel.ErrNotFound.
type Cache interface {
	Get(ctx context.Context, id string) (recommendation.Recommendation, error)
	Set(ctx context.Context, rec recommendation.Recommendation, ttl time.Duration) error
}
