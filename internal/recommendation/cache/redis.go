package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"

	"clinrec/internal/recommendation"
	"clinrec/pkg/platform/sentinel"
)

var (
	cacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "clinrec_cache_hits_total",
		Help: "Number of recommendation cache hits",
	})
	cacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "clinrec_cache_misses_total",
		Help: "Number of recommendation cache misses",
	})
)

// Redis key prefix for cached recommendations
const recommendationKeyPrefix = "rec:"

// entry is the cached JSON shape. The owner rides along so every hit can be
// authorization-checked.
type entry struct {
	RecommendationID string    `json:"recommendation_id"`
	PatientID        string    `json:"patient_id"`
	Recommendation   string    `json:"recommendation"`
	Timestamp        time.Time `json:"timestamp"`
	CreatedBy        string    `json:"created_by"`
}

// Redis is the production cache. Safe for concurrent use; operations are
// independent keyed reads and writes.
type Redis struct {
	client *redis.Client
}

func NewRedis(client *redis.Client) *Redis {
	return &Redis{client: client}
}

// Get returns the cached recommendation or sentinel.ErrNotFound on a miss.
func (c *Redis) Get(ctx context.Context, id string) (recommendation.Recommendation, error) {
	raw, err := c.client.Get(ctx, recommendationKeyPrefix+id).Result()
	if errors.Is(err, redis.Nil) {
		cacheMisses.Inc()
		return recommendation.Recommendation{}, sentinel.ErrNotFound
	}
	if err != nil {
		return recommendation.Recommendation{}, fmt.Errorf("cache get: %w", err)
	}

	var e entry
	if err := json.Unmarshal([]byte(raw), &e); err != nil {
		// A corrupt entry behaves like a miss; the store remains the source
		// of truth and the next population overwrites it.
		cacheMisses.Inc()
		return recommendation.Recommendation{}, sentinel.ErrNotFound
	}

	cacheHits.Inc()
	return recommendation.Recommendation{
		RecommendationID: e.RecommendationID,
		PatientID:        e.PatientID,
		Text:             e.Recommendation,
		CreatedAt:        e.Timestamp,
		Owner:            e.CreatedBy,
	}, nil
}

// Set mirrors a recommendation with the given lifetime.
func (c *Redis) Set(ctx context.Context, rec recommendation.Recommendation, ttl time.Duration) error {
	payload, err := json.Marshal(entry{
		RecommendationID: rec.RecommendationID,
		PatientID:        rec.PatientID,
		Recommendation:   rec.Text,
		Timestamp:        rec.CreatedAt,
		CreatedBy:        rec.Owner,
	})
	if err != nil {
		return fmt.Errorf("cache marshal: %w", err)
	}

	if err := c.client.Set(ctx, recommendationKeyPrefix+rec.RecommendationID, payload, ttl).Err(); err != nil {
		return fmt.Errorf("cache set: %w", err)
	}
	return nil
}
