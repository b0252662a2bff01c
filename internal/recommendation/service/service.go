// Package service coordinates one evaluation or retrieval end to end. The
// evaluation path decides, publishes, then persists; the retrieval path reads
// through the cache with an ownership check on every hit.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"clinrec/internal/platform/config"
	"clinrec/internal/recommendation"
	"clinrec/internal/recommendation/cache"
	"clinrec/internal/recommendation/engine"
	"clinrec/internal/recommendation/metrics"
	"clinrec/internal/recommendation/store"
	dErrors "clinrec/pkg/domain-errors"
	"clinrec/pkg/platform/sentinel"
)

// Publisher sends one serialized event to the durable queue. A nil error
// means the broker accepted the message.
type Publisher interface {
	Publish(ctx context.Context, key, value []byte) error
}

// Service runs the evaluation and retrieval orchestrations.
type Service struct {
	engine    *engine.Engine
	store     store.Store
	cache     cache.Cache
	publisher Publisher
	logger    *slog.Logger
	metrics   *metrics.Metrics
	clock     func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithClock sets the clock function for testability.
func WithClock(clock func() time.Time) Option {
	return func(s *Service) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// New constructs the service with its collaborators.
func New(eng *engine.Engine, st store.Store, ca cache.Cache, pub Publisher, logger *slog.Logger, m *metrics.Metrics, opts ...Option) *Service {
	s := &Service{
		engine:    eng,
		store:     st,
		cache:     ca,
		publisher: pub,
		logger:    logger,
		metrics:   m,
		clock:     time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Evaluate runs one evaluation for the given owner: decide, mint identifiers,
// publish the event, persist. The queue publish deliberately precedes the
// store write to match the system this one replaces; a publish can therefore
// succeed for a recommendation that is never durably stored. Failures after
// retry exhaustion abort the whole operation.
//
// No cache write happens here; the cache is populated lazily on first read.
func (s *Service) Evaluate(ctx context.Context, owner string, patient recommendation.PatientData) (*recommendation.Recommendation, error) {
	start := s.clock()

	text := s.engine.Decide(ctx, patient)

	rec := recommendation.Recommendation{
		RecommendationID: uuid.NewString(),
		PatientID:        uuid.NewString(),
		Text:             text,
		CreatedAt:        start.UTC(),
		Owner:            owner,
	}

	payload, err := json.Marshal(recommendation.NewEvent(rec))
	if err != nil {
		return nil, dErrors.Wrap(dErrors.CodeInternal, "could not serialize event", err)
	}
	if err := s.publisher.Publish(ctx, []byte(rec.RecommendationID), payload); err != nil {
		s.logger.ErrorContext(ctx, "event publish failed",
			"recommendation_id", rec.RecommendationID,
			"error", err,
		)
		return nil, err
	}

	if err := s.store.Insert(ctx, rec); err != nil {
		s.logger.ErrorContext(ctx, "recommendation persist failed after publish",
			"recommendation_id", rec.RecommendationID,
			"error", err,
		)
		return nil, dErrors.Wrap(dErrors.CodeDependency, "could not save recommendation", err)
	}

	s.metrics.IncrementCreated()
	s.metrics.ObserveEvaluateLatency(s.clock().Sub(start))
	return &rec, nil
}

// Retrieve returns a recommendation by ID for the given principal. Ownership
// is checked on every read, cache hit or not; a hit for a non-owner is
// reported as not found so existence never leaks.
func (s *Service) Retrieve(ctx context.Context, subject, id string) (*recommendation.Recommendation, error) {
	cached, err := s.cache.Get(ctx, id)
	switch {
	case err == nil:
		if cached.Owner != subject {
			return nil, dErrors.New(dErrors.CodeNotFound, "recommendation not found")
		}
		s.metrics.IncrementRetrieval("cache")
		return &cached, nil
	case errors.Is(err, sentinel.ErrNotFound):
		// fall through to the store
	default:
		return nil, dErrors.Wrap(dErrors.CodeDependency, "could not read cache", err)
	}

	rec, err := s.store.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "recommendation not found")
		}
		return nil, dErrors.Wrap(dErrors.CodeDependency, "could not read recommendation", err)
	}
	if rec.Owner != subject {
		return nil, dErrors.New(dErrors.CodeNotFound, "recommendation not found")
	}

	if err := s.cache.Set(ctx, rec, config.CacheTTL); err != nil {
		// The store already answered; a failed population only costs the
		// next reader a cache miss.
		s.logger.WarnContext(ctx, "cache population failed",
			"recommendation_id", rec.RecommendationID,
			"error", err,
		)
	}

	s.metrics.IncrementRetrieval("store")
	return &rec, nil
}
