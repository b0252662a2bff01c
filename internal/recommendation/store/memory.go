package store

import (
	"context"
	"sync"

	"clinrec/internal/recommendation"
	"clinrec/pkg/platform/sentinel"
)

// Memory is an in-memory store for tests. FindCalls counts lookups so tests
// can observe whether the cache absorbed a read.
type Memory struct {
	mu        sync.RWMutex
	records   map[string]recommendation.Recommendation
	findCalls int
}

func NewMemory() *Memory {
	return &Memory{records: make(map[string]recommendation.Recommendation)}
}

func (s *Memory) Insert(_ context.Context, rec recommendation.Recommendation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[rec.RecommendationID] = rec
	return nil
}

func (s *Memory) FindByID(_ context.Context, id string) (recommendation.Recommendation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.findCalls++
	rec, ok := s.records[id]
	if !ok {
		return recommendation.Recommendation{}, sentinel.ErrNotFound
	}
	return rec, nil
}

// FindCalls reports how many point lookups have been made.
func (s *Memory) FindCalls() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.findCalls
}
