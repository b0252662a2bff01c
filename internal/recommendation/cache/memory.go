package cache

import (
	"context"
	"sync"
	"time"

	"clinrec/internal/recommendation"
	"clinrec/pkg/platform/sentinel"
)

// Memory is an in-memory cache for tests, honoring TTLs against an injectable
// clock.
type Memory struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	clock   func() time.Time
}

type memoryEntry struct {
	rec       recommendation.Recommendation
	expiresAt time.Time
}

// MemoryOption configures a Memory cache.
type MemoryOption func(*Memory)

// WithClock sets the clock function for testability.
func WithClock(clock func() time.Time) MemoryOption {
	return func(c *Memory) {
		if clock != nil {
			c.clock = clock
		}
	}
}

func NewMemory(opts ...MemoryOption) *Memory {
	c := &Memory{
		entries: make(map[string]memoryEntry),
		clock:   time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

func (c *Memory) Get(_ context.Context, id string) (recommendation.Recommendation, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[id]
	if !ok || c.clock().After(e.expiresAt) {
		return recommendation.Recommendation{}, sentinel.ErrNotFound
	}
	return e.rec, nil
}

func (c *Memory) Set(_ context.Context, rec recommendation.Recommendation, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[rec.RecommendationID] = memoryEntry{
		rec:       rec,
		expiresAt: c.clock().Add(ttl),
	}
	return nil
}
