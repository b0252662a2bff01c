package store

import (
	"context"
	"sync"

	"clinrec/internal/auth"
	"clinrec/pkg/platform/sentinel"
)

// Memory is an in-memory user store for tests.
type Memory struct {
	mu    sync.RWMutex
	users map[string]auth.User
}

func NewMemory() *Memory {
	return &Memory{users: make(map[string]auth.User)}
}

// Seed adds a user. Test helper; production users are provisioned out of band.
func (s *Memory) Seed(user auth.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[user.Username] = user
}

func (s *Memory) FindByUsername(_ context.Context, username string) (auth.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.users[username]
	if !ok {
		return auth.User{}, sentinel.ErrNotFound
	}
	return user, nil
}
