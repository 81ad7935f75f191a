package fees

import (
	"context"
	"sync"
)

// InMemoryStore holds the singleton fee configuration. The zero configuration
// (all rates zero, disabled) applies until an admin replaces it.
type InMemoryStore struct {
	mu     sync.RWMutex
	config Config
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{}
}

func (s *InMemoryStore) Get(_ context.Context) (Config, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.config, nil
}

func (s *InMemoryStore) Replace(_ context.Context, config Config) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.config = config
	return nil
}
