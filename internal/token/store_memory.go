package token

import (
	"context"
	"sync"

	"landledger/pkg/domain"
	"landledger/pkg/platform/sentinel"
)

// InMemoryStore maps token ids to their holders. Token ids share the property
// id number space; a missing entry means the property was never tokenized.
type InMemoryStore struct {
	mu      sync.RWMutex
	holders map[domain.PropertyID]domain.Address
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{holders: make(map[domain.PropertyID]domain.Address)}
}

func (s *InMemoryStore) Save(_ context.Context, tokenID domain.PropertyID, holder domain.Address) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.holders[tokenID] = holder
	return nil
}

func (s *InMemoryStore) Holder(_ context.Context, tokenID domain.PropertyID) (domain.Address, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	holder, ok := s.holders[tokenID]
	if !ok {
		return domain.ZeroAddress, sentinel.ErrNotFound
	}
	return holder, nil
}
