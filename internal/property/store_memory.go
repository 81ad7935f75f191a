package property

import (
	"context"
	"sync"

	"landledger/pkg/domain"
	"landledger/pkg/platform/sentinel"
)

// InMemoryStore keeps property records, the ownership index, and the viewers
// log in process. IDs are allocated from a monotonic counter starting at 0.
type InMemoryStore struct {
	mu         sync.RWMutex
	nextID     domain.PropertyID
	properties map[domain.PropertyID]Property
	ownerIndex map[domain.Address][]domain.PropertyID
	viewers    map[domain.PropertyID][]domain.Address
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		properties: make(map[domain.PropertyID]Property),
		ownerIndex: make(map[domain.Address][]domain.PropertyID),
		viewers:    make(map[domain.PropertyID][]domain.Address),
	}
}

func (s *InMemoryStore) AllocateID(_ context.Context) (domain.PropertyID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	return id, nil
}

func (s *InMemoryStore) Save(_ context.Context, property Property) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.properties[property.ID] = property
	return nil
}

func (s *InMemoryStore) Find(_ context.Context, id domain.PropertyID) (Property, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	property, ok := s.properties[id]
	if !ok {
		return Property{}, sentinel.ErrNotFound
	}
	return property, nil
}

func (s *InMemoryStore) AppendToOwner(_ context.Context, owner domain.Address, id domain.PropertyID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ownerIndex[owner] = append(s.ownerIndex[owner], id)
	return nil
}

// RemoveFromOwner drops the id with swap-with-last-and-pop. List order is not
// preserved; no ordering guarantee is promised.
func (s *InMemoryStore) RemoveFromOwner(_ context.Context, owner domain.Address, id domain.PropertyID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := s.ownerIndex[owner]
	for i := range ids {
		if ids[i] == id {
			ids[i] = ids[len(ids)-1]
			s.ownerIndex[owner] = ids[:len(ids)-1]
			return nil
		}
	}
	return sentinel.ErrNotFound
}

func (s *InMemoryStore) ListByOwner(_ context.Context, owner domain.Address) ([]domain.PropertyID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.PropertyID{}, s.ownerIndex[owner]...), nil
}

func (s *InMemoryStore) ListApproved(_ context.Context) ([]domain.PropertyID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.PropertyID
	for id := domain.PropertyID(0); id < s.nextID; id++ {
		if property, ok := s.properties[id]; ok && property.Status.Verification == domain.StatusApproved {
			out = append(out, id)
		}
	}
	return out, nil
}

func (s *InMemoryStore) AppendViewer(_ context.Context, id domain.PropertyID, viewer domain.Address) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.viewers[id] = append(s.viewers[id], viewer)
	return nil
}

func (s *InMemoryStore) ListViewers(_ context.Context, id domain.PropertyID) ([]domain.Address, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.Address{}, s.viewers[id]...), nil
}
