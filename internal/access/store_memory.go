package access

import (
	"context"
	"sync"

	"landledger/pkg/domain"
	"landledger/pkg/platform/sentinel"
)

// InMemoryStore keeps role grants, user flags, and agent records in process.
type InMemoryStore struct {
	mu         sync.RWMutex
	roles      map[domain.Address]map[domain.Role]bool
	registered map[domain.Address]bool
	agents     map[domain.Address]Agent
	agentOrder []domain.Address
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		roles:      make(map[domain.Address]map[domain.Role]bool),
		registered: make(map[domain.Address]bool),
		agents:     make(map[domain.Address]Agent),
	}
}

func (s *InMemoryStore) GrantRole(_ context.Context, addr domain.Address, role domain.Role) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.roles[addr] == nil {
		s.roles[addr] = make(map[domain.Role]bool)
	}
	s.roles[addr][role] = true
	return nil
}

func (s *InMemoryStore) HasRole(_ context.Context, addr domain.Address, role domain.Role) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.roles[addr][role], nil
}

func (s *InMemoryStore) SetRegistered(_ context.Context, addr domain.Address) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.registered[addr] = true
	return nil
}

func (s *InMemoryStore) IsRegistered(_ context.Context, addr domain.Address) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.registered[addr], nil
}

func (s *InMemoryStore) SaveAgent(_ context.Context, agent Agent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.agents[agent.Address]; !exists {
		s.agentOrder = append(s.agentOrder, agent.Address)
	}
	s.agents[agent.Address] = agent
	return nil
}

func (s *InMemoryStore) FindAgent(_ context.Context, addr domain.Address) (Agent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	agent, ok := s.agents[addr]
	if !ok {
		return Agent{}, sentinel.ErrNotFound
	}
	return agent, nil
}

func (s *InMemoryStore) ListAgents(_ context.Context) ([]Agent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Agent, 0, len(s.agentOrder))
	for _, addr := range s.agentOrder {
		out = append(out, s.agents[addr])
	}
	return out, nil
}
