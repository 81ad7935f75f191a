package access

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"landledger/internal/audit"
	"landledger/internal/ledger"
	"landledger/pkg/domain"
	dErrors "landledger/pkg/domain-errors"
)

const (
	admin    domain.Address = "admin"
	official domain.Address = "official"
	broker   domain.Address = "broker"
	citizen  domain.Address = "citizen"
)

type AccessSuite struct {
	suite.Suite

	ctx      context.Context
	clock    *ledger.ManualClock
	service  *Service
	auditLog *audit.InMemoryStore
}

func TestAccessSuite(t *testing.T) {
	suite.Run(t, new(AccessSuite))
}

func (s *AccessSuite) SetupTest() {
	s.ctx = context.Background()
	s.clock = ledger.NewManualClock(time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC))
	s.auditLog = audit.NewInMemoryStore()
	s.service = NewService(NewInMemoryStore(), audit.NewPublisher(s.auditLog), s.clock)

	s.Require().NoError(s.service.Grant(s.ctx, admin, domain.RoleAdmin))
	s.Require().NoError(s.service.Grant(s.ctx, official, domain.RoleGovernment))
}

func (s *AccessSuite) TestRoleChecks() {
	s.Run("admin passes RequireAdmin", func() {
		s.NoError(s.service.RequireAdmin(s.ctx, admin))
	})

	s.Run("non-admin fails with the exact reason", func() {
		err := s.service.RequireAdmin(s.ctx, citizen)
		s.EqualError(err, "Caller is not an admin")
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	s.Run("government check rejects everyone else", func() {
		s.NoError(s.service.RequireGovernment(s.ctx, official))
		s.EqualError(s.service.RequireGovernment(s.ctx, admin), "Caller is not a government agent")
	})

	s.Run("verifier accepts admin or government", func() {
		s.NoError(s.service.RequireVerifier(s.ctx, admin))
		s.NoError(s.service.RequireVerifier(s.ctx, official))
		s.EqualError(s.service.RequireVerifier(s.ctx, citizen), "Not authorized")
	})
}

func (s *AccessSuite) TestRegisterUser() {
	s.Run("first registration sets the flag and emits an event", func() {
		s.NoError(s.service.RegisterUser(s.ctx, citizen))
		s.True(s.service.IsRegistered(s.ctx, citizen))

		events, err := s.auditLog.List(s.ctx)
		s.Require().NoError(err)
		s.Require().Len(events, 1)
		s.Equal(audit.EventUserRegistered, events[0].Type)
		s.Equal(citizen, events[0].Actor)
	})

	s.Run("second registration is rejected", func() {
		err := s.service.RegisterUser(s.ctx, citizen)
		s.EqualError(err, "Already registered")
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidState))
	})

	s.Run("zero address is rejected", func() {
		s.EqualError(s.service.RegisterUser(s.ctx, domain.ZeroAddress), "Invalid user address")
	})

	s.Run("unregistered caller fails RequireRegistered", func() {
		err := s.service.RequireRegistered(s.ctx, "nobody")
		s.EqualError(err, "User not registered")
	})
}

func (s *AccessSuite) TestRegisterAgent() {
	s.Run("admin registers an active pending agent", func() {
		s.NoError(s.service.RegisterAgent(s.ctx, admin, broker, "Acme Realty", "acme@example.com"))

		agent, err := s.service.GetAgent(s.ctx, broker)
		s.Require().NoError(err)
		s.True(agent.Active)
		s.Equal(domain.StatusPending, agent.Status)
		s.Equal(s.clock.Now(), agent.RegisteredAt)
		s.True(s.service.HasRole(s.ctx, broker, domain.RoleAgent))
	})

	s.Run("non-admin cannot register agents", func() {
		s.EqualError(s.service.RegisterAgent(s.ctx, citizen, "other", "Other", ""), "Caller is not an admin")
	})

	s.Run("duplicate agent address is rejected", func() {
		err := s.service.RegisterAgent(s.ctx, admin, broker, "Acme Again", "")
		s.EqualError(err, "Agent already registered")
	})

	s.Run("empty name is rejected", func() {
		s.EqualError(s.service.RegisterAgent(s.ctx, admin, "fresh", "", ""), "Agent name cannot be empty")
	})
}

func (s *AccessSuite) TestVerifyAgent() {
	s.Require().NoError(s.service.RegisterAgent(s.ctx, admin, broker, "Acme Realty", ""))

	s.Run("rejection deactivates the agent", func() {
		s.NoError(s.service.VerifyAgent(s.ctx, official, broker, domain.StatusRejected))

		agent, err := s.service.GetAgent(s.ctx, broker)
		s.Require().NoError(err)
		s.False(agent.Active)
		s.Equal(domain.StatusRejected, agent.Status)
	})

	s.Run("approval reactivates the agent", func() {
		s.NoError(s.service.VerifyAgent(s.ctx, admin, broker, domain.StatusApproved))

		agent, err := s.service.GetAgent(s.ctx, broker)
		s.Require().NoError(err)
		s.True(agent.Active)
	})

	s.Run("unknown agent does not exist", func() {
		err := s.service.VerifyAgent(s.ctx, admin, "ghost", domain.StatusApproved)
		s.EqualError(err, "Agent does not exist")
	})

	s.Run("invalid status is rejected before lookup", func() {
		err := s.service.VerifyAgent(s.ctx, admin, broker, "MAYBE")
		s.EqualError(err, "Invalid verification status")
	})

	s.Run("plain citizen cannot verify", func() {
		s.EqualError(s.service.VerifyAgent(s.ctx, citizen, broker, domain.StatusApproved), "Not authorized")
	})
}

func (s *AccessSuite) TestListAgents() {
	s.Require().NoError(s.service.RegisterAgent(s.ctx, admin, broker, "Acme Realty", "acme@example.com"))
	s.Require().NoError(s.service.RegisterAgent(s.ctx, admin, "second", "Second Realty", ""))

	agents, err := s.service.ListAgents(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(agents, 2)
	s.Equal("Acme Realty", agents[0].Name)
	s.Equal("acme@example.com", agents[0].Contact)
	s.Equal("Second Realty", agents[1].Name)
}
