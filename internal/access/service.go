package access

import (
	"context"
	"log/slog"

	"landledger/internal/audit"
	"landledger/internal/ledger"
	"landledger/pkg/domain"
	dErrors "landledger/pkg/domain-errors"
	"landledger/pkg/platform/sentinel"
)

// Store persists role grants, registered-user flags, and agent records.
type Store interface {
	GrantRole(ctx context.Context, addr domain.Address, role domain.Role) error
	HasRole(ctx context.Context, addr domain.Address, role domain.Role) (bool, error)
	SetRegistered(ctx context.Context, addr domain.Address) error
	IsRegistered(ctx context.Context, addr domain.Address) (bool, error)
	SaveAgent(ctx context.Context, agent Agent) error
	FindAgent(ctx context.Context, addr domain.Address) (Agent, error)
	ListAgents(ctx context.Context) ([]Agent, error)
}

// AuditPublisher appends observable events.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Service is the capability-lookup consulted by every other component. Role
// checks are pure predicates: the only failure mode is operation rejection.
type Service struct {
	store  Store
	auditp AuditPublisher
	clock  ledger.Clock
	logger *slog.Logger
}

// Option configures the Service.
type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func NewService(store Store, auditp AuditPublisher, clock ledger.Clock, opts ...Option) *Service {
	svc := &Service{store: store, auditp: auditp, clock: clock}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

// Grant assigns a role without authorization checks. Only registry bootstrap
// and agent registration call it.
func (s *Service) Grant(ctx context.Context, addr domain.Address, role domain.Role) error {
	return s.store.GrantRole(ctx, addr, role)
}

// HasRole reports whether the principal holds the capability.
func (s *Service) HasRole(ctx context.Context, addr domain.Address, role domain.Role) bool {
	ok, err := s.store.HasRole(ctx, addr, role)
	if err != nil {
		if s.logger != nil {
			s.logger.ErrorContext(ctx, "role lookup failed", "addr", addr, "role", role, "error", err)
		}
		return false
	}
	return ok
}

// RequireAdmin rejects callers without the admin capability.
func (s *Service) RequireAdmin(ctx context.Context, caller domain.Address) error {
	if !s.HasRole(ctx, caller, domain.RoleAdmin) {
		return dErrors.New(dErrors.CodeUnauthorized, "Caller is not an admin")
	}
	return nil
}

// RequireGovernment rejects callers without the government capability.
func (s *Service) RequireGovernment(ctx context.Context, caller domain.Address) error {
	if !s.HasRole(ctx, caller, domain.RoleGovernment) {
		return dErrors.New(dErrors.CodeUnauthorized, "Caller is not a government agent")
	}
	return nil
}

// RequireVerifier rejects callers holding neither admin nor government.
func (s *Service) RequireVerifier(ctx context.Context, caller domain.Address) error {
	if s.HasRole(ctx, caller, domain.RoleAdmin) || s.HasRole(ctx, caller, domain.RoleGovernment) {
		return nil
	}
	return dErrors.New(dErrors.CodeUnauthorized, "Not authorized")
}

// RequireRegistered rejects principals that never self-registered.
func (s *Service) RequireRegistered(ctx context.Context, caller domain.Address) error {
	ok, err := s.store.IsRegistered(ctx, caller)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "registration lookup failed")
	}
	if !ok {
		return dErrors.New(dErrors.CodeUnauthorized, "User not registered")
	}
	return nil
}

// IsRegistered reports the registered-user flag.
func (s *Service) IsRegistered(ctx context.Context, addr domain.Address) bool {
	ok, _ := s.store.IsRegistered(ctx, addr)
	return ok
}

// RegisterUser sets the caller's registered flag. The flag is never cleared.
func (s *Service) RegisterUser(ctx context.Context, caller domain.Address) error {
	if caller.IsZero() {
		return dErrors.New(dErrors.CodeValidation, "Invalid user address")
	}
	ok, err := s.store.IsRegistered(ctx, caller)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "registration lookup failed")
	}
	if ok {
		return dErrors.New(dErrors.CodeInvalidState, "Already registered")
	}
	if err := s.store.SetRegistered(ctx, caller); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to register user")
	}
	return s.auditp.Emit(ctx, audit.Event{
		Type:  audit.EventUserRegistered,
		Actor: caller,
	})
}

// RegisterAgent creates an agent record once per address and grants the agent
// capability. Admin only.
func (s *Service) RegisterAgent(ctx context.Context, caller, agentAddr domain.Address, name, contact string) error {
	if err := s.RequireAdmin(ctx, caller); err != nil {
		return err
	}
	if agentAddr.IsZero() {
		return dErrors.New(dErrors.CodeValidation, "Invalid agent address")
	}
	if name == "" {
		return dErrors.New(dErrors.CodeValidation, "Agent name cannot be empty")
	}
	if _, err := s.store.FindAgent(ctx, agentAddr); err == nil {
		return dErrors.New(dErrors.CodeInvalidState, "Agent already registered")
	} else if !dErrors.Is(err, sentinel.ErrNotFound) {
		return dErrors.Wrap(err, dErrors.CodeInternal, "agent lookup failed")
	}

	agent := Agent{
		Address:      agentAddr,
		Name:         name,
		Contact:      contact,
		Active:       true,
		Status:       domain.StatusPending,
		RegisteredAt: s.clock.Now(),
	}
	if err := s.store.SaveAgent(ctx, agent); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to save agent")
	}
	if err := s.store.GrantRole(ctx, agentAddr, domain.RoleAgent); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to grant agent role")
	}
	return s.auditp.Emit(ctx, audit.Event{
		Type:   audit.EventAgentRegistered,
		Actor:  agentAddr,
		Detail: name,
	})
}

// VerifyAgent sets the agent's verification status. Admin or government;
// callable repeatedly. REJECTED deactivates the agent, APPROVED reactivates.
func (s *Service) VerifyAgent(ctx context.Context, caller, agentAddr domain.Address, status domain.VerificationStatus) error {
	if err := s.RequireVerifier(ctx, caller); err != nil {
		return err
	}
	if !status.IsValid() {
		return dErrors.New(dErrors.CodeValidation, "Invalid verification status")
	}
	agent, err := s.store.FindAgent(ctx, agentAddr)
	if err != nil {
		if dErrors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "Agent does not exist")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "agent lookup failed")
	}

	agent.Status = status
	agent.Active = status != domain.StatusRejected
	if err := s.store.SaveAgent(ctx, agent); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to save agent")
	}
	return s.auditp.Emit(ctx, audit.Event{
		Type:   audit.EventAgentVerified,
		Actor:  agentAddr,
		Status: status.String(),
	})
}

// GetAgent returns one agent record.
func (s *Service) GetAgent(ctx context.Context, addr domain.Address) (Agent, error) {
	agent, err := s.store.FindAgent(ctx, addr)
	if err != nil {
		if dErrors.Is(err, sentinel.ErrNotFound) {
			return Agent{}, dErrors.New(dErrors.CodeNotFound, "Agent does not exist")
		}
		return Agent{}, dErrors.Wrap(err, dErrors.CodeInternal, "agent lookup failed")
	}
	return agent, nil
}

// ListAgents returns every registered agent with name and status.
func (s *Service) ListAgents(ctx context.Context) ([]Agent, error) {
	agents, err := s.store.ListAgents(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list agents")
	}
	return agents, nil
}
