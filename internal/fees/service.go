package fees

import (
	"context"
	"fmt"
	"log/slog"

	"landledger/internal/audit"
	"landledger/pkg/domain"
	dErrors "landledger/pkg/domain-errors"
)

// Store persists the singleton fee configuration.
type Store interface {
	Get(ctx context.Context) (Config, error)
	Replace(ctx context.Context, config Config) error
}

// Authorizer gates configuration writes.
type Authorizer interface {
	RequireAdmin(ctx context.Context, caller domain.Address) error
}

// AuditPublisher appends observable events.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Service computes the four-way fee split for monetary transactions and owns
// the global configuration.
type Service struct {
	store  Store
	authz  Authorizer
	auditp AuditPublisher
	logger *slog.Logger
}

// Option configures the Service.
type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func NewService(store Store, authz Authorizer, auditp AuditPublisher, opts ...Option) *Service {
	svc := &Service{store: store, authz: authz, auditp: auditp}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

// SetFees atomically replaces the configuration. Admin only; each rate is
// capped so the percentage cuts can never reach the transaction amount.
func (s *Service) SetFees(ctx context.Context, caller domain.Address, config Config) error {
	if err := s.authz.RequireAdmin(ctx, caller); err != nil {
		return err
	}
	if config.AgencyBp > MaxAgencyBp {
		return dErrors.New(dErrors.CodeValidation, "Agency fee too high")
	}
	if config.GovernmentBp > MaxGovernmentBp {
		return dErrors.New(dErrors.CodeValidation, "Government fee too high")
	}
	if config.AgentBp > MaxAgentBp {
		return dErrors.New(dErrors.CodeValidation, "Agent commission too high")
	}
	if err := s.store.Replace(ctx, config); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to replace fee configuration")
	}
	return s.auditp.Emit(ctx, audit.Event{
		Type:  audit.EventFeesUpdated,
		Actor: caller,
		Detail: fmt.Sprintf("agency_bp=%d government_bp=%d flat_fee=%d agent_bp=%d enabled=%t",
			config.AgencyBp, config.GovernmentBp, config.FlatFee, config.AgentBp, config.Enabled),
	})
}

// GetConfig returns the current configuration.
func (s *Service) GetConfig(ctx context.Context) (Config, error) {
	config, err := s.store.Get(ctx)
	if err != nil {
		return Config{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to read fee configuration")
	}
	return config, nil
}

// GetBreakdown splits the amount under the current configuration. Disabled
// fees yield all zeros. The sum check is unreachable while the caps hold
// (2000+1000+2000 bp = 50%).
func (s *Service) GetBreakdown(ctx context.Context, amount domain.Amount) (Breakdown, error) {
	config, err := s.store.Get(ctx)
	if err != nil {
		return Breakdown{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to read fee configuration")
	}
	if !config.Enabled {
		return Breakdown{}, nil
	}

	breakdown := Breakdown{
		AgencyCut:       config.AgencyBp.Of(amount),
		GovernmentCut:   config.GovernmentBp.Of(amount),
		AgentCommission: config.AgentBp.Of(amount),
		FlatFee:         config.FlatFee,
	}
	if breakdown.Total() >= amount {
		return Breakdown{}, dErrors.New(dErrors.CodeInvariantViolation, "Percentage fees exceed transaction amount")
	}
	return breakdown, nil
}
