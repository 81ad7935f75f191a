package registry

import (
	"context"
	"log/slog"

	"landledger/internal/access"
	"landledger/internal/audit"
	"landledger/internal/fees"
	"landledger/internal/ledger"
	"landledger/internal/market"
	"landledger/internal/platform/metrics"
	"landledger/internal/property"
	"landledger/internal/token"
	"landledger/pkg/domain"
	dErrors "landledger/pkg/domain-errors"
)

// Stores bundles the persistence backends the registry wires together. Any
// memory/postgres/redis mix is valid; the caller picks per concern.
type Stores struct {
	Access   access.Store
	Fees     fees.Store
	Property property.Store
	Token    token.Store
}

// Registry is the assembled system: one facade owning every service, built
// around a deployer identity and the two payout wallets.
type Registry struct {
	Access   *access.Service
	Fees     *fees.Service
	Property *property.Service
	Token    *token.Service
	Market   *market.Service
	Audit    *audit.Publisher

	agencyWallet     domain.Address
	governmentWallet domain.Address
}

// Option configures the Registry.
type Option func(*options)

type options struct {
	logger  *slog.Logger
	metrics *metrics.Metrics
}

func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(o *options) {
		o.metrics = m
	}
}

// New assembles the registry. The deployer and both payout wallets must be
// non-zero. The deployer receives the admin and government capabilities, the
// agency wallet the admin capability, and the government wallet the
// government capability.
func New(
	ctx context.Context,
	deployer, agencyWallet, governmentWallet domain.Address,
	stores Stores,
	bank ledger.Bank,
	clock ledger.Clock,
	auditp *audit.Publisher,
	opts ...Option,
) (*Registry, error) {
	if agencyWallet.IsZero() {
		return nil, dErrors.New(dErrors.CodeValidation, "Invalid agency wallet")
	}
	if governmentWallet.IsZero() {
		return nil, dErrors.New(dErrors.CodeValidation, "Invalid government wallet")
	}
	if deployer.IsZero() {
		return nil, dErrors.New(dErrors.CodeValidation, "Invalid deployer address")
	}

	var o options
	for _, opt := range opts {
		opt(&o)
	}
	var serviceOpts []access.Option
	if o.logger != nil {
		serviceOpts = append(serviceOpts, access.WithLogger(o.logger))
	}

	accessSvc := access.NewService(stores.Access, auditp, clock, serviceOpts...)
	feeSvc := fees.NewService(stores.Fees, accessSvc, auditp)
	propertySvc := property.NewService(stores.Property, accessSvc, auditp, clock)
	tokenSvc := token.NewService(stores.Token, stores.Property, auditp, clock)

	marketOpts := []market.Option{}
	if o.logger != nil {
		marketOpts = append(marketOpts, market.WithLogger(o.logger))
	}
	if o.metrics != nil {
		marketOpts = append(marketOpts, market.WithMetrics(o.metrics))
	}
	marketSvc := market.NewService(stores.Property, tokenSvc, feeSvc, accessSvc,
		bank, clock, auditp, agencyWallet, governmentWallet, marketOpts...)

	for _, grant := range []struct {
		addr domain.Address
		role domain.Role
	}{
		{deployer, domain.RoleAdmin},
		{deployer, domain.RoleGovernment},
		{agencyWallet, domain.RoleAdmin},
		{governmentWallet, domain.RoleGovernment},
	} {
		if err := accessSvc.Grant(ctx, grant.addr, grant.role); err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to bootstrap roles")
		}
	}

	return &Registry{
		Access:           accessSvc,
		Fees:             feeSvc,
		Property:         propertySvc,
		Token:            tokenSvc,
		Market:           marketSvc,
		Audit:            auditp,
		agencyWallet:     agencyWallet,
		governmentWallet: governmentWallet,
	}, nil
}

// AgencyWallet returns the configured agency payout address.
func (r *Registry) AgencyWallet() domain.Address {
	return r.agencyWallet
}

// GovernmentWallet returns the configured government payout address.
func (r *Registry) GovernmentWallet() domain.Address {
	return r.governmentWallet
}
