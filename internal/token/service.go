package token

import (
	"context"
	"log/slog"

	"landledger/internal/audit"
	"landledger/internal/ledger"
	"landledger/internal/property"
	"landledger/pkg/domain"
	dErrors "landledger/pkg/domain-errors"
	"landledger/pkg/platform/sentinel"
)

// Store persists token holders.
type Store interface {
	Save(ctx context.Context, tokenID domain.PropertyID, holder domain.Address) error
	Holder(ctx context.Context, tokenID domain.PropertyID) (domain.Address, error)
}

// AuditPublisher appends observable events.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Service binds a unique ownership token to an approved property. Minting is
// a one-way transition: there is no burn or re-mint path.
type Service struct {
	store      Store
	properties property.Store
	auditp     AuditPublisher
	clock      ledger.Clock
	logger     *slog.Logger
}

// Option configures the Service.
type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func NewService(store Store, properties property.Store, auditp AuditPublisher, clock ledger.Clock, opts ...Option) *Service {
	svc := &Service{store: store, properties: properties, auditp: auditp, clock: clock}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

// Mint creates the property's token, holder = caller. The caller must be the
// recorded owner, the property APPROVED, untokenized, and not under an active
// rental listing.
func (s *Service) Mint(ctx context.Context, caller domain.Address, id domain.PropertyID) error {
	record, err := s.properties.Find(ctx, id)
	if err != nil {
		if dErrors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "Property does not exist")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "property lookup failed")
	}
	if record.Status.Owner != caller {
		return dErrors.New(dErrors.CodeUnauthorized, "Not the owner")
	}
	if record.Status.Verification != domain.StatusApproved {
		return dErrors.New(dErrors.CodeInvalidState, "Property not approved")
	}
	if record.Status.Tokenized {
		return dErrors.New(dErrors.CodeInvalidState, "Token already minted")
	}
	if record.Status.ForRent && record.Rental.Active {
		return dErrors.New(dErrors.CodeInvalidState, "Property is currently rented")
	}

	if err := s.store.Save(ctx, id, caller); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to save token")
	}
	record.Status.Tokenized = true
	record.Timestamps.MintedAt = s.clock.Now()
	if err := s.properties.Save(ctx, record); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to save property")
	}
	return s.auditp.Emit(ctx, audit.Event{
		Type:     audit.EventPropertyMinted,
		Property: &id,
		Actor:    caller,
	})
}

// Transfer reassigns the token holder. Only the marketplace calls it, as part
// of a purchase, after validating the sale; it is not an external operation.
func (s *Service) Transfer(ctx context.Context, id domain.PropertyID, from, to domain.Address) error {
	holder, err := s.store.Holder(ctx, id)
	if err != nil {
		if dErrors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "Token does not exist")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "token lookup failed")
	}
	if holder != from {
		return dErrors.New(dErrors.CodeInvariantViolation, "Token holder mismatch")
	}
	if err := s.store.Save(ctx, id, to); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to save token")
	}
	return nil
}

// HolderOf returns the current token holder.
func (s *Service) HolderOf(ctx context.Context, id domain.PropertyID) (domain.Address, error) {
	holder, err := s.store.Holder(ctx, id)
	if err != nil {
		if dErrors.Is(err, sentinel.ErrNotFound) {
			return domain.ZeroAddress, dErrors.New(dErrors.CodeNotFound, "Token does not exist")
		}
		return domain.ZeroAddress, dErrors.Wrap(err, dErrors.CodeInternal, "token lookup failed")
	}
	return holder, nil
}
