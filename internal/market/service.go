package market

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"landledger/internal/audit"
	"landledger/internal/fees"
	"landledger/internal/ledger"
	"landledger/internal/platform/metrics"
	"landledger/internal/property"
	"landledger/pkg/domain"
	dErrors "landledger/pkg/domain-errors"
	"landledger/pkg/platform/sentinel"
)

// escrowAccount holds a payment inside a single atomic section. It always
// drains back to zero before the section commits.
const escrowAccount domain.Address = "landledger:escrow"

// FeeEngine computes the four-way split for a transaction amount.
type FeeEngine interface {
	GetBreakdown(ctx context.Context, amount domain.Amount) (fees.Breakdown, error)
}

// TokenMover reassigns a property token during a sale.
type TokenMover interface {
	Transfer(ctx context.Context, id domain.PropertyID, from, to domain.Address) error
}

// Authorizer provides the access checks the marketplace needs.
type Authorizer interface {
	RequireRegistered(ctx context.Context, caller domain.Address) error
	HasRole(ctx context.Context, addr domain.Address, role domain.Role) bool
}

// AuditPublisher appends observable events.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Service executes sale and rental transactions: listing, atomic purchase and
// rent with fee disbursement, and rental termination. Every precondition
// violation aborts the call with no state change and no funds moved.
type Service struct {
	properties       property.Store
	tokens           TokenMover
	fees             FeeEngine
	authz            Authorizer
	bank             ledger.Bank
	clock            ledger.Clock
	auditp           AuditPublisher
	agencyWallet     domain.Address
	governmentWallet domain.Address

	purchaseGuard guard
	rentGuard     guard

	metrics *metrics.Metrics
	logger  *slog.Logger
	tracer  trace.Tracer
}

// Option configures the Service.
type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func NewService(
	properties property.Store,
	tokens TokenMover,
	feeEngine FeeEngine,
	authz Authorizer,
	bank ledger.Bank,
	clock ledger.Clock,
	auditp AuditPublisher,
	agencyWallet, governmentWallet domain.Address,
	opts ...Option,
) *Service {
	svc := &Service{
		properties:       properties,
		tokens:           tokens,
		fees:             feeEngine,
		authz:            authz,
		bank:             bank,
		clock:            clock,
		auditp:           auditp,
		agencyWallet:     agencyWallet,
		governmentWallet: governmentWallet,
		tracer:           otel.Tracer("landledger/market"),
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

// ListForSale puts an approved property on the market. Owner only. An active
// rental blocks the listing; a stale for-rent flag is cleared.
func (s *Service) ListForSale(ctx context.Context, caller domain.Address, id domain.PropertyID, price domain.Amount) error {
	record, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	if record.Status.Owner != caller {
		return dErrors.New(dErrors.CodeUnauthorized, "Not the owner")
	}
	if price == 0 {
		return dErrors.New(dErrors.CodeValidation, "Price must be greater than 0")
	}
	if record.Status.Verification != domain.StatusApproved {
		return dErrors.New(dErrors.CodeInvalidState, "Property not approved")
	}
	if record.Rental.Active {
		return dErrors.New(dErrors.CodeInvalidState, "Property is currently rented")
	}

	record.Status.ForSale = true
	record.Status.SalePrice = price
	record.Status.ForRent = false
	if err := s.properties.Save(ctx, record); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to save property")
	}
	s.emit(ctx, audit.Event{
		Type:     audit.EventPropertyListedForSale,
		Property: &id,
		Actor:    caller,
		Amount:   price,
	})
	return nil
}

// ListForRent offers an approved property for rent with a fixed duration.
// Owner only; rejected while the property is listed for sale. The rental
// record is reset: any historical tenant trace is discarded.
func (s *Service) ListForRent(ctx context.Context, caller domain.Address, id domain.PropertyID, price domain.Amount, duration time.Duration) error {
	record, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	if record.Status.Owner != caller {
		return dErrors.New(dErrors.CodeUnauthorized, "Not the owner")
	}
	if price == 0 {
		return dErrors.New(dErrors.CodeValidation, "Price must be greater than 0")
	}
	if duration <= 0 {
		return dErrors.New(dErrors.CodeValidation, "Duration must be greater than 0")
	}
	if record.Status.Verification != domain.StatusApproved {
		return dErrors.New(dErrors.CodeInvalidState, "Property not approved")
	}
	if record.Status.ForSale {
		return dErrors.New(dErrors.CodeInvalidState, "Property is listed for sale")
	}

	record.Status.ForRent = true
	record.Status.RentPrice = price
	record.Rental = property.Rental{Duration: duration}
	if err := s.properties.Save(ctx, record); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to save property")
	}
	s.emit(ctx, audit.Event{
		Type:     audit.EventPropertyListedForRent,
		Property: &id,
		Actor:    caller,
		Amount:   price,
	})
	return nil
}

// Purchase buys a listed property. The payment must cover the sale price plus
// the flat processing fee; anything beyond that is returned to the buyer. All
// state updates land before funds move, and the whole fund sequence commits
// or aborts as one unit.
func (s *Service) Purchase(ctx context.Context, buyer domain.Address, id domain.PropertyID, payment domain.Amount) error {
	if err := s.purchaseGuard.enter(id); err != nil {
		return err
	}
	defer s.purchaseGuard.exit(id)

	ctx, span := s.tracer.Start(ctx, "market.purchase",
		trace.WithAttributes(attribute.Int64("property.id", int64(id))))
	defer span.End()

	if err := s.authz.RequireRegistered(ctx, buyer); err != nil {
		return err
	}
	record, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	if record.Status.Owner == buyer {
		return dErrors.New(dErrors.CodeInvalidState, "Cannot buy your own property")
	}
	if !record.Status.ForSale {
		return dErrors.New(dErrors.CodeInvalidState, "Not for sale")
	}

	price := record.Status.SalePrice
	breakdown, err := s.fees.GetBreakdown(ctx, price)
	if err != nil {
		return err
	}
	required := price + breakdown.FlatFee
	if payment < required {
		return dErrors.New(dErrors.CodePayment, "Insufficient payment including fees")
	}

	seller := record.Status.Owner
	sellerIsAgent := s.authz.HasRole(ctx, seller, domain.RoleAgent)

	// Effects before interactions: the new owner is recorded, the index and
	// token move, and only then do funds leave the buyer.
	prior := record
	record.Status.Owner = buyer
	record.Status.ForSale = false
	if err := s.properties.Save(ctx, record); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to save property")
	}
	if err := s.properties.RemoveFromOwner(ctx, seller, id); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to update ownership index")
	}
	if err := s.properties.AppendToOwner(ctx, buyer, id); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to update ownership index")
	}
	if record.Status.Tokenized {
		if err := s.tokens.Transfer(ctx, id, seller, buyer); err != nil {
			s.revert(ctx, prior, buyer, seller, id)
			return err
		}
	}

	if err := s.disburse(ctx, buyer, seller, price, payment, breakdown, sellerIsAgent); err != nil {
		if record.Status.Tokenized {
			// Best-effort restore of the token binding; the bank section
			// itself never commits partially.
			_ = s.tokens.Transfer(ctx, id, buyer, seller)
		}
		s.revert(ctx, prior, buyer, seller, id)
		return err
	}

	if s.metrics != nil {
		s.metrics.PropertiesSold.Inc()
		s.metrics.TransactionVolume.Add(float64(price))
	}
	s.observeDisbursement(breakdown, sellerIsAgent)

	s.emit(ctx, audit.Event{
		Type:         audit.EventPropertySold,
		Property:     &id,
		Actor:        seller,
		Counterparty: buyer,
		Amount:       price,
	})
	s.emit(ctx, audit.Event{
		Type:         audit.EventOwnershipTransferred,
		Property:     &id,
		Actor:        seller,
		Counterparty: buyer,
	})
	return nil
}

// Rent starts the rental. Occupancy changes; ownership does not. The rental
// record is activated before any funds move.
func (s *Service) Rent(ctx context.Context, tenant domain.Address, id domain.PropertyID, payment domain.Amount) error {
	if err := s.rentGuard.enter(id); err != nil {
		return err
	}
	defer s.rentGuard.exit(id)

	ctx, span := s.tracer.Start(ctx, "market.rent",
		trace.WithAttributes(attribute.Int64("property.id", int64(id))))
	defer span.End()

	if err := s.authz.RequireRegistered(ctx, tenant); err != nil {
		return err
	}
	record, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	if !record.Status.ForRent {
		return dErrors.New(dErrors.CodeInvalidState, "Not for rent")
	}
	if record.Rental.Active {
		return dErrors.New(dErrors.CodeInvalidState, "Property already rented")
	}

	price := record.Status.RentPrice
	breakdown, err := s.fees.GetBreakdown(ctx, price)
	if err != nil {
		return err
	}
	required := price + breakdown.FlatFee
	if payment < required {
		return dErrors.New(dErrors.CodePayment, "Insufficient payment including fees")
	}

	landlord := record.Status.Owner
	landlordIsAgent := s.authz.HasRole(ctx, landlord, domain.RoleAgent)

	prior := record
	record.Rental = property.Rental{
		Tenant:    tenant,
		StartTime: s.clock.Now(),
		Duration:  record.Rental.Duration,
		Active:    true,
	}
	if err := s.properties.Save(ctx, record); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to save property")
	}

	if err := s.disburse(ctx, tenant, landlord, price, payment, breakdown, landlordIsAgent); err != nil {
		if saveErr := s.properties.Save(ctx, prior); saveErr != nil && s.logger != nil {
			s.logger.ErrorContext(ctx, "failed to restore rental after aborted payment",
				"property_id", id, "error", saveErr)
		}
		return err
	}

	if s.metrics != nil {
		s.metrics.PropertiesRented.Inc()
		s.metrics.TransactionVolume.Add(float64(price))
	}
	s.observeDisbursement(breakdown, landlordIsAgent)

	s.emit(ctx, audit.Event{
		Type:         audit.EventPropertyRented,
		Property:     &id,
		Actor:        landlord,
		Counterparty: tenant,
		Amount:       price,
	})
	return nil
}

// EndRental deactivates an expired rental. Owner or tenant only; neither may
// terminate early. Tenant and timing fields stay behind as a historical trace
// until the next rent listing resets them.
func (s *Service) EndRental(ctx context.Context, caller domain.Address, id domain.PropertyID) error {
	record, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	if caller != record.Status.Owner && caller != record.Rental.Tenant {
		return dErrors.New(dErrors.CodeUnauthorized, "Not authorized")
	}
	if !record.Rental.Active {
		return dErrors.New(dErrors.CodeInvalidState, "No active rental")
	}
	if s.clock.Now().Before(record.Rental.StartTime.Add(record.Rental.Duration)) {
		return dErrors.New(dErrors.CodeInvalidState, "Rental period not ended")
	}

	tenant := record.Rental.Tenant
	record.Rental.Active = false
	if err := s.properties.Save(ctx, record); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to save property")
	}
	s.emit(ctx, audit.Event{
		Type:         audit.EventRentalEnded,
		Property:     &id,
		Actor:        caller,
		Counterparty: tenant,
	})
	return nil
}

// disburse moves the payment through escrow in one atomic section: agency cut
// plus flat fee, government cut, agent commission (to the beneficiary when
// they hold the agent capability, to the agency otherwise), the residual to
// the beneficiary, and last the overpayment refund back to the payer.
func (s *Service) disburse(ctx context.Context, payer, beneficiary domain.Address, price, payment domain.Amount, breakdown fees.Breakdown, beneficiaryIsAgent bool) error {
	agentRecipient := s.agencyWallet
	if beneficiaryIsAgent {
		agentRecipient = beneficiary
	}
	refund := payment - price - breakdown.FlatFee

	err := s.bank.Atomic(ctx, func(tx ledger.Tx) error {
		if err := tx.Transfer(payer, escrowAccount, payment); err != nil {
			return err
		}
		if err := tx.Transfer(escrowAccount, s.agencyWallet, breakdown.AgencyCut+breakdown.FlatFee); err != nil {
			return err
		}
		if err := tx.Transfer(escrowAccount, s.governmentWallet, breakdown.GovernmentCut); err != nil {
			return err
		}
		if err := tx.Transfer(escrowAccount, agentRecipient, breakdown.AgentCommission); err != nil {
			return err
		}
		if err := tx.Transfer(escrowAccount, beneficiary, price-breakdown.Total()); err != nil {
			return err
		}
		return tx.Transfer(escrowAccount, payer, refund)
	})
	if err != nil {
		if dErrors.Is(err, sentinel.ErrInsufficientFunds) {
			return dErrors.Wrap(err, dErrors.CodePayment, "Insufficient funds")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "fund disbursement failed")
	}
	return nil
}

// emit records an event for a call whose state and fund changes have already
// committed. An append failure cannot change the call's outcome; it is logged
// and the event is lost.
func (s *Service) emit(ctx context.Context, event audit.Event) {
	if err := s.auditp.Emit(ctx, event); err != nil && s.logger != nil {
		s.logger.ErrorContext(ctx, "failed to record audit event",
			"event_type", string(event.Type), "error", err)
	}
}

func (s *Service) observeDisbursement(breakdown fees.Breakdown, toAgent bool) {
	if s.metrics == nil {
		return
	}
	s.metrics.ObserveDisbursement("agency", breakdown.AgencyCut+breakdown.FlatFee)
	s.metrics.ObserveDisbursement("government", breakdown.GovernmentCut)
	if toAgent {
		s.metrics.ObserveDisbursement("agent", breakdown.AgentCommission)
	} else {
		s.metrics.ObserveDisbursement("agency", breakdown.AgentCommission)
	}
}

// revert restores the property record and ownership index after an aborted
// purchase. The bank section never commits partially, so only the registry
// side needs unwinding.
func (s *Service) revert(ctx context.Context, prior property.Property, buyer, seller domain.Address, id domain.PropertyID) {
	if err := s.properties.Save(ctx, prior); err != nil && s.logger != nil {
		s.logger.ErrorContext(ctx, "failed to restore property after aborted purchase",
			"property_id", id, "error", err)
	}
	if err := s.properties.RemoveFromOwner(ctx, buyer, id); err != nil && s.logger != nil {
		s.logger.ErrorContext(ctx, "failed to restore ownership index",
			"property_id", id, "error", err)
	}
	if err := s.properties.AppendToOwner(ctx, seller, id); err != nil && s.logger != nil {
		s.logger.ErrorContext(ctx, "failed to restore ownership index",
			"property_id", id, "error", err)
	}
}

func (s *Service) find(ctx context.Context, id domain.PropertyID) (property.Property, error) {
	record, err := s.properties.Find(ctx, id)
	if err != nil {
		if dErrors.Is(err, sentinel.ErrNotFound) {
			return property.Property{}, dErrors.New(dErrors.CodeNotFound, "Property does not exist")
		}
		return property.Property{}, dErrors.Wrap(err, dErrors.CodeInternal, "property lookup failed")
	}
	return record, nil
}
