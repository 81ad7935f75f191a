package market

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"landledger/internal/access"
	"landledger/internal/audit"
	"landledger/internal/fees"
	"landledger/internal/ledger"
	"landledger/internal/property"
	"landledger/internal/token"
	"landledger/pkg/domain"
	dErrors "landledger/pkg/domain-errors"
)

const (
	agencyWallet     domain.Address = "agency-wallet"
	governmentWallet domain.Address = "government-wallet"

	seller domain.Address = "seller"
	buyer  domain.Address = "buyer"
	tenant domain.Address = "tenant"
)

type MarketSuite struct {
	suite.Suite

	ctx       context.Context
	clock     *ledger.ManualClock
	bank      *ledger.MemoryBank
	props     *property.InMemoryStore
	feeStore  *fees.InMemoryStore
	feeEngine *fees.Service
	access    *access.Service
	tokens    *token.Service
	market    *Service
	auditLog  *audit.InMemoryStore
}

func TestMarketSuite(t *testing.T) {
	suite.Run(t, new(MarketSuite))
}

func (s *MarketSuite) SetupTest() {
	s.ctx = context.Background()
	s.clock = ledger.NewManualClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	s.bank = ledger.NewMemoryBank()
	s.props = property.NewInMemoryStore()
	s.feeStore = fees.NewInMemoryStore()
	s.auditLog = audit.NewInMemoryStore()

	auditp := audit.NewPublisher(s.auditLog)
	s.access = access.NewService(access.NewInMemoryStore(), auditp, s.clock)
	s.feeEngine = fees.NewService(s.feeStore, s.access, auditp)
	s.tokens = token.NewService(token.NewInMemoryStore(), s.props, auditp, s.clock)
	s.market = NewService(s.props, s.tokens, s.feeEngine, s.access, s.bank, s.clock,
		auditp, agencyWallet, governmentWallet)

	s.Require().NoError(s.access.RegisterUser(s.ctx, seller))
	s.Require().NoError(s.access.RegisterUser(s.ctx, buyer))
	s.Require().NoError(s.access.RegisterUser(s.ctx, tenant))
}

// approvedProperty seeds an APPROVED record owned by the seller.
func (s *MarketSuite) approvedProperty() domain.PropertyID {
	id, err := s.props.AllocateID(s.ctx)
	s.Require().NoError(err)
	record := property.Property{
		ID: id,
		Info: property.Info{
			Title:        "Plot 7, Riverside",
			Size:         450,
			DocumentHash: "deed-hash",
		},
		Status: property.Status{
			Registered:   true,
			Verification: domain.StatusApproved,
			Owner:        seller,
		},
		Timestamps: property.Timestamps{RegisteredAt: s.clock.Now()},
	}
	s.Require().NoError(s.props.Save(s.ctx, record))
	s.Require().NoError(s.props.AppendToOwner(s.ctx, seller, id))
	return id
}

func (s *MarketSuite) enableFees(agencyBp, governmentBp, agentBp domain.BasisPoints, flat domain.Amount) {
	s.Require().NoError(s.feeStore.Replace(s.ctx, fees.Config{
		AgencyBp:     agencyBp,
		GovernmentBp: governmentBp,
		AgentBp:      agentBp,
		FlatFee:      flat,
		Enabled:      true,
	}))
}

func (s *MarketSuite) balance(addr domain.Address) domain.Amount {
	amount, err := s.bank.Balance(s.ctx, addr)
	s.Require().NoError(err)
	return amount
}

func (s *MarketSuite) TestListForSale() {
	id := s.approvedProperty()

	s.Run("owner lists an approved property", func() {
		s.NoError(s.market.ListForSale(s.ctx, seller, id, 1000))

		record, err := s.props.Find(s.ctx, id)
		s.Require().NoError(err)
		s.True(record.Status.ForSale)
		s.Equal(domain.Amount(1000), record.Status.SalePrice)
	})

	s.Run("non-owner is rejected", func() {
		err := s.market.ListForSale(s.ctx, buyer, id, 1000)
		s.ErrorContains(err, "Not the owner")
	})

	s.Run("zero price is rejected", func() {
		err := s.market.ListForSale(s.ctx, seller, id, 0)
		s.ErrorContains(err, "Price must be greater than 0")
	})

	s.Run("listing for sale clears a standing rent listing", func() {
		fresh := s.approvedProperty()
		s.Require().NoError(s.market.ListForRent(s.ctx, seller, fresh, 50, 30*24*time.Hour))
		s.Require().NoError(s.market.ListForSale(s.ctx, seller, fresh, 1200))

		record, err := s.props.Find(s.ctx, fresh)
		s.Require().NoError(err)
		s.True(record.Status.ForSale)
		s.False(record.Status.ForRent)
	})

	s.Run("active rental blocks the listing", func() {
		rented := s.approvedProperty()
		s.Require().NoError(s.market.ListForRent(s.ctx, seller, rented, 50, 30*24*time.Hour))
		s.bank.Mint(tenant, 50)
		s.Require().NoError(s.market.Rent(s.ctx, tenant, rented, 50))

		err := s.market.ListForSale(s.ctx, seller, rented, 1000)
		s.ErrorContains(err, "Property is currently rented")
	})

	s.Run("unapproved property is rejected", func() {
		pending := s.approvedProperty()
		record, err := s.props.Find(s.ctx, pending)
		s.Require().NoError(err)
		record.Status.Verification = domain.StatusPending
		s.Require().NoError(s.props.Save(s.ctx, record))

		err = s.market.ListForSale(s.ctx, seller, pending, 1000)
		s.ErrorContains(err, "Property not approved")
	})
}

func (s *MarketSuite) TestListForRent() {
	id := s.approvedProperty()

	s.Run("owner lists with price and duration", func() {
		s.NoError(s.market.ListForRent(s.ctx, seller, id, 80, 7*24*time.Hour))

		record, err := s.props.Find(s.ctx, id)
		s.Require().NoError(err)
		s.True(record.Status.ForRent)
		s.Equal(domain.Amount(80), record.Status.RentPrice)
		s.Equal(7*24*time.Hour, record.Rental.Duration)
		s.False(record.Rental.Active)
	})

	s.Run("zero duration is rejected", func() {
		err := s.market.ListForRent(s.ctx, seller, id, 80, 0)
		s.ErrorContains(err, "Duration must be greater than 0")
	})

	s.Run("a sale listing blocks the rent listing", func() {
		s.Require().NoError(s.market.ListForSale(s.ctx, seller, id, 1000))

		err := s.market.ListForRent(s.ctx, seller, id, 80, 7*24*time.Hour)
		s.ErrorContains(err, "Property is listed for sale")
	})

	s.Run("relisting discards the previous tenant trace", func() {
		leased := s.approvedProperty()
		s.Require().NoError(s.market.ListForRent(s.ctx, seller, leased, 80, time.Hour))
		s.bank.Mint(tenant, 80)
		s.Require().NoError(s.market.Rent(s.ctx, tenant, leased, 80))
		s.clock.Advance(2 * time.Hour)
		s.Require().NoError(s.market.EndRental(s.ctx, seller, leased))

		s.Require().NoError(s.market.ListForRent(s.ctx, seller, leased, 90, time.Hour))
		record, err := s.props.Find(s.ctx, leased)
		s.Require().NoError(err)
		s.Equal(domain.ZeroAddress, record.Rental.Tenant)
		s.False(record.Rental.Active)
	})
}

func (s *MarketSuite) TestPurchaseFeesDisabled() {
	id := s.approvedProperty()
	s.Require().NoError(s.market.ListForSale(s.ctx, seller, id, 1000))
	s.bank.Mint(buyer, 1000)

	s.Run("exact payment transfers ownership and the full price", func() {
		s.NoError(s.market.Purchase(s.ctx, buyer, id, 1000))

		record, err := s.props.Find(s.ctx, id)
		s.Require().NoError(err)
		s.Equal(buyer, record.Status.Owner)
		s.False(record.Status.ForSale)

		s.Equal(domain.Amount(1000), s.balance(seller))
		s.Equal(domain.Amount(0), s.balance(buyer))
		s.Equal(domain.Amount(0), s.balance(agencyWallet))
		s.Equal(domain.Amount(0), s.balance(governmentWallet))

		sellerIDs, err := s.props.ListByOwner(s.ctx, seller)
		s.Require().NoError(err)
		s.NotContains(sellerIDs, id)
		buyerIDs, err := s.props.ListByOwner(s.ctx, buyer)
		s.Require().NoError(err)
		s.Contains(buyerIDs, id)
	})
}

func (s *MarketSuite) TestPurchaseWithFees() {
	s.enableFees(500, 200, 100, 25)

	s.Run("cuts split between agency, government, and seller", func() {
		id := s.approvedProperty()
		s.Require().NoError(s.market.ListForSale(s.ctx, seller, id, 10000))
		s.bank.Mint(buyer, 10100)

		s.NoError(s.market.Purchase(s.ctx, buyer, id, 10100))

		// price 10000: agency 500, government 200, agent commission 100.
		// The seller holds no agent capability, so the commission lands at
		// the agency. Flat fee 25 on top, 75 refunded.
		s.Equal(domain.Amount(500+25+100), s.balance(agencyWallet))
		s.Equal(domain.Amount(200), s.balance(governmentWallet))
		s.Equal(domain.Amount(9300), s.balance(seller))
		s.Equal(domain.Amount(75), s.balance(buyer))
	})

	s.Run("an agent seller keeps the commission", func() {
		s.Require().NoError(s.access.Grant(s.ctx, seller, domain.RoleAgent))
		id := s.approvedProperty()
		s.Require().NoError(s.market.ListForSale(s.ctx, seller, id, 10000))

		start := s.balance(seller)
		agencyStart := s.balance(agencyWallet)
		s.bank.Mint(buyer, 10025)
		s.NoError(s.market.Purchase(s.ctx, buyer, id, 10025))

		s.Equal(start+9300+100, s.balance(seller))
		s.Equal(agencyStart+500+25, s.balance(agencyWallet))
	})

	s.Run("payment below price plus flat fee is rejected", func() {
		id := s.approvedProperty()
		s.Require().NoError(s.market.ListForSale(s.ctx, seller, id, 10000))
		s.bank.Mint(buyer, 20000)

		err := s.market.Purchase(s.ctx, buyer, id, 10024)
		s.ErrorContains(err, "Insufficient payment including fees")
		s.True(dErrors.HasCode(err, dErrors.CodePayment))

		record, findErr := s.props.Find(s.ctx, id)
		s.Require().NoError(findErr)
		s.Equal(seller, record.Status.Owner)
		s.True(record.Status.ForSale)
	})
}

func (s *MarketSuite) TestPurchaseGuards() {
	id := s.approvedProperty()
	s.Require().NoError(s.market.ListForSale(s.ctx, seller, id, 1000))

	s.Run("owner cannot buy their own property", func() {
		err := s.market.Purchase(s.ctx, seller, id, 1000)
		s.ErrorContains(err, "Cannot buy your own property")
	})

	s.Run("unregistered buyer is rejected", func() {
		err := s.market.Purchase(s.ctx, "stranger", id, 1000)
		s.ErrorContains(err, "User not registered")
	})

	s.Run("unlisted property is not for sale", func() {
		other := s.approvedProperty()
		err := s.market.Purchase(s.ctx, buyer, other, 1000)
		s.ErrorContains(err, "Not for sale")
	})

	s.Run("missing property does not exist", func() {
		err := s.market.Purchase(s.ctx, buyer, 9999, 1000)
		s.ErrorContains(err, "Property does not exist")
	})

	s.Run("a broke buyer aborts with every record restored", func() {
		err := s.market.Purchase(s.ctx, buyer, id, 1000)
		s.True(dErrors.HasCode(err, dErrors.CodePayment))

		record, findErr := s.props.Find(s.ctx, id)
		s.Require().NoError(findErr)
		s.Equal(seller, record.Status.Owner)
		s.True(record.Status.ForSale)
		sellerIDs, listErr := s.props.ListByOwner(s.ctx, seller)
		s.Require().NoError(listErr)
		s.Contains(sellerIDs, id)
	})
}

func (s *MarketSuite) TestPurchaseMovesToken() {
	id := s.approvedProperty()
	s.Require().NoError(s.tokens.Mint(s.ctx, seller, id))
	s.Require().NoError(s.market.ListForSale(s.ctx, seller, id, 1000))
	s.bank.Mint(buyer, 1000)

	s.Run("token follows ownership", func() {
		s.NoError(s.market.Purchase(s.ctx, buyer, id, 1000))

		holder, err := s.tokens.HolderOf(s.ctx, id)
		s.Require().NoError(err)
		s.Equal(buyer, holder)
	})
}

func (s *MarketSuite) TestRent() {
	s.enableFees(500, 200, 100, 25)
	id := s.approvedProperty()
	s.Require().NoError(s.market.ListForRent(s.ctx, seller, id, 10000, 30*24*time.Hour))

	s.Run("tenant pays and occupies without taking ownership", func() {
		s.bank.Mint(tenant, 10025)
		s.NoError(s.market.Rent(s.ctx, tenant, id, 10025))

		record, err := s.props.Find(s.ctx, id)
		s.Require().NoError(err)
		s.Equal(seller, record.Status.Owner)
		s.True(record.Rental.Active)
		s.Equal(tenant, record.Rental.Tenant)
		s.Equal(s.clock.Now(), record.Rental.StartTime)

		s.Equal(domain.Amount(9300), s.balance(seller))
		s.Equal(domain.Amount(625), s.balance(agencyWallet))
		s.Equal(domain.Amount(200), s.balance(governmentWallet))
	})

	s.Run("a second tenant is rejected while the rental is active", func() {
		err := s.market.Rent(s.ctx, buyer, id, 10025)
		s.ErrorContains(err, "Property already rented")
	})

	s.Run("an unlisted property is not for rent", func() {
		other := s.approvedProperty()
		err := s.market.Rent(s.ctx, tenant, other, 10025)
		s.ErrorContains(err, "Not for rent")
	})

	s.Run("underpayment leaves the rental untouched", func() {
		vacant := s.approvedProperty()
		s.Require().NoError(s.market.ListForRent(s.ctx, seller, vacant, 10000, time.Hour))
		err := s.market.Rent(s.ctx, tenant, vacant, 10000)
		s.ErrorContains(err, "Insufficient payment including fees")

		record, findErr := s.props.Find(s.ctx, vacant)
		s.Require().NoError(findErr)
		s.False(record.Rental.Active)
	})
}

func (s *MarketSuite) TestEndRental() {
	id := s.approvedProperty()
	s.Require().NoError(s.market.ListForRent(s.ctx, seller, id, 100, 24*time.Hour))
	s.bank.Mint(tenant, 100)
	s.Require().NoError(s.market.Rent(s.ctx, tenant, id, 100))

	s.Run("a third party may not end the rental", func() {
		err := s.market.EndRental(s.ctx, buyer, id)
		s.ErrorContains(err, "Not authorized")
	})

	s.Run("ending before expiry is rejected", func() {
		s.clock.Advance(23 * time.Hour)
		err := s.market.EndRental(s.ctx, seller, id)
		s.ErrorContains(err, "Rental period not ended")
	})

	s.Run("owner ends the rental after expiry, keeping the trace", func() {
		s.clock.Advance(2 * time.Hour)
		s.NoError(s.market.EndRental(s.ctx, seller, id))

		record, err := s.props.Find(s.ctx, id)
		s.Require().NoError(err)
		s.False(record.Rental.Active)
		s.Equal(tenant, record.Rental.Tenant)
	})

	s.Run("ending twice finds no active rental", func() {
		err := s.market.EndRental(s.ctx, tenant, id)
		s.ErrorContains(err, "No active rental")
	})
}

func (s *MarketSuite) TestTenantEndsOwnRental() {
	id := s.approvedProperty()
	s.Require().NoError(s.market.ListForRent(s.ctx, seller, id, 100, time.Hour))
	s.bank.Mint(tenant, 100)
	s.Require().NoError(s.market.Rent(s.ctx, tenant, id, 100))
	s.clock.Advance(time.Hour)

	s.NoError(s.market.EndRental(s.ctx, tenant, id))
}

type failingPublisher struct{}

func (failingPublisher) Emit(context.Context, audit.Event) error {
	return errors.New("audit store unavailable")
}

func (s *MarketSuite) TestAuditOutageDoesNotFailCommittedCalls() {
	svc := NewService(s.props, s.tokens, s.feeEngine, s.access, s.bank, s.clock,
		failingPublisher{}, agencyWallet, governmentWallet)

	s.Run("sale reports success once funds and ownership moved", func() {
		id := s.approvedProperty()
		s.Require().NoError(svc.ListForSale(s.ctx, seller, id, 1000))
		s.bank.Mint(buyer, 1000)

		s.NoError(svc.Purchase(s.ctx, buyer, id, 1000))

		record, err := s.props.Find(s.ctx, id)
		s.Require().NoError(err)
		s.Equal(buyer, record.Status.Owner)
		s.Equal(domain.Amount(1000), s.balance(seller))
	})

	s.Run("rental reports success once funds moved", func() {
		id := s.approvedProperty()
		s.Require().NoError(svc.ListForRent(s.ctx, seller, id, 100, time.Hour))
		s.bank.Mint(tenant, 100)

		s.NoError(svc.Rent(s.ctx, tenant, id, 100))

		record, err := s.props.Find(s.ctx, id)
		s.Require().NoError(err)
		s.True(record.Rental.Active)
	})
}
