package token

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"landledger/internal/audit"
	"landledger/internal/ledger"
	"landledger/internal/property"
	"landledger/pkg/domain"
	dErrors "landledger/pkg/domain-errors"
)

const (
	holder   domain.Address = "holder"
	intruder domain.Address = "intruder"
)

type TokenSuite struct {
	suite.Suite

	ctx      context.Context
	clock    *ledger.ManualClock
	props    *property.InMemoryStore
	service  *Service
	auditLog *audit.InMemoryStore
}

func TestTokenSuite(t *testing.T) {
	suite.Run(t, new(TokenSuite))
}

func (s *TokenSuite) SetupTest() {
	s.ctx = context.Background()
	s.clock = ledger.NewManualClock(time.Date(2025, 6, 1, 11, 0, 0, 0, time.UTC))
	s.props = property.NewInMemoryStore()
	s.auditLog = audit.NewInMemoryStore()
	s.service = NewService(NewInMemoryStore(), s.props, audit.NewPublisher(s.auditLog), s.clock)
}

func (s *TokenSuite) seedProperty(status domain.VerificationStatus) domain.PropertyID {
	id, err := s.props.AllocateID(s.ctx)
	s.Require().NoError(err)
	s.Require().NoError(s.props.Save(s.ctx, property.Property{
		ID: id,
		Info: property.Info{
			Title:        "Unit 4",
			Size:         120,
			DocumentHash: "deed",
		},
		Status: property.Status{
			Registered:   true,
			Verification: status,
			Owner:        holder,
		},
	}))
	return id
}

func (s *TokenSuite) TestMint() {
	s.Run("owner mints a token for an approved property", func() {
		id := s.seedProperty(domain.StatusApproved)
		s.NoError(s.service.Mint(s.ctx, holder, id))

		got, err := s.service.HolderOf(s.ctx, id)
		s.Require().NoError(err)
		s.Equal(holder, got)

		record, err := s.props.Find(s.ctx, id)
		s.Require().NoError(err)
		s.True(record.Status.Tokenized)
		s.Equal(s.clock.Now(), record.Timestamps.MintedAt)
	})

	s.Run("unverified property cannot be tokenized", func() {
		id := s.seedProperty(domain.StatusPending)
		err := s.service.Mint(s.ctx, holder, id)
		s.EqualError(err, "Property not approved")
	})

	s.Run("second mint is rejected", func() {
		id := s.seedProperty(domain.StatusApproved)
		s.Require().NoError(s.service.Mint(s.ctx, holder, id))

		err := s.service.Mint(s.ctx, holder, id)
		s.EqualError(err, "Token already minted")
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidState))
	})

	s.Run("non-owner is rejected", func() {
		id := s.seedProperty(domain.StatusApproved)
		s.EqualError(s.service.Mint(s.ctx, intruder, id), "Not the owner")
	})

	s.Run("actively rented property is rejected", func() {
		id := s.seedProperty(domain.StatusApproved)
		record, err := s.props.Find(s.ctx, id)
		s.Require().NoError(err)
		record.Status.ForRent = true
		record.Rental = property.Rental{Tenant: "tenant", Active: true, Duration: time.Hour}
		s.Require().NoError(s.props.Save(s.ctx, record))

		s.EqualError(s.service.Mint(s.ctx, holder, id), "Property is currently rented")
	})

	s.Run("missing property does not exist", func() {
		s.EqualError(s.service.Mint(s.ctx, holder, 999), "Property does not exist")
	})
}

func (s *TokenSuite) TestTransfer() {
	id := s.seedProperty(domain.StatusApproved)
	s.Require().NoError(s.service.Mint(s.ctx, holder, id))

	s.Run("transfer reassigns the holder", func() {
		s.NoError(s.service.Transfer(s.ctx, id, holder, intruder))

		got, err := s.service.HolderOf(s.ctx, id)
		s.Require().NoError(err)
		s.Equal(intruder, got)
	})

	s.Run("stale from-holder trips the invariant", func() {
		err := s.service.Transfer(s.ctx, id, holder, "other")
		s.EqualError(err, "Token holder mismatch")
		s.True(dErrors.HasCode(err, dErrors.CodeInvariantViolation))
	})

	s.Run("untokenized property has no holder", func() {
		bare := s.seedProperty(domain.StatusApproved)
		_, err := s.service.HolderOf(s.ctx, bare)
		s.EqualError(err, "Token does not exist")
	})
}
