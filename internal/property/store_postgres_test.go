//go:build integration

package property

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"landledger/pkg/domain"
	"landledger/pkg/platform/sentinel"
	"landledger/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite

	ctx   context.Context
	store *PostgresStore
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.ctx = context.Background()
	pg := containers.NewPostgresContainer(s.T())
	s.store = NewPostgresStore(pg.Pool)
	s.Require().NoError(s.store.EnsureSchema(s.ctx))
}

func (s *PostgresStoreSuite) record(id domain.PropertyID, owner domain.Address) Property {
	return Property{
		ID: id,
		Info: Info{
			Title:        "Plot A",
			Location:     "Westside",
			Size:         250,
			Bedrooms:     2,
			Bathrooms:    1,
			DocumentHash: "deed-a",
		},
		Status: Status{
			Registered:   true,
			Verification: domain.StatusPending,
			Owner:        owner,
		},
		Timestamps: Timestamps{
			RegisteredAt: time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC),
		},
	}
}

func (s *PostgresStoreSuite) TestAllocateID() {
	first, err := s.store.AllocateID(s.ctx)
	s.Require().NoError(err)
	second, err := s.store.AllocateID(s.ctx)
	s.Require().NoError(err)
	s.Equal(first+1, second)
}

func (s *PostgresStoreSuite) TestSaveAndFind() {
	id, err := s.store.AllocateID(s.ctx)
	s.Require().NoError(err)

	original := s.record(id, "owner-1")
	original.Rental = Rental{Tenant: "tenant-1", StartTime: time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC), Duration: 48 * time.Hour, Active: true}
	s.Require().NoError(s.store.Save(s.ctx, original))

	found, err := s.store.Find(s.ctx, id)
	s.Require().NoError(err)
	s.Equal(original.Info, found.Info)
	s.Equal(original.Status, found.Status)
	s.Equal(original.Rental, found.Rental)
	s.True(original.Timestamps.RegisteredAt.Equal(found.Timestamps.RegisteredAt))
	s.True(found.Timestamps.VerifiedAt.IsZero())

	s.Run("update is an upsert", func() {
		found.Status.Verification = domain.StatusApproved
		found.Status.Verifier = "gov"
		found.Timestamps.VerifiedAt = time.Date(2025, 6, 3, 0, 0, 0, 0, time.UTC)
		s.Require().NoError(s.store.Save(s.ctx, found))

		again, err := s.store.Find(s.ctx, id)
		s.Require().NoError(err)
		s.Equal(domain.StatusApproved, again.Status.Verification)
		s.True(found.Timestamps.VerifiedAt.Equal(again.Timestamps.VerifiedAt))
	})
}

func (s *PostgresStoreSuite) TestFindMissing() {
	_, err := s.store.Find(s.ctx, 99999)
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *PostgresStoreSuite) TestOwnerIndex() {
	id, err := s.store.AllocateID(s.ctx)
	s.Require().NoError(err)
	s.Require().NoError(s.store.Save(s.ctx, s.record(id, "owner-2")))

	ids, err := s.store.ListByOwner(s.ctx, "owner-2")
	s.Require().NoError(err)
	s.Contains(ids, id)

	s.Run("ownership follows the owner column", func() {
		record, err := s.store.Find(s.ctx, id)
		s.Require().NoError(err)
		record.Status.Owner = "owner-3"
		s.Require().NoError(s.store.Save(s.ctx, record))

		ids, err := s.store.ListByOwner(s.ctx, "owner-2")
		s.Require().NoError(err)
		s.NotContains(ids, id)
		ids, err = s.store.ListByOwner(s.ctx, "owner-3")
		s.Require().NoError(err)
		s.Contains(ids, id)
	})
}

func (s *PostgresStoreSuite) TestApprovedList() {
	id, err := s.store.AllocateID(s.ctx)
	s.Require().NoError(err)
	record := s.record(id, "owner-4")
	record.Status.Verification = domain.StatusApproved
	s.Require().NoError(s.store.Save(s.ctx, record))

	ids, err := s.store.ListApproved(s.ctx)
	s.Require().NoError(err)
	s.Contains(ids, id)
}

func (s *PostgresStoreSuite) TestViewersLog() {
	id, err := s.store.AllocateID(s.ctx)
	s.Require().NoError(err)
	s.Require().NoError(s.store.Save(s.ctx, s.record(id, "owner-5")))

	s.Require().NoError(s.store.AppendViewer(s.ctx, id, "viewer-1"))
	s.Require().NoError(s.store.AppendViewer(s.ctx, id, "viewer-1"))
	s.Require().NoError(s.store.AppendViewer(s.ctx, id, "viewer-2"))

	viewers, err := s.store.ListViewers(s.ctx, id)
	s.Require().NoError(err)
	s.Equal([]domain.Address{"viewer-1", "viewer-1", "viewer-2"}, viewers)
}
