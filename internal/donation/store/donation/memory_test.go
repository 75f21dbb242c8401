package donation

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"givekindly/internal/donation/models"
	"givekindly/pkg/domain"
	"givekindly/pkg/platform/sentinel"
	txcontext "givekindly/pkg/platform/tx"
)

type DonationStoreSuite struct {
	suite.Suite
	store *InMemory
	ctx   context.Context
}

func (s *DonationStoreSuite) SetupTest() {
	s.store = NewInMemory()
	s.ctx = context.Background()
}

func TestDonationStoreSuite(t *testing.T) {
	suite.Run(t, new(DonationStoreSuite))
}

func (s *DonationStoreSuite) newDonation(desc string) *models.Donation {
	d, err := models.NewDonation(domain.NewActorID(), domain.NewActorID(), models.CategoryVehicle, desc, time.Now())
	s.Require().NoError(err)
	return d
}

func (s *DonationStoreSuite) TestSequentialIDs() {
	first, err := s.store.Create(s.ctx, s.newDonation("ToyotaSupra"))
	s.Require().NoError(err)
	second, err := s.store.Create(s.ctx, s.newDonation("MinnieWinnie"))
	s.Require().NoError(err)

	s.Equal(domain.DonationID(0), first)
	s.Equal(domain.DonationID(1), second)

	n, err := s.store.Count(s.ctx)
	s.Require().NoError(err)
	s.Equal(uint64(2), n)

	_, err = s.store.FindByID(s.ctx, 2)
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *DonationStoreSuite) TestUpdateIsIsolatedFromCaller() {
	id, err := s.store.Create(s.ctx, s.newDonation("Canoe"))
	s.Require().NoError(err)

	d, err := s.store.FindByID(s.ctx, id)
	s.Require().NoError(err)
	d.ApplyAssignment(domain.NewActorID(), time.Now())

	stored, err := s.store.FindByID(s.ctx, id)
	s.Require().NoError(err)
	s.Equal(models.StatusDonated, stored.Status, "mutating a returned copy must not leak")

	s.Require().NoError(s.store.Update(s.ctx, d))
	stored, err = s.store.FindByID(s.ctx, id)
	s.Require().NoError(err)
	s.Equal(models.StatusAssigned, stored.Status)
}

func (s *DonationStoreSuite) TestRollback() {
	id, err := s.store.Create(s.ctx, s.newDonation("Canoe"))
	s.Require().NoError(err)

	undo := &txcontext.UndoLog{}
	txCtx := txcontext.WithUndoLog(s.ctx, undo)

	d, err := s.store.FindByID(txCtx, id)
	s.Require().NoError(err)
	d.ApplyAssignment(domain.NewActorID(), time.Now())
	s.Require().NoError(s.store.Update(txCtx, d))
	_, err = s.store.Create(txCtx, s.newDonation("Kayak"))
	s.Require().NoError(err)

	undo.Rollback()

	n, err := s.store.Count(s.ctx)
	s.Require().NoError(err)
	s.Equal(uint64(1), n)
	stored, err := s.store.FindByID(s.ctx, id)
	s.Require().NoError(err)
	s.Equal(models.StatusDonated, stored.Status)
}
