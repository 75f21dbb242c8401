package balance

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/suite"

	"givekindly/internal/escrow/models"
	"givekindly/pkg/domain"
	dErrors "givekindly/pkg/domain-errors"
	txcontext "givekindly/pkg/platform/tx"
)

type BalanceStoreSuite struct {
	suite.Suite
	store *InMemory
	ctx   context.Context
}

func (s *BalanceStoreSuite) SetupTest() {
	s.store = NewInMemory()
	s.ctx = context.Background()
}

func TestBalanceStoreSuite(t *testing.T) {
	suite.Run(t, new(BalanceStoreSuite))
}

func (s *BalanceStoreSuite) TestCreditAndDrain() {
	holder := domain.NewActorID()

	s.Run("credits accumulate per ledger", func() {
		_, err := s.store.Credit(s.ctx, models.AccountBidder, holder, 10)
		s.Require().NoError(err)
		total, err := s.store.Credit(s.ctx, models.AccountBidder, holder, 30)
		s.Require().NoError(err)
		s.Equal(domain.Amount(40), total)

		charity, err := s.store.Balance(s.ctx, models.AccountCharity, holder)
		s.Require().NoError(err)
		s.True(charity.IsZero(), "ledgers are independent")
	})

	s.Run("drain returns balance and zeroes it", func() {
		got, err := s.store.Drain(s.ctx, models.AccountBidder, holder)
		s.Require().NoError(err)
		s.Equal(domain.Amount(40), got)

		again, err := s.store.Drain(s.ctx, models.AccountBidder, holder)
		s.Require().NoError(err)
		s.True(again.IsZero())
	})
}

func (s *BalanceStoreSuite) TestOverflowLeavesBalanceUntouched() {
	holder := domain.NewActorID()
	_, err := s.store.Credit(s.ctx, models.AccountCharity, holder, math.MaxUint64)
	s.Require().NoError(err)

	_, err = s.store.Credit(s.ctx, models.AccountCharity, holder, 1)
	s.Equal(dErrors.CodeInvariantViolation, dErrors.CodeOf(err))

	bal, err := s.store.Balance(s.ctx, models.AccountCharity, holder)
	s.Require().NoError(err)
	s.Equal(domain.Amount(math.MaxUint64), bal)
}

func (s *BalanceStoreSuite) TestRollbackRestoresDrainedBalance() {
	holder := domain.NewActorID()
	_, err := s.store.Credit(s.ctx, models.AccountCharity, holder, 50)
	s.Require().NoError(err)

	undo := &txcontext.UndoLog{}
	txCtx := txcontext.WithUndoLog(s.ctx, undo)
	drained, err := s.store.Drain(txCtx, models.AccountCharity, holder)
	s.Require().NoError(err)
	s.Equal(domain.Amount(50), drained)
	_, err = s.store.Credit(txCtx, models.AccountBidder, holder, 5)
	s.Require().NoError(err)

	undo.Rollback()

	bal, err := s.store.Balance(s.ctx, models.AccountCharity, holder)
	s.Require().NoError(err)
	s.Equal(domain.Amount(50), bal)
	total, err := s.store.Total(s.ctx, models.AccountBidder)
	s.Require().NoError(err)
	s.True(total.IsZero())
}
