package service

import (
	"context"

	"github.com/google/uuid"

	escrowmodels "givekindly/internal/escrow/models"
	idmodels "givekindly/internal/identity/models"
	"givekindly/pkg/domain"
	dErrors "givekindly/pkg/domain-errors"
	"givekindly/pkg/platform/audit"
	"givekindly/pkg/requestcontext"
)

// CharityWithdraw pays out the caller's entire charity balance.
func (s *Service) CharityWithdraw(ctx context.Context, caller domain.ActorID) (domain.Amount, error) {
	return s.withdraw(ctx, "charity_withdraw", caller, idmodels.RoleCharity, escrowmodels.AccountCharity, "sale proceeds")
}

// ReturnLosingBid pays out the caller's entire bidder balance.
func (s *Service) ReturnLosingBid(ctx context.Context, caller domain.ActorID) (domain.Amount, error) {
	return s.withdraw(ctx, "return_losing_bid", caller, idmodels.RoleBidder, escrowmodels.AccountBidder, "outbid refund")
}

// withdraw zeroes the balance and disburses it in one transaction. A failed
// disbursement rolls the balance back, so a credit is never paid twice or lost.
func (s *Service) withdraw(ctx context.Context, op string, caller domain.ActorID, role idmodels.Role, kind escrowmodels.AccountKind, reason string) (amount domain.Amount, err error) {
	ctx, done := s.observe(ctx, op, caller)
	defer done(&err)

	now := requestcontext.Now(ctx)
	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.requireRole(ctx, caller, role); err != nil {
			return err
		}
		drained, err := s.escrow.Drain(ctx, kind, caller)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to read escrow balance")
		}
		if drained.IsZero() {
			if s.strictWithdrawals {
				return dErrors.New(dErrors.CodeNothingToWithdraw, "escrow balance is zero")
			}
			amount = 0
			return nil
		}

		if err := s.emit(ctx, audit.EventFundsWithdrawn, audit.Event{
			ActorID: caller,
			Subject: actorSubject(caller),
			Amount:  drained,
			Reason:  string(kind),
		}); err != nil {
			return err
		}
		if err := s.payouts.Disburse(ctx, escrowmodels.Payout{
			ID:        uuid.NewString(),
			Kind:      kind,
			To:        caller,
			Amount:    drained,
			Reason:    reason,
			CreatedAt: now,
		}); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "disbursement failed")
		}
		amount = drained
		return nil
	})
	if err != nil {
		return 0, err
	}

	if !amount.IsZero() {
		if s.metrics != nil {
			s.metrics.EscrowWithdrawn.WithLabelValues(string(kind)).Add(float64(amount))
		}
		s.logger.InfoContext(ctx, "escrow withdrawn",
			"actor_id", caller,
			"kind", kind,
			"amount", amount,
			"request_id", requestcontext.RequestID(ctx),
		)
	}
	return amount, nil
}

// CharityBalanceOf is the withdrawable proceeds held for charity.
func (s *Service) CharityBalanceOf(ctx context.Context, charity domain.ActorID) (domain.Amount, error) {
	return s.balanceOf(ctx, escrowmodels.AccountCharity, charity)
}

// BidderBalanceOf is the withdrawable refund held for bidder.
func (s *Service) BidderBalanceOf(ctx context.Context, bidder domain.ActorID) (domain.Amount, error) {
	return s.balanceOf(ctx, escrowmodels.AccountBidder, bidder)
}

func (s *Service) balanceOf(ctx context.Context, kind escrowmodels.AccountKind, holder domain.ActorID) (domain.Amount, error) {
	var amount domain.Amount
	err := s.tx.View(ctx, func(ctx context.Context) error {
		var err error
		amount, err = s.escrow.Balance(ctx, kind, holder)
		return internal(err, "failed to read escrow balance")
	})
	return amount, err
}

// Payouts lists disbursements made to actor.
func (s *Service) Payouts(ctx context.Context, actor domain.ActorID) ([]escrowmodels.Payout, error) {
	var payouts []escrowmodels.Payout
	err := s.tx.View(ctx, func(ctx context.Context) error {
		var err error
		payouts, err = s.payouts.ListByActor(ctx, actor)
		return internal(err, "failed to list payouts")
	})
	return payouts, err
}
