package service

import (
	"context"

	"go.opentelemetry.io/otel/attribute"

	auctionmodels "givekindly/internal/auction/models"
	donationmodels "givekindly/internal/donation/models"
	escrowmodels "givekindly/internal/escrow/models"
	idmodels "givekindly/internal/identity/models"
	"givekindly/pkg/domain"
	dErrors "givekindly/pkg/domain-errors"
	"givekindly/pkg/platform/audit"
	"givekindly/pkg/requestcontext"
)

// Settlement is the outcome of ending an auction.
type Settlement struct {
	DonationID domain.DonationID
	Status     donationmodels.Status
	SaleValue  domain.Amount
	Winner     domain.ActorID
	CharityID  domain.ActorID
}

// AuctionItem opens the auction slot for a donation assigned to caller.
func (s *Service) AuctionItem(ctx context.Context, caller domain.ActorID, donationID domain.DonationID) (err error) {
	ctx, done := s.observe(ctx, "auction_item", caller, attribute.Int64("ledger.donation_id", int64(donationID)))
	defer done(&err)

	now := requestcontext.Now(ctx)
	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.requireRole(ctx, caller, idmodels.RoleAuctioneer); err != nil {
			return err
		}
		donation, err := s.loadDonation(ctx, donationID)
		if err != nil {
			return err
		}
		if !donation.IsAssessedBy(caller) {
			return dErrors.New(dErrors.CodeNotAssignedAssessor, "caller is not the donation's assessor")
		}
		if err := donation.CanStartAuction(); err != nil {
			return err
		}
		slot, err := s.loadSlot(ctx)
		if err != nil {
			return err
		}
		if err := slot.CanStart(); err != nil {
			return err
		}

		slot.ApplyStart(donationID, now)
		donation.ApplyAuctionStart(now)
		if err := s.slot.Save(ctx, slot); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to open auction")
		}
		if err := s.donations.Update(ctx, donation); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to update donation")
		}
		return s.emit(ctx, audit.EventAuctionStarted, audit.Event{
			ActorID:      caller,
			Subject:      donationSubject(donationID),
			Counterparty: donation.CharityID,
		})
	})
	if err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "auction started",
		"donation_id", donationID,
		"assessor_id", caller,
		"request_id", requestcontext.RequestID(ctx),
	)
	return nil
}

// NewBid places a bid of amount for caller. The displaced leader, if any, is
// credited their previous bid in bidder escrow. The new leader's funds stay
// locked in the slot until they are outbid or the auction settles.
func (s *Service) NewBid(ctx context.Context, caller domain.ActorID, amount domain.Amount) (err error) {
	ctx, done := s.observe(ctx, "new_bid", caller, attribute.String("ledger.amount", amount.String()))
	defer done(&err)

	now := requestcontext.Now(ctx)
	var (
		outbid  auctionmodels.Outbid
		hadLead bool
	)
	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.requireRole(ctx, caller, idmodels.RoleBidder); err != nil {
			return err
		}
		slot, err := s.loadSlot(ctx)
		if err != nil {
			return err
		}
		if err := slot.CanBid(amount); err != nil {
			return err
		}

		outbid, hadLead = slot.ApplyBid(caller, amount, now)
		if hadLead {
			if _, err := s.escrow.Credit(ctx, escrowmodels.AccountBidder, outbid.Bidder, outbid.Amount); err != nil {
				return internal(err, "failed to refund outbid bidder")
			}
		}
		if err := s.slot.Save(ctx, slot); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to record bid")
		}

		subject := donationSubject(slot.DonationID)
		if hadLead {
			if err := s.emit(ctx, audit.EventBidOutbid, audit.Event{
				ActorID:      caller,
				Subject:      subject,
				Counterparty: outbid.Bidder,
				Amount:       outbid.Amount,
			}); err != nil {
				return err
			}
		}
		return s.emit(ctx, audit.EventBidPlaced, audit.Event{
			ActorID: caller,
			Subject: subject,
			Amount:  amount,
		})
	})
	if err != nil {
		return err
	}

	if s.metrics != nil {
		s.metrics.BidsAccepted.Inc()
		if hadLead {
			s.metrics.EscrowCredited.WithLabelValues(string(escrowmodels.AccountBidder)).Add(float64(outbid.Amount))
		}
	}
	s.logger.InfoContext(ctx, "bid accepted",
		"bidder_id", caller,
		"amount", amount,
		"request_id", requestcontext.RequestID(ctx),
	)
	return nil
}

// EndAuction settles the running auction. A positive highest bid sells the
// item and credits the charity; otherwise the item is unsold. The slot is
// idle afterwards either way.
func (s *Service) EndAuction(ctx context.Context, caller domain.ActorID) (settlement *Settlement, err error) {
	ctx, done := s.observe(ctx, "end_auction", caller)
	defer done(&err)

	now := requestcontext.Now(ctx)
	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		slot, err := s.loadSlot(ctx)
		if err != nil {
			return err
		}
		if err := slot.CanEnd(); err != nil {
			return err
		}
		donation, err := s.loadDonation(ctx, slot.DonationID)
		if err != nil {
			return err
		}
		if !donation.IsAssessedBy(caller) {
			return dErrors.New(dErrors.CodeNotAssignedAssessor, "caller is not the auction's assessor")
		}
		if err := donation.CanSettle(); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInvariantViolation, "auction slot and donation disagree")
		}

		price, winner := slot.HighestBid, slot.HighestBidder
		donation.ApplySettlement(price, now)
		slot.ApplyReset(now)

		if !price.IsZero() {
			if _, err := s.escrow.Credit(ctx, escrowmodels.AccountCharity, donation.CharityID, price); err != nil {
				return internal(err, "failed to credit charity")
			}
		}
		if err := s.donations.Update(ctx, donation); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to update donation")
		}
		if err := s.slot.Save(ctx, slot); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to reset auction slot")
		}

		settlement = &Settlement{
			DonationID: donation.ID,
			Status:     donation.Status,
			SaleValue:  donation.SaleValue,
			Winner:     winner,
			CharityID:  donation.CharityID,
		}
		subject := donationSubject(donation.ID)
		if price.IsZero() {
			return s.emit(ctx, audit.EventAuctionUnsold, audit.Event{ActorID: caller, Subject: subject})
		}
		if err := s.emit(ctx, audit.EventAuctionSold, audit.Event{
			ActorID:      caller,
			Subject:      subject,
			Counterparty: winner,
			Amount:       price,
		}); err != nil {
			return err
		}
		return s.emit(ctx, audit.EventProceedsCredited, audit.Event{
			ActorID:      caller,
			Subject:      subject,
			Counterparty: donation.CharityID,
			Amount:       price,
		})
	})
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.AuctionsSettled.WithLabelValues(string(settlement.Status)).Inc()
		if !settlement.SaleValue.IsZero() {
			s.metrics.EscrowCredited.WithLabelValues(string(escrowmodels.AccountCharity)).Add(float64(settlement.SaleValue))
		}
	}
	s.logger.InfoContext(ctx, "auction settled",
		"donation_id", settlement.DonationID,
		"status", settlement.Status,
		"sale_value", settlement.SaleValue,
		"request_id", requestcontext.RequestID(ctx),
	)
	return settlement, nil
}

// AuctionSnapshot returns a copy of the auction slot.
func (s *Service) AuctionSnapshot(ctx context.Context) (*auctionmodels.Slot, error) {
	var slot *auctionmodels.Slot
	err := s.tx.View(ctx, func(ctx context.Context) error {
		var err error
		slot, err = s.loadSlot(ctx)
		return err
	})
	return slot, err
}

// ItemBeingAuctioned returns the donation in the slot; ok is false when idle.
func (s *Service) ItemBeingAuctioned(ctx context.Context) (id domain.DonationID, ok bool, err error) {
	slot, err := s.AuctionSnapshot(ctx)
	if err != nil {
		return 0, false, err
	}
	return slot.DonationID, slot.IsAuctioning(), nil
}

// HighestBid is the leading bid of the running auction, zero when idle.
func (s *Service) HighestBid(ctx context.Context) (domain.Amount, error) {
	slot, err := s.AuctionSnapshot(ctx)
	if err != nil {
		return 0, err
	}
	return slot.HighestBid, nil
}
