package service

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel/attribute"

	donationmodels "givekindly/internal/donation/models"
	idmodels "givekindly/internal/identity/models"
	"givekindly/pkg/domain"
	dErrors "givekindly/pkg/domain-errors"
	"givekindly/pkg/platform/audit"
	"givekindly/pkg/platform/sentinel"
	"givekindly/pkg/requestcontext"
)

// Donate records an item pledged by caller to charityID and returns its ID.
// IDs are dense and start at zero.
func (s *Service) Donate(ctx context.Context, caller, charityID domain.ActorID, category donationmodels.Category, description string) (id domain.DonationID, err error) {
	ctx, done := s.observe(ctx, "donate", caller, attribute.String("ledger.charity", charityID.String()))
	defer done(&err)

	now := requestcontext.Now(ctx)
	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.requireRole(ctx, caller, idmodels.RoleDonor); err != nil {
			return err
		}
		role, err := s.actors.RoleOf(ctx, charityID)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to resolve charity")
		}
		if role != idmodels.RoleCharity {
			return dErrors.New(dErrors.CodeUnknownCharity, "charity is not registered")
		}

		donation, err := donationmodels.NewDonation(caller, charityID, category, description, now)
		if err != nil {
			return err
		}
		id, err = s.donations.Create(ctx, donation)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to record donation")
		}
		return s.emit(ctx, audit.EventDonationCreated, audit.Event{
			ActorID:      caller,
			Subject:      donationSubject(id),
			Counterparty: charityID,
			Reason:       category.String(),
		})
	})
	if err != nil {
		return 0, err
	}

	if s.metrics != nil {
		s.metrics.DonationsCreated.Inc()
	}
	s.logger.InfoContext(ctx, "donation recorded",
		"donation_id", id,
		"donor_id", caller,
		"charity_id", charityID,
		"request_id", requestcontext.RequestID(ctx),
	)
	return id, nil
}

// AssignAssessor lets the donation's charity entrust it to an auctioneer.
// The donation is appended to the assessor's assignment list.
func (s *Service) AssignAssessor(ctx context.Context, caller domain.ActorID, donationID domain.DonationID, assessorID domain.ActorID) (err error) {
	ctx, done := s.observe(ctx, "assign_assessor", caller,
		attribute.Int64("ledger.donation_id", int64(donationID)),
		attribute.String("ledger.assessor", assessorID.String()))
	defer done(&err)

	now := requestcontext.Now(ctx)
	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.requireRole(ctx, caller, idmodels.RoleCharity); err != nil {
			return err
		}
		donation, err := s.loadDonation(ctx, donationID)
		if err != nil {
			return err
		}
		if !donation.IsOwnedBy(caller) {
			return dErrors.New(dErrors.CodeNotOwner, "donation belongs to another charity")
		}
		if err := donation.CanAssign(); err != nil {
			return err
		}
		role, err := s.actors.RoleOf(ctx, assessorID)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to resolve assessor")
		}
		if role != idmodels.RoleAuctioneer {
			return dErrors.New(dErrors.CodeUnknownAssessor, "assessor is not a registered auctioneer")
		}

		donation.ApplyAssignment(assessorID, now)
		if err := s.donations.Update(ctx, donation); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to update donation")
		}
		if err := s.assignments.Append(ctx, assessorID, donationID); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to record assignment")
		}
		return s.emit(ctx, audit.EventAssessorAssigned, audit.Event{
			ActorID:      caller,
			Subject:      donationSubject(donationID),
			Counterparty: assessorID,
		})
	})
	if err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "assessor assigned",
		"donation_id", donationID,
		"assessor_id", assessorID,
		"request_id", requestcontext.RequestID(ctx),
	)
	return nil
}

// DonationCount is the number of successful donations.
func (s *Service) DonationCount(ctx context.Context) (uint64, error) {
	var n uint64
	err := s.tx.View(ctx, func(ctx context.Context) error {
		var err error
		n, err = s.donations.Count(ctx)
		return internal(err, "failed to count donations")
	})
	return n, err
}

// Donation returns the full donation record.
func (s *Service) Donation(ctx context.Context, id domain.DonationID) (*donationmodels.Donation, error) {
	var d *donationmodels.Donation
	err := s.tx.View(ctx, func(ctx context.Context) error {
		var err error
		d, err = s.loadDonation(ctx, id)
		return err
	})
	return d, err
}

// SaleValueOf is the winning bid of a sold donation and zero otherwise.
func (s *Service) SaleValueOf(ctx context.Context, id domain.DonationID) (domain.Amount, error) {
	d, err := s.Donation(ctx, id)
	if err != nil {
		return 0, err
	}
	return d.SaleValue, nil
}

// AssessorDonationAt returns the index-th donation assigned to assessor.
func (s *Service) AssessorDonationAt(ctx context.Context, assessor domain.ActorID, index uint64) (domain.DonationID, error) {
	var id domain.DonationID
	err := s.tx.View(ctx, func(ctx context.Context) error {
		var err error
		id, err = s.assignments.At(ctx, assessor, index)
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, fmt.Sprintf("assessor has no assignment at index %d", index))
		}
		return internal(err, "failed to read assignment")
	})
	return id, err
}

// AssessorDonations returns every donation assigned to assessor, oldest first.
func (s *Service) AssessorDonations(ctx context.Context, assessor domain.ActorID) ([]domain.DonationID, error) {
	var ids []domain.DonationID
	err := s.tx.View(ctx, func(ctx context.Context) error {
		var err error
		ids, err = s.assignments.List(ctx, assessor)
		return internal(err, "failed to list assignments")
	})
	return ids, err
}
