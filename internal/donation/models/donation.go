package models

import (
	"strings"
	"time"
	"unicode/utf8"

	"givekindly/pkg/domain"
	dErrors "givekindly/pkg/domain-errors"
)

// Category is the closed set of donatable item kinds.
type Category int

const (
	CategoryVehicle Category = iota
	CategoryBoat
	CategoryRV
	CategoryOther
)

func (c Category) IsValid() bool {
	return c >= CategoryVehicle && c <= CategoryOther
}

func (c Category) String() string {
	switch c {
	case CategoryVehicle:
		return "vehicle"
	case CategoryBoat:
		return "boat"
	case CategoryRV:
		return "rv"
	case CategoryOther:
		return "other"
	default:
		return "unknown"
	}
}

// Status is the donation lifecycle state.
type Status string

const (
	StatusDonated    Status = "donated"
	StatusAssigned   Status = "assigned"
	StatusAuctioning Status = "auctioning"
	StatusSold       Status = "sold"
	StatusUnsold     Status = "unsold"
)

// IsTerminal reports whether no further transition is possible.
func (s Status) IsTerminal() bool {
	return s == StatusSold || s == StatusUnsold
}

const maxDescriptionLength = 1024

// Donation is an item pledged by a donor to a charity.
//
// Invariants:
//   - Status moves Donated -> Assigned -> Auctioning -> {Sold, Unsold} only
//   - AssessorID is set exactly when Status is past Donated
//   - SaleValue is non-zero only when Status is Sold
//   - Sold and Unsold records are never modified again
type Donation struct {
	ID          domain.DonationID `json:"id"`
	DonorID     domain.ActorID    `json:"donor_id"`
	CharityID   domain.ActorID    `json:"charity_id"`
	Category    Category          `json:"category"`
	Description string            `json:"description"`
	Status      Status            `json:"status"`
	AssessorID  domain.ActorID    `json:"assessor_id"`
	SaleValue   domain.Amount     `json:"sale_value"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

// NewDonation builds a donation in the Donated state. The ID is assigned by the store.
func NewDonation(donor, charity domain.ActorID, category Category, description string, now time.Time) (*Donation, error) {
	if !category.IsValid() {
		return nil, dErrors.New(dErrors.CodeValidation, "unknown item category")
	}
	description = strings.TrimSpace(description)
	if description == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "description is required")
	}
	if utf8.RuneCountInString(description) > maxDescriptionLength {
		return nil, dErrors.New(dErrors.CodeValidation, "description must be 1024 characters or less")
	}
	return &Donation{
		DonorID:     donor,
		CharityID:   charity,
		Category:    category,
		Description: description,
		Status:      StatusDonated,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// IsOwnedBy reports whether charity is the donation's nominated charity.
func (d *Donation) IsOwnedBy(charity domain.ActorID) bool {
	return d.CharityID == charity
}

// IsAssessedBy reports whether assessor is the donation's assigned assessor.
func (d *Donation) IsAssessedBy(assessor domain.ActorID) bool {
	return !d.AssessorID.IsNil() && d.AssessorID == assessor
}

// CanAssign checks the donation still awaits an assessor.
func (d *Donation) CanAssign() error {
	if d.Status != StatusDonated {
		return dErrors.New(dErrors.CodeAlreadyAssigned, "donation already has an assessor")
	}
	return nil
}

// ApplyAssignment records assessor. Call CanAssign first.
func (d *Donation) ApplyAssignment(assessor domain.ActorID, now time.Time) {
	d.AssessorID = assessor
	d.Status = StatusAssigned
	d.UpdatedAt = now
}

// CanStartAuction checks the donation is ready to be auctioned.
func (d *Donation) CanStartAuction() error {
	if d.Status != StatusAssigned {
		return dErrors.New(dErrors.CodeWrongDonationState, "donation is not awaiting auction")
	}
	return nil
}

// ApplyAuctionStart moves the donation into the auction. Call CanStartAuction first.
func (d *Donation) ApplyAuctionStart(now time.Time) {
	d.Status = StatusAuctioning
	d.UpdatedAt = now
}

// CanSettle checks the donation is the one being auctioned.
func (d *Donation) CanSettle() error {
	if d.Status != StatusAuctioning {
		return dErrors.New(dErrors.CodeWrongDonationState, "donation is not being auctioned")
	}
	return nil
}

// ApplySettlement closes the auction. A zero price leaves the item Unsold.
// Call CanSettle first.
func (d *Donation) ApplySettlement(price domain.Amount, now time.Time) {
	if price.IsZero() {
		d.Status = StatusUnsold
	} else {
		d.Status = StatusSold
		d.SaleValue = price
	}
	d.UpdatedAt = now
}
