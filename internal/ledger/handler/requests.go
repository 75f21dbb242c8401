package handler

import (
	"strings"

	donationmodels "givekindly/internal/donation/models"
	idmodels "givekindly/internal/identity/models"
	"givekindly/pkg/domain"
	dErrors "givekindly/pkg/domain-errors"
	"givekindly/pkg/email"
)

// RegisterRequest carries the profile an identity registers with.
type RegisterRequest struct {
	Name            string `json:"name"`
	ContactEmail    string `json:"contact_email"`
	PhysicalAddress string `json:"physical_address"`
}

// Validate trims the profile and requires every field.
func (r *RegisterRequest) Validate() error {
	r.Name = strings.TrimSpace(r.Name)
	r.ContactEmail = strings.TrimSpace(r.ContactEmail)
	r.PhysicalAddress = strings.TrimSpace(r.PhysicalAddress)
	switch {
	case r.Name == "":
		return dErrors.New(dErrors.CodeValidation, "name is required")
	case r.ContactEmail == "":
		return dErrors.New(dErrors.CodeValidation, "contact_email is required")
	case r.PhysicalAddress == "":
		return dErrors.New(dErrors.CodeValidation, "physical_address is required")
	}
	normalized, ok := email.Normalize(r.ContactEmail)
	if !ok {
		return dErrors.New(dErrors.CodeValidation, "contact_email is not a valid address")
	}
	r.ContactEmail = normalized
	return nil
}

func (r *RegisterRequest) Profile() idmodels.Profile {
	return idmodels.Profile{
		Name:            r.Name,
		ContactEmail:    r.ContactEmail,
		PhysicalAddress: r.PhysicalAddress,
	}
}

// DonateRequest pledges an item to a charity. Category is required because
// its zero value is a real category.
type DonateRequest struct {
	CharityID   domain.ActorID           `json:"charity_id"`
	Category    *donationmodels.Category `json:"category"`
	Description string                   `json:"description"`
}

func (r *DonateRequest) Validate() error {
	if r.CharityID.IsNil() {
		return dErrors.New(dErrors.CodeValidation, "charity_id is required")
	}
	if r.Category == nil {
		return dErrors.New(dErrors.CodeValidation, "category is required")
	}
	r.Description = strings.TrimSpace(r.Description)
	return nil
}

type AssignAssessorRequest struct {
	AssessorID domain.ActorID `json:"assessor_id"`
}

func (r *AssignAssessorRequest) Validate() error {
	if r.AssessorID.IsNil() {
		return dErrors.New(dErrors.CodeValidation, "assessor_id is required")
	}
	return nil
}

type AuctionItemRequest struct {
	DonationID *domain.DonationID `json:"donation_id"`
}

func (r *AuctionItemRequest) Validate() error {
	if r.DonationID == nil {
		return dErrors.New(dErrors.CodeValidation, "donation_id is required")
	}
	return nil
}

// BidRequest places a bid. A zero amount is left to the ledger, which
// rejects it as too low.
type BidRequest struct {
	Amount domain.Amount `json:"amount"`
}
