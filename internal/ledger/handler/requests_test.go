package handler

import (
	"testing"

	"github.com/stretchr/testify/suite"

	donationmodels "givekindly/internal/donation/models"
	"givekindly/pkg/domain"
	dErrors "givekindly/pkg/domain-errors"
)

type RequestValidationSuite struct {
	suite.Suite
}

func TestRequestValidationSuite(t *testing.T) {
	suite.Run(t, new(RequestValidationSuite))
}

func (s *RequestValidationSuite) TestRegisterRequest() {
	s.Run("trims every field", func() {
		req := &RegisterRequest{Name: "  Ada ", ContactEmail: " ada@example.org ", PhysicalAddress: " 1 Main St "}
		s.Require().NoError(req.Validate())
		s.Equal("Ada", req.Name)
		s.Equal("ada@example.org", req.Profile().ContactEmail)
	})

	s.Run("contact email must be an address", func() {
		req := &RegisterRequest{Name: "Ada", ContactEmail: "ada at example", PhysicalAddress: "1 Main St"}
		err := req.Validate()
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("email domain is lowercased", func() {
		req := &RegisterRequest{Name: "Ada", ContactEmail: "ada@Example.ORG", PhysicalAddress: "1 Main St"}
		s.Require().NoError(req.Validate())
		s.Equal("ada@example.org", req.ContactEmail)
	})

	s.Run("whitespace-only address is missing", func() {
		req := &RegisterRequest{Name: "Ada", ContactEmail: "ada@example.org", PhysicalAddress: "   "}
		err := req.Validate()
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})
}

func (s *RequestValidationSuite) TestDonateRequest() {
	vehicle := donationmodels.CategoryVehicle

	s.Run("vehicle category is present even though it is zero", func() {
		req := &DonateRequest{CharityID: domain.NewActorID(), Category: &vehicle, Description: " Supra "}
		s.Require().NoError(req.Validate())
		s.Equal("Supra", req.Description)
	})

	s.Run("charity is required", func() {
		req := &DonateRequest{Category: &vehicle, Description: "Supra"}
		s.True(dErrors.HasCode(req.Validate(), dErrors.CodeValidation))
	})
}

func (s *RequestValidationSuite) TestAuctionItemRequest() {
	s.True(dErrors.HasCode((&AuctionItemRequest{}).Validate(), dErrors.CodeValidation))
	zero := domain.DonationID(0)
	s.NoError((&AuctionItemRequest{DonationID: &zero}).Validate())
}
