package ledger

import (
	"context"
	"fmt"
	"net/http"

	"github.com/cucumber/godog"
)

// TestContext interface defines the methods needed from the main test context
type TestContext interface {
	Do(ctx context.Context, method, path, alias string, body any) error
	Status() int
	Field(name string) (any, error)
	NumberField(name string) (uint64, error)
	ActorID(alias string) string
	SetDonation(alias string, id uint64)
	Donation(alias string) (uint64, error)
}

var registerPaths = map[string]string{
	"donor":      "/actors/donors",
	"charity":    "/actors/charities",
	"auctioneer": "/actors/auctioneers",
	"bidder":     "/actors/bidders",
}

var categoryCodes = map[string]int{
	"vehicle": 0,
	"boat":    1,
	"rv":      2,
	"other":   3,
}

// RegisterSteps registers the donation and auction lifecycle steps.
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &ledgerSteps{tc: tc}

	// Registry
	ctx.Step(`^"([^"]*)" registers as a (donor|charity|auctioneer|bidder)$`, steps.register)
	ctx.Step(`^"([^"]*)" is a registered (donor|charity|auctioneer|bidder)$`, steps.mustRegister)

	// Donations
	ctx.Step(`^"([^"]*)" donates a (vehicle|boat|rv|other) to "([^"]*)" as "([^"]*)"$`, steps.donate)
	ctx.Step(`^"([^"]*)" assigns "([^"]*)" to assess "([^"]*)"$`, steps.assignAssessor)
	ctx.Step(`^the sale value of "([^"]*)" should be (\d+)$`, steps.saleValueShouldBe)

	// Auction
	ctx.Step(`^"([^"]*)" puts "([^"]*)" up for auction$`, steps.auctionItem)
	ctx.Step(`^"([^"]*)" bids (\d+)$`, steps.bid)
	ctx.Step(`^"([^"]*)" ends the auction$`, steps.endAuction)
	ctx.Step(`^the auction should be "([^"]*)"$`, steps.auctionStateShouldBe)
}

type ledgerSteps struct {
	tc TestContext
}

func (s *ledgerSteps) register(ctx context.Context, alias, role string) error {
	body := map[string]any{
		"name":             alias,
		"contact_email":    alias + "@example.org",
		"physical_address": "1 Harbour Road",
	}
	return s.tc.Do(ctx, http.MethodPost, registerPaths[role], alias, body)
}

func (s *ledgerSteps) mustRegister(ctx context.Context, alias, role string) error {
	if err := s.register(ctx, alias, role); err != nil {
		return err
	}
	if got := s.tc.Status(); got != http.StatusCreated {
		return fmt.Errorf("registering %s as %s returned %d", alias, role, got)
	}
	return nil
}

func (s *ledgerSteps) donate(ctx context.Context, donor, category, charity, donationAlias string) error {
	body := map[string]any{
		"charity_id":  s.tc.ActorID(charity),
		"category":    categoryCodes[category],
		"description": donationAlias,
	}
	if err := s.tc.Do(ctx, http.MethodPost, "/donations", donor, body); err != nil {
		return err
	}
	if s.tc.Status() != http.StatusCreated {
		return nil
	}
	id, err := s.tc.NumberField("donation_id")
	if err != nil {
		return err
	}
	s.tc.SetDonation(donationAlias, id)
	return nil
}

func (s *ledgerSteps) assignAssessor(ctx context.Context, charity, assessor, donationAlias string) error {
	id, err := s.tc.Donation(donationAlias)
	if err != nil {
		return err
	}
	body := map[string]any{"assessor_id": s.tc.ActorID(assessor)}
	return s.tc.Do(ctx, http.MethodPost, fmt.Sprintf("/donations/%d/assessor", id), charity, body)
}

func (s *ledgerSteps) saleValueShouldBe(ctx context.Context, donationAlias string, want uint64) error {
	id, err := s.tc.Donation(donationAlias)
	if err != nil {
		return err
	}
	// Reads need an authenticated caller; any alias will do.
	if err := s.tc.Do(ctx, http.MethodGet, fmt.Sprintf("/donations/%d/sale-value", id), "observer", nil); err != nil {
		return err
	}
	got, err := s.tc.NumberField("sale_value")
	if err != nil {
		return err
	}
	if got != want {
		return fmt.Errorf("expected sale value %d, got %d", want, got)
	}
	return nil
}

func (s *ledgerSteps) auctionItem(ctx context.Context, assessor, donationAlias string) error {
	id, err := s.tc.Donation(donationAlias)
	if err != nil {
		return err
	}
	return s.tc.Do(ctx, http.MethodPost, "/auction", assessor, map[string]any{"donation_id": id})
}

func (s *ledgerSteps) bid(ctx context.Context, bidder string, amount uint64) error {
	return s.tc.Do(ctx, http.MethodPost, "/auction/bids", bidder, map[string]any{"amount": amount})
}

func (s *ledgerSteps) endAuction(ctx context.Context, assessor string) error {
	return s.tc.Do(ctx, http.MethodPost, "/auction/end", assessor, nil)
}

func (s *ledgerSteps) auctionStateShouldBe(ctx context.Context, want string) error {
	if err := s.tc.Do(ctx, http.MethodGet, "/auction", "observer", nil); err != nil {
		return err
	}
	if s.tc.Status() != http.StatusOK {
		return fmt.Errorf("reading auction returned %d", s.tc.Status())
	}
	got, err := s.tc.Field("state")
	if err != nil {
		return err
	}
	if got != want {
		return fmt.Errorf("expected auction %q, got %v", want, got)
	}
	return nil
}
