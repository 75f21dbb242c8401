package escrow

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/cucumber/godog"
)

// TestContext interface defines the methods needed from the main test context
type TestContext interface {
	Do(ctx context.Context, method, path, alias string, body any) error
	Status() int
	NumberField(name string) (uint64, error)
	ActorID(alias string) string
	Body() []byte
}

// RegisterSteps registers pull-payment steps.
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &escrowSteps{tc: tc}

	ctx.Step(`^"([^"]*)" withdraws (charity|bidder) funds$`, steps.withdraw)
	ctx.Step(`^the (charity|bidder) balance of "([^"]*)" should be (\d+)$`, steps.balanceShouldBe)
	ctx.Step(`^the withdrawn amount should be (\d+)$`, steps.withdrawnShouldBe)
	ctx.Step(`^"([^"]*)" should have (\d+) payouts?$`, steps.payoutCountShouldBe)
}

type escrowSteps struct {
	tc TestContext
}

func (s *escrowSteps) withdraw(ctx context.Context, alias, kind string) error {
	return s.tc.Do(ctx, http.MethodPost, "/escrow/"+kind+"/withdraw", alias, nil)
}

func (s *escrowSteps) balanceShouldBe(ctx context.Context, kind, alias string, want uint64) error {
	collection := "charities"
	if kind == "bidder" {
		collection = "bidders"
	}
	path := fmt.Sprintf("/escrow/%s/%s", collection, s.tc.ActorID(alias))
	if err := s.tc.Do(ctx, http.MethodGet, path, alias, nil); err != nil {
		return err
	}
	got, err := s.tc.NumberField("balance")
	if err != nil {
		return err
	}
	if got != want {
		return fmt.Errorf("expected %s balance %d for %s, got %d", kind, want, alias, got)
	}
	return nil
}

func (s *escrowSteps) withdrawnShouldBe(ctx context.Context, want uint64) error {
	got, err := s.tc.NumberField("amount")
	if err != nil {
		return err
	}
	if got != want {
		return fmt.Errorf("expected withdrawal of %d, got %d", want, got)
	}
	return nil
}

func (s *escrowSteps) payoutCountShouldBe(ctx context.Context, alias string, want int) error {
	path := "/escrow/payouts/" + s.tc.ActorID(alias)
	if err := s.tc.Do(ctx, http.MethodGet, path, alias, nil); err != nil {
		return err
	}
	var resp struct {
		Payouts []json.RawMessage `json:"payouts"`
	}
	if err := json.Unmarshal(s.tc.Body(), &resp); err != nil {
		return fmt.Errorf("decode payouts: %w", err)
	}
	if len(resp.Payouts) != want {
		return fmt.Errorf("expected %d payouts for %s, got %d", want, alias, len(resp.Payouts))
	}
	return nil
}
