package e2e

import (
	"github.com/cucumber/godog"

	"givekindly/e2e/steps/common"
	"givekindly/e2e/steps/escrow"
	"givekindly/e2e/steps/ledger"
)

// RegisterSteps registers all step definitions from modular packages
func RegisterSteps(ctx *godog.ScenarioContext, tc *TestContext) {
	// Health checks and response assertions
	common.RegisterSteps(ctx, tc)

	// Registration, donations, assessment and auctions
	ledger.RegisterSteps(ctx, tc)

	// Balances, withdrawals and payouts
	escrow.RegisterSteps(ctx, tc)
}
