// Package escrow holds value owed to charities and bidders until they
// withdraw it. Balances are pull-only: nothing is pushed to a holder.
package escrow

import (
	"context"

	"givekindly/internal/escrow/models"
)

// Disburser transfers a withdrawn balance out of the ledger. It runs inside
// the ledger transaction; an error aborts the withdrawal and restores the
// balance.
type Disburser interface {
	Disburse(ctx context.Context, payout models.Payout) error
}
