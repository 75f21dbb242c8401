package models

import (
	"time"

	"givekindly/pkg/domain"
)

// AccountKind separates the two escrow ledgers.
type AccountKind string

const (
	// AccountCharity holds settled sale proceeds owed to a charity.
	AccountCharity AccountKind = "charity"
	// AccountBidder holds refundable bids owed to outbid bidders.
	AccountBidder AccountKind = "bidder"
)

// Payout is one disbursement of a withdrawn balance.
type Payout struct {
	ID        string         `json:"id"`
	Kind      AccountKind    `json:"kind"`
	To        domain.ActorID `json:"to"`
	Amount    domain.Amount  `json:"amount"`
	Reason    string         `json:"reason"`
	CreatedAt time.Time      `json:"created_at"`
}
