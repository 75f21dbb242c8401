package models

import (
	"time"

	"givekindly/pkg/domain"
	dErrors "givekindly/pkg/domain-errors"
)

// State is the auction slot state.
type State string

const (
	StateIdle       State = "idle"
	StateAuctioning State = "auctioning"
)

// Slot is the single live auction. There is exactly one slot in the ledger.
//
// Invariants:
//   - Idle slots carry no donation, bid or bidder
//   - While auctioning, HighestBid is zero exactly when HighestBidder is nil
//   - HighestBid only increases within one auction
type Slot struct {
	State         State             `json:"state"`
	DonationID    domain.DonationID `json:"donation_id"`
	HighestBid    domain.Amount     `json:"highest_bid"`
	HighestBidder domain.ActorID    `json:"highest_bidder"`
	BidCount      int               `json:"bid_count"`
	StartedAt     time.Time         `json:"started_at"`
	UpdatedAt     time.Time         `json:"updated_at"`
}

// NewIdleSlot returns the initial slot.
func NewIdleSlot(now time.Time) *Slot {
	return &Slot{State: StateIdle, UpdatedAt: now}
}

func (s *Slot) IsAuctioning() bool {
	return s.State == StateAuctioning
}

// HasBid reports whether a bidder currently leads.
func (s *Slot) HasBid() bool {
	return !s.HighestBidder.IsNil()
}

// CanStart checks that no auction is running.
func (s *Slot) CanStart() error {
	if s.IsAuctioning() {
		return dErrors.New(dErrors.CodeSlotBusy, "another auction is in progress")
	}
	return nil
}

// ApplyStart opens an auction for donationID. Call CanStart first.
func (s *Slot) ApplyStart(donationID domain.DonationID, now time.Time) {
	*s = Slot{
		State:      StateAuctioning,
		DonationID: donationID,
		StartedAt:  now,
		UpdatedAt:  now,
	}
}

// CanBid checks amount strictly exceeds the current highest bid.
func (s *Slot) CanBid(amount domain.Amount) error {
	if !s.IsAuctioning() {
		return dErrors.New(dErrors.CodeNoActiveAuction, "no auction is in progress")
	}
	if amount <= s.HighestBid {
		return dErrors.New(dErrors.CodeBidTooLow, "bid must exceed the current highest bid")
	}
	return nil
}

// Outbid describes the lead a new bid displaced.
type Outbid struct {
	Bidder domain.ActorID
	Amount domain.Amount
}

// ApplyBid makes bidder the leader and returns the displaced lead, if any.
// Call CanBid first.
func (s *Slot) ApplyBid(bidder domain.ActorID, amount domain.Amount, now time.Time) (Outbid, bool) {
	prev := Outbid{Bidder: s.HighestBidder, Amount: s.HighestBid}
	hadLead := s.HasBid()
	s.HighestBidder = bidder
	s.HighestBid = amount
	s.BidCount++
	s.UpdatedAt = now
	return prev, hadLead
}

// CanEnd checks an auction is running.
func (s *Slot) CanEnd() error {
	if !s.IsAuctioning() {
		return dErrors.New(dErrors.CodeNoActiveAuction, "no auction is in progress")
	}
	return nil
}

// ApplyReset returns the slot to idle.
func (s *Slot) ApplyReset(now time.Time) {
	*s = Slot{State: StateIdle, UpdatedAt: now}
}
