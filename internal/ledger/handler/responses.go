package handler

import (
	"time"

	auctionmodels "givekindly/internal/auction/models"
	donationmodels "givekindly/internal/donation/models"
	escrowmodels "givekindly/internal/escrow/models"
	idmodels "givekindly/internal/identity/models"
	"givekindly/internal/ledger/service"
	"givekindly/pkg/domain"
	"givekindly/pkg/platform/audit"
)

type ActorResponse struct {
	ID              domain.ActorID `json:"id"`
	Role            string         `json:"role"`
	Name            string         `json:"name"`
	ContactEmail    string         `json:"contact_email"`
	PhysicalAddress string         `json:"physical_address"`
	RegisteredAt    time.Time      `json:"registered_at"`
}

func toActorResponse(a *idmodels.Actor) *ActorResponse {
	return &ActorResponse{
		ID:              a.ID,
		Role:            a.Role.String(),
		Name:            a.Name,
		ContactEmail:    a.ContactEmail,
		PhysicalAddress: a.PhysicalAddress,
		RegisteredAt:    a.RegisteredAt,
	}
}

type DonationCreatedResponse struct {
	DonationID domain.DonationID `json:"donation_id"`
}

type DonationResponse struct {
	ID           domain.DonationID `json:"id"`
	DonorID      domain.ActorID    `json:"donor_id"`
	CharityID    domain.ActorID    `json:"charity_id"`
	Category     string            `json:"category"`
	CategoryCode int               `json:"category_code"`
	Description  string            `json:"description"`
	Status       string            `json:"status"`
	AssessorID   *domain.ActorID   `json:"assessor_id,omitempty"`
	SaleValue    domain.Amount     `json:"sale_value"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
}

func toDonationResponse(d *donationmodels.Donation) *DonationResponse {
	resp := &DonationResponse{
		ID:           d.ID,
		DonorID:      d.DonorID,
		CharityID:    d.CharityID,
		Category:     d.Category.String(),
		CategoryCode: int(d.Category),
		Description:  d.Description,
		Status:       string(d.Status),
		SaleValue:    d.SaleValue,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
	if !d.AssessorID.IsNil() {
		assessor := d.AssessorID
		resp.AssessorID = &assessor
	}
	return resp
}

type SaleValueResponse struct {
	DonationID domain.DonationID `json:"donation_id"`
	SaleValue  domain.Amount     `json:"sale_value"`
}

type AssessorDonationResponse struct {
	AssessorID domain.ActorID    `json:"assessor_id"`
	Index      uint64            `json:"index"`
	DonationID domain.DonationID `json:"donation_id"`
}

type AssessorDonationsResponse struct {
	AssessorID  domain.ActorID      `json:"assessor_id"`
	DonationIDs []domain.DonationID `json:"donation_ids"`
}

// AuctionResponse is the slot as clients see it. Item and bidder are absent
// while the slot is idle or before the first bid.
type AuctionResponse struct {
	State         string             `json:"state"`
	DonationID    *domain.DonationID `json:"donation_id,omitempty"`
	HighestBid    domain.Amount      `json:"highest_bid"`
	HighestBidder *domain.ActorID    `json:"highest_bidder,omitempty"`
	BidCount      int                `json:"bid_count"`
}

func toAuctionResponse(s *auctionmodels.Slot) *AuctionResponse {
	resp := &AuctionResponse{
		State:      string(s.State),
		HighestBid: s.HighestBid,
		BidCount:   s.BidCount,
	}
	if s.IsAuctioning() {
		id := s.DonationID
		resp.DonationID = &id
	}
	if s.HasBid() {
		bidder := s.HighestBidder
		resp.HighestBidder = &bidder
	}
	return resp
}

type SettlementResponse struct {
	DonationID domain.DonationID `json:"donation_id"`
	Status     string            `json:"status"`
	SaleValue  domain.Amount     `json:"sale_value"`
	Winner     *domain.ActorID   `json:"winner,omitempty"`
	CharityID  domain.ActorID    `json:"charity_id"`
}

func toSettlementResponse(s *service.Settlement) *SettlementResponse {
	resp := &SettlementResponse{
		DonationID: s.DonationID,
		Status:     string(s.Status),
		SaleValue:  s.SaleValue,
		CharityID:  s.CharityID,
	}
	if !s.Winner.IsNil() {
		winner := s.Winner
		resp.Winner = &winner
	}
	return resp
}

type BalanceResponse struct {
	ActorID domain.ActorID           `json:"actor_id"`
	Kind    escrowmodels.AccountKind `json:"kind"`
	Balance domain.Amount            `json:"balance"`
}

type WithdrawResponse struct {
	Kind   escrowmodels.AccountKind `json:"kind"`
	Amount domain.Amount            `json:"amount"`
}

type PayoutsResponse struct {
	ActorID domain.ActorID        `json:"actor_id"`
	Payouts []escrowmodels.Payout `json:"payouts"`
}

type StatsResponse struct {
	ActorsRegistered int    `json:"actors_registered"`
	DonationCount    uint64 `json:"donation_count"`
}

type AuditEventResponse struct {
	Action       string          `json:"action"`
	Category     string          `json:"category"`
	Timestamp    time.Time       `json:"timestamp"`
	ActorID      domain.ActorID  `json:"actor_id"`
	Subject      string          `json:"subject,omitempty"`
	Counterparty *domain.ActorID `json:"counterparty,omitempty"`
	Amount       domain.Amount   `json:"amount,omitempty"`
	Reason       string          `json:"reason,omitempty"`
	RequestID    string          `json:"request_id,omitempty"`
}

func toAuditResponses(events []audit.Event) []AuditEventResponse {
	out := make([]AuditEventResponse, 0, len(events))
	for _, e := range events {
		resp := AuditEventResponse{
			Action:    e.Action,
			Category:  string(e.Category),
			Timestamp: e.Timestamp,
			ActorID:   e.ActorID,
			Subject:   e.Subject,
			Amount:    e.Amount,
			Reason:    e.Reason,
			RequestID: e.RequestID,
		}
		if !e.Counterparty.IsNil() {
			cp := e.Counterparty
			resp.Counterparty = &cp
		}
		out = append(out, resp)
	}
	return out
}
