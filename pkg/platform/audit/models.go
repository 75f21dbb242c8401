package audit

import (
	"context"
	"time"

	"givekindly/pkg/domain"
)

// EventCategory classifies audit events by their primary purpose.
// This enables different retention policies and routing downstream.
type EventCategory string

const (
	// CategoryFinancial covers events that move or earmark value. These are
	// the ledger's books of record and require long retention.
	CategoryFinancial EventCategory = "financial"

	// CategoryCompliance covers registry and custody changes: who holds which
	// role and who is entrusted with which item.
	CategoryCompliance EventCategory = "compliance"

	// CategoryOperations covers routine activity that can be sampled.
	CategoryOperations EventCategory = "operations"
)

// Event is emitted from the ledger for every committed mutation. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	Category  EventCategory
	Timestamp time.Time
	// ActorID is the caller that performed the operation.
	ActorID domain.ActorID
	Action  string
	// Subject names the entity acted on, e.g. "donation:4" or "actor:<uuid>".
	Subject string
	// Counterparty is the other identity involved (charity credited, bidder refunded).
	Counterparty domain.ActorID
	Amount       domain.Amount
	Reason       string
	RequestID    string
	ClientIP     string
	UserAgent    string
}

type AuditEvent string

const (
	// Registry events
	EventActorRegistered AuditEvent = "actor_registered"

	// Donation events
	EventDonationCreated  AuditEvent = "donation_created"
	EventAssessorAssigned AuditEvent = "assessor_assigned"

	// Auction events
	EventAuctionStarted AuditEvent = "auction_started"
	EventBidPlaced      AuditEvent = "bid_placed"
	EventBidOutbid      AuditEvent = "bid_outbid"
	EventAuctionSold    AuditEvent = "auction_sold"
	EventAuctionUnsold  AuditEvent = "auction_unsold"

	// Escrow events
	EventProceedsCredited AuditEvent = "proceeds_credited"
	EventFundsWithdrawn   AuditEvent = "funds_withdrawn"
)

// eventCategories maps each audit event to its category.
var eventCategories = map[AuditEvent]EventCategory{
	EventActorRegistered:  CategoryCompliance,
	EventDonationCreated:  CategoryCompliance,
	EventAssessorAssigned: CategoryCompliance,

	EventBidPlaced:        CategoryFinancial,
	EventBidOutbid:        CategoryFinancial,
	EventAuctionSold:      CategoryFinancial,
	EventProceedsCredited: CategoryFinancial,
	EventFundsWithdrawn:   CategoryFinancial,

	EventAuctionStarted: CategoryOperations,
	EventAuctionUnsold:  CategoryOperations,
}

// Category returns the EventCategory for this audit event.
// Unknown events default to CategoryOperations.
func (e AuditEvent) Category() EventCategory {
	if cat, ok := eventCategories[e]; ok {
		return cat
	}
	return CategoryOperations
}

// Store persists audit events. Implementations must honour a transaction
// bound to ctx so events commit or roll back with the ledger mutation.
type Store interface {
	Append(ctx context.Context, event Event) error
	ListByActor(ctx context.Context, actorID domain.ActorID) ([]Event, error)
}
