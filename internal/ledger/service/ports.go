package service

import (
	"context"

	"givekindly/internal/escrow"
	escrowmodels "givekindly/internal/escrow/models"
	"givekindly/pkg/domain"
	"givekindly/pkg/platform/audit"
)

//go:generate mockgen -source=ports.go -destination=mocks/mocks.go -package=mocks

// PayoutJournal disburses withdrawals and remembers them.
type PayoutJournal interface {
	escrow.Disburser
	ListByActor(ctx context.Context, actor domain.ActorID) ([]escrowmodels.Payout, error)
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
	List(ctx context.Context, actorID domain.ActorID) ([]audit.Event, error)
}
