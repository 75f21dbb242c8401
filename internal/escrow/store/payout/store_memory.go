package payout

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"givekindly/internal/escrow"
	"givekindly/internal/escrow/models"
	"givekindly/pkg/domain"
	txcontext "givekindly/pkg/platform/tx"
)

var _ escrow.Disburser = (*RecordingDisburser)(nil)

// RecordingDisburser is an in-memory payout journal. It satisfies
// escrow.Disburser and forgets payouts whose transaction rolls back.
type RecordingDisburser struct {
	mu      sync.RWMutex
	payouts []models.Payout
}

func NewRecordingDisburser() *RecordingDisburser {
	return &RecordingDisburser{}
}

func (d *RecordingDisburser) Disburse(ctx context.Context, payout models.Payout) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if payout.ID == "" {
		payout.ID = uuid.NewString()
	}
	n := len(d.payouts)
	d.payouts = append(d.payouts, payout)
	txcontext.OnRollback(ctx, func() {
		d.mu.Lock()
		defer d.mu.Unlock()
		d.payouts = d.payouts[:n]
	})
	return nil
}

// ListByActor returns payouts to actor in disbursement order.
func (d *RecordingDisburser) ListByActor(_ context.Context, actor domain.ActorID) ([]models.Payout, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := []models.Payout{}
	for _, p := range d.payouts {
		if p.To == actor {
			out = append(out, p)
		}
	}
	return out, nil
}

// TotalPaid sums every payout to actor.
func (d *RecordingDisburser) TotalPaid(ctx context.Context, actor domain.ActorID) (domain.Amount, error) {
	payouts, err := d.ListByActor(ctx, actor)
	if err != nil {
		return 0, err
	}
	var total domain.Amount
	for _, p := range payouts {
		if total, err = total.Add(p.Amount); err != nil {
			return 0, err
		}
	}
	return total, nil
}
