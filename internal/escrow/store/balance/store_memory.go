package balance

import (
	"context"
	"sync"

	"givekindly/internal/escrow/models"
	"givekindly/pkg/domain"
	txcontext "givekindly/pkg/platform/tx"
)

type key struct {
	kind   models.AccountKind
	holder domain.ActorID
}

// InMemory tracks escrow balances. Missing entries read as zero.
type InMemory struct {
	mu       sync.RWMutex
	balances map[key]domain.Amount
}

func NewInMemory() *InMemory {
	return &InMemory{balances: make(map[key]domain.Amount)}
}

// Credit adds amount to holder's balance and returns the new balance.
func (s *InMemory) Credit(ctx context.Context, kind models.AccountKind, holder domain.ActorID, amount domain.Amount) (domain.Amount, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := key{kind, holder}
	prev := s.balances[k]
	next, err := prev.Add(amount)
	if err != nil {
		return prev, err
	}
	s.balances[k] = next
	s.onRollback(ctx, k, prev)
	return next, nil
}

func (s *InMemory) Balance(_ context.Context, kind models.AccountKind, holder domain.ActorID) (domain.Amount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.balances[key{kind, holder}], nil
}

// Drain zeroes holder's balance and returns what it held.
func (s *InMemory) Drain(ctx context.Context, kind models.AccountKind, holder domain.ActorID) (domain.Amount, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := key{kind, holder}
	prev := s.balances[k]
	if prev.IsZero() {
		return 0, nil
	}
	delete(s.balances, k)
	s.onRollback(ctx, k, prev)
	return prev, nil
}

// Total sums every balance of kind.
func (s *InMemory) Total(_ context.Context, kind models.AccountKind) (domain.Amount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var total domain.Amount
	for k, v := range s.balances {
		if k.kind != kind {
			continue
		}
		var err error
		if total, err = total.Add(v); err != nil {
			return 0, err
		}
	}
	return total, nil
}

func (s *InMemory) onRollback(ctx context.Context, k key, prev domain.Amount) {
	txcontext.OnRollback(ctx, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if prev.IsZero() {
			delete(s.balances, k)
			return
		}
		s.balances[k] = prev
	})
}
