package store

import (
	"context"
	"sync"
	"time"

	"givekindly/internal/auction/models"
	txcontext "givekindly/pkg/platform/tx"
)

// InMemory holds the single auction slot.
type InMemory struct {
	mu   sync.RWMutex
	slot models.Slot
}

func NewInMemory() *InMemory {
	return &InMemory{slot: *models.NewIdleSlot(time.Now())}
}

// Get returns a copy of the slot.
func (s *InMemory) Get(_ context.Context) (*models.Slot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := s.slot
	return &out, nil
}

// Save replaces the slot.
func (s *InMemory) Save(ctx context.Context, slot *models.Slot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev := s.slot
	s.slot = *slot
	txcontext.OnRollback(ctx, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.slot = prev
	})
	return nil
}
