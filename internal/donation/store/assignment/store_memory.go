package assignment

import (
	"context"
	"sync"

	"givekindly/pkg/domain"
	"givekindly/pkg/platform/sentinel"
	txcontext "givekindly/pkg/platform/tx"
)

// InMemory keeps each assessor's append-only list of assigned donations.
type InMemory struct {
	mu    sync.RWMutex
	lists map[domain.ActorID][]domain.DonationID
}

func NewInMemory() *InMemory {
	return &InMemory{lists: make(map[domain.ActorID][]domain.DonationID)}
}

// Append adds donationID to the end of assessor's list.
func (s *InMemory) Append(ctx context.Context, assessor domain.ActorID, donationID domain.DonationID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := len(s.lists[assessor])
	s.lists[assessor] = append(s.lists[assessor], donationID)
	txcontext.OnRollback(ctx, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if n == 0 {
			delete(s.lists, assessor)
			return
		}
		s.lists[assessor] = s.lists[assessor][:n]
	})
	return nil
}

// At returns the donation at index in assessor's list.
func (s *InMemory) At(_ context.Context, assessor domain.ActorID, index uint64) (domain.DonationID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	list := s.lists[assessor]
	if index >= uint64(len(list)) {
		return 0, sentinel.ErrNotFound
	}
	return list[index], nil
}

// List returns assessor's list in assignment order.
func (s *InMemory) List(_ context.Context, assessor domain.ActorID) ([]domain.DonationID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.DonationID{}, s.lists[assessor]...), nil
}
