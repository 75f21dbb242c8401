package donation

import (
	"context"
	"sync"

	"givekindly/internal/donation/models"
	"givekindly/pkg/domain"
	"givekindly/pkg/platform/sentinel"
	txcontext "givekindly/pkg/platform/tx"
)

// InMemory keeps donations in a slice indexed by their sequential ID.
type InMemory struct {
	mu        sync.RWMutex
	donations []*models.Donation
}

func NewInMemory() *InMemory {
	return &InMemory{}
}

// Create assigns the next sequential ID, starting at 0, and stores the donation.
func (s *InMemory) Create(ctx context.Context, d *models.Donation) (domain.DonationID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := domain.DonationID(len(s.donations))
	d.ID = id
	stored := *d
	s.donations = append(s.donations, &stored)
	txcontext.OnRollback(ctx, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.donations = s.donations[:id]
	})
	return id, nil
}

func (s *InMemory) FindByID(_ context.Context, id domain.DonationID) (*models.Donation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if uint64(id) >= uint64(len(s.donations)) {
		return nil, sentinel.ErrNotFound
	}
	out := *s.donations[id]
	return &out, nil
}

// Update replaces the stored record.
func (s *InMemory) Update(ctx context.Context, d *models.Donation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if uint64(d.ID) >= uint64(len(s.donations)) {
		return sentinel.ErrNotFound
	}
	prev := s.donations[d.ID]
	next := *d
	s.donations[d.ID] = &next
	txcontext.OnRollback(ctx, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.donations[prev.ID] = prev
	})
	return nil
}

func (s *InMemory) Count(_ context.Context) (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return uint64(len(s.donations)), nil
}
