package memory

import (
	"context"
	"sync"

	"givekindly/pkg/domain"
	audit "givekindly/pkg/platform/audit"
	txcontext "givekindly/pkg/platform/tx"
)

// InMemoryStore keeps audit events in process. Appends made inside an
// in-memory transaction are withdrawn again if that transaction rolls back.
type InMemoryStore struct {
	mu     sync.RWMutex
	events []audit.Event
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{}
}

func (s *InMemoryStore) Append(ctx context.Context, event audit.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if event.Category == "" {
		event.Category = audit.AuditEvent(event.Action).Category()
	}
	n := len(s.events)
	s.events = append(s.events, event)
	txcontext.OnRollback(ctx, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.events = s.events[:n]
	})
	return nil
}

// ListByActor returns events where actorID is either the caller or the counterparty.
func (s *InMemoryStore) ListByActor(_ context.Context, actorID domain.ActorID) ([]audit.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []audit.Event
	for _, e := range s.events {
		if e.ActorID == actorID || e.Counterparty == actorID {
			out = append(out, e)
		}
	}
	return out, nil
}

// ListAll returns every event in append order.
func (s *InMemoryStore) ListAll(_ context.Context) ([]audit.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]audit.Event{}, s.events...), nil
}

func (s *InMemoryStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = nil
}
