package store

import (
	"context"
	"sync"

	"givekindly/internal/identity/models"
	"givekindly/pkg/domain"
	"givekindly/pkg/platform/sentinel"
	txcontext "givekindly/pkg/platform/tx"
)

// InMemory is the process-local actor registry.
type InMemory struct {
	mu     sync.RWMutex
	actors map[domain.ActorID]*models.Actor
}

func NewInMemory() *InMemory {
	return &InMemory{actors: make(map[domain.ActorID]*models.Actor)}
}

// CreateIfUnregistered stores actor unless its ID already holds a role.
func (s *InMemory) CreateIfUnregistered(ctx context.Context, actor *models.Actor) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.actors[actor.ID]; ok {
		return sentinel.ErrAlreadyUsed
	}
	stored := *actor
	s.actors[actor.ID] = &stored
	txcontext.OnRollback(ctx, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.actors, actor.ID)
	})
	return nil
}

func (s *InMemory) FindByID(_ context.Context, id domain.ActorID) (*models.Actor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	actor, ok := s.actors[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	out := *actor
	return &out, nil
}

// RoleOf returns RoleUnregistered for unknown identities.
func (s *InMemory) RoleOf(_ context.Context, id domain.ActorID) (models.Role, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if actor, ok := s.actors[id]; ok {
		return actor.Role, nil
	}
	return models.RoleUnregistered, nil
}

func (s *InMemory) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.actors), nil
}
