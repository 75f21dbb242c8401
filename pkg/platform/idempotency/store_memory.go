package idempotency

import (
	"context"
	"sync"
	"time"

	"givekindly/pkg/platform/sentinel"
)

type memoryEntry struct {
	record    Record
	expiresAt time.Time
}

// InMemoryStore is a process-local Store for single-instance deployments and tests.
type InMemoryStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

func (s *InMemoryStore) Get(_ context.Context, key string) (*Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.entries[key]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	if !s.now().Before(entry.expiresAt) {
		delete(s.entries, key)
		return nil, sentinel.ErrNotFound
	}
	record := entry.record
	return &record, nil
}

func (s *InMemoryStore) Put(_ context.Context, key string, record Record, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	if entry, ok := s.entries[key]; ok && now.Before(entry.expiresAt) {
		return nil
	}
	s.entries[key] = memoryEntry{record: record, expiresAt: now.Add(ttl)}
	return nil
}
