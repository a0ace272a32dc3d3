package store

import (
	"context"
	"sync"

	"stammdaten/internal/profile/models"
)

// InMemoryStore keeps the profile in memory for tests. It intentionally
// favors clarity over performance.
type InMemoryStore struct {
	mu      sync.RWMutex
	profile *models.Profile

	// SaveErr, when set, is returned by Save to simulate commit failures.
	SaveErr error
	saves   int
}

// NewInMemoryStore constructs an empty in-memory store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{}
}

// Seed pre-populates the store, as if a profile had been persisted earlier.
func (s *InMemoryStore) Seed(profile models.Profile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := profile.Clone()
	s.profile = &copied
}

func (s *InMemoryStore) Load(_ context.Context) (models.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.profile == nil {
		return models.Profile{}, ErrNotFound
	}
	return s.profile.Clone(), nil
}

func (s *InMemoryStore) Save(_ context.Context, profile models.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saves++
	if s.SaveErr != nil {
		return s.SaveErr
	}
	copied := profile.Clone()
	s.profile = &copied
	return nil
}

// SaveCount reports how many commits were attempted, including failed ones.
func (s *InMemoryStore) SaveCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.saves
}

var _ Store = (*InMemoryStore)(nil)
