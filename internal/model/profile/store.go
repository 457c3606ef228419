package profile

import (
	"context"
	"errors"
	"sync"
	"time"
)

var ErrNotFound = errors.New("profile not found")

// Store exposes profile retrieval for services and handlers.
type Store interface {
	// Get returns ErrNotFound when the user never saved a profile.
	Get(ctx context.Context, userID string) (Profile, error)
	Save(ctx context.Context, p Profile) (Profile, error)
}

// Stamp sets UpdatedAt before a profile is written.
func Stamp(p Profile) Profile {
	p.UpdatedAt = time.Now().UTC()
	return p
}

// MemoryStore implements Store with an in-memory map.
type MemoryStore struct {
	mu    sync.RWMutex
	items map[string]Profile
}

// NewMemoryStore returns a MemoryStore preloaded with the supplied profiles.
func NewMemoryStore(items []Profile) *MemoryStore {
	s := &MemoryStore{items: make(map[string]Profile, len(items))}
	for _, item := range items {
		s.items[item.UserID] = item
	}
	return s
}

// Get looks up the profile of a user.
func (s *MemoryStore) Get(_ context.Context, userID string) (Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.items[userID]
	if !ok {
		return Profile{}, ErrNotFound
	}
	return p, nil
}

// Save creates or replaces the profile of p.UserID.
func (s *MemoryStore) Save(_ context.Context, p Profile) (Profile, error) {
	p = Stamp(p)
	s.mu.Lock()
	s.items[p.UserID] = p
	s.mu.Unlock()
	return p, nil
}
