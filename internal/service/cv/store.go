package cv

import (
	"context"
	"errors"
	"sync"

	"github.com/zhouzirui/path-finder/backend/internal/model/cv"
)

var ErrNotFound = errors.New("cv not found")

// Store persists one CV per owner.
type Store interface {
	Get(ctx context.Context, ownerID string) (cv.CV, error)
	Put(ctx context.Context, doc cv.CV) error
}

// MemoryStore keeps CVs in memory.
type MemoryStore struct {
	mu   sync.RWMutex
	docs map[string]cv.CV
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{docs: make(map[string]cv.CV)}
}

func (s *MemoryStore) Get(_ context.Context, ownerID string) (cv.CV, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.docs[ownerID]
	if !ok {
		return cv.CV{}, ErrNotFound
	}
	return doc, nil
}

func (s *MemoryStore) Put(_ context.Context, doc cv.CV) error {
	s.mu.Lock()
	s.docs[doc.OwnerID] = doc
	s.mu.Unlock()
	return nil
}
