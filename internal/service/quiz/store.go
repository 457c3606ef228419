package quiz

import (
	"context"
	"errors"
	"sync"

	"github.com/zhouzirui/path-finder/backend/internal/model/quiz"
)

var ErrNotFound = errors.New("no recommendations stored")

// RecommendationStore keeps terminal recommendation sets per user.
type RecommendationStore interface {
	Save(ctx context.Context, set quiz.RecommendationSet) error
	Latest(ctx context.Context, userID string) (quiz.RecommendationSet, error)
}

// MemoryStore keeps the latest set per user in memory.
type MemoryStore struct {
	mu     sync.RWMutex
	latest map[string]quiz.RecommendationSet
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{latest: make(map[string]quiz.RecommendationSet)}
}

func (s *MemoryStore) Save(_ context.Context, set quiz.RecommendationSet) error {
	set.Recommendations = append([]quiz.Recommendation(nil), set.Recommendations...)
	s.mu.Lock()
	s.latest[set.UserID] = set
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Latest(_ context.Context, userID string) (quiz.RecommendationSet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	set, ok := s.latest[userID]
	if !ok {
		return quiz.RecommendationSet{}, ErrNotFound
	}
	return set, nil
}
