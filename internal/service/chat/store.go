package chat

import (
	"context"
	"sync"

	"github.com/zhouzirui/path-finder/backend/internal/model/chat"
)

// Store persists conversation documents, one per (user, channel).
type Store interface {
	// Load returns the conversation for key, or an empty one when nothing was stored yet.
	Load(ctx context.Context, key chat.Key) (chat.Conversation, error)
	Save(ctx context.Context, conv chat.Conversation) error
	Delete(ctx context.Context, key chat.Key) error
}

// MemoryStore keeps conversations in process memory.
type MemoryStore struct {
	mu            sync.RWMutex
	conversations map[chat.Key]chat.Conversation
}

// NewMemoryStore bootstraps an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{conversations: make(map[chat.Key]chat.Conversation)}
}

func (s *MemoryStore) Load(_ context.Context, key chat.Key) (chat.Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	conv, ok := s.conversations[key]
	if !ok {
		return chat.Conversation{UserID: key.UserID, ChannelID: key.ChannelID}, nil
	}

	copied := make([]chat.Turn, len(conv.Turns))
	copy(copied, conv.Turns)
	conv.Turns = copied
	return conv, nil
}

func (s *MemoryStore) Save(_ context.Context, conv chat.Conversation) error {
	copied := make([]chat.Turn, len(conv.Turns))
	copy(copied, conv.Turns)
	conv.Turns = copied

	s.mu.Lock()
	s.conversations[conv.Key()] = conv
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, key chat.Key) error {
	s.mu.Lock()
	delete(s.conversations, key)
	s.mu.Unlock()
	return nil
}
