package redisstore

import (
	"context"
	"fmt"

	"github.com/zhouzirui/path-finder/backend/internal/model/chat"
	"github.com/zhouzirui/path-finder/backend/internal/model/cv"
	"github.com/zhouzirui/path-finder/backend/internal/model/profile"
	"github.com/zhouzirui/path-finder/backend/internal/model/quiz"
	chatservice "github.com/zhouzirui/path-finder/backend/internal/service/chat"
	cvservice "github.com/zhouzirui/path-finder/backend/internal/service/cv"
	quizservice "github.com/zhouzirui/path-finder/backend/internal/service/quiz"
)

var (
	_ chatservice.Store               = (*ConversationStore)(nil)
	_ quizservice.RecommendationStore = (*RecommendationStore)(nil)
	_ cvservice.Store                 = (*CVStore)(nil)
	_ profile.Store                   = (*ProfileStore)(nil)
)

// ConversationStore keeps each channel as one JSON document.
type ConversationStore struct{ c *Client }

func NewConversationStore(c *Client) *ConversationStore { return &ConversationStore{c: c} }

func (s *ConversationStore) Load(ctx context.Context, key chat.Key) (chat.Conversation, error) {
	var conv chat.Conversation
	found, err := s.c.getJSON(ctx, conversationKey(key.UserID, key.ChannelID), &conv)
	if err != nil {
		return chat.Conversation{}, err
	}
	if !found {
		return chat.Conversation{UserID: key.UserID, ChannelID: key.ChannelID}, nil
	}
	return conv, nil
}

func (s *ConversationStore) Save(ctx context.Context, conv chat.Conversation) error {
	return s.c.setJSON(ctx, conversationKey(conv.UserID, conv.ChannelID), conv)
}

func (s *ConversationStore) Delete(ctx context.Context, key chat.Key) error {
	if err := s.c.rdb.Del(ctx, conversationKey(key.UserID, key.ChannelID)).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

// RecommendationStore keeps the latest recommendation set per user.
type RecommendationStore struct{ c *Client }

func NewRecommendationStore(c *Client) *RecommendationStore { return &RecommendationStore{c: c} }

func (s *RecommendationStore) Save(ctx context.Context, set quiz.RecommendationSet) error {
	return s.c.setJSON(ctx, recommendationsKey(set.UserID), set)
}

func (s *RecommendationStore) Latest(ctx context.Context, userID string) (quiz.RecommendationSet, error) {
	var set quiz.RecommendationSet
	found, err := s.c.getJSON(ctx, recommendationsKey(userID), &set)
	if err != nil {
		return quiz.RecommendationSet{}, err
	}
	if !found {
		return quiz.RecommendationSet{}, quizservice.ErrNotFound
	}
	return set, nil
}

// CVStore keeps one CV document per owner.
type CVStore struct{ c *Client }

func NewCVStore(c *Client) *CVStore { return &CVStore{c: c} }

func (s *CVStore) Get(ctx context.Context, ownerID string) (cv.CV, error) {
	var doc cv.CV
	found, err := s.c.getJSON(ctx, cvKey(ownerID), &doc)
	if err != nil {
		return cv.CV{}, err
	}
	if !found {
		return cv.CV{}, cvservice.ErrNotFound
	}
	return doc, nil
}

func (s *CVStore) Put(ctx context.Context, doc cv.CV) error {
	return s.c.setJSON(ctx, cvKey(doc.OwnerID), doc)
}

// ProfileStore keeps the chat personalization profile per user.
type ProfileStore struct{ c *Client }

func NewProfileStore(c *Client) *ProfileStore { return &ProfileStore{c: c} }

func (s *ProfileStore) Get(ctx context.Context, userID string) (profile.Profile, error) {
	var p profile.Profile
	found, err := s.c.getJSON(ctx, profileKey(userID), &p)
	if err != nil {
		return profile.Profile{}, err
	}
	if !found {
		return profile.Profile{}, profile.ErrNotFound
	}
	return p, nil
}

func (s *ProfileStore) Save(ctx context.Context, p profile.Profile) (profile.Profile, error) {
	p = profile.Stamp(p)
	if err := s.c.setJSON(ctx, profileKey(p.UserID), p); err != nil {
		return profile.Profile{}, err
	}
	return p, nil
}
