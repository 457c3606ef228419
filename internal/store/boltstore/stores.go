package boltstore

import (
	"context"

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

type ConversationStore struct{ d *DB }

func NewConversationStore(d *DB) *ConversationStore { return &ConversationStore{d: d} }

func (s *ConversationStore) Load(_ context.Context, key chat.Key) (chat.Conversation, error) {
	var conv chat.Conversation
	found, err := s.d.get(bucketConversations, conversationKey(key.UserID, key.ChannelID), &conv)
	if err != nil {
		return chat.Conversation{}, err
	}
	if !found {
		return chat.Conversation{UserID: key.UserID, ChannelID: key.ChannelID}, nil
	}
	return conv, nil
}

func (s *ConversationStore) Save(_ context.Context, conv chat.Conversation) error {
	return s.d.put(bucketConversations, conversationKey(conv.UserID, conv.ChannelID), conv)
}

func (s *ConversationStore) Delete(_ context.Context, key chat.Key) error {
	return s.d.delete(bucketConversations, conversationKey(key.UserID, key.ChannelID))
}

type RecommendationStore struct{ d *DB }

func NewRecommendationStore(d *DB) *RecommendationStore { return &RecommendationStore{d: d} }

func (s *RecommendationStore) Save(_ context.Context, set quiz.RecommendationSet) error {
	return s.d.put(bucketRecommendations, set.UserID, set)
}

func (s *RecommendationStore) Latest(_ context.Context, userID string) (quiz.RecommendationSet, error) {
	var set quiz.RecommendationSet
	found, err := s.d.get(bucketRecommendations, userID, &set)
	if err != nil {
		return quiz.RecommendationSet{}, err
	}
	if !found {
		return quiz.RecommendationSet{}, quizservice.ErrNotFound
	}
	return set, nil
}

type CVStore struct{ d *DB }

func NewCVStore(d *DB) *CVStore { return &CVStore{d: d} }

func (s *CVStore) Get(_ context.Context, ownerID string) (cv.CV, error) {
	var doc cv.CV
	found, err := s.d.get(bucketCVs, ownerID, &doc)
	if err != nil {
		return cv.CV{}, err
	}
	if !found {
		return cv.CV{}, cvservice.ErrNotFound
	}
	return doc, nil
}

func (s *CVStore) Put(_ context.Context, doc cv.CV) error {
	return s.d.put(bucketCVs, doc.OwnerID, doc)
}

type ProfileStore struct{ d *DB }

func NewProfileStore(d *DB) *ProfileStore { return &ProfileStore{d: d} }

func (s *ProfileStore) Get(_ context.Context, userID string) (profile.Profile, error) {
	var p profile.Profile
	found, err := s.d.get(bucketProfiles, userID, &p)
	if err != nil {
		return profile.Profile{}, err
	}
	if !found {
		return profile.Profile{}, profile.ErrNotFound
	}
	return p, nil
}

func (s *ProfileStore) Save(_ context.Context, p profile.Profile) (profile.Profile, error) {
	p = profile.Stamp(p)
	if err := s.d.put(bucketProfiles, p.UserID, p); err != nil {
		return profile.Profile{}, err
	}
	return p, nil
}
