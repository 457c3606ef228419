package chat

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"

	"github.com/zhouzirui/path-finder/backend/internal/keymutex"
	"github.com/zhouzirui/path-finder/backend/internal/logger"
	"github.com/zhouzirui/path-finder/backend/internal/model/chat"
	"github.com/zhouzirui/path-finder/backend/internal/model/profile"
	"github.com/zhouzirui/path-finder/backend/internal/service/ai"
)

var (
	ErrUserRequired   = errors.New("user id is required")
	ErrInvalidChannel = errors.New("channel id must be 1-64 characters of letters, digits, '-' or '_'")
)

var channelPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

// Service runs chat exchanges against the generation service and owns conversation history.
type Service struct {
	store    Store
	gen      ai.Generator
	tpl      ai.PromptTemplate
	files    FileResolver
	profiles profile.Store
	search   ai.Searcher
	locks    *keymutex.Map
	log      *logger.Logger
	now      func() time.Time
}

// Options carries the optional collaborators of the service.
type Options struct {
	Files    FileResolver
	Profiles profile.Store
	Search   ai.Searcher
	Logger   *logger.Logger
}

// NewService wires the chat service. tpl is the chat instruction template.
func NewService(store Store, gen ai.Generator, tpl ai.PromptTemplate, opts Options) *Service {
	log := opts.Logger
	if log == nil {
		log = logger.NewNop()
	}
	return &Service{
		store:    store,
		gen:      gen,
		tpl:      tpl,
		files:    opts.Files,
		profiles: opts.Profiles,
		search:   opts.Search,
		locks:    keymutex.New(),
		log:      log.With("component", "chat"),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// SendRequest is one user message for a channel.
type SendRequest struct {
	UserID    string
	ChannelID string
	Parts     []chat.Part
	UseSearch bool
}

// SendResult is the persisted turn plus whether search augmentation was applied.
type SendResult struct {
	Turn       chat.Turn `json:"turn"`
	SearchUsed bool      `json:"searchUsed"`
}

// Send appends one turn to the channel. The exchange for a (user, channel) key is serialized so
// concurrent sends never drop each other's turns. Nothing is stored when generation fails.
func (s *Service) Send(ctx context.Context, req SendRequest) (SendResult, error) {
	key, err := validateKey(req.UserID, req.ChannelID)
	if err != nil {
		return SendResult{}, err
	}
	userMsg := chat.Message{Parts: req.Parts}
	if err := userMsg.Validate(); err != nil {
		return SendResult{}, err
	}

	unlock := s.locks.Lock(key.String())
	defer unlock()

	conv, err := s.store.Load(ctx, key)
	if err != nil {
		return SendResult{}, fmt.Errorf("load conversation: %w", err)
	}

	contextList, err := Assemble(ctx, s.files, conv.Turns, userMsg, s.log.With("key", key.String()))
	if err != nil {
		return SendResult{}, fmt.Errorf("assemble history: %w", err)
	}

	// Search augmentation only applies to text-only rounds with a configured backend.
	useSearch := req.UseSearch && !userMsg.HasFiles() && s.search != nil
	if req.UseSearch && !useSearch {
		s.log.Debug("search augmentation dropped", "key", key.String(), "attachments", userMsg.HasFiles(), "configured", s.search != nil)
	}

	genReq := ai.GenerationRequest{
		Template: s.tpl.Name,
		ModelID:  s.tpl.ModelID,
		Contents: ai.Render(s.tpl, map[string]string{"profile": s.profileSummary(ctx, key.UserID)}),
		Messages: contextList,
	}
	if useSearch {
		genReq.Search = s.search
	}

	text, err := s.gen.Generate(ctx, genReq)
	if err != nil {
		return SendResult{}, err
	}

	turn := chat.Turn{
		ID:        uuid.NewString(),
		User:      userMsg,
		Model:     chat.Message{Parts: []chat.Part{chat.TextPart(text)}},
		CreatedAt: s.now(),
	}
	conv.UserID = key.UserID
	conv.ChannelID = key.ChannelID
	conv.Turns = append(conv.Turns, turn)
	conv.UpdatedAt = turn.CreatedAt

	if err := s.store.Save(ctx, conv); err != nil {
		return SendResult{}, fmt.Errorf("save conversation: %w", err)
	}

	s.log.Info("chat turn stored", "key", key.String(), "turns", len(conv.Turns), "attachments", userMsg.HasFiles(), "search", useSearch)
	return SendResult{Turn: turn, SearchUsed: useSearch}, nil
}

// History returns the stored conversation of a channel.
func (s *Service) History(ctx context.Context, userID, channelID string) (chat.Conversation, error) {
	key, err := validateKey(userID, channelID)
	if err != nil {
		return chat.Conversation{}, err
	}
	conv, err := s.store.Load(ctx, key)
	if err != nil {
		return chat.Conversation{}, fmt.Errorf("load conversation: %w", err)
	}
	if conv.Turns == nil {
		conv.Turns = []chat.Turn{}
	}
	return conv, nil
}

// Clear deletes the whole history of a channel.
func (s *Service) Clear(ctx context.Context, userID, channelID string) error {
	key, err := validateKey(userID, channelID)
	if err != nil {
		return err
	}

	unlock := s.locks.Lock(key.String())
	defer unlock()

	if err := s.store.Delete(ctx, key); err != nil {
		return fmt.Errorf("delete conversation: %w", err)
	}
	s.log.Info("chat channel cleared", "key", key.String())
	return nil
}

// profileSummary never fails the exchange: a missing or unreadable profile yields the empty
// summary.
func (s *Service) profileSummary(ctx context.Context, userID string) string {
	if s.profiles == nil {
		return profile.Profile{}.Summary()
	}
	p, err := s.profiles.Get(ctx, userID)
	if err != nil {
		if !errors.Is(err, profile.ErrNotFound) {
			s.log.Warn("failed to load profile", "user", userID, "error", err)
		}
		return profile.Profile{}.Summary()
	}
	return p.Summary()
}

func validateKey(userID, channelID string) (chat.Key, error) {
	if userID == "" {
		return chat.Key{}, ErrUserRequired
	}
	if !channelPattern.MatchString(channelID) {
		return chat.Key{}, ErrInvalidChannel
	}
	return chat.Key{UserID: userID, ChannelID: channelID}, nil
}
