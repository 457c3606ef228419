package boltstore

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhouzirui/path-finder/backend/internal/model/chat"
	"github.com/zhouzirui/path-finder/backend/internal/model/cv"
	"github.com/zhouzirui/path-finder/backend/internal/model/profile"
	"github.com/zhouzirui/path-finder/backend/internal/model/quiz"
	cvservice "github.com/zhouzirui/path-finder/backend/internal/service/cv"
	quizservice "github.com/zhouzirui/path-finder/backend/internal/service/quiz"
)

func openTemp(t *testing.T) (*DB, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data", "pathfinder.db")
	d, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = d.Close() })
	return d, path
}

func TestConversationStore(t *testing.T) {
	d, _ := openTemp(t)
	store := NewConversationStore(d)
	ctx := context.Background()
	key := chat.Key{UserID: "u1", ChannelID: "general"}

	empty, err := store.Load(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, key, empty.Key())
	assert.Empty(t, empty.Turns)

	conv := chat.Conversation{UserID: "u1", ChannelID: "general", Turns: []chat.Turn{{
		ID:        "t1",
		User:      chat.Message{Parts: []chat.Part{chat.FilePart("https://files.example/cv.pdf", "application/pdf")}},
		Model:     chat.Message{Parts: []chat.Part{chat.TextPart("Nice CV.")}},
		CreatedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}}}
	require.NoError(t, store.Save(ctx, conv))

	other, err := store.Load(ctx, chat.Key{UserID: "u1", ChannelID: "other"})
	require.NoError(t, err)
	assert.Empty(t, other.Turns)

	loaded, err := store.Load(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, conv.Turns, loaded.Turns)

	require.NoError(t, store.Delete(ctx, key))
	loaded, err = store.Load(ctx, key)
	require.NoError(t, err)
	assert.Empty(t, loaded.Turns)
}

func TestDocumentsSurviveReopen(t *testing.T) {
	d, path := openTemp(t)
	ctx := context.Background()

	require.NoError(t, NewRecommendationStore(d).Save(ctx, quiz.RecommendationSet{ID: "s1", UserID: "u1", Rounds: 4}))
	require.NoError(t, NewCVStore(d).Put(ctx, cv.CV{OwnerID: "u1", Summary: "student"}))
	_, err := NewProfileStore(d).Save(ctx, profile.Profile{UserID: "u1", Name: "Ada", Goals: "medicine"})
	require.NoError(t, err)
	require.NoError(t, d.Close())

	reopened, err := Open(path)
	require.NoError(t, err)
	defer reopened.Close()

	set, err := NewRecommendationStore(reopened).Latest(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 4, set.Rounds)

	doc, err := NewCVStore(reopened).Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "student", doc.Summary)

	p, err := NewProfileStore(reopened).Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "Ada", p.Name)
	assert.Equal(t, "medicine", p.Goals)
	assert.False(t, p.UpdatedAt.IsZero())
}

func TestMissingDocuments(t *testing.T) {
	d, _ := openTemp(t)
	ctx := context.Background()

	_, err := NewRecommendationStore(d).Latest(ctx, "nobody")
	assert.ErrorIs(t, err, quizservice.ErrNotFound)

	_, err = NewCVStore(d).Get(ctx, "nobody")
	assert.ErrorIs(t, err, cvservice.ErrNotFound)

	_, err = NewProfileStore(d).Get(ctx, "nobody")
	assert.ErrorIs(t, err, profile.ErrNotFound)
}
