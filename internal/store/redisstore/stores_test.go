package redisstore

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhouzirui/path-finder/backend/internal/config"
	"github.com/zhouzirui/path-finder/backend/internal/model/chat"
	"github.com/zhouzirui/path-finder/backend/internal/model/cv"
	"github.com/zhouzirui/path-finder/backend/internal/model/profile"
	"github.com/zhouzirui/path-finder/backend/internal/model/quiz"
	cvservice "github.com/zhouzirui/path-finder/backend/internal/service/cv"
	quizservice "github.com/zhouzirui/path-finder/backend/internal/service/quiz"
)

func TestKeys(t *testing.T) {
	assert.Equal(t, "pathfinder:conversation:u1:general", conversationKey("u1", "general"))
	assert.Equal(t, "pathfinder:recommendations:u1", recommendationsKey("u1"))
	assert.Equal(t, "pathfinder:cv:u1", cvKey("u1"))
	assert.Equal(t, "pathfinder:profile:u1", profileKey("u1"))
}

// connect needs a live server and is skipped unless REDIS_TEST_ADDR is set.
func connect(t *testing.T) *Client {
	t.Helper()
	addr := os.Getenv("REDIS_TEST_ADDR")
	if addr == "" {
		t.Skip("REDIS_TEST_ADDR not set")
	}
	c, err := Connect(context.Background(), config.StoreConfig{RedisAddr: addr}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestConversationStoreRoundTrip(t *testing.T) {
	store := NewConversationStore(connect(t))
	ctx := context.Background()
	key := chat.Key{UserID: "test-" + uuid.NewString(), ChannelID: "general"}
	t.Cleanup(func() { _ = store.Delete(ctx, key) })

	empty, err := store.Load(ctx, key)
	require.NoError(t, err)
	assert.Empty(t, empty.Turns)
	assert.Equal(t, key, empty.Key())

	conv := chat.Conversation{
		UserID:    key.UserID,
		ChannelID: key.ChannelID,
		Turns: []chat.Turn{{
			ID:        "t1",
			User:      chat.Message{Parts: []chat.Part{chat.TextPart("hi")}},
			Model:     chat.Message{Parts: []chat.Part{chat.TextPart("hello")}},
			CreatedAt: time.Now().UTC().Truncate(time.Second),
		}},
	}
	require.NoError(t, store.Save(ctx, conv))

	loaded, err := store.Load(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, conv.Turns, loaded.Turns)

	require.NoError(t, store.Delete(ctx, key))
	cleared, err := store.Load(ctx, key)
	require.NoError(t, err)
	assert.Empty(t, cleared.Turns)
}

func TestRecommendationAndCVStores(t *testing.T) {
	c := connect(t)
	ctx := context.Background()
	owner := "test-" + uuid.NewString()
	t.Cleanup(func() { c.rdb.Del(ctx, recommendationsKey(owner), cvKey(owner)) })

	recs := NewRecommendationStore(c)
	_, err := recs.Latest(ctx, owner)
	assert.ErrorIs(t, err, quizservice.ErrNotFound)
	set := quiz.RecommendationSet{ID: "s1", UserID: owner, Rounds: 3, Recommendations: []quiz.Recommendation{{CareerName: "Nurse"}}}
	require.NoError(t, recs.Save(ctx, set))
	got, err := recs.Latest(ctx, owner)
	require.NoError(t, err)
	assert.Equal(t, "Nurse", got.Recommendations[0].CareerName)

	cvs := NewCVStore(c)
	_, err = cvs.Get(ctx, owner)
	assert.ErrorIs(t, err, cvservice.ErrNotFound)
	require.NoError(t, cvs.Put(ctx, cv.CV{OwnerID: owner, Summary: "s"}))
	doc, err := cvs.Get(ctx, owner)
	require.NoError(t, err)
	assert.Equal(t, "s", doc.Summary)
}

func TestProfileStoreRoundTrip(t *testing.T) {
	c := connect(t)
	ctx := context.Background()
	owner := "test-" + uuid.NewString()
	t.Cleanup(func() { c.rdb.Del(ctx, profileKey(owner)) })

	store := NewProfileStore(c)
	_, err := store.Get(ctx, owner)
	assert.ErrorIs(t, err, profile.ErrNotFound)

	saved, err := store.Save(ctx, profile.Profile{UserID: owner, Name: "Ada", Interests: []string{"maths"}})
	require.NoError(t, err)
	assert.False(t, saved.UpdatedAt.IsZero())

	got, err := store.Get(ctx, owner)
	require.NoError(t, err)
	assert.Equal(t, "Ada", got.Name)
	assert.Equal(t, []string{"maths"}, got.Interests)
}
