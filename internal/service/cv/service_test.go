package cv

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhouzirui/path-finder/backend/internal/model/cv"
	"github.com/zhouzirui/path-finder/backend/internal/service/ai"
)

type stubGenerator struct {
	reply    string
	err      error
	requests []ai.GenerationRequest
}

func (g *stubGenerator) Generate(_ context.Context, req ai.GenerationRequest) (string, error) {
	g.requests = append(g.requests, req)
	return g.reply, g.err
}

func newTestService(gen ai.Generator) (*Service, *MemoryStore) {
	store := NewMemoryStore()
	return NewService(store, gen, ai.NewCatalog(ai.Models{Default: "m"}), nil), store
}

func TestSaveAssignsOwnerAndIDs(t *testing.T) {
	svc, _ := newTestService(&stubGenerator{})
	ctx := context.Background()

	saved, err := svc.Save(ctx, "owner-1", cv.CV{
		OwnerID:    "someone-else",
		FullName:   "Ada",
		Experience: []cv.Experience{{Company: "Acme"}, {ID: "keep", Company: "Beta"}},
	})
	require.NoError(t, err)

	assert.Equal(t, "owner-1", saved.OwnerID)
	assert.NotEmpty(t, saved.Experience[0].ID)
	assert.Equal(t, "keep", saved.Experience[1].ID)
	assert.False(t, saved.UpdatedAt.IsZero())

	got, err := svc.Get(ctx, "owner-1")
	require.NoError(t, err)
	assert.Equal(t, saved, got)
}

func TestGetMissingCV(t *testing.T) {
	svc, _ := newTestService(&stubGenerator{})

	_, err := svc.Get(context.Background(), "nobody")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.Get(context.Background(), "")
	assert.ErrorIs(t, err, ErrOwnerRequired)
}

func TestRewriteMergesAndPersists(t *testing.T) {
	gen := &stubGenerator{reply: "```json\n" +
		`{"summary":"Focused builder","experience":[{"description":"Delivered X, improving Y by 20%"}],"projects":[{"description":"a"},{"description":"b"}]}` +
		"\n```"}
	svc, store := newTestService(gen)
	ctx := context.Background()
	_, err := svc.Save(ctx, "owner-1", cv.CV{
		Summary:    "student",
		Experience: []cv.Experience{{ID: "1", Company: "Acme", Description: "did stuff"}},
		Projects:   []cv.Project{{ID: "p1", Name: "Robot", Description: "robot"}},
	})
	require.NoError(t, err)

	result, err := svc.Rewrite(ctx, "owner-1")
	require.NoError(t, err)

	assert.Equal(t, "Focused builder", result.CV.Summary)
	assert.Equal(t, cv.Experience{ID: "1", Company: "Acme", Description: "Delivered X, improving Y by 20%"}, result.CV.Experience[0])
	assert.Equal(t, "robot", result.CV.Projects[0].Description)
	assert.Equal(t, []SkippedField{{Field: "projects", Reason: SkipLengthMismatch, Original: 1, Rewritten: 2}}, result.Report.Skipped)

	stored, err := store.Get(ctx, "owner-1")
	require.NoError(t, err)
	assert.Equal(t, result.CV, stored)

	require.Len(t, gen.requests, 1)
	assert.Equal(t, ai.TemplateCVRewrite, gen.requests[0].Template)
	assert.Contains(t, gen.requests[0].Contents, `"company": "Acme"`)
	assert.NotNil(t, gen.requests[0].OutputSchema)
}

func TestRewriteInvalidJSONLeavesCVUntouched(t *testing.T) {
	svc, store := newTestService(&stubGenerator{reply: "{bad json"})
	ctx := context.Background()
	saved, err := svc.Save(ctx, "owner-1", cv.CV{Summary: "student"})
	require.NoError(t, err)

	_, err = svc.Rewrite(ctx, "owner-1")

	var parseErr *ai.ParseError
	require.True(t, errors.As(err, &parseErr))
	stored, err := store.Get(ctx, "owner-1")
	require.NoError(t, err)
	assert.Equal(t, saved, stored)
}

func TestRewriteGenerationFailure(t *testing.T) {
	svc, _ := newTestService(&stubGenerator{err: &ai.GenerationError{Template: ai.TemplateCVRewrite, Err: ai.ErrNoText}})
	ctx := context.Background()
	_, err := svc.Save(ctx, "owner-1", cv.CV{Summary: "student"})
	require.NoError(t, err)

	_, err = svc.Rewrite(ctx, "owner-1")

	assert.True(t, ai.IsRetryable(err))
}

func TestRewriteWithoutCV(t *testing.T) {
	gen := &stubGenerator{}
	svc, _ := newTestService(gen)

	_, err := svc.Rewrite(context.Background(), "owner-1")

	assert.ErrorIs(t, err, ErrNotFound)
	assert.Empty(t, gen.requests)
}
