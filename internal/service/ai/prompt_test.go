package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderSubstitutesKnownPlaceholders(t *testing.T) {
	tpl := PromptTemplate{Contents: "Hello {{name}}, welcome to {{ place }}."}

	got := Render(tpl, map[string]string{"name": "Ana", "place": "Path Finder"})

	assert.Equal(t, "Hello Ana, welcome to Path Finder.", got)
}

func TestRenderLeavesUnknownPlaceholdersVerbatim(t *testing.T) {
	tpl := PromptTemplate{Contents: "{{known}} and {{unknown}} and {{ spaced }}"}

	got := Render(tpl, map[string]string{"known": "x"})

	assert.Equal(t, "x and {{unknown}} and {{ spaced }}", got)
}

func TestRenderIsPure(t *testing.T) {
	tpl := PromptTemplate{Contents: "{{a}}-{{b}}-{{a}}-{{c}}"}
	values := map[string]string{"a": "1", "b": "{{a}}"}

	first := Render(tpl, values)
	second := Render(tpl, values)

	assert.Equal(t, first, second)
	// Substituted values are not rendered again.
	assert.Equal(t, "1-{{a}}-1-{{c}}", first)
	assert.Equal(t, map[string]string{"a": "1", "b": "{{a}}"}, values)
}

func TestPlaceholdersListsDistinctNames(t *testing.T) {
	tpl := PromptTemplate{Contents: "{{history}} {{profile}} {{history}}"}

	assert.Equal(t, []string{"history", "profile"}, Placeholders(tpl))
}

func TestCatalogTemplates(t *testing.T) {
	catalog := NewCatalog(Models{Default: "base-model", Chat: "chat-model"})

	chat, err := catalog.Get(TemplateCareerChat)
	require.NoError(t, err)
	assert.Equal(t, "chat-model", chat.ModelID)
	assert.Nil(t, chat.OutputSchema)

	fact := catalog.MustGet(TemplateCareerFact)
	assert.Nil(t, fact.OutputSchema, "free-form prose must not request a schema")

	for _, name := range []string{TemplateQuizStep, TemplateQuizRecommendations, TemplateCVRewrite} {
		tpl := catalog.MustGet(name)
		assert.Equal(t, "base-model", tpl.ModelID, name)
		require.NotNil(t, tpl.OutputSchema, name)
	}

	assert.ElementsMatch(t, []string{"summary", "experience", "projects"}, catalog.MustGet(TemplateCVRewrite).OutputSchema.Required)

	_, err = catalog.Get("missing")
	assert.Error(t, err)
}

func TestCatalogChatModelFallsBackToDefault(t *testing.T) {
	catalog := NewCatalog(Models{Default: "base-model"})

	assert.Equal(t, "base-model", catalog.MustGet(TemplateCareerChat).ModelID)
}

func TestTemplateRequest(t *testing.T) {
	tpl := PromptTemplate{Name: "t", ModelID: "m", Contents: "Topic: {{topic}}", OutputSchema: &SchemaSpec{Type: "object"}}

	req := tpl.Request(map[string]string{"topic": "medicine"})

	assert.Equal(t, "t", req.Template)
	assert.Equal(t, "m", req.ModelID)
	assert.Equal(t, "Topic: medicine", req.Contents)
	assert.Same(t, tpl.OutputSchema, req.OutputSchema)
	assert.Empty(t, req.Messages)
}
