package ai

import "fmt"

// Template names.
const (
	TemplateCareerChat          = "career_chat"
	TemplateQuizStep            = "quiz_step"
	TemplateQuizRecommendations = "quiz_recommendations"
	TemplateCVRewrite           = "cv_rewrite"
	TemplateCareerFact          = "career_fact"
)

// Catalog holds the prompt templates used by the services.
type Catalog struct {
	templates map[string]PromptTemplate
}

// Models selects the model id per template family.
type Models struct {
	Default string
	Chat    string
}

// NewCatalog builds the process-wide catalog with the built-in templates.
func NewCatalog(models Models) *Catalog {
	chatModel := models.Chat
	if chatModel == "" {
		chatModel = models.Default
	}

	c := &Catalog{templates: make(map[string]PromptTemplate)}
	c.add(PromptTemplate{
		Name:     TemplateCareerChat,
		ModelID:  chatModel,
		Contents: careerChatPrompt,
	})
	c.add(PromptTemplate{
		Name:         TemplateQuizStep,
		ModelID:      models.Default,
		Contents:     quizStepPrompt,
		OutputSchema: quizStepSchema(),
	})
	c.add(PromptTemplate{
		Name:         TemplateQuizRecommendations,
		ModelID:      models.Default,
		Contents:     quizRecommendationsPrompt,
		OutputSchema: recommendationsSchema(),
	})
	c.add(PromptTemplate{
		Name:         TemplateCVRewrite,
		ModelID:      models.Default,
		Contents:     cvRewritePrompt,
		OutputSchema: cvRewriteSchema(),
	})
	c.add(PromptTemplate{
		Name:     TemplateCareerFact,
		ModelID:  models.Default,
		Contents: careerFactPrompt,
	})
	return c
}

func (c *Catalog) add(tpl PromptTemplate) {
	c.templates[tpl.Name] = tpl
}

// Get returns the template registered under name.
func (c *Catalog) Get(name string) (PromptTemplate, error) {
	tpl, ok := c.templates[name]
	if !ok {
		return PromptTemplate{}, fmt.Errorf("prompt template not found: %s", name)
	}
	return tpl, nil
}

// MustGet is Get for templates known at compile time.
func (c *Catalog) MustGet(name string) PromptTemplate {
	tpl, err := c.Get(name)
	if err != nil {
		panic(err)
	}
	return tpl
}

func intPtr(v int) *int { return &v }

func quizStepSchema() *SchemaSpec {
	return &SchemaSpec{
		Type: "object",
		Properties: map[string]*SchemaSpec{
			"isComplete": {Type: "boolean", Description: "true once enough is known to recommend careers"},
			"question":   {Type: "string", Description: "next question, empty when isComplete is true"},
			"options": {
				Type:     "array",
				Items:    &SchemaSpec{Type: "string"},
				MinItems: intPtr(3),
				MaxItems: intPtr(3),
			},
		},
		Required: []string{"isComplete"},
	}
}

func recommendationsSchema() *SchemaSpec {
	return &SchemaSpec{
		Type: "array",
		Items: &SchemaSpec{
			Type: "object",
			Properties: map[string]*SchemaSpec{
				"careerName":      {Type: "string"},
				"description":     {Type: "string"},
				"suitability":     {Type: "string", Description: "why this career fits the student's answers"},
				"suggestedMajors": {Type: "array", Items: &SchemaSpec{Type: "string"}},
			},
			Required: []string{"careerName", "description", "suitability", "suggestedMajors"},
		},
	}
}

func cvRewriteSchema() *SchemaSpec {
	descriptions := &SchemaSpec{
		Type: "array",
		Items: &SchemaSpec{
			Type:       "object",
			Properties: map[string]*SchemaSpec{"description": {Type: "string"}},
			Required:   []string{"description"},
		},
	}
	return &SchemaSpec{
		Type: "object",
		Properties: map[string]*SchemaSpec{
			"summary":    {Type: "string"},
			"experience": descriptions,
			"projects":   descriptions,
		},
		Required: []string{"summary", "experience", "projects"},
	}
}

const careerChatPrompt = `You are Path Finder, a friendly career and study advisor for students.
Help the student explore careers, university majors, skills and next steps.

Guidelines:
- Keep answers practical and specific to the student's situation.
- When the student shares documents or images (transcripts, certificates, CVs), refer to their content.
- If you are unsure, say so and suggest how the student could find out.
- Answer in the language the student writes in.

Student profile:
{{profile}}`

const quizStepPrompt = `You are running an adaptive career-discovery quiz for a student.
Ask one multiple-choice question at a time. Every question must build on the previous answers
and help narrow down which careers suit the student (interests, strengths, values, preferred
work environment).

Answers so far:
{{history}}

If you already know enough to recommend careers with confidence, return {"isComplete": true}.
Otherwise return {"isComplete": false, "question": "...", "options": ["...", "...", "..."]}
with exactly three distinct, concise options.`

const quizRecommendationsPrompt = `A student finished a career-discovery quiz. Their answers:
{{history}}

Recommend between three and five careers that fit the student. For each career explain what
the job involves, why it suits this student's answers, and list university majors that lead to it.`

const cvRewritePrompt = `You are an experienced CV editor. Improve the wording of the CV below.

Rules:
- Rewrite the summary so it is concise and compelling.
- Rewrite every experience and project description with strong action verbs and measurable
  results where the original supports them. Never invent employers, dates or numbers.
- Return exactly one entry per experience and per project, in the same order as the input.
- Only return the rewritten text fields.

CV:
{{cv}}`

const careerFactPrompt = `Share one surprising, accurate fact about a career or field of study that a
high-school or university student might not know. Two sentences at most, no preamble.
Topic hint: {{topic}}`
