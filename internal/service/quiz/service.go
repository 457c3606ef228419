package quiz

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/zhouzirui/path-finder/backend/internal/logger"
	"github.com/zhouzirui/path-finder/backend/internal/model/quiz"
	"github.com/zhouzirui/path-finder/backend/internal/service/ai"
)

var (
	ErrMalformedStep     = errors.New("quiz step needs a question and exactly three options")
	ErrNoRecommendations = errors.New("no usable recommendations returned")
)

// Service is the generation-backed Engine and stores terminal recommendation sets.
type Service struct {
	gen     ai.Generator
	stepTpl ai.PromptTemplate
	recTpl  ai.PromptTemplate
	store   RecommendationStore
	log     *logger.Logger
	now     func() time.Time
}

// NewService wires the quiz service with the quiz templates of catalog.
func NewService(gen ai.Generator, catalog *ai.Catalog, store RecommendationStore, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewNop()
	}
	return &Service{
		gen:     gen,
		stepTpl: catalog.MustGet(ai.TemplateQuizStep),
		recTpl:  catalog.MustGet(ai.TemplateQuizRecommendations),
		store:   store,
		log:     log.With("component", "quiz"),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// NewSession starts an empty quiz session.
func (s *Service) NewSession() *Machine {
	return NewMachine(s)
}

// ResumeSession rebuilds a session from history the caller kept.
func (s *Service) ResumeSession(history []quiz.Turn) (*Machine, error) {
	return Restore(s, history)
}

// Advance runs one round of m for userID and stores the recommendation set once produced.
// When storing fails the error is returned and the next Advance retries the save without a
// new generation call.
func (s *Service) Advance(ctx context.Context, userID string, m *Machine) (Outcome, error) {
	if m.State() == Complete && m.recommendations != nil && !m.stored {
		return s.persist(ctx, userID, m, Outcome{State: Complete, Recommendations: m.Recommendations()})
	}

	outcome, err := m.Advance(ctx)
	if err != nil {
		return Outcome{}, err
	}
	if outcome.State != Complete {
		return outcome, nil
	}
	return s.persist(ctx, userID, m, outcome)
}

func (s *Service) persist(ctx context.Context, userID string, m *Machine, outcome Outcome) (Outcome, error) {
	set := quiz.RecommendationSet{
		ID:              uuid.NewString(),
		UserID:          userID,
		Recommendations: outcome.Recommendations,
		Rounds:          len(m.History()),
		CreatedAt:       s.now(),
	}
	if s.store != nil {
		if err := s.store.Save(ctx, set); err != nil {
			s.log.Error("failed to store recommendations", "user", userID, "error", err)
			return Outcome{}, fmt.Errorf("store recommendations: %w", err)
		}
	}
	m.stored = true
	s.log.Info("quiz completed", "user", userID, "rounds", set.Rounds, "recommendations", len(set.Recommendations))
	return outcome, nil
}

// Latest returns the most recent recommendation set of userID.
func (s *Service) Latest(ctx context.Context, userID string) (quiz.RecommendationSet, error) {
	if s.store == nil {
		return quiz.RecommendationSet{}, ErrNotFound
	}
	return s.store.Latest(ctx, userID)
}

// NextStep asks the service whether to continue and, if so, for the next question.
func (s *Service) NextStep(ctx context.Context, history []quiz.Turn) (quiz.Step, error) {
	raw, err := s.gen.Generate(ctx, s.stepTpl.Request(map[string]string{"history": FormatHistory(history)}))
	if err != nil {
		return quiz.Step{}, err
	}

	step, err := ai.ParseJSON[quiz.Step](raw)
	if err != nil {
		s.log.Warn("quiz step is not valid JSON", "raw", raw, "error", err)
		return quiz.Step{}, err
	}
	if step.IsComplete {
		return quiz.Step{IsComplete: true}, nil
	}

	step.Question = strings.TrimSpace(step.Question)
	options := make([]string, 0, len(step.Options))
	for _, opt := range step.Options {
		if opt = strings.TrimSpace(opt); opt != "" {
			options = append(options, opt)
		}
	}
	if step.Question == "" || len(options) != 3 {
		s.log.Warn("quiz step rejected", "raw", raw)
		return quiz.Step{}, &ai.GenerationError{Template: s.stepTpl.Name, Err: ErrMalformedStep}
	}
	step.Options = options
	return step, nil
}

// Recommend asks for the final careers over the full history.
func (s *Service) Recommend(ctx context.Context, history []quiz.Turn) ([]quiz.Recommendation, error) {
	raw, err := s.gen.Generate(ctx, s.recTpl.Request(map[string]string{"history": FormatHistory(history)}))
	if err != nil {
		return nil, err
	}

	parsed, err := ai.ParseJSON[[]quiz.Recommendation](raw)
	if err != nil {
		s.log.Warn("recommendations are not valid JSON", "raw", raw, "error", err)
		return nil, err
	}

	recs := make([]quiz.Recommendation, 0, len(parsed))
	for _, rec := range parsed {
		if strings.TrimSpace(rec.CareerName) == "" {
			continue
		}
		if rec.SuggestedMajors == nil {
			rec.SuggestedMajors = []string{}
		}
		recs = append(recs, rec)
	}
	if len(recs) == 0 {
		return nil, &ai.GenerationError{Template: s.recTpl.Name, Err: ErrNoRecommendations}
	}
	return recs, nil
}

// FormatHistory renders the answered turns as prose for the prompt.
func FormatHistory(history []quiz.Turn) string {
	if len(history) == 0 {
		return "No questions have been answered yet."
	}
	var b strings.Builder
	for i, turn := range history {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "%d. Question: %s\n   Answer: %s", i+1, strings.TrimSpace(turn.Question), strings.TrimSpace(turn.Answer))
	}
	return b.String()
}
