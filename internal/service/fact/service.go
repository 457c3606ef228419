package fact

import (
	"context"
	"math/rand"
	"strings"

	"github.com/zhouzirui/path-finder/backend/internal/service/ai"
)

var defaultTopics = []string{
	"healthcare", "software engineering", "architecture", "marine biology", "law",
	"aviation", "renewable energy", "psychology", "game design", "agriculture",
}

// Service produces short career facts.
type Service struct {
	gen    ai.Generator
	tpl    ai.PromptTemplate
	topics []string
	pick   func(n int) int
}

// NewService wires the fact service with the career fact template of catalog.
func NewService(gen ai.Generator, catalog *ai.Catalog) *Service {
	return &Service{
		gen:    gen,
		tpl:    catalog.MustGet(ai.TemplateCareerFact),
		topics: defaultTopics,
		pick:   rand.Intn,
	}
}

// CareerFact returns one fact as prose. An empty topic picks one at random.
func (s *Service) CareerFact(ctx context.Context, topic string) (string, error) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		topic = s.topics[s.pick(len(s.topics))]
	}
	text, err := s.gen.Generate(ctx, s.tpl.Request(map[string]string{"topic": topic}))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}
