package cv

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/zhouzirui/path-finder/backend/internal/keymutex"
	"github.com/zhouzirui/path-finder/backend/internal/logger"
	"github.com/zhouzirui/path-finder/backend/internal/model/cv"
	"github.com/zhouzirui/path-finder/backend/internal/service/ai"
)

var ErrOwnerRequired = errors.New("owner id is required")

// Service manages CVs and their AI rewrite.
type Service struct {
	store Store
	gen   ai.Generator
	tpl   ai.PromptTemplate
	locks *keymutex.Map
	log   *logger.Logger
	now   func() time.Time
}

// NewService wires the CV service with the rewrite template of catalog.
func NewService(store Store, gen ai.Generator, catalog *ai.Catalog, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewNop()
	}
	return &Service{
		store: store,
		gen:   gen,
		tpl:   catalog.MustGet(ai.TemplateCVRewrite),
		locks: keymutex.New(),
		log:   log.With("component", "cv"),
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// Get returns the CV of ownerID.
func (s *Service) Get(ctx context.Context, ownerID string) (cv.CV, error) {
	if ownerID == "" {
		return cv.CV{}, ErrOwnerRequired
	}
	return s.store.Get(ctx, ownerID)
}

// Save stores a direct edit. Entries without an id get one.
func (s *Service) Save(ctx context.Context, ownerID string, doc cv.CV) (cv.CV, error) {
	if ownerID == "" {
		return cv.CV{}, ErrOwnerRequired
	}

	unlock := s.locks.Lock(ownerID)
	defer unlock()

	doc.OwnerID = ownerID
	doc.UpdatedAt = s.now()
	doc.Experience = append([]cv.Experience(nil), doc.Experience...)
	for i := range doc.Experience {
		if doc.Experience[i].ID == "" {
			doc.Experience[i].ID = uuid.NewString()
		}
	}
	doc.Education = append([]cv.Education(nil), doc.Education...)
	for i := range doc.Education {
		if doc.Education[i].ID == "" {
			doc.Education[i].ID = uuid.NewString()
		}
	}
	doc.Projects = append([]cv.Project(nil), doc.Projects...)
	for i := range doc.Projects {
		if doc.Projects[i].ID == "" {
			doc.Projects[i].ID = uuid.NewString()
		}
	}

	if err := s.store.Put(ctx, doc); err != nil {
		return cv.CV{}, fmt.Errorf("save cv: %w", err)
	}
	return doc, nil
}

// RewriteResult is the merged CV and what the merge applied.
type RewriteResult struct {
	CV     cv.CV       `json:"cv"`
	Report MergeReport `json:"report"`
}

// Rewrite asks the service to improve the text of the stored CV and merges the result back.
func (s *Service) Rewrite(ctx context.Context, ownerID string) (RewriteResult, error) {
	if ownerID == "" {
		return RewriteResult{}, ErrOwnerRequired
	}

	unlock := s.locks.Lock(ownerID)
	defer unlock()

	original, err := s.store.Get(ctx, ownerID)
	if err != nil {
		return RewriteResult{}, err
	}

	rewrite, err := s.generate(ctx, original)
	if err != nil {
		return RewriteResult{}, err
	}

	merged, report := Merge(original, rewrite)
	for _, skipped := range report.Skipped {
		s.log.Info("cv merge skipped field", "owner", ownerID, "skip", skipped.String())
	}

	merged.UpdatedAt = s.now()
	if err := s.store.Put(ctx, merged); err != nil {
		return RewriteResult{}, fmt.Errorf("save cv: %w", err)
	}
	return RewriteResult{CV: merged, Report: report}, nil
}

func (s *Service) generate(ctx context.Context, doc cv.CV) (cv.Rewrite, error) {
	payload, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return cv.Rewrite{}, fmt.Errorf("encode cv: %w", err)
	}

	raw, err := s.gen.Generate(ctx, s.tpl.Request(map[string]string{"cv": string(payload)}))
	if err != nil {
		return cv.Rewrite{}, err
	}

	rewrite, err := ai.ParseJSON[cv.Rewrite](raw)
	if err != nil {
		s.log.Warn("cv rewrite is not valid JSON", "owner", doc.OwnerID, "raw", strings.TrimSpace(raw), "error", err)
		return cv.Rewrite{}, err
	}
	return rewrite, nil
}
