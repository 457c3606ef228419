package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/zhouzirui/path-finder/backend/internal/middleware"
	"github.com/zhouzirui/path-finder/backend/internal/model/profile"
	"github.com/zhouzirui/path-finder/backend/internal/service/ai"
	chatService "github.com/zhouzirui/path-finder/backend/internal/service/chat"
	cvService "github.com/zhouzirui/path-finder/backend/internal/service/cv"
	factService "github.com/zhouzirui/path-finder/backend/internal/service/fact"
	quizService "github.com/zhouzirui/path-finder/backend/internal/service/quiz"
)

type unconfiguredGenerator struct{}

func (unconfiguredGenerator) Generate(context.Context, ai.GenerationRequest) (string, error) {
	return "", &ai.ConfigurationError{Reason: "no credential"}
}

func newTestRouter(secret string) http.Handler {
	gen := unconfiguredGenerator{}
	catalog := ai.NewCatalog(ai.Models{Default: "m"})
	profiles := profile.NewMemoryStore(nil)
	return NewRouter(Dependencies{
		Profiles: profiles,
		Chat: chatService.NewService(chatService.NewMemoryStore(), gen, catalog.MustGet(ai.TemplateCareerChat),
			chatService.Options{Profiles: profiles}),
		Quiz:      quizService.NewService(gen, catalog, quizService.NewMemoryStore(), nil),
		CV:        cvService.NewService(cvService.NewMemoryStore(), gen, catalog, nil),
		Facts:     factService.NewService(gen, catalog),
		JWTSecret: secret,
		Limiter:   middleware.NewRateLimiter(0, 1),
	})
}

func TestHealthIsPublic(t *testing.T) {
	resp := httptest.NewRecorder()
	newTestRouter("secret").ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, resp.Code)
}

func TestAPIRequiresAuth(t *testing.T) {
	resp := httptest.NewRecorder()
	newTestRouter("secret").ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/cv", nil))

	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestUnconfiguredGenerationIs503(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/facts/career", nil)
	req.Header.Set(middleware.DevUserHeader, "student-1")
	resp := httptest.NewRecorder()

	newTestRouter("").ServeHTTP(resp, req)

	assert.Equal(t, http.StatusServiceUnavailable, resp.Code)
}
