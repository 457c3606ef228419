package fact

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"

	"github.com/zhouzirui/path-finder/backend/internal/service/ai"
	factservice "github.com/zhouzirui/path-finder/backend/internal/service/fact"
)

type stubGenerator struct {
	reply string
	err   error
}

func (g stubGenerator) Generate(context.Context, ai.GenerationRequest) (string, error) {
	return g.reply, g.err
}

func serve(gen ai.Generator, path string) *httptest.ResponseRecorder {
	r := chi.NewRouter()
	New(factservice.NewService(gen, ai.NewCatalog(ai.Models{Default: "m"})), nil, nil).RegisterRoutes(r)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, path, nil))
	return resp
}

func TestCareerFact(t *testing.T) {
	resp := serve(stubGenerator{reply: "Actuaries price risk."}, "/facts/career?topic=finance")

	assert.Equal(t, http.StatusOK, resp.Code)
	assert.JSONEq(t, `{"fact":"Actuaries price risk."}`, resp.Body.String())
}

func TestCareerFactUnconfigured(t *testing.T) {
	resp := serve(stubGenerator{err: &ai.ConfigurationError{Reason: "no key"}}, "/facts/career")

	assert.Equal(t, http.StatusServiceUnavailable, resp.Code)
}
