package cv

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhouzirui/path-finder/backend/internal/middleware"
	"github.com/zhouzirui/path-finder/backend/internal/service/ai"
	cvservice "github.com/zhouzirui/path-finder/backend/internal/service/cv"
)

type stubGenerator struct{ reply string }

func (g stubGenerator) Generate(context.Context, ai.GenerationRequest) (string, error) {
	return g.reply, nil
}

func setupRouter(gen ai.Generator) *chi.Mux {
	svc := cvservice.NewService(cvservice.NewMemoryStore(), gen, ai.NewCatalog(ai.Models{Default: "m"}), nil)
	r := chi.NewRouter()
	r.Use(middleware.Auth("", nil))
	New(svc, nil, nil).RegisterRoutes(r)
	return r
}

func do(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewReader([]byte(body)))
	req.Header.Set(middleware.DevUserHeader, "student-1")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	return resp
}

func TestCVLifecycle(t *testing.T) {
	r := setupRouter(stubGenerator{reply: `{"summary":"Builder of things","experience":[{"description":"Shipped X"}],"projects":[]}`})

	resp := do(r, http.MethodGet, "/cv", "")
	assert.Equal(t, http.StatusNotFound, resp.Code)

	resp = do(r, http.MethodPut, "/cv", `{"fullName":"Ada","summary":"student","experience":[{"company":"Acme","position":"Intern","description":"did stuff"}],"education":[],"projects":[]}`)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	resp = do(r, http.MethodPost, "/cv/rewrite", "")
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var result cvservice.RewriteResult
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &result))
	assert.Equal(t, "Builder of things", result.CV.Summary)
	assert.Equal(t, "Acme", result.CV.Experience[0].Company)
	assert.Equal(t, "Shipped X", result.CV.Experience[0].Description)
	assert.Equal(t, "student-1", result.CV.OwnerID)
	assert.Empty(t, result.Report.Skipped)

	resp = do(r, http.MethodGet, "/cv", "")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), "Shipped X")
}

func TestRewriteUnreadableAnswer(t *testing.T) {
	r := setupRouter(stubGenerator{reply: "{bad json"})
	do(r, http.MethodPut, "/cv", `{"summary":"student"}`)

	resp := do(r, http.MethodPost, "/cv/rewrite", "")

	assert.Equal(t, http.StatusBadGateway, resp.Code)
	assert.Contains(t, resp.Body.String(), "please try again")
}

func TestPutRejectsUnknownFields(t *testing.T) {
	r := setupRouter(stubGenerator{})

	resp := do(r, http.MethodPut, "/cv", `{"summary":"s","hacker":true}`)

	assert.Equal(t, http.StatusBadRequest, resp.Code)
}
