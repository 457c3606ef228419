package search

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/zhouzirui/path-finder/backend/internal/service/ai"
)

var ErrEmptyQuery = errors.New("search query is empty")

// SearXNG queries the JSON API of a SearXNG instance (GET /search?q=...&format=json).
type SearXNG struct {
	endpoint   string
	client     *http.Client
	maxResults int
}

// NewSearXNG returns a searcher for the instance at baseURL.
func NewSearXNG(baseURL string, timeout time.Duration, maxResults int) (*SearXNG, error) {
	u, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("invalid search url %q", baseURL)
	}
	u.Path = strings.TrimSuffix(u.Path, "/") + "/search"

	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if maxResults <= 0 {
		maxResults = 5
	}
	return &SearXNG{
		endpoint:   u.String(),
		client:     &http.Client{Timeout: timeout},
		maxResults: maxResults,
	}, nil
}

type searxngResponse struct {
	Results []struct {
		Title   string `json:"title"`
		URL     string `json:"url"`
		Content string `json:"content"`
	} `json:"results"`
}

// Search returns at most maxResults hits for query.
func (s *SearXNG) Search(ctx context.Context, query string) ([]ai.SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrEmptyQuery
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("format", "json")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("search request: unexpected status %d", resp.StatusCode)
	}

	var body searxngResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	out := make([]ai.SearchResult, 0, min(len(body.Results), s.maxResults))
	for _, r := range body.Results {
		if len(out) == s.maxResults {
			break
		}
		if r.URL == "" {
			continue
		}
		out = append(out, ai.SearchResult{Title: r.Title, URL: r.URL, Snippet: r.Content})
	}
	return out, nil
}
