package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/schema"
)

// SearchToolName is the function name the model calls to request a web search.
const SearchToolName = "web_search"

// SearchResult is one hit returned by a Searcher.
type SearchResult struct {
	Title   string
	URL     string
	Snippet string
}

// Searcher answers the web_search tool calls of a chat round.
type Searcher interface {
	Search(ctx context.Context, query string) ([]SearchResult, error)
}

// SearchTools declares the web_search tool offered to text-only chat rounds.
func SearchTools() []*schema.ToolInfo {
	return []*schema.ToolInfo{{
		Name: SearchToolName,
		Desc: "Search the web for current information about careers, universities, admissions and job markets.",
		ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
			"query": {
				Type:     schema.String,
				Desc:     "Search keywords, in the language of the user.",
				Required: true,
			},
		}),
	}}
}

// FormatSearchResults renders hits as the tool message fed back to the model.
func FormatSearchResults(results []SearchResult) string {
	if len(results) == 0 {
		return "no results"
	}
	var b strings.Builder
	for i, r := range results {
		if i > 0 {
			b.WriteString("\n\n")
		}
		fmt.Fprintf(&b, "%d. %s\n%s", i+1, r.Title, r.URL)
		if snippet := strings.TrimSpace(r.Snippet); snippet != "" {
			b.WriteString("\n")
			b.WriteString(snippet)
		}
	}
	return b.String()
}
