package ai

import (
	"encoding/json"
	"regexp"
	"strings"
)

// SchemaSpec is the JSON shape the service is asked to emit for structured calls.
type SchemaSpec struct {
	Type        string                 `json:"type"`
	Description string                 `json:"description,omitempty"`
	Properties  map[string]*SchemaSpec `json:"properties,omitempty"`
	Items       *SchemaSpec            `json:"items,omitempty"`
	Required    []string               `json:"required,omitempty"`
	MinItems    *int                   `json:"minItems,omitempty"`
	MaxItems    *int                   `json:"maxItems,omitempty"`
}

// JSON returns the indented schema document embedded in instruction prompts.
func (s *SchemaSpec) JSON() string {
	if s == nil {
		return ""
	}
	raw, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return ""
	}
	return string(raw)
}

// PromptTemplate is an immutable prompt definition loaded at process start.
type PromptTemplate struct {
	Name         string
	ModelID      string
	Contents     string
	OutputSchema *SchemaSpec
}

// placeholderPattern matches {{key}} and {{ key }}.
var placeholderPattern = regexp.MustCompile(`\{\{\s*([A-Za-z0-9_\-]+)\s*\}\}`)

// Render substitutes every placeholder of tpl.Contents with its value. Placeholders without a
// value are kept verbatim.
func Render(tpl PromptTemplate, values map[string]string) string {
	return placeholderPattern.ReplaceAllStringFunc(tpl.Contents, func(token string) string {
		name := strings.TrimSpace(token[2 : len(token)-2])
		if v, ok := values[name]; ok {
			return v
		}
		return token
	})
}

// Placeholders lists the distinct placeholder names of tpl in order of first appearance.
func Placeholders(tpl PromptTemplate) []string {
	matches := placeholderPattern.FindAllStringSubmatch(tpl.Contents, -1)
	seen := make(map[string]struct{}, len(matches))
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		if _, ok := seen[m[1]]; ok {
			continue
		}
		seen[m[1]] = struct{}{}
		out = append(out, m[1])
	}
	return out
}

// Request renders tpl into a single-shot generation request.
func (tpl PromptTemplate) Request(values map[string]string) GenerationRequest {
	return GenerationRequest{
		Template:     tpl.Name,
		ModelID:      tpl.ModelID,
		Contents:     Render(tpl, values),
		OutputSchema: tpl.OutputSchema,
	}
}
