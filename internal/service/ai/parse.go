package ai

import (
	"encoding/json"
	"errors"
	"strings"
)

var errEmptyPayload = errors.New("empty payload")

// ParseJSON trims raw and decodes it as JSON into T. A single enclosing Markdown code fence is
// tolerated. Any failure returns a *ParseError carrying raw; a zero T is never handed back as a
// success.
func ParseJSON[T any](raw string) (T, error) {
	var out T

	body := stripCodeFence(strings.TrimSpace(raw))
	if body == "" {
		return out, &ParseError{Raw: raw, Err: errEmptyPayload}
	}

	if err := json.Unmarshal([]byte(body), &out); err != nil {
		var zero T
		return zero, &ParseError{Raw: raw, Err: err}
	}
	return out, nil
}

// stripCodeFence removes a ```json ... ``` wrapper some models add despite instructions.
func stripCodeFence(text string) string {
	if !strings.HasPrefix(text, "```") || !strings.HasSuffix(text, "```") || len(text) < 6 {
		return text
	}
	inner := strings.TrimSuffix(strings.TrimPrefix(text, "```"), "```")
	if nl := strings.IndexByte(inner, '\n'); nl >= 0 {
		lang := strings.TrimSpace(inner[:nl])
		if lang == "" || strings.EqualFold(lang, "json") {
			inner = inner[nl+1:]
		}
	}
	return strings.TrimSpace(inner)
}
