package profile

import (
	"fmt"
	"strings"
	"time"
)

// Profile captures what the student told us about themselves. It personalizes chat prompts.
type Profile struct {
	UserID    string    `json:"userId"`
	Name      string    `json:"name"`
	Level     string    `json:"level,omitempty"` // e.g. "high school", "undergraduate"
	Country   string    `json:"country,omitempty"`
	Interests []string  `json:"interests,omitempty"`
	Strengths []string  `json:"strengths,omitempty"`
	Goals     string    `json:"goals,omitempty"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Summary renders the profile as prompt text.
func (p Profile) Summary() string {
	var lines []string
	if name := strings.TrimSpace(p.Name); name != "" {
		lines = append(lines, fmt.Sprintf("- Name: %s", name))
	}
	if level := strings.TrimSpace(p.Level); level != "" {
		lines = append(lines, fmt.Sprintf("- Education level: %s", level))
	}
	if country := strings.TrimSpace(p.Country); country != "" {
		lines = append(lines, fmt.Sprintf("- Country: %s", country))
	}
	if len(p.Interests) > 0 {
		lines = append(lines, fmt.Sprintf("- Interests: %s", strings.Join(p.Interests, ", ")))
	}
	if len(p.Strengths) > 0 {
		lines = append(lines, fmt.Sprintf("- Strengths: %s", strings.Join(p.Strengths, ", ")))
	}
	if goals := strings.TrimSpace(p.Goals); goals != "" {
		lines = append(lines, fmt.Sprintf("- Goals: %s", goals))
	}
	if len(lines) == 0 {
		return "No profile information shared yet."
	}
	return strings.Join(lines, "\n")
}
