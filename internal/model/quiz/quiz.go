package quiz

import "time"

// Turn is one answered quiz question.
type Turn struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// Step is what the service returns for each round: the next question or completion.
type Step struct {
	IsComplete bool     `json:"isComplete"`
	Question   string   `json:"question,omitempty"`
	Options    []string `json:"options,omitempty"`
}

// Recommendation is one suggested career.
type Recommendation struct {
	CareerName      string   `json:"careerName"`
	Description     string   `json:"description"`
	Suitability     string   `json:"suitability"`
	SuggestedMajors []string `json:"suggestedMajors"`
}

// RecommendationSet is the stored terminal output of a quiz session.
type RecommendationSet struct {
	ID              string           `json:"id"`
	UserID          string           `json:"userId"`
	Recommendations []Recommendation `json:"recommendations"`
	Rounds          int              `json:"rounds"`
	CreatedAt       time.Time        `json:"createdAt"`
}
