package cv

import "time"

// Link is a labelled URL shown on the CV.
type Link struct {
	Label string `json:"label"`
	URL   string `json:"url"`
}

// Experience is a position held by the owner. Only Description is rewritten by generation.
type Experience struct {
	ID          string `json:"id"`
	Company     string `json:"company"`
	Position    string `json:"position"`
	Location    string `json:"location,omitempty"`
	StartDate   string `json:"startDate,omitempty"`
	EndDate     string `json:"endDate,omitempty"`
	Current     bool   `json:"current,omitempty"`
	Description string `json:"description"`
}

// Education is never touched by generation.
type Education struct {
	ID          string `json:"id"`
	Institution string `json:"institution"`
	Degree      string `json:"degree,omitempty"`
	Field       string `json:"field,omitempty"`
	StartDate   string `json:"startDate,omitempty"`
	EndDate     string `json:"endDate,omitempty"`
}

// Project is a personal or academic project. Only Description is rewritten by generation.
type Project struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Role         string   `json:"role,omitempty"`
	Link         string   `json:"link,omitempty"`
	Technologies []string `json:"technologies,omitempty"`
	StartDate    string   `json:"startDate,omitempty"`
	EndDate      string   `json:"endDate,omitempty"`
	Description  string   `json:"description"`
}

// CV is the owner's structured document.
type CV struct {
	OwnerID    string       `json:"ownerId"`
	FullName   string       `json:"fullName"`
	Headline   string       `json:"headline,omitempty"`
	Email      string       `json:"email,omitempty"`
	Phone      string       `json:"phone,omitempty"`
	Location   string       `json:"location,omitempty"`
	Links      []Link       `json:"links,omitempty"`
	Summary    string       `json:"summary"`
	Experience []Experience `json:"experience"`
	Education  []Education  `json:"education"`
	Projects   []Project    `json:"projects"`
	Skills     []string     `json:"skills,omitempty"`
	UpdatedAt  time.Time    `json:"updatedAt"`
}

// DescriptionRewrite is one rewritten array entry. A nil Description means the field was absent.
type DescriptionRewrite struct {
	Description *string `json:"description"`
}

// Rewrite is the subset shape returned by generation. Nil fields were absent from the response.
type Rewrite struct {
	Summary    *string              `json:"summary"`
	Experience []DescriptionRewrite `json:"experience"`
	Projects   []DescriptionRewrite `json:"projects"`
}
