package cv

import (
	"fmt"

	"github.com/zhouzirui/path-finder/backend/internal/model/cv"
)

// Skip reasons reported in MergeReport.
const (
	SkipAbsent         = "absent"
	SkipLengthMismatch = "length_mismatch"
)

// SkippedField records an array the merge left untouched.
type SkippedField struct {
	Field     string `json:"field"`
	Reason    string `json:"reason"`
	Original  int    `json:"original"`
	Rewritten int    `json:"rewritten"`
}

func (s SkippedField) String() string {
	return fmt.Sprintf("%s: %s (original=%d rewritten=%d)", s.Field, s.Reason, s.Original, s.Rewritten)
}

// MergeReport lists what the merge applied and what it silently kept.
type MergeReport struct {
	SummaryUpdated bool           `json:"summaryUpdated"`
	Updated        []string       `json:"updated"`
	Skipped        []SkippedField `json:"skipped"`
}

// Merge applies rewritten text onto original. The summary is replaced when present. Each array
// is replaced description-by-description only when the rewrite has exactly as many entries as
// the original; otherwise the original array is kept as is. Every other field, including all
// non-description fields of array elements, comes from original.
func Merge(original cv.CV, rewrite cv.Rewrite) (cv.CV, MergeReport) {
	merged := original
	report := MergeReport{Updated: []string{}, Skipped: []SkippedField{}}

	if rewrite.Summary != nil {
		merged.Summary = *rewrite.Summary
		report.SummaryUpdated = true
		report.Updated = append(report.Updated, "summary")
	}

	if descs, skip, ok := descriptions("experience", len(original.Experience), rewrite.Experience); ok {
		if len(original.Experience) > 0 {
			experience := make([]cv.Experience, len(original.Experience))
			copy(experience, original.Experience)
			for i := range experience {
				if descs[i] != nil {
					experience[i].Description = *descs[i]
				}
			}
			merged.Experience = experience
		}
		report.Updated = append(report.Updated, "experience")
	} else {
		report.Skipped = append(report.Skipped, skip)
	}

	if descs, skip, ok := descriptions("projects", len(original.Projects), rewrite.Projects); ok {
		if len(original.Projects) > 0 {
			projects := make([]cv.Project, len(original.Projects))
			copy(projects, original.Projects)
			for i := range projects {
				if descs[i] != nil {
					projects[i].Description = *descs[i]
				}
			}
			merged.Projects = projects
		}
		report.Updated = append(report.Updated, "projects")
	} else {
		report.Skipped = append(report.Skipped, skip)
	}

	return merged, report
}

// descriptions applies the cardinality check. A nil entry description keeps the original text.
func descriptions(field string, originalLen int, rewritten []cv.DescriptionRewrite) ([]*string, SkippedField, bool) {
	if rewritten == nil {
		return nil, SkippedField{Field: field, Reason: SkipAbsent, Original: originalLen}, false
	}
	if len(rewritten) != originalLen {
		return nil, SkippedField{Field: field, Reason: SkipLengthMismatch, Original: originalLen, Rewritten: len(rewritten)}, false
	}
	out := make([]*string, len(rewritten))
	for i, entry := range rewritten {
		out[i] = entry.Description
	}
	return out, SkippedField{}, true
}
