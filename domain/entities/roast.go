package entities

import "strings"

const (
	MinConfidence = 0
	MaxConfidence = 10

	// DefaultConfidence is used when the model omits confidence_rating.
	DefaultConfidence = 5
)

// RoastResult is the structured roast returned by the vision model
type RoastResult struct {
	OverallVibe      string   `json:"overall_vibe"`
	RoastLines       []string `json:"roast_lines"`
	ConfidenceRating int      `json:"confidence_rating"`
	StyleTags        []string `json:"style_tags"`
	OneLiner         string   `json:"one_liner"`
}

// ClampConfidence forces a confidence rating into [0, 10].
func ClampConfidence(v int) int {
	if v < MinConfidence {
		return MinConfidence
	}
	if v > MaxConfidence {
		return MaxConfidence
	}
	return v
}

// Normalize clamps the confidence rating and replaces nil slices so the
// result always serializes with arrays.
func (r *RoastResult) Normalize() {
	r.ConfidenceRating = ClampConfidence(r.ConfidenceRating)
	if r.RoastLines == nil {
		r.RoastLines = []string{}
	}
	if r.StyleTags == nil {
		r.StyleTags = []string{}
	}
}

// BuildNarration turns a roast into the text that gets spoken.
func BuildNarration(r RoastResult) string {
	var b strings.Builder
	b.WriteString(r.OverallVibe)
	b.WriteString(". ")
	if len(r.RoastLines) > 0 {
		b.WriteString(strings.Join(r.RoastLines, " "))
	}
	if r.OneLiner != "" {
		b.WriteString(" And here's the best part: ")
		b.WriteString(r.OneLiner)
	}
	return b.String()
}
