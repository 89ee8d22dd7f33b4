package entities

// Script-level intensity labels
const (
	ScriptIntensityLow    = "low"
	ScriptIntensityMedium = "medium"
	ScriptIntensityHigh   = "high"
)

// IsScriptIntensity reports whether s is one of low, medium or high.
func IsScriptIntensity(s string) bool {
	switch s {
	case ScriptIntensityLow, ScriptIntensityMedium, ScriptIntensityHigh:
		return true
	}
	return false
}

// Keyframe pairs a body animation and a facial expression over a time span
type Keyframe struct {
	StartTime  float64 `json:"startTime"`
	EndTime    float64 `json:"endTime"`
	Animation  string  `json:"animation"`
	Expression string  `json:"expression"`
	Intensity  float64 `json:"intensity"`
	Notes      string  `json:"notes"`
}

// ScriptMetadata describes the whole performance
type ScriptMetadata struct {
	Duration   float64 `json:"duration"`
	Transcript string  `json:"transcript"`
	Intensity  string  `json:"intensity,omitempty"`
	Style      string  `json:"style,omitempty"`
	Notes      string  `json:"notes,omitempty"`
	Fallback   bool    `json:"fallback"`
}

// AnimationScript is a timeline of keyframes synchronized to the narration
type AnimationScript struct {
	Metadata ScriptMetadata `json:"metadata"`
	Timeline []Keyframe     `json:"timeline"`
}

// Document converts the script into the generic JSON-shaped form the
// validator and sanitizer operate on.
func (s AnimationScript) Document() map[string]any {
	timeline := make([]any, 0, len(s.Timeline))
	for _, k := range s.Timeline {
		timeline = append(timeline, map[string]any{
			"startTime":  k.StartTime,
			"endTime":    k.EndTime,
			"animation":  k.Animation,
			"expression": k.Expression,
			"intensity":  k.Intensity,
			"notes":      k.Notes,
		})
	}

	metadata := map[string]any{
		"duration":   s.Metadata.Duration,
		"transcript": s.Metadata.Transcript,
		"fallback":   s.Metadata.Fallback,
	}
	if s.Metadata.Intensity != "" {
		metadata["intensity"] = s.Metadata.Intensity
	}
	if s.Metadata.Style != "" {
		metadata["style"] = s.Metadata.Style
	}
	if s.Metadata.Notes != "" {
		metadata["notes"] = s.Metadata.Notes
	}

	return map[string]any{
		"metadata": metadata,
		"timeline": timeline,
	}
}
