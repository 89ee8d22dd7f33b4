package usecase

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/satriahrh/roastme/domain/entities"
)

const (
	secondsPerWord     = 0.4
	minScriptDuration  = 3.0
	maxScriptDuration  = 120.0
	transcriptEchoSize = 100
)

var (
	errNotObject   = errors.New("script is not a JSON object")
	errNoTimeline  = errors.New("script timeline is not a list")
	errNoKeyframes = errors.New("script timeline has no keyframes")
)

type fallbackBeat struct {
	animation  string
	expression string
	intensity  float64
	notes      string
}

// Opening, build, climax, close. Each beat takes a quarter of the duration.
var fallbackBeats = []fallbackBeat{
	{"idle", "neutral", 0.5, "Opening - neutral stance, setting up"},
	{"sitTalk", "smile", 0.7, "Building - friendly, conversational tone"},
	{"spellcast", "laugh", 0.9, "Climax - high energy, emphasizing humor"},
	{"relax", "smile", 0.6, "Closing - settling down, satisfied expression"},
}

// EstimateDuration guesses how long text takes to speak.
func EstimateDuration(text string) float64 {
	d := float64(len(strings.Fields(text))) * secondsPerWord
	if d < minScriptDuration {
		return minScriptDuration
	}
	if d > maxScriptDuration {
		return maxScriptDuration
	}
	return d
}

// TruncateTranscript keeps the first 100 characters and marks the cut.
func TruncateTranscript(text string) string {
	runes := []rune(text)
	if len(runes) <= transcriptEchoSize {
		return text
	}
	return string(runes[:transcriptEchoSize]) + "..."
}

// FallbackScript builds the fixed four-beat timeline used whenever the model
// output cannot be trusted. It never touches the network.
func FallbackScript(transcript string, duration float64) entities.AnimationScript {
	if duration <= 0 {
		duration = minScriptDuration
	}

	n := float64(len(fallbackBeats))
	timeline := make([]entities.Keyframe, 0, len(fallbackBeats))
	for i, beat := range fallbackBeats {
		end := duration * float64(i+1) / n
		if i == len(fallbackBeats)-1 {
			end = duration
		}
		timeline = append(timeline, entities.Keyframe{
			StartTime:  duration * float64(i) / n,
			EndTime:    end,
			Animation:  beat.animation,
			Expression: beat.expression,
			Intensity:  beat.intensity,
			Notes:      beat.notes,
		})
	}

	return entities.AnimationScript{
		Metadata: entities.ScriptMetadata{
			Duration:   duration,
			Transcript: TruncateTranscript(transcript),
			Intensity:  entities.ScriptIntensityMedium,
			Style:      "comedic",
			Notes:      "Generated using fallback pattern",
			Fallback:   true,
		},
		Timeline: timeline,
	}
}

// SanitizeScript fills keyframe defaults, clamps intensity and drops entries
// that are not objects. It fails when doc is not an object, when its
// timeline is not a list, or when no keyframe survives.
func SanitizeScript(doc any) (*entities.AnimationScript, error) {
	script, ok := doc.(map[string]any)
	if !ok {
		return nil, errNotObject
	}
	items, ok := script["timeline"].([]any)
	if !ok {
		return nil, errNoTimeline
	}

	out := &entities.AnimationScript{Timeline: make([]entities.Keyframe, 0, len(items))}
	if metadata, ok := script["metadata"].(map[string]any); ok {
		out.Metadata = sanitizeMetadata(metadata)
	}

	for _, item := range items {
		frame, ok := item.(map[string]any)
		if !ok {
			continue
		}
		out.Timeline = append(out.Timeline, sanitizeKeyframe(frame))
	}
	if len(out.Timeline) == 0 {
		return nil, errNoKeyframes
	}
	return out, nil
}

func sanitizeMetadata(m map[string]any) entities.ScriptMetadata {
	duration, _ := number(m["duration"])
	fallback, _ := m["fallback"].(bool)
	return entities.ScriptMetadata{
		Duration:   duration,
		Transcript: stringOr(m["transcript"], ""),
		Intensity:  stringOr(m["intensity"], ""),
		Style:      stringOr(m["style"], ""),
		Notes:      stringOr(m["notes"], ""),
		Fallback:   fallback,
	}
}

func sanitizeKeyframe(m map[string]any) entities.Keyframe {
	start, _ := number(m["startTime"])
	end, _ := number(m["endTime"])

	intensity := entities.DefaultIntensity
	if n, ok := number(m["intensity"]); ok {
		intensity = entities.ClampIntensity(n)
	}

	return entities.Keyframe{
		StartTime:  start,
		EndTime:    end,
		Animation:  stringOr(m["animation"], entities.DefaultAnimation),
		Expression: stringOr(m["expression"], entities.DefaultExpression),
		Intensity:  intensity,
		Notes:      stringOr(m["notes"], ""),
	}
}

func stringOr(v any, fallback string) string {
	if s, ok := v.(string); ok && s != "" {
		return s
	}
	return fallback
}

// extractJSONObject decodes the span between the first '{' and the last '}'.
func extractJSONObject(text string) (any, error) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return nil, errors.New("no JSON object in model response")
	}

	var doc any
	if err := json.Unmarshal([]byte(text[start:end+1]), &doc); err != nil {
		return nil, fmt.Errorf("decode script: %w", err)
	}
	return doc, nil
}
