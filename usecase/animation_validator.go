package usecase

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/satriahrh/roastme/domain/entities"
)

var requiredKeyframeFields = []string{"startTime", "endTime", "animation", "expression", "intensity"}

// ValidationThresholds are the tolerances applied to a generated script
type ValidationThresholds struct {
	DurationTolerance float64 // metadata.duration may differ from the target by this much
	MaxGap            float64 // largest allowed gap between consecutive keyframes
	StartTolerance    float64 // first keyframe must start by this time
	EndTolerance      float64 // last keyframe must end within this much of the target
	MinKeyframes      int
	MaxKeyframes      int
}

// DefaultValidationThresholds returns the stock tolerances.
func DefaultValidationThresholds() ValidationThresholds {
	return ValidationThresholds{
		DurationTolerance: 2,
		MaxGap:            1,
		StartTolerance:    0.5,
		EndTolerance:      1,
		MinKeyframes:      3,
		MaxKeyframes:      10,
	}
}

// ValidationResult separates hard issues from advisory warnings. A script
// is usable exactly when Issues is empty.
type ValidationResult struct {
	OK       bool     `json:"ok"`
	Issues   []string `json:"issues"`
	Warnings []string `json:"warnings"`
}

type validator struct {
	th     ValidationThresholds
	result ValidationResult
}

func (v *validator) issue(format string, args ...any) {
	v.result.Issues = append(v.result.Issues, fmt.Sprintf(format, args...))
}

func (v *validator) warn(format string, args ...any) {
	v.result.Warnings = append(v.result.Warnings, fmt.Sprintf(format, args...))
}

// ValidateScript checks a decoded script document against the catalog and
// the timing rules for a narration lasting expected seconds.
func ValidateScript(doc any, expected float64, th ValidationThresholds) ValidationResult {
	v := &validator{th: th, result: ValidationResult{Issues: []string{}, Warnings: []string{}}}
	v.validate(doc, expected)
	v.result.OK = len(v.result.Issues) == 0
	return v.result
}

func (v *validator) validate(doc any, expected float64) {
	script, ok := doc.(map[string]any)
	if !ok {
		v.issue("Script is not a JSON object")
		return
	}

	v.validateMetadata(script["metadata"], expected)

	timeline, ok := script["timeline"].([]any)
	if !ok || len(timeline) == 0 {
		v.issue("Timeline is empty or missing")
		return
	}
	if len(timeline) > v.th.MaxKeyframes {
		v.warn("Timeline has too many keyframes (%d > %d)", len(timeline), v.th.MaxKeyframes)
	}
	if len(timeline) < v.th.MinKeyframes {
		v.warn("Timeline should have at least %d keyframes, got %d", v.th.MinKeyframes, len(timeline))
	}

	for i, item := range timeline {
		v.validateKeyframe(i, item, expected)
	}
	v.validateContinuity(timeline, expected)
}

func (v *validator) validateMetadata(raw any, expected float64) {
	metadata, ok := raw.(map[string]any)
	if !ok {
		v.issue("Missing 'metadata' section")
		return
	}

	duration, ok := number(metadata["duration"])
	switch {
	case !ok:
		v.issue("Metadata duration is missing or not numeric")
	case duration <= 0:
		v.issue("Metadata duration must be positive, got %s", formatSeconds(duration))
	case math.Abs(duration-expected) > v.th.DurationTolerance:
		v.issue("Duration mismatch: expected ~%ss, got %ss", formatSeconds(expected), formatSeconds(duration))
	}

	transcript, ok := metadata["transcript"].(string)
	if !ok || strings.TrimSpace(transcript) == "" {
		v.issue("Metadata transcript must be a non-empty string")
	}

	if raw := metadata["intensity"]; raw != nil {
		if s, ok := raw.(string); !ok || !entities.IsScriptIntensity(s) {
			v.issue("Invalid metadata intensity: %v", raw)
		}
	}
}

func (v *validator) validateKeyframe(i int, item any, expected float64) {
	frame, ok := item.(map[string]any)
	if !ok {
		v.issue("Keyframe %d is not an object", i)
		return
	}

	for _, field := range requiredKeyframeFields {
		if _, present := frame[field]; !present {
			v.issue("Keyframe %d missing required field '%s'", i, field)
		}
	}

	start, startOK := number(frame["startTime"])
	end, endOK := number(frame["endTime"])
	if _, present := frame["startTime"]; present && !startOK {
		v.issue("Keyframe %d startTime must be numeric", i)
	}
	if _, present := frame["endTime"]; present && !endOK {
		v.issue("Keyframe %d endTime must be numeric", i)
	}
	if startOK && start < 0 {
		v.issue("Keyframe %d startTime must be >= 0", i)
	}
	if startOK && endOK && end <= start {
		v.issue("Keyframe %d endTime must be greater than startTime", i)
	}
	if endOK && end > expected+v.th.EndTolerance {
		v.issue("Keyframe %d endTime %ss exceeds duration %ss", i, formatSeconds(end), formatSeconds(expected))
	}

	if raw, present := frame["animation"]; present {
		if s, ok := raw.(string); !ok || !entities.IsAnimation(s) {
			v.issue("Keyframe %d has unknown animation '%v'", i, raw)
		}
	}
	if raw, present := frame["expression"]; present {
		if s, ok := raw.(string); !ok || !entities.IsExpression(s) {
			v.issue("Keyframe %d has unknown expression '%v'", i, raw)
		}
	}
	if raw, present := frame["intensity"]; present {
		n, ok := number(raw)
		if !ok || n < entities.MinIntensity || n > entities.MaxIntensity {
			v.issue("Keyframe %d intensity must be a number between 0 and 1, got %v", i, raw)
		}
	}
}

func (v *validator) validateContinuity(timeline []any, expected float64) {
	if start, ok := frameTime(timeline[0], "startTime"); ok && start > v.th.StartTolerance {
		v.issue("Timeline should start near 0 seconds")
	}
	if end, ok := frameTime(timeline[len(timeline)-1], "endTime"); ok && end < expected-v.th.EndTolerance {
		v.issue("Timeline should end near %ss, ends at %ss", formatSeconds(expected), formatSeconds(end))
	}

	for i := 0; i < len(timeline)-1; i++ {
		end, ok1 := frameTime(timeline[i], "endTime")
		next, ok2 := frameTime(timeline[i+1], "startTime")
		if ok1 && ok2 && next-end > v.th.MaxGap {
			v.issue("Gap in timeline between keyframe %d and %d", i, i+1)
		}
	}
}

func frameTime(item any, field string) (float64, bool) {
	frame, ok := item.(map[string]any)
	if !ok {
		return 0, false
	}
	return number(frame[field])
}

// number accepts the numeric types a decoded or hand-built document holds.
// Booleans and numeric strings are not numbers.
func number(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, !math.IsNaN(n) && !math.IsInf(n, 0)
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}
