package llm

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/satriahrh/roastme/domain/entities"
)

var errNoJSONObject = errors.New("no JSON object found")

const maxRepairAttempts = 8

// parseStrategy recovers a roast from raw model text. Strategies run in order
// and the first success wins.
type parseStrategy struct {
	name  string
	apply func(text string, truncated bool) (*entities.RoastResult, error)
}

var roastParseStrategies = []parseStrategy{
	{name: "direct", apply: parseDirect},
	{name: "fenced", apply: parseFenced},
	{name: "braces", apply: parseBraces},
	{name: "truncation_repair", apply: parseRepaired},
}

// rawRoast tolerates the loose typing models produce for confidence_rating.
type rawRoast struct {
	OverallVibe      string   `json:"overall_vibe"`
	RoastLines       []string `json:"roast_lines"`
	ConfidenceRating any      `json:"confidence_rating"`
	StyleTags        []string `json:"style_tags"`
	OneLiner         string   `json:"one_liner"`
}

func decodeRoast(text string) (*entities.RoastResult, error) {
	var raw rawRoast
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		return nil, err
	}
	if raw.OverallVibe == "" && len(raw.RoastLines) == 0 && raw.OneLiner == "" {
		return nil, errors.New("roast object has no content")
	}

	result := &entities.RoastResult{
		OverallVibe:      raw.OverallVibe,
		RoastLines:       raw.RoastLines,
		ConfidenceRating: confidenceValue(raw.ConfidenceRating),
		StyleTags:        raw.StyleTags,
		OneLiner:         raw.OneLiner,
	}
	result.Normalize()
	return result, nil
}

func confidenceValue(v any) int {
	switch n := v.(type) {
	case float64:
		return roundConfidence(n)
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(n), 64); err == nil {
			return roundConfidence(f)
		}
	}
	return entities.DefaultConfidence
}

// roundConfidence clamps before converting so out-of-range floats cannot overflow int.
func roundConfidence(f float64) int {
	if math.IsNaN(f) {
		return entities.DefaultConfidence
	}
	f = math.Max(float64(entities.MinConfidence), math.Min(float64(entities.MaxConfidence), f))
	return int(math.Round(f))
}

func parseDirect(text string, _ bool) (*entities.RoastResult, error) {
	return decodeRoast(strings.TrimSpace(text))
}

func parseFenced(text string, _ bool) (*entities.RoastResult, error) {
	stripped, ok := stripCodeFence(text)
	if !ok {
		return nil, errors.New("no code fence")
	}
	return decodeRoast(stripped)
}

func parseBraces(text string, _ bool) (*entities.RoastResult, error) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return nil, errNoJSONObject
	}
	return decodeRoast(text[start : end+1])
}

func parseRepaired(text string, truncated bool) (*entities.RoastResult, error) {
	if !truncated {
		return nil, errors.New("response was not truncated")
	}
	if stripped, ok := stripCodeFence(text); ok {
		text = stripped
	}
	start := strings.Index(text, "{")
	if start < 0 {
		return nil, errNoJSONObject
	}

	// A cut inside a key leaves nothing to close, so back off one element at
	// a time until the repaired document decodes.
	candidate := text[start:]
	var lastErr error
	for attempt := 0; attempt < maxRepairAttempts; attempt++ {
		result, err := decodeRoast(repairTruncatedJSON(candidate))
		if err == nil {
			return result, nil
		}
		lastErr = err
		cut := strings.LastIndex(candidate, ",")
		if cut <= 0 {
			break
		}
		candidate = candidate[:cut]
	}
	return nil, lastErr
}

// parseRoastText runs every strategy and returns the first success.
func parseRoastText(text string, truncated bool) (*entities.RoastResult, string, error) {
	var errs []error
	for _, s := range roastParseStrategies {
		result, err := s.apply(text, truncated)
		if err == nil {
			return result, s.name, nil
		}
		errs = append(errs, fmt.Errorf("%s: %w", s.name, err))
	}
	return nil, "", errors.Join(errs...)
}

// stripCodeFence removes a ```json ... ``` wrapper.
func stripCodeFence(text string) (string, bool) {
	s := strings.TrimSpace(text)
	if !strings.HasPrefix(s, "```") {
		return "", false
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	} else {
		s = strings.TrimPrefix(s, "json")
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s), true
}

// repairTruncatedJSON closes an unterminated string and any open arrays or
// objects so a response cut off by the token limit can still be decoded.
func repairTruncatedJSON(s string) string {
	var (
		stack    []byte
		inString bool
		escaped  bool
	)
	for i := 0; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			stack = append(stack, '}')
		case '[':
			stack = append(stack, ']')
		case '}', ']':
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
		}
	}

	var b strings.Builder
	b.WriteString(s)
	if inString {
		if escaped {
			// drop the dangling backslash
			trimmed := b.String()
			b.Reset()
			b.WriteString(trimmed[:len(trimmed)-1])
		}
		b.WriteByte('"')
	}

	out := strings.TrimRight(b.String(), " \t\r\n")
	switch {
	case strings.HasSuffix(out, ","):
		out = strings.TrimSuffix(out, ",")
	case strings.HasSuffix(out, ":"):
		out += "null"
	}

	for i := len(stack) - 1; i >= 0; i-- {
		out += string(stack[i])
	}
	return out
}
