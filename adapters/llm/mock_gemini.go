package llm

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"slices"
	"strconv"

	"google.golang.org/genai"
)

var durationPattern = regexp.MustCompile(`(?i)duration:\s*([0-9]+(?:\.[0-9]+)?)`)

// MockGenerator serves canned Gemini responses so the full pipeline can run
// offline. It answers audio requests with a short tone, image requests with a
// fixed roast and text requests with a four-beat animation script.
type MockGenerator struct {
	SampleRate int
}

func NewMockGenerator() *MockGenerator {
	return &MockGenerator{SampleRate: 24000}
}

func (m *MockGenerator) GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	switch {
	case config != nil && slices.Contains(config.ResponseModalities, "AUDIO"):
		return partResponse(&genai.Part{InlineData: &genai.Blob{
			MIMEType: fmt.Sprintf("audio/L16;codec=pcm;rate=%d", m.SampleRate),
			Data:     tone(m.SampleRate, 1.5),
		}}), nil
	case hasInlineData(contents):
		return textResponse(mockRoast), nil
	default:
		return textResponse(mockScript(promptText(contents))), nil
	}
}

const mockRoast = `{
  "overall_vibe": "You look like you dressed for three different events and attended none of them",
  "roast_lines": [
    "Look at you... posing like the camera owes you money.",
    "That lighting is doing overtime and still losing.",
    "Nah, the background has more personality than the outfit.",
    "Hold up... is that confidence or just a stiff neck?",
    "You've got the energy of a group project nobody finished.",
    "That smile says 'I read the terms and conditions'.",
    "See, some people have a style. You have a suggestion.",
    "The angle is brave. The results... less so."
  ],
  "confidence_rating": 7,
  "style_tags": ["awkward", "earnest", "chaotic"],
  "one_liner": "You're not a mess... you're a limited edition mess."
}`

func mockScript(prompt string) string {
	duration := 10.0
	if m := durationPattern.FindStringSubmatch(prompt); m != nil {
		if d, err := strconv.ParseFloat(m[1], 64); err == nil && d > 0 {
			duration = d
		}
	}

	beats := []struct {
		animation, expression string
		intensity             float64
		notes                 string
	}{
		{"idle", "neutral", 0.4, "Sizing up the target"},
		{"walkThink", "confused", 0.6, "Pacing through the setup"},
		{"spellcast", "laugh", 0.9, "Landing the punchlines"},
		{"relax", "smile", 0.5, "Letting it sink in"},
	}

	timeline := make([]map[string]any, 0, len(beats))
	step := duration / float64(len(beats))
	for i, b := range beats {
		end := step * float64(i+1)
		if i == len(beats)-1 {
			end = duration
		}
		timeline = append(timeline, map[string]any{
			"startTime":  step * float64(i),
			"endTime":    end,
			"animation":  b.animation,
			"expression": b.expression,
			"intensity":  b.intensity,
			"notes":      b.notes,
		})
	}

	script := map[string]any{
		"metadata": map[string]any{
			"duration":   duration,
			"transcript": "mock transcript",
			"intensity":  "medium",
			"style":      "observational",
			"notes":      "Canned script",
		},
		"timeline": timeline,
	}
	data, _ := json.Marshal(script)
	return string(data)
}

// tone renders a quiet 440Hz sine as 16-bit little-endian mono PCM.
func tone(sampleRate int, seconds float64) []byte {
	n := int(float64(sampleRate) * seconds)
	pcm := make([]byte, n*2)
	for i := 0; i < n; i++ {
		v := int16(3000 * math.Sin(2*math.Pi*440*float64(i)/float64(sampleRate)))
		binary.LittleEndian.PutUint16(pcm[i*2:], uint16(v))
	}
	return pcm
}

func hasInlineData(contents []*genai.Content) bool {
	for _, c := range contents {
		if c == nil {
			continue
		}
		for _, p := range c.Parts {
			if p != nil && p.InlineData != nil {
				return true
			}
		}
	}
	return false
}

func promptText(contents []*genai.Content) string {
	var text string
	for _, c := range contents {
		if c == nil {
			continue
		}
		for _, p := range c.Parts {
			if p != nil {
				text += p.Text
			}
		}
	}
	return text
}

func textResponse(text string) *genai.GenerateContentResponse {
	return partResponse(genai.NewPartFromText(text))
}

func partResponse(part *genai.Part) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content:      genai.NewContentFromParts([]*genai.Part{part}, genai.RoleModel),
			FinishReason: genai.FinishReasonStop,
		}},
	}
}
