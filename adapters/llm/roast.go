package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/satriahrh/roastme/domain"
	"github.com/satriahrh/roastme/domain/entities"
	"github.com/satriahrh/roastme/domain/repositories"
)

const (
	defaultVisionModel      = "gemini-3-flash-preview"
	defaultRoastTemperature = 0.8
	defaultRoastMaxTokens   = 2000
	minRoastLines           = 8
)

const roastPrompt = `You are a roast comedian talking straight to the person in this picture.

Delivery:
- Write the way people talk out loud, not the way they write
- Short, punchy sentences with a relaxed, confident rhythm
- Playful, never hateful. Clever observations beat insults
- Give the jokes room. Pauses matter

Language:
- Use contractions (you're, ain't, that's, can't)
- A little slang is fine, don't overdo it
- Drop in the occasional "nah", "look", "hold up"
- Repeat yourself if it helps the rhythm

Targets:
- Roast what they're doing, the vibe and the presentation, never identity
- Stay funny, not aggressive
- Only talk about what you can actually SEE in the image

Output:
- Follow the JSON schema exactly. No markdown, no commentary
- 8 to 12 roast_lines, each one different
- Speak every roast line directly to them
- Use ellipses (...) for dramatic pauses
- Make the one_liner short and memorable`

// Appended when the service refuses schema-constrained output.
const roastFieldsInstruction = `

Return ONLY a JSON object with exactly these fields:
{"overall_vibe": string, "roast_lines": [string, ... at least 8], "confidence_rating": integer 0-10, "style_tags": [string, ...], "one_liner": string}`

var roastSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"overall_vibe": {
			Type:        genai.TypeString,
			Description: "Overall impression or vibe of the person/image",
		},
		"roast_lines": {
			Type:        genai.TypeArray,
			Items:       &genai.Schema{Type: genai.TypeString},
			Description: "8-12 individual roast jokes or observations - make them diverse and punchy",
			MinItems:    genai.Ptr[int64](minRoastLines),
		},
		"confidence_rating": {
			Type:        genai.TypeInteger,
			Description: "Perceived confidence level from 0 to 10",
		},
		"style_tags": {
			Type:        genai.TypeArray,
			Items:       &genai.Schema{Type: genai.TypeString},
			Description: "Tone/style tags such as 'awkward', 'bold', 'chaotic'",
		},
		"one_liner": {
			Type:        genai.TypeString,
			Description: "Best single-line roast",
		},
	},
	PropertyOrdering: []string{"overall_vibe", "roast_lines", "confidence_rating", "style_tags", "one_liner"},
	Required:         []string{"overall_vibe", "roast_lines", "confidence_rating", "style_tags", "one_liner"},
}

// RoastConfig holds configuration for the GeminiRoaster
type RoastConfig struct {
	Model           string        // Optional: vision model name
	Temperature     *float32      // Optional: sampling temperature, nil uses the default
	MaxOutputTokens int           // Optional: output token budget
	Timeout         time.Duration // Optional: per-call timeout
}

// GeminiRoaster implements repositories.RoastGenerator with a Gemini vision model
type GeminiRoaster struct {
	gen             ContentGenerator
	logger          *zap.Logger
	model           string
	temperature     float32
	maxOutputTokens int
	timeout         time.Duration
}

var _ repositories.RoastGenerator = (*GeminiRoaster)(nil)

// NewGeminiRoaster creates a roaster, filling unset config with defaults
func NewGeminiRoaster(gen ContentGenerator, config RoastConfig, logger *zap.Logger) *GeminiRoaster {
	model := config.Model
	if model == "" {
		model = defaultVisionModel
		logger.Info("Using default vision model", zap.String("model", model))
	}

	temperature := float32(defaultRoastTemperature)
	if config.Temperature != nil {
		temperature = *config.Temperature
	} else {
		logger.Info("Using default roast temperature", zap.Float32("temperature", temperature))
	}

	maxOutputTokens := config.MaxOutputTokens
	if maxOutputTokens == 0 {
		maxOutputTokens = defaultRoastMaxTokens
		logger.Info("Using default roast maxOutputTokens", zap.Int("maxOutputTokens", maxOutputTokens))
	}

	timeout := config.Timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}

	return &GeminiRoaster{
		gen:             gen,
		logger:          logger,
		model:           model,
		temperature:     temperature,
		maxOutputTokens: maxOutputTokens,
		timeout:         timeout,
	}
}

// Ready returns the configuration error when the roaster runs without a client.
func (g *GeminiRoaster) Ready() error {
	if u, ok := g.gen.(UnavailableGenerator); ok {
		return u.Err
	}
	return nil
}

// GenerateRoast sends the image to the vision model and parses the roast.
func (g *GeminiRoaster) GenerateRoast(ctx context.Context, image []byte, mimeType string) (*entities.RoastResult, error) {
	g.logger.Info("Generating roast with vision model",
		zap.String("model", g.model),
		zap.Int("imageBytes", len(image)))

	resp, err := g.request(ctx, image, mimeType, true)
	if err != nil && isSchemaRejection(err) {
		g.logger.Warn("Structured output rejected, retrying without schema", zap.Error(err))
		resp, err = g.request(ctx, image, mimeType, false)
	}
	if err != nil {
		return nil, err
	}

	if isBlocked(resp) {
		g.logger.Warn("Roast response blocked by safety filters")
		return nil, domain.ErrBlocked
	}

	text := firstText(resp)
	truncated := firstCandidate(resp).FinishReason == genai.FinishReasonMaxTokens
	result, strategy, err := parseRoastText(text, truncated)
	if err != nil {
		g.logger.Error("Failed to parse roast response",
			zap.Bool("truncated", truncated),
			zap.String("response_preview", preview(text, 200)),
			zap.Error(err))
		return nil, fmt.Errorf("%w: %v", domain.ErrParseFailure, err)
	}

	g.logger.Info("Roast generated successfully",
		zap.String("strategy", strategy),
		zap.Int("roastLines", len(result.RoastLines)),
		zap.Int("confidence", result.ConfidenceRating))
	return result, nil
}

func (g *GeminiRoaster) request(ctx context.Context, image []byte, mimeType string, structured bool) (*genai.GenerateContentResponse, error) {
	prompt := roastPrompt
	config := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(g.temperature),
		MaxOutputTokens: int32(g.maxOutputTokens),
	}
	if structured {
		config.ResponseMIMEType = "application/json"
		config.ResponseSchema = roastSchema
	} else {
		prompt += roastFieldsInstruction
	}

	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromText(prompt),
			genai.NewPartFromBytes(image, mimeType),
		}, genai.RoleUser),
	}
	return Generate(ctx, g.gen, g.timeout, g.model, contents, config)
}

// isSchemaRejection reports a 400 from the service, which is how it refuses
// a response schema it cannot honor.
func isSchemaRejection(err error) bool {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code == http.StatusBadRequest
	}
	return false
}
