package llm

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/satriahrh/roastme/domain/repositories"
)

const (
	defaultAnimationTemperature = 0.7
	defaultAnimationMaxTokens   = 2000
)

// ErrNoCandidates means the model returned nothing usable.
var ErrNoCandidates = errors.New("model returned no candidates")

// AnimationConfig holds configuration for the GeminiScriptWriter
type AnimationConfig struct {
	Model           string
	Temperature     *float32
	MaxOutputTokens int
	Timeout         time.Duration
}

// GeminiScriptWriter implements repositories.ScriptWriter
type GeminiScriptWriter struct {
	gen             ContentGenerator
	logger          *zap.Logger
	model           string
	temperature     float32
	maxOutputTokens int
	timeout         time.Duration
}

var _ repositories.ScriptWriter = (*GeminiScriptWriter)(nil)

func NewGeminiScriptWriter(gen ContentGenerator, config AnimationConfig, logger *zap.Logger) *GeminiScriptWriter {
	model := config.Model
	if model == "" {
		model = defaultVisionModel
		logger.Info("Using default animation model", zap.String("model", model))
	}

	temperature := float32(defaultAnimationTemperature)
	if config.Temperature != nil {
		temperature = *config.Temperature
	}

	maxOutputTokens := config.MaxOutputTokens
	if maxOutputTokens == 0 {
		maxOutputTokens = defaultAnimationMaxTokens
	}

	timeout := config.Timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}

	return &GeminiScriptWriter{
		gen:             gen,
		logger:          logger,
		model:           model,
		temperature:     temperature,
		maxOutputTokens: maxOutputTokens,
		timeout:         timeout,
	}
}

// WriteScript returns the raw text of the first candidate.
func (w *GeminiScriptWriter) WriteScript(ctx context.Context, prompt string) (string, error) {
	config := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(w.temperature),
		MaxOutputTokens: int32(w.maxOutputTokens),
	}

	resp, err := Generate(ctx, w.gen, w.timeout, w.model, genai.Text(prompt), config)
	if err != nil {
		return "", err
	}
	if len(resp.Candidates) == 0 {
		return "", ErrNoCandidates
	}

	text := firstText(resp)
	if text == "" {
		return "", ErrNoCandidates
	}

	w.logger.Debug("Animation script generated",
		zap.String("model", w.model),
		zap.String("response_preview", preview(text, 100)))
	return text, nil
}
