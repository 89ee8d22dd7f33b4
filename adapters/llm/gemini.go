package llm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/satriahrh/roastme/domain"
)

const defaultTimeout = 60 * time.Second

// ContentGenerator is the part of the genai Models service this package
// needs. *genai.Models satisfies it; tests substitute canned responses.
type ContentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// GeminiConfig holds connection settings for the Gemini API
type GeminiConfig struct {
	APIKey  string // Required
	BaseURL string // Optional: overrides the public endpoint
}

// ValidateGeminiConfig validates the GeminiConfig
func ValidateGeminiConfig(config GeminiConfig) error {
	if config.APIKey == "" {
		return domain.ErrMissingCredential
	}
	return nil
}

// NewGeminiGenerator creates a genai client and returns its Models service.
func NewGeminiGenerator(ctx context.Context, config GeminiConfig, logger *zap.Logger) (ContentGenerator, error) {
	if err := ValidateGeminiConfig(config); err != nil {
		return nil, err
	}

	clientConfig := &genai.ClientConfig{
		APIKey:  config.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if config.BaseURL != "" {
		clientConfig.HTTPOptions = genai.HTTPOptions{BaseURL: config.BaseURL}
		logger.Info("Using custom Gemini base URL", zap.String("baseURL", config.BaseURL))
	}

	client, err := genai.NewClient(ctx, clientConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return client.Models, nil
}

// UnavailableGenerator fails every call with the same error. It stands in for
// the real client when no credential is configured so the service can start
// and report the problem per request.
type UnavailableGenerator struct {
	Err error
}

func (u UnavailableGenerator) GenerateContent(context.Context, string, []*genai.Content, *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	return nil, u.Err
}

// Generate runs one model call under timeout and maps deadline expiry to
// domain.ErrUpstreamTimeout.
func Generate(ctx context.Context, gen ContentGenerator, timeout time.Duration, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	resp, err := gen.GenerateContent(ctx, model, contents, config)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: %s after %s", domain.ErrUpstreamTimeout, model, timeout)
		}
		return nil, err
	}
	if resp == nil {
		return &genai.GenerateContentResponse{}, nil
	}
	return resp, nil
}

// firstCandidate returns nil when the response has no usable candidate.
func firstCandidate(resp *genai.GenerateContentResponse) *genai.Candidate {
	if len(resp.Candidates) == 0 {
		return nil
	}
	return resp.Candidates[0]
}

// firstText concatenates the text parts of the first candidate, skipping
// thought parts.
func firstText(resp *genai.GenerateContentResponse) string {
	c := firstCandidate(resp)
	if c == nil || c.Content == nil {
		return ""
	}
	var text string
	for _, part := range c.Content.Parts {
		if part != nil && part.Text != "" && !part.Thought {
			text += part.Text
		}
	}
	return text
}

// isBlocked reports a response the service filtered for safety.
func isBlocked(resp *genai.GenerateContentResponse) bool {
	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
		return true
	}
	c := firstCandidate(resp)
	if c == nil {
		return true
	}
	return c.FinishReason == genai.FinishReasonSafety && firstText(resp) == ""
}

// preview truncates s for log fields.
func preview(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
