package llm

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"google.golang.org/genai"

	"github.com/satriahrh/roastme/domain"
)

const validRoastJSON = `{"overall_vibe":"Main character energy","roast_lines":["a","b","c","d","e","f","g","h"],"confidence_rating":15,"style_tags":["bold"],"one_liner":"Iconic, allegedly."}`

func newTestRoaster(t *testing.T, gen ContentGenerator) *GeminiRoaster {
	return NewGeminiRoaster(gen, RoastConfig{Timeout: time.Second}, zaptest.NewLogger(t))
}

func TestGenerateRoast_Structured(t *testing.T) {
	gen := &fakeGenerator{replies: []fakeReply{textReply(validRoastJSON, genai.FinishReasonStop)}}
	roaster := newTestRoaster(t, gen)

	result, err := roaster.GenerateRoast(context.Background(), []byte("png"), "image/png")
	require.NoError(t, err)

	assert.Equal(t, "Main character energy", result.OverallVibe)
	assert.Len(t, result.RoastLines, 8)
	assert.Equal(t, 10, result.ConfidenceRating, "confidence must be clamped")
	assert.Equal(t, "Iconic, allegedly.", result.OneLiner)

	require.Equal(t, 1, gen.callCount())
	cfg := gen.configs[0]
	assert.Equal(t, "application/json", cfg.ResponseMIMEType)
	require.NotNil(t, cfg.ResponseSchema)
	assert.Equal(t, int64(8), *cfg.ResponseSchema.Properties["roast_lines"].MinItems)
	assert.Equal(t, defaultVisionModel, gen.models[0])

	parts := gen.contents[0][0].Parts
	require.Len(t, parts, 2)
	assert.Equal(t, "image/png", parts[1].InlineData.MIMEType)
}

func TestGenerateRoast_RetriesWithoutSchema(t *testing.T) {
	gen := &fakeGenerator{replies: []fakeReply{
		{err: genai.APIError{Code: http.StatusBadRequest, Message: "schema not supported"}},
		textReply(validRoastJSON, genai.FinishReasonStop),
	}}
	roaster := newTestRoaster(t, gen)

	_, err := roaster.GenerateRoast(context.Background(), []byte("png"), "image/png")
	require.NoError(t, err)

	require.Equal(t, 2, gen.callCount())
	assert.Nil(t, gen.configs[1].ResponseSchema)
	assert.Empty(t, gen.configs[1].ResponseMIMEType)
	assert.Contains(t, gen.contents[1][0].Parts[0].Text, "Return ONLY a JSON object")
}

func TestGenerateRoast_OtherErrorsDoNotRetry(t *testing.T) {
	boom := genai.APIError{Code: http.StatusInternalServerError, Message: "boom"}
	gen := &fakeGenerator{replies: []fakeReply{{err: boom}}}
	roaster := newTestRoaster(t, gen)

	_, err := roaster.GenerateRoast(context.Background(), []byte("png"), "image/png")
	require.Error(t, err)
	assert.Equal(t, 1, gen.callCount())

	var apiErr genai.APIError
	assert.True(t, errors.As(err, &apiErr))
}

func TestGenerateRoast_Blocked(t *testing.T) {
	roaster := newTestRoaster(t, &fakeGenerator{replies: []fakeReply{emptyReply()}})
	_, err := roaster.GenerateRoast(context.Background(), []byte("png"), "image/png")
	assert.ErrorIs(t, err, domain.ErrBlocked)

	feedback := fakeReply{resp: &genai.GenerateContentResponse{
		Candidates:     textReply("", genai.FinishReasonSafety).resp.Candidates,
		PromptFeedback: &genai.GenerateContentResponsePromptFeedback{BlockReason: genai.BlockedReasonSafety},
	}}
	roaster = newTestRoaster(t, &fakeGenerator{replies: []fakeReply{feedback}})
	_, err = roaster.GenerateRoast(context.Background(), []byte("png"), "image/png")
	assert.ErrorIs(t, err, domain.ErrBlocked)
}

func TestGenerateRoast_NilCandidate(t *testing.T) {
	gen := &fakeGenerator{replies: []fakeReply{{resp: &genai.GenerateContentResponse{Candidates: []*genai.Candidate{nil}}}}}
	_, err := newTestRoaster(t, gen).GenerateRoast(context.Background(), []byte("png"), "image/png")
	assert.ErrorIs(t, err, domain.ErrBlocked)
}

func TestGenerateRoast_ZeroTemperature(t *testing.T) {
	gen := &fakeGenerator{replies: []fakeReply{textReply(validRoastJSON, genai.FinishReasonStop)}}
	roaster := NewGeminiRoaster(gen, RoastConfig{Temperature: genai.Ptr[float32](0)}, zaptest.NewLogger(t))

	_, err := roaster.GenerateRoast(context.Background(), []byte("png"), "image/png")
	require.NoError(t, err)
	require.NotNil(t, gen.configs[0].Temperature)
	assert.Equal(t, float32(0), *gen.configs[0].Temperature)
}

func TestGenerateRoast_DefaultTemperature(t *testing.T) {
	gen := &fakeGenerator{replies: []fakeReply{textReply(validRoastJSON, genai.FinishReasonStop)}}
	_, err := newTestRoaster(t, gen).GenerateRoast(context.Background(), []byte("png"), "image/png")
	require.NoError(t, err)
	assert.InDelta(t, defaultRoastTemperature, *gen.configs[0].Temperature, 1e-6)
}

func TestGenerateRoast_ParseStrategies(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		finish genai.FinishReason
	}{
		{"fenced", "```json\n" + validRoastJSON + "\n```", genai.FinishReasonStop},
		{"chatty", "Sure! Here it is:\n" + validRoastJSON + "\nEnjoy.", genai.FinishReasonStop},
		{"truncated", validRoastJSON[:strings.Index(validRoastJSON, `"g"`)+2], genai.FinishReasonMaxTokens},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := &fakeGenerator{replies: []fakeReply{textReply(tt.text, tt.finish)}}
			result, err := newTestRoaster(t, gen).GenerateRoast(context.Background(), []byte("png"), "image/png")
			require.NoError(t, err)
			assert.Equal(t, "Main character energy", result.OverallVibe)
		})
	}
}

func TestGenerateRoast_ParseFailure(t *testing.T) {
	gen := &fakeGenerator{replies: []fakeReply{textReply("I would rather not.", genai.FinishReasonStop)}}
	_, err := newTestRoaster(t, gen).GenerateRoast(context.Background(), []byte("png"), "image/png")
	assert.ErrorIs(t, err, domain.ErrParseFailure)
}

func TestGenerateRoast_Timeout(t *testing.T) {
	roaster := NewGeminiRoaster(blockingGenerator{}, RoastConfig{Timeout: 20 * time.Millisecond}, zaptest.NewLogger(t))

	_, err := roaster.GenerateRoast(context.Background(), []byte("png"), "image/png")
	assert.ErrorIs(t, err, domain.ErrUpstreamTimeout)
}

func TestGenerateRoast_MissingCredential(t *testing.T) {
	roaster := newTestRoaster(t, UnavailableGenerator{Err: domain.ErrMissingCredential})

	_, err := roaster.GenerateRoast(context.Background(), []byte("png"), "image/png")
	assert.ErrorIs(t, err, domain.ErrMissingCredential)
}

func TestGeminiRoaster_Ready(t *testing.T) {
	assert.NoError(t, newTestRoaster(t, &fakeGenerator{}).Ready())
	assert.ErrorIs(t, newTestRoaster(t, UnavailableGenerator{Err: domain.ErrMissingCredential}).Ready(), domain.ErrMissingCredential)
}

func TestValidateGeminiConfig(t *testing.T) {
	assert.ErrorIs(t, ValidateGeminiConfig(GeminiConfig{}), domain.ErrMissingCredential)
	assert.NoError(t, ValidateGeminiConfig(GeminiConfig{APIKey: "key"}))
}
