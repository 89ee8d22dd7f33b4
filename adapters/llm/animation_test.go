package llm

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"google.golang.org/genai"
)

func TestGeminiScriptWriter_WriteScript(t *testing.T) {
	gen := &fakeGenerator{replies: []fakeReply{textReply(`{"metadata":{}}`, genai.FinishReasonStop)}}
	writer := NewGeminiScriptWriter(gen, AnimationConfig{Model: "text-model"}, zaptest.NewLogger(t))

	text, err := writer.WriteScript(context.Background(), "direct the show")
	require.NoError(t, err)
	assert.Equal(t, `{"metadata":{}}`, text)

	require.Equal(t, 1, gen.callCount())
	assert.Equal(t, "text-model", gen.models[0])
	assert.InDelta(t, 0.7, *gen.configs[0].Temperature, 1e-6)
	assert.Equal(t, int32(2000), gen.configs[0].MaxOutputTokens)
	assert.Equal(t, "direct the show", gen.contents[0][0].Parts[0].Text)
}

func TestGeminiScriptWriter_ZeroTemperature(t *testing.T) {
	gen := &fakeGenerator{replies: []fakeReply{textReply(`{}`, genai.FinishReasonStop)}}
	writer := NewGeminiScriptWriter(gen, AnimationConfig{Temperature: genai.Ptr[float32](0)}, zaptest.NewLogger(t))

	_, err := writer.WriteScript(context.Background(), "prompt")
	require.NoError(t, err)
	require.NotNil(t, gen.configs[0].Temperature)
	assert.Equal(t, float32(0), *gen.configs[0].Temperature)
}

func TestGeminiScriptWriter_NoCandidates(t *testing.T) {
	gen := &fakeGenerator{replies: []fakeReply{emptyReply()}}
	writer := NewGeminiScriptWriter(gen, AnimationConfig{}, zaptest.NewLogger(t))

	_, err := writer.WriteScript(context.Background(), "prompt")
	assert.ErrorIs(t, err, ErrNoCandidates)
}

func TestGeminiScriptWriter_NilCandidate(t *testing.T) {
	gen := &fakeGenerator{replies: []fakeReply{{resp: &genai.GenerateContentResponse{Candidates: []*genai.Candidate{nil}}}}}
	writer := NewGeminiScriptWriter(gen, AnimationConfig{}, zaptest.NewLogger(t))

	_, err := writer.WriteScript(context.Background(), "prompt")
	assert.ErrorIs(t, err, ErrNoCandidates)
}

func TestMockGenerator(t *testing.T) {
	mock := NewMockGenerator()
	ctx := context.Background()

	audio, err := mock.GenerateContent(ctx, "tts", genai.Text("hi"), &genai.GenerateContentConfig{ResponseModalities: []string{"AUDIO"}})
	require.NoError(t, err)
	blob := audio.Candidates[0].Content.Parts[0].InlineData
	require.NotNil(t, blob)
	assert.Len(t, blob.Data, 24000*3)

	image := []*genai.Content{genai.NewContentFromParts([]*genai.Part{
		genai.NewPartFromText("roast"),
		genai.NewPartFromBytes([]byte{1}, "image/png"),
	}, genai.RoleUser)}
	roast, err := mock.GenerateContent(ctx, "vision", image, nil)
	require.NoError(t, err)
	result, _, err := parseRoastText(firstText(roast), false)
	require.NoError(t, err)
	assert.Len(t, result.RoastLines, 8)

	script, err := mock.GenerateContent(ctx, "text", genai.Text("TARGET DURATION: 12.5 seconds"), nil)
	require.NoError(t, err)
	var doc struct {
		Metadata struct {
			Duration float64 `json:"duration"`
		} `json:"metadata"`
		Timeline []map[string]any `json:"timeline"`
	}
	require.NoError(t, json.Unmarshal([]byte(firstText(script)), &doc))
	assert.Equal(t, 12.5, doc.Metadata.Duration)
	assert.Len(t, doc.Timeline, 4)
	assert.Equal(t, 12.5, doc.Timeline[3]["endTime"])
}
