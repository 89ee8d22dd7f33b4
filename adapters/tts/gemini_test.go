package tts

import (
	"context"
	"encoding/base64"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"google.golang.org/genai"

	"github.com/satriahrh/roastme/internal/wav"
)

type stubGenerator struct {
	resp   *genai.GenerateContentResponse
	err    error
	config *genai.GenerateContentConfig
	prompt string
}

func (s *stubGenerator) GenerateContent(_ context.Context, _ string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	s.config = config
	if len(contents) > 0 && len(contents[0].Parts) > 0 {
		s.prompt = contents[0].Parts[0].Text
	}
	return s.resp, s.err
}

func audioResponse(mimeType string, pcm []byte) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{
			{Content: &genai.Content{Parts: []*genai.Part{genai.NewPartFromText("no audio here")}}},
			{Content: &genai.Content{Parts: []*genai.Part{{InlineData: &genai.Blob{MIMEType: mimeType, Data: pcm}}}}},
		},
	}
}

func TestNewGeminiTTS_Defaults(t *testing.T) {
	tts, err := NewGeminiTTS(&stubGenerator{}, GeminiConfig{}, zaptest.NewLogger(t))
	require.NoError(t, err)

	assert.Equal(t, defaultModel, tts.model)
	assert.Equal(t, "Aoede", tts.voice)
	assert.Equal(t, 24000, tts.sampleRate)

	_, err = NewGeminiTTS(&stubGenerator{}, GeminiConfig{SaveArtifacts: true}, zaptest.NewLogger(t))
	assert.Error(t, err)
}

func TestGeminiTTS_Synthesize(t *testing.T) {
	pcm := []byte{1, 0, 2, 0, 3, 0, 4, 0}
	gen := &stubGenerator{resp: audioResponse("audio/L16;codec=pcm;rate=24000", pcm)}
	tts, err := NewGeminiTTS(gen, GeminiConfig{}, zaptest.NewLogger(t))
	require.NoError(t, err)

	audio, err := tts.Synthesize(context.Background(), "Nice hat... said nobody.")
	require.NoError(t, err)

	assert.Equal(t, pcm, audio.PCM)
	assert.Equal(t, "audio/L16;codec=pcm;rate=24000", audio.MIMEType)
	assert.Equal(t, base64.StdEncoding.EncodeToString(pcm), audio.Base64())

	assert.Equal(t, []string{"AUDIO"}, gen.config.ResponseModalities)
	assert.Equal(t, "Aoede", gen.config.SpeechConfig.VoiceConfig.PrebuiltVoiceConfig.VoiceName)
	assert.Contains(t, gen.prompt, "Perform this: Nice hat... said nobody.")
}

func TestGeminiTTS_SampleRateFromMIME(t *testing.T) {
	gen := &stubGenerator{resp: audioResponse("audio/L16;codec=pcm;rate=16000", []byte{0, 0})}
	tts, err := NewGeminiTTS(gen, GeminiConfig{}, zaptest.NewLogger(t))
	require.NoError(t, err)

	audio, err := tts.Synthesize(context.Background(), "hi")
	require.NoError(t, err)
	assert.Equal(t, 16000, audio.SampleRate)
}

func TestGeminiTTS_Errors(t *testing.T) {
	logger := zaptest.NewLogger(t)

	tts, err := NewGeminiTTS(&stubGenerator{}, GeminiConfig{}, logger)
	require.NoError(t, err)
	_, err = tts.Synthesize(context.Background(), "   ")
	assert.Error(t, err, "whitespace-only text is rejected")

	tts, _ = NewGeminiTTS(&stubGenerator{resp: &genai.GenerateContentResponse{}}, GeminiConfig{}, logger)
	_, err = tts.Synthesize(context.Background(), "hello")
	assert.ErrorIs(t, err, ErrNoAudio)

	boom := errors.New("quota exceeded")
	tts, _ = NewGeminiTTS(&stubGenerator{err: boom}, GeminiConfig{}, logger)
	_, err = tts.Synthesize(context.Background(), "hello")
	assert.ErrorIs(t, err, boom)
}

func TestGeminiTTS_SavesArtifacts(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "artifacts")
	pcm := []byte{9, 9, 8, 8}
	gen := &stubGenerator{resp: audioResponse("audio/L16;codec=pcm;rate=24000", pcm)}
	tts, err := NewGeminiTTS(gen, GeminiConfig{SaveArtifacts: true, ArtifactDir: dir}, zaptest.NewLogger(t))
	require.NoError(t, err)

	_, err = tts.Synthesize(context.Background(), "hello")
	require.NoError(t, err)

	encoded, err := os.ReadFile(filepath.Join(dir, "audio_base64.txt"))
	require.NoError(t, err)
	assert.Equal(t, base64.StdEncoding.EncodeToString(pcm), string(encoded))

	framed, err := os.ReadFile(filepath.Join(dir, "roast_audio.wav"))
	require.NoError(t, err)
	header, data, err := wav.Parse(framed)
	require.NoError(t, err)
	assert.Equal(t, 24000, header.SampleRate)
	assert.Equal(t, pcm, data)
}

func TestGeminiTTS_ArtifactFailureIsSwallowed(t *testing.T) {
	// A regular file where the directory should be makes MkdirAll fail.
	blocker := filepath.Join(t.TempDir(), "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o600))

	gen := &stubGenerator{resp: audioResponse("audio/L16;codec=pcm;rate=24000", []byte{1, 2})}
	tts, err := NewGeminiTTS(gen, GeminiConfig{SaveArtifacts: true, ArtifactDir: filepath.Join(blocker, "sub")}, zaptest.NewLogger(t))
	require.NoError(t, err)

	audio, err := tts.Synthesize(context.Background(), "hello")
	require.NoError(t, err)
	assert.NotNil(t, audio)
}
