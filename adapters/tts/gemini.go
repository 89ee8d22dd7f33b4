package tts

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/satriahrh/roastme/adapters/llm"
	"github.com/satriahrh/roastme/domain/entities"
	"github.com/satriahrh/roastme/domain/repositories"
	"github.com/satriahrh/roastme/internal/wav"
)

const (
	defaultModel      = "gemini-2.5-flash-preview-tts"
	defaultVoice      = "Aoede" // energetic prebuilt voice
	defaultSampleRate = entities.DefaultSampleRate

	base64ArtifactName = "audio_base64.txt"
	wavArtifactName    = "roast_audio.wav"
)

const performancePrompt = "You're a stand-up comedian performing this roast live on stage. " +
	"Talk like you're having fun with someone in the crowd: confident, loose, playful. Let your voice smile. " +
	"Every ellipsis (...) is a real pause for comic timing. " +
	"Lean into the punchlines but keep it smooth and conversational, like you're enjoying it rather than reading a script. " +
	"Let the pace move naturally, faster for energy and slower for effect." +
	"\n\nPerform this: "

var ratePattern = regexp.MustCompile(`rate=(\d+)`)

// ErrNoAudio means the model answered without any inline audio part.
var ErrNoAudio = errors.New("tts response contained no audio")

// GeminiConfig holds configuration for the GeminiTTS adapter
// Optional fields with defaults:
// - Model: the TTS model (default: "gemini-2.5-flash-preview-tts")
// - Voice: the prebuilt voice (default: "Aoede")
// - SampleRate: PCM rate when the response does not state one (default: 24000)
// Test mode:
// - SaveArtifacts: write audio_base64.txt and roast_audio.wav to ArtifactDir
type GeminiConfig struct {
	Model         string
	Voice         string
	SampleRate    int
	Timeout       time.Duration
	SaveArtifacts bool
	ArtifactDir   string
}

// GeminiTTS implements TextToSpeech using a Gemini audio-modality model
type GeminiTTS struct {
	gen           llm.ContentGenerator
	model         string
	voice         string
	sampleRate    int
	timeout       time.Duration
	saveArtifacts bool
	artifactDir   string
	logger        *zap.Logger
}

// Ensure GeminiTTS implements the TextToSpeech interface
var _ repositories.TextToSpeech = (*GeminiTTS)(nil)

// ValidateGeminiConfig validates the GeminiConfig
func ValidateGeminiConfig(config GeminiConfig) error {
	if config.SampleRate < 0 {
		return fmt.Errorf("sample rate must be positive, got %d", config.SampleRate)
	}
	if config.SaveArtifacts && config.ArtifactDir == "" {
		return errors.New("artifact directory is required when saving artifacts")
	}
	return nil
}

// NewGeminiTTS creates a new Gemini TTS instance
func NewGeminiTTS(gen llm.ContentGenerator, config GeminiConfig, logger *zap.Logger) (*GeminiTTS, error) {
	if err := ValidateGeminiConfig(config); err != nil {
		return nil, err
	}

	model := config.Model
	if model == "" {
		model = defaultModel
		logger.Info("Using default TTS model", zap.String("model", model))
	}

	voice := config.Voice
	if voice == "" {
		voice = defaultVoice
		logger.Info("Using default voice", zap.String("voice", voice))
	}

	sampleRate := config.SampleRate
	if sampleRate == 0 {
		sampleRate = defaultSampleRate
	}

	return &GeminiTTS{
		gen:           gen,
		model:         model,
		voice:         voice,
		sampleRate:    sampleRate,
		timeout:       config.Timeout,
		saveArtifacts: config.SaveArtifacts,
		artifactDir:   config.ArtifactDir,
		logger:        logger,
	}, nil
}

// Synthesize performs text as speech and returns the raw PCM.
func (g *GeminiTTS) Synthesize(ctx context.Context, text string) (*entities.AudioPayload, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("text cannot be empty")
	}

	g.logger.Info("Generating TTS audio",
		zap.String("model", g.model),
		zap.String("voice", g.voice),
		zap.Int("textLength", len(text)))

	config := &genai.GenerateContentConfig{
		ResponseModalities: []string{"AUDIO"},
		SpeechConfig: &genai.SpeechConfig{
			VoiceConfig: &genai.VoiceConfig{
				PrebuiltVoiceConfig: &genai.PrebuiltVoiceConfig{VoiceName: g.voice},
			},
		},
	}

	resp, err := llm.Generate(ctx, g.gen, g.timeout, g.model, genai.Text(performancePrompt+text), config)
	if err != nil {
		return nil, err
	}

	blob := firstInlineData(resp)
	if blob == nil {
		return nil, ErrNoAudio
	}

	payload := entities.NewPCMAudio(blob.Data, g.rateFor(blob.MIMEType))
	g.logger.Info("TTS audio generated successfully",
		zap.Int("bytes", len(payload.PCM)),
		zap.Float64("seconds", payload.Seconds()))

	if g.saveArtifacts {
		if err := g.writeArtifacts(payload); err != nil {
			g.logger.Warn("Failed to save test audio files", zap.Error(err))
		}
	}
	return payload, nil
}

// firstInlineData scans every candidate for the first binary part.
func firstInlineData(resp *genai.GenerateContentResponse) *genai.Blob {
	for _, candidate := range resp.Candidates {
		if candidate == nil || candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part != nil && part.InlineData != nil && len(part.InlineData.Data) > 0 {
				return part.InlineData
			}
		}
	}
	return nil
}

func (g *GeminiTTS) rateFor(mimeType string) int {
	if m := ratePattern.FindStringSubmatch(mimeType); m != nil {
		if rate, err := strconv.Atoi(m[1]); err == nil && rate > 0 {
			return rate
		}
	}
	return g.sampleRate
}

func (g *GeminiTTS) writeArtifacts(payload *entities.AudioPayload) error {
	if err := os.MkdirAll(g.artifactDir, 0o755); err != nil {
		return fmt.Errorf("create artifact dir: %w", err)
	}

	base64Path := filepath.Join(g.artifactDir, base64ArtifactName)
	if err := os.WriteFile(base64Path, []byte(payload.Base64()), 0o644); err != nil {
		return fmt.Errorf("write base64 audio: %w", err)
	}

	wavPath := filepath.Join(g.artifactDir, wavArtifactName)
	if err := wav.WriteFile(wavPath, payload.PCM, payload.Channels, payload.SampleRate, payload.BitsPerSample); err != nil {
		return fmt.Errorf("write wav: %w", err)
	}

	g.logger.Info("Saved test audio files",
		zap.String("base64", base64Path),
		zap.String("wav", wavPath))
	return nil
}
