package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/satriahrh/roastme/adapters/llm"
	"github.com/satriahrh/roastme/adapters/tts"
	"github.com/satriahrh/roastme/domain/repositories"
	"github.com/satriahrh/roastme/internal/api"
	"github.com/satriahrh/roastme/internal/config"
	"github.com/satriahrh/roastme/internal/imageprep"
	"github.com/satriahrh/roastme/internal/websocket"
	"github.com/satriahrh/roastme/usecase"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		// The logger level comes from config, so fall back to a bare one.
		zap.NewExample().Fatal("Invalid configuration", zap.Error(err))
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	gen := newContentGenerator(ctx, cfg, logger)
	timeout := cfg.UpstreamTimeout()

	// Initialize adapters
	roaster := llm.NewGeminiRoaster(gen, llm.RoastConfig{
		Model:           cfg.Gemini.VisionModel,
		Temperature:     genai.Ptr(cfg.Gemini.RoastTemp),
		MaxOutputTokens: cfg.Gemini.RoastMaxTokens,
		Timeout:         timeout,
	}, logger)

	var speech repositories.TextToSpeech
	if cfg.EnableAudio {
		geminiTTS, err := tts.NewGeminiTTS(gen, tts.GeminiConfig{
			Model:         cfg.Gemini.TTSModel,
			Voice:         cfg.Gemini.TTSVoice,
			SampleRate:    cfg.Gemini.TTSSampleRate,
			Timeout:       timeout,
			SaveArtifacts: cfg.EnableAudioTest,
			ArtifactDir:   cfg.AudioTestDir,
		}, logger)
		if err != nil {
			logger.Fatal("Failed to create TTS service", zap.Error(err))
		}
		speech = geminiTTS
	}

	var animation *usecase.AnimationService
	if cfg.EnableAnimation {
		writer := llm.NewGeminiScriptWriter(gen, llm.AnimationConfig{
			Model:           cfg.Gemini.AnimationModel,
			Temperature:     genai.Ptr(cfg.Animation.Temperature),
			MaxOutputTokens: cfg.Animation.MaxTokens,
			Timeout:         timeout,
		}, logger)
		animation = usecase.NewAnimationService(writer, usecase.ValidationThresholds{
			DurationTolerance: cfg.Animation.DurationTolerance,
			MaxGap:            cfg.Animation.MaxGap,
			StartTolerance:    cfg.Animation.StartTolerance,
			EndTolerance:      cfg.Animation.EndTolerance,
			MinKeyframes:      cfg.Animation.MinKeyframes,
			MaxKeyframes:      cfg.Animation.MaxKeyframes,
		}, logger)
	}

	// Initialize usecase services
	roastService := usecase.NewRoastService(
		imageprep.NewPreparer(cfg.MaxImageDimension),
		roaster,
		speech,
		animation,
		logger,
	)

	hub := websocket.NewHub(roastService, logger)
	go hub.Run(ctx)

	e := echo.New()
	e.HideBanner = true
	api.ConfigureMiddleware(e, cfg.MaxUploadBytes, logger)
	api.InitRoutes(e, roastService, hub, logger)

	go func() {
		if err := e.Start(":" + cfg.Port); err != nil && err != http.ErrServerClosed {
			logger.Fatal("shutting down the server", zap.Error(err))
		}
	}()

	logger.Info("Roast server started",
		zap.String("port", cfg.Port),
		zap.String("visionModel", cfg.Gemini.VisionModel),
		zap.Bool("audio", cfg.EnableAudio),
		zap.Bool("animation", cfg.EnableAnimation),
		zap.Bool("mock", cfg.Gemini.Mock))

	<-ctx.Done()
	logger.Info("Server is shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}

func newLogger(level string) (*zap.Logger, error) {
	if level == "debug" {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// newContentGenerator picks the canned generator in mock mode and defers
// credential errors to request time.
func newContentGenerator(ctx context.Context, cfg config.Config, logger *zap.Logger) llm.ContentGenerator {
	if cfg.Gemini.Mock {
		logger.Warn("GEMINI_MOCK is set, serving canned responses")
		return llm.NewMockGenerator()
	}

	gen, err := llm.NewGeminiGenerator(ctx, llm.GeminiConfig{
		APIKey:  cfg.Gemini.APIKey,
		BaseURL: cfg.Gemini.BaseURL,
	}, logger)
	if err != nil {
		logger.Warn("Gemini client unavailable, roast requests will fail", zap.Error(err))
		return llm.UnavailableGenerator{Err: err}
	}
	return gen
}
