package usecase

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/satriahrh/roastme/domain/entities"
	"github.com/satriahrh/roastme/domain/repositories"
	"github.com/satriahrh/roastme/internal/imageprep"
)

// RoastOutcome carries everything produced for one image
type RoastOutcome struct {
	Roast     *entities.RoastResult
	Narration string
	Audio     *entities.AudioPayload
	Animation *AnimationResult
}

// RoastService runs the roast pipeline for a single upload. Audio and
// animation are optional stages that degrade instead of failing.
type RoastService struct {
	preparer  *imageprep.Preparer
	roaster   repositories.RoastGenerator
	tts       repositories.TextToSpeech
	animation *AnimationService
	logger    *zap.Logger
}

// NewRoastService wires the pipeline. Pass a nil tts or animation to skip
// that stage.
func NewRoastService(
	preparer *imageprep.Preparer,
	roaster repositories.RoastGenerator,
	tts repositories.TextToSpeech,
	animation *AnimationService,
	logger *zap.Logger,
) *RoastService {
	return &RoastService{
		preparer:  preparer,
		roaster:   roaster,
		tts:       tts,
		animation: animation,
		logger:    logger,
	}
}

// Roast runs every stage. Only image and roast failures are returned.
func (s *RoastService) Roast(ctx context.Context, rawImage []byte) (*RoastOutcome, error) {
	roast, err := s.GenerateRoast(ctx, rawImage)
	if err != nil {
		return nil, err
	}

	outcome := &RoastOutcome{
		Roast:     roast,
		Narration: entities.BuildNarration(*roast),
	}
	outcome.Audio = s.Speak(ctx, outcome.Narration)
	outcome.Animation = s.Animate(ctx, outcome.Narration, outcome.Audio)
	return outcome, nil
}

// Ready reports a configuration error that fails every roast. Callers check it
// before reading the image so a missing credential wins over a missing image.
func (s *RoastService) Ready() error {
	return s.roaster.Ready()
}

// GenerateRoast prepares the image and asks the vision model for a roast.
func (s *RoastService) GenerateRoast(ctx context.Context, rawImage []byte) (*entities.RoastResult, error) {
	if err := s.Ready(); err != nil {
		return nil, err
	}
	prepared, err := s.preparer.Prepare(rawImage)
	if err != nil {
		return nil, err
	}
	s.logger.Info("Image prepared",
		zap.String("sourceFormat", prepared.SourceFormat),
		zap.Int("width", prepared.Width),
		zap.Int("height", prepared.Height),
		zap.Bool("resized", prepared.Resized()))

	start := time.Now()
	roast, err := s.roaster.GenerateRoast(ctx, prepared.Data, prepared.MIMEType)
	if err != nil {
		return nil, err
	}
	s.logger.Info("Roast ready", zap.Duration("elapsed", time.Since(start)))
	return roast, nil
}

// Speak synthesizes narration. Any failure yields nil.
func (s *RoastService) Speak(ctx context.Context, narration string) *entities.AudioPayload {
	if s.tts == nil {
		return nil
	}
	audio, err := s.tts.Synthesize(ctx, narration)
	if err != nil {
		s.logger.Warn("TTS generation failed, continuing without audio", zap.Error(err))
		return nil
	}
	return audio
}

// Animate builds the animation script. The duration comes from the audio
// when there is any, otherwise from the word count.
func (s *RoastService) Animate(ctx context.Context, narration string, audio *entities.AudioPayload) *AnimationResult {
	if s.animation == nil {
		return nil
	}
	duration := EstimateDuration(narration)
	if audio != nil && audio.Seconds() > 0 {
		duration = audio.Seconds()
	}
	return s.animation.Generate(ctx, narration, duration)
}

// AnimationService exposes the animation stage for standalone use. It may
// be nil when animation is disabled.
func (s *RoastService) AnimationService() *AnimationService {
	return s.animation
}
