package usecase

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/satriahrh/roastme/domain/entities"
	"github.com/satriahrh/roastme/domain/repositories"
)

// AnimationResult is the script chosen for a narration plus the findings
// that led to it.
type AnimationResult struct {
	Script   entities.AnimationScript `json:"script"`
	Issues   []string                 `json:"issues"`
	Warnings []string                 `json:"warnings"`
	Fallback bool                     `json:"fallback"`
}

// AnimationService turns narration into a keyframe timeline. Generate never
// fails: any problem yields the deterministic fallback script.
type AnimationService struct {
	writer     repositories.ScriptWriter
	thresholds ValidationThresholds
	logger     *zap.Logger
}

func NewAnimationService(writer repositories.ScriptWriter, thresholds ValidationThresholds, logger *zap.Logger) *AnimationService {
	return &AnimationService{
		writer:     writer,
		thresholds: thresholds,
		logger:     logger,
	}
}

// Generate directs transcript over duration seconds. A non-positive duration
// is estimated from the word count.
func (s *AnimationService) Generate(ctx context.Context, transcript string, duration float64) (result *AnimationResult) {
	if duration <= 0 {
		duration = EstimateDuration(transcript)
	}

	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("Animation pipeline panicked, using fallback", zap.Any("panic", r))
			result = s.fallback(transcript, duration, []string{fmt.Sprintf("panic: %v", r)}, nil)
		}
	}()

	prompt := BuildAnimationPrompt(transcript, duration, s.thresholds.MinKeyframes, s.thresholds.MaxKeyframes)
	text, err := s.writer.WriteScript(ctx, prompt)
	if err != nil {
		s.logger.Warn("Animation generation failed, using fallback", zap.Error(err))
		return s.fallback(transcript, duration, []string{err.Error()}, nil)
	}

	doc, err := extractJSONObject(text)
	if err != nil {
		s.logger.Warn("Animation response was not JSON, using fallback", zap.Error(err))
		return s.fallback(transcript, duration, []string{err.Error()}, nil)
	}

	validation := ValidateScript(doc, duration, s.thresholds)
	for _, w := range validation.Warnings {
		s.logger.Info("Animation script warning", zap.String("warning", w))
	}
	if !validation.OK {
		s.logger.Warn("Animation script failed validation, using fallback",
			zap.Strings("issues", validation.Issues))
		return s.fallback(transcript, duration, validation.Issues, validation.Warnings)
	}

	script, err := SanitizeScript(doc)
	if err != nil {
		s.logger.Warn("Animation script could not be sanitized, using fallback", zap.Error(err))
		return s.fallback(transcript, duration, []string{err.Error()}, validation.Warnings)
	}

	s.logger.Info("Animation script generated",
		zap.Float64("duration", duration),
		zap.Int("keyframes", len(script.Timeline)))
	return &AnimationResult{
		Script:   *script,
		Issues:   validation.Issues,
		Warnings: validation.Warnings,
	}
}

func (s *AnimationService) fallback(transcript string, duration float64, issues, warnings []string) *AnimationResult {
	fallback := FallbackScript(transcript, duration)
	script, err := SanitizeScript(fallback.Document())
	if err != nil {
		// The fallback is well formed by construction.
		script = &fallback
	}
	if issues == nil {
		issues = []string{}
	}
	if warnings == nil {
		warnings = []string{}
	}
	return &AnimationResult{
		Script:   *script,
		Issues:   issues,
		Warnings: warnings,
		Fallback: true,
	}
}
