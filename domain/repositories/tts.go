package repositories

import (
	"context"

	"github.com/satriahrh/roastme/domain/entities"
)

type TextToSpeech interface {
	Synthesize(ctx context.Context, text string) (*entities.AudioPayload, error)
}
