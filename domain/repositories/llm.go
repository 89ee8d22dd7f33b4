package repositories

import (
	"context"

	"github.com/satriahrh/roastme/domain/entities"
)

// RoastGenerator asks a vision model to roast an image
type RoastGenerator interface {
	// GenerateRoast returns domain.ErrBlocked when the model refuses and
	// domain.ErrParseFailure when no parse strategy recovers a result.
	GenerateRoast(ctx context.Context, image []byte, mimeType string) (*entities.RoastResult, error)
	// Ready reports a configuration problem, such as a missing credential,
	// that would fail every request.
	Ready() error
}

// ScriptWriter asks a text model for an animation script and returns the
// raw model text.
type ScriptWriter interface {
	WriteScript(ctx context.Context, prompt string) (string, error)
}
