package usecase

import (
	"context"
	"sync"

	"github.com/satriahrh/roastme/domain/entities"
)

// fakeWriter returns a fixed reply and records the prompt it was given.
type fakeWriter struct {
	mu     sync.Mutex
	reply  string
	err    error
	panics bool
	prompt string
	calls  int
}

func (f *fakeWriter) WriteScript(ctx context.Context, prompt string) (string, error) {
	f.mu.Lock()
	f.prompt = prompt
	f.calls++
	f.mu.Unlock()

	if f.panics {
		panic("model exploded")
	}
	return f.reply, f.err
}

type fakeRoaster struct {
	result   *entities.RoastResult
	err      error
	ready    error
	mimeType string
	calls    int
}

func (f *fakeRoaster) Ready() error {
	return f.ready
}

func (f *fakeRoaster) GenerateRoast(ctx context.Context, image []byte, mimeType string) (*entities.RoastResult, error) {
	f.calls++
	f.mimeType = mimeType
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

type fakeTTS struct {
	audio *entities.AudioPayload
	err   error
	text  string
}

func (f *fakeTTS) Synthesize(ctx context.Context, text string) (*entities.AudioPayload, error) {
	f.text = text
	if f.err != nil {
		return nil, f.err
	}
	return f.audio, nil
}

func sampleRoast() *entities.RoastResult {
	return &entities.RoastResult{
		OverallVibe:      "You look like a screensaver that gained sentience",
		RoastLines:       []string{"Nice hat.", "Bold choice."},
		ConfidenceRating: 6,
		StyleTags:        []string{"retro"},
		OneLiner:         "Peak 2009.",
	}
}
