package usecase

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/satriahrh/roastme/domain"
	"github.com/satriahrh/roastme/domain/entities"
	"github.com/satriahrh/roastme/internal/imageprep"
)

func testPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{uint8(x), uint8(y), 90, 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func newTestRoastService(t *testing.T, roaster *fakeRoaster, tts *fakeTTS, writer *fakeWriter) *RoastService {
	logger := zaptest.NewLogger(t)
	var animation *AnimationService
	if writer != nil {
		animation = NewAnimationService(writer, DefaultValidationThresholds(), logger)
	}
	svc := NewRoastService(imageprep.NewPreparer(1024), roaster, nil, animation, logger)
	if tts != nil {
		svc.tts = tts
	}
	return svc
}

func TestRoastService_Roast(t *testing.T) {
	roaster := &fakeRoaster{result: sampleRoast()}
	// Two seconds of 24kHz mono 16-bit PCM.
	tts := &fakeTTS{audio: entities.NewPCMAudio(make([]byte, 96000), 24000)}
	writer := &fakeWriter{err: errors.New("offline")}

	svc := newTestRoastService(t, roaster, tts, writer)
	outcome, err := svc.Roast(context.Background(), testPNG(t, 64, 48))
	require.NoError(t, err)

	assert.Equal(t, "image/png", roaster.mimeType)
	assert.Equal(t, entities.BuildNarration(*sampleRoast()), outcome.Narration)
	assert.Equal(t, outcome.Narration, tts.text)
	require.NotNil(t, outcome.Audio)
	require.NotNil(t, outcome.Animation)
	assert.InDelta(t, 2.0, outcome.Animation.Script.Metadata.Duration, 1e-9)
	assert.Contains(t, writer.prompt, "TARGET DURATION: 2 seconds")
}

func TestRoastService_TTSFailureDegrades(t *testing.T) {
	roaster := &fakeRoaster{result: sampleRoast()}
	tts := &fakeTTS{err: errors.New("voice unavailable")}
	writer := &fakeWriter{err: errors.New("offline")}

	svc := newTestRoastService(t, roaster, tts, writer)
	outcome, err := svc.Roast(context.Background(), testPNG(t, 16, 16))
	require.NoError(t, err)

	assert.Nil(t, outcome.Audio)
	require.NotNil(t, outcome.Animation)
	assert.Equal(t, EstimateDuration(outcome.Narration), outcome.Animation.Script.Metadata.Duration)
}

func TestRoastService_StagesDisabled(t *testing.T) {
	svc := newTestRoastService(t, &fakeRoaster{result: sampleRoast()}, nil, nil)

	outcome, err := svc.Roast(context.Background(), testPNG(t, 16, 16))
	require.NoError(t, err)
	assert.Nil(t, outcome.Audio)
	assert.Nil(t, outcome.Animation)
	assert.Nil(t, svc.AnimationService())
}

func TestRoastService_Errors(t *testing.T) {
	t.Run("empty image", func(t *testing.T) {
		roaster := &fakeRoaster{result: sampleRoast()}
		svc := newTestRoastService(t, roaster, nil, nil)

		_, err := svc.Roast(context.Background(), nil)
		assert.ErrorIs(t, err, domain.ErrNoImage)
		assert.Zero(t, roaster.calls)
	})

	t.Run("undecodable image", func(t *testing.T) {
		svc := newTestRoastService(t, &fakeRoaster{result: sampleRoast()}, nil, nil)

		_, err := svc.Roast(context.Background(), []byte("definitely not a picture"))
		assert.ErrorIs(t, err, domain.ErrInvalidImage)
	})

	t.Run("roast blocked", func(t *testing.T) {
		tts := &fakeTTS{}
		svc := newTestRoastService(t, &fakeRoaster{err: domain.ErrBlocked}, tts, nil)

		_, err := svc.Roast(context.Background(), testPNG(t, 16, 16))
		assert.ErrorIs(t, err, domain.ErrBlocked)
		assert.Empty(t, tts.text)
	})

	t.Run("missing credential before image", func(t *testing.T) {
		roaster := &fakeRoaster{result: sampleRoast(), ready: domain.ErrMissingCredential}
		svc := newTestRoastService(t, roaster, nil, nil)

		_, err := svc.Roast(context.Background(), nil)
		assert.ErrorIs(t, err, domain.ErrMissingCredential)
		assert.Zero(t, roaster.calls)
	})
}
