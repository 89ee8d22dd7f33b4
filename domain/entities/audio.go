package entities

import (
	"encoding/base64"
	"fmt"
)

const (
	DefaultSampleRate    = 24000
	DefaultChannels      = 1
	DefaultBitsPerSample = 16
)

// AudioPayload holds raw little-endian PCM produced by the TTS model
type AudioPayload struct {
	PCM           []byte
	MIMEType      string
	SampleRate    int
	Channels      int
	BitsPerSample int
}

// NewPCMAudio wraps mono 16-bit PCM at the given sample rate.
func NewPCMAudio(pcm []byte, sampleRate int) *AudioPayload {
	return &AudioPayload{
		PCM:           pcm,
		MIMEType:      PCMMimeType(sampleRate),
		SampleRate:    sampleRate,
		Channels:      DefaultChannels,
		BitsPerSample: DefaultBitsPerSample,
	}
}

// PCMMimeType returns the descriptor clients use to play raw L16 audio.
func PCMMimeType(sampleRate int) string {
	return fmt.Sprintf("audio/L16;codec=pcm;rate=%d", sampleRate)
}

// Base64 encodes the PCM bytes with standard padding.
func (a *AudioPayload) Base64() string {
	return base64.StdEncoding.EncodeToString(a.PCM)
}

// Seconds is the playback length of the PCM data.
func (a *AudioPayload) Seconds() float64 {
	bytesPerSecond := a.SampleRate * a.Channels * a.BitsPerSample / 8
	if bytesPerSecond <= 0 {
		return 0
	}
	return float64(len(a.PCM)) / float64(bytesPerSecond)
}
