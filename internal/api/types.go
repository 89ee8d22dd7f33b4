package api

import "github.com/satriahrh/roastme/domain/entities"

// RoastRequest is the JSON form of a roast upload. The image may carry a
// data URL prefix.
type RoastRequest struct {
	Image string `json:"image"`
}

// RoastResponse is returned for a successful roast. Audio and animation are
// omitted when their stage is disabled or failed.
type RoastResponse struct {
	Success       bool                      `json:"success"`
	Data          *entities.RoastResult     `json:"data"`
	Audio         string                    `json:"audio,omitempty"`
	AudioMimeType string                    `json:"audioMimeType,omitempty"`
	Animation     *entities.AnimationScript `json:"animation,omitempty"`
}

// AnimationRequest asks for a script without a roast. Duration is estimated
// from the transcript when absent.
type AnimationRequest struct {
	Transcript string   `json:"transcript"`
	Duration   *float64 `json:"duration,omitempty"`
}

type AnimationResponse struct {
	Success  bool                     `json:"success"`
	Data     entities.AnimationScript `json:"data"`
	Issues   []string                 `json:"issues"`
	Warnings []string                 `json:"warnings"`
	Fallback bool                     `json:"fallback"`
}

type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
	Clients int    `json:"websocket_clients"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}
