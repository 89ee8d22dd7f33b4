package websocket

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/satriahrh/roastme/domain/entities"
)

// MessageType defines the type of WebSocket message
type MessageType string

// Supported message types
const (
	MessageTypeRoastRequest MessageType = "roast_request"
	MessageTypeRoast        MessageType = "roast"
	MessageTypeAudio        MessageType = "audio"
	MessageTypeAnimation    MessageType = "animation"
	MessageTypeDone         MessageType = "done"
	MessageTypePing         MessageType = "ping"
	MessageTypePong         MessageType = "pong"
	MessageTypeError        MessageType = "error"
)

// Error codes carried by ErrorMessage
const (
	CodeInvalidMessage    = "invalid_message"
	CodeNoImage           = "no_image"
	CodeInvalidImage      = "invalid_image"
	CodeBlocked           = "blocked"
	CodeParseFailure      = "parse_failure"
	CodeMissingCredential = "missing_credential"
	CodeUpstreamTimeout   = "upstream_timeout"
	CodeInternal          = "internal_error"
)

// BaseMessage defines the common structure for all WebSocket messages
type BaseMessage struct {
	Type      MessageType `json:"type"`
	Timestamp string      `json:"timestamp"`
	RequestID string      `json:"request_id,omitempty"`
}

// RoastRequestMessage asks for a roast of a base64 image. RequestID is
// optional; the server assigns one when it is empty.
type RoastRequestMessage struct {
	BaseMessage
	Image string `json:"image"`
}

// RoastMessage carries the roast and the narration built from it
type RoastMessage struct {
	BaseMessage
	Data      *entities.RoastResult `json:"data"`
	Narration string                `json:"narration"`
}

// AudioMessage carries the synthesized narration
type AudioMessage struct {
	BaseMessage
	Audio         string  `json:"audio"`
	AudioMimeType string  `json:"audioMimeType"`
	Duration      float64 `json:"duration"`
}

// AnimationMessage carries the animation script for the narration
type AnimationMessage struct {
	BaseMessage
	Data     entities.AnimationScript `json:"data"`
	Issues   []string                 `json:"issues"`
	Warnings []string                 `json:"warnings"`
	Fallback bool                     `json:"fallback"`
}

// DoneMessage closes a roast request
type DoneMessage struct {
	BaseMessage
	ElapsedMs int64 `json:"elapsed_ms"`
}

// PingMessage represents a ping message for connection health check
type PingMessage struct {
	BaseMessage
	Data string `json:"data,omitempty"`
}

// PongMessage represents a pong response
type PongMessage struct {
	BaseMessage
	Data string `json:"data,omitempty"`
}

// ErrorMessage represents an error response
type ErrorMessage struct {
	BaseMessage
	Code    string `json:"error_code"`
	Message string `json:"message"`
}

// MessageValidator provides validation for WebSocket messages
type MessageValidator struct{}

// NewMessageValidator creates a new message validator
func NewMessageValidator() *MessageValidator {
	return &MessageValidator{}
}

// ValidateMessage decodes an incoming text frame into its typed message
func (v *MessageValidator) ValidateMessage(messageBytes []byte) (any, error) {
	var base BaseMessage
	if err := json.Unmarshal(messageBytes, &base); err != nil {
		return nil, fmt.Errorf("invalid JSON format: %w", err)
	}

	switch base.Type {
	case MessageTypeRoastRequest:
		var msg RoastRequestMessage
		if err := json.Unmarshal(messageBytes, &msg); err != nil {
			return nil, fmt.Errorf("invalid roast request message: %w", err)
		}
		if msg.Image == "" {
			return nil, fmt.Errorf("image is required")
		}
		return &msg, nil

	case MessageTypePing:
		var msg PingMessage
		if err := json.Unmarshal(messageBytes, &msg); err != nil {
			return nil, fmt.Errorf("invalid ping message: %w", err)
		}
		return &msg, nil

	case "":
		return nil, fmt.Errorf("message type is required")

	default:
		return nil, fmt.Errorf("unsupported message type: %s", base.Type)
	}
}

func newBase(t MessageType, requestID string) BaseMessage {
	return BaseMessage{
		Type:      t,
		Timestamp: time.Now().Format(time.RFC3339),
		RequestID: requestID,
	}
}

// CreateErrorMessage creates a standardized error message
func CreateErrorMessage(requestID, code, message string) *ErrorMessage {
	return &ErrorMessage{
		BaseMessage: newBase(MessageTypeError, requestID),
		Code:        code,
		Message:     message,
	}
}

// CreatePongMessage creates a pong response message
func CreatePongMessage(data string) *PongMessage {
	return &PongMessage{
		BaseMessage: newBase(MessageTypePong, ""),
		Data:        data,
	}
}
