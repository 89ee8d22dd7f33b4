package main

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/satriahrh/roastme/domain/entities"
)

type streamMessage struct {
	Type          string          `json:"type"`
	RequestID     string          `json:"request_id"`
	Data          json.RawMessage `json:"data"`
	Audio         string          `json:"audio"`
	AudioMimeType string          `json:"audioMimeType"`
	Duration      float64         `json:"duration"`
	ElapsedMs     int64           `json:"elapsed_ms"`
	Code          string          `json:"error_code"`
	Message       string          `json:"message"`
}

// streamRoast sends the image over /ws/roast and collects the staged replies
// into the same shape the HTTP endpoint returns.
func streamRoast(ctx context.Context, server string, image []byte, logger *zap.Logger) (*roastResponse, error) {
	wsURL, err := websocketURL(server)
	if err != nil {
		return nil, err
	}

	logger.Info("Connecting", zap.String("url", wsURL))
	conn, res, err := websocket.DefaultDialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		if res != nil {
			return nil, fmt.Errorf("websocket connection failed with status %d: %w", res.StatusCode, err)
		}
		return nil, fmt.Errorf("websocket connection failed: %w", err)
	}
	defer conn.Close()

	requestID := uuid.NewString()
	request := map[string]string{
		"type":       "roast_request",
		"request_id": requestID,
		"image":      base64.StdEncoding.EncodeToString(image),
	}
	if err := conn.WriteJSON(request); err != nil {
		return nil, fmt.Errorf("send roast request: %w", err)
	}

	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Now().Add(2 * time.Minute)
	}
	conn.SetReadDeadline(deadline)

	resp := &roastResponse{Success: true}
	for {
		var msg streamMessage
		if err := conn.ReadJSON(&msg); err != nil {
			return nil, fmt.Errorf("read stream: %w", err)
		}
		if msg.RequestID != requestID {
			logger.Debug("Ignoring message for another request", zap.String("type", msg.Type))
			continue
		}

		switch msg.Type {
		case "roast":
			resp.Data = &entities.RoastResult{}
			if err := json.Unmarshal(msg.Data, resp.Data); err != nil {
				return nil, fmt.Errorf("decode roast: %w", err)
			}
			fmt.Println("📨 roast received")
		case "audio":
			resp.Audio = msg.Audio
			resp.AudioMimeType = msg.AudioMimeType
			fmt.Printf("📨 audio received (%.1fs)\n", msg.Duration)
		case "animation":
			resp.Animation = &entities.AnimationScript{}
			if err := json.Unmarshal(msg.Data, resp.Animation); err != nil {
				return nil, fmt.Errorf("decode animation: %w", err)
			}
			fmt.Println("📨 animation received")
		case "done":
			fmt.Printf("📨 done in %dms\n", msg.ElapsedMs)
			conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return resp, nil
		case "error":
			return nil, fmt.Errorf("%s: %s", msg.Code, msg.Message)
		default:
			logger.Warn("Unexpected message", zap.String("type", msg.Type))
		}
	}
}

func websocketURL(server string) (string, error) {
	u, err := url.Parse(strings.TrimSuffix(server, "/"))
	if err != nil {
		return "", fmt.Errorf("invalid server URL: %w", err)
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	u.Path += "/ws/roast"
	return u.String(), nil
}
