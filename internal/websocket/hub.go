package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/satriahrh/roastme/domain"
	"github.com/satriahrh/roastme/domain/entities"
	"github.com/satriahrh/roastme/internal/imageprep"
	"github.com/satriahrh/roastme/usecase"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer. Base64 images are large.
	maxMessageSize = 32 << 20
)

var upgrader = websocket.Upgrader{
	// The HTTP endpoints allow any origin as well.
	CheckOrigin:     func(r *http.Request) bool { return true },
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// Hub tracks connected clients and owns the roast pipeline they stream from.
type Hub struct {
	// Registered clients keyed by client ID.
	clients map[string]*Client

	register   chan *Client
	unregister chan *Client

	// Closed when Run returns.
	done chan struct{}

	mu sync.RWMutex

	roast     *usecase.RoastService
	validator *MessageValidator
	logger    *zap.Logger
}

// NewHub creates a new WebSocket hub
func NewHub(roast *usecase.RoastService, logger *zap.Logger) *Hub {
	return &Hub{
		clients:    make(map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		roast:      roast,
		validator:  NewMessageValidator(),
		logger:     logger,
	}
}

// Run processes registrations until ctx is done
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for id, client := range h.clients {
				client.cancel()
				delete(h.clients, id)
			}
			h.mu.Unlock()
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.id] = client
			h.mu.Unlock()
			h.logger.Info("Client registered", zap.String("clientID", client.id))

		case client := <-h.unregister:
			h.mu.Lock()
			delete(h.clients, client.id)
			h.mu.Unlock()
			h.logger.Info("Client unregistered", zap.String("clientID", client.id))
		}
	}
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

type WriteData struct {
	// MessageType is the type of the websocket message.
	// Expect websocket.TextMessage or websocket.BinaryMessage
	Type    int
	Payload []byte
}

// Client is a middleman between the websocket connection and the hub.
type Client struct {
	hub *Hub

	// The websocket connection.
	conn *websocket.Conn

	// Buffered channel of outbound messages.
	send chan WriteData

	id     string
	logger *zap.Logger

	// Canceled when the connection ends. In-flight roasts stop with it.
	ctx    context.Context
	cancel context.CancelFunc
}

// HandleWebSocket upgrades the request and starts the client pumps.
func HandleWebSocket(hub *Hub, c echo.Context, logger *zap.Logger) error {
	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		logger.Error("WebSocket upgrade failed", zap.Error(err))
		return err
	}

	// The request context ends when this handler returns.
	ctx, cancel := context.WithCancel(context.Background())
	client := &Client{
		hub:    hub,
		conn:   conn,
		send:   make(chan WriteData, 256),
		id:     uuid.NewString(),
		ctx:    ctx,
		cancel: cancel,
	}
	client.logger = logger.With(zap.String("clientID", client.id))

	select {
	case hub.register <- client:
	case <-hub.done:
		cancel()
		conn.Close()
		return nil
	}

	go client.writePump()
	go client.readPump()

	return nil
}

// readPump pumps messages from the websocket connection to the hub.
func (c *Client) readPump() {
	defer func() {
		c.cancel()
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		messageType, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Error("WebSocket error", zap.Error(err))
			}
			break
		}

		switch messageType {
		case websocket.TextMessage:
			c.processMessage(message)
		case websocket.BinaryMessage:
			// A binary frame is a raw image upload.
			go c.streamRoast(uuid.NewString(), message)
		default:
			c.logger.Warn("Received unknown message type", zap.Int("type", messageType))
		}
	}
}

// writePump pumps messages from the hub to the websocket connection.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(message.Type, message.Payload); err != nil {
				c.logger.Error("Failed to write message", zap.Error(err))
				c.cancel()
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.cancel()
				return
			}

		case <-c.ctx.Done():
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		}
	}
}

// processMessage handles one JSON text frame
func (c *Client) processMessage(message []byte) {
	msg, err := c.hub.validator.ValidateMessage(message)
	if err != nil {
		c.logger.Warn("Rejected message", zap.Error(err))
		c.sendJSON(CreateErrorMessage("", CodeInvalidMessage, err.Error()))
		return
	}

	switch m := msg.(type) {
	case *PingMessage:
		c.sendJSON(CreatePongMessage(m.Data))

	case *RoastRequestMessage:
		requestID := m.RequestID
		if requestID == "" {
			requestID = uuid.NewString()
		}
		if err := c.hub.roast.Ready(); err != nil {
			c.sendError(requestID, err)
			return
		}
		image, err := imageprep.DecodeBase64(m.Image)
		if err != nil {
			c.sendError(requestID, err)
			return
		}
		go c.streamRoast(requestID, image)
	}
}

// streamRoast runs the pipeline and sends each stage as soon as it is ready.
func (c *Client) streamRoast(requestID string, image []byte) {
	start := time.Now()
	svc := c.hub.roast
	logger := c.logger.With(zap.String("request_id", requestID))
	logger.Info("Roast request received", zap.Int("imageBytes", len(image)))

	defer func() {
		if r := recover(); r != nil {
			logger.Error("Roast pipeline panicked", zap.Any("panic", r), zap.Stack("stack"))
			c.sendError(requestID, fmt.Errorf("panic: %v", r))
		}
	}()

	roast, err := svc.GenerateRoast(c.ctx, image)
	if err != nil {
		c.sendError(requestID, err)
		return
	}

	narration := entities.BuildNarration(*roast)
	c.sendJSON(&RoastMessage{
		BaseMessage: newBase(MessageTypeRoast, requestID),
		Data:        roast,
		Narration:   narration,
	})

	audio := svc.Speak(c.ctx, narration)
	if audio != nil {
		c.sendJSON(&AudioMessage{
			BaseMessage:   newBase(MessageTypeAudio, requestID),
			Audio:         audio.Base64(),
			AudioMimeType: audio.MIMEType,
			Duration:      audio.Seconds(),
		})
	}

	if anim := svc.Animate(c.ctx, narration, audio); anim != nil {
		c.sendJSON(&AnimationMessage{
			BaseMessage: newBase(MessageTypeAnimation, requestID),
			Data:        anim.Script,
			Issues:      anim.Issues,
			Warnings:    anim.Warnings,
			Fallback:    anim.Fallback,
		})
	}

	elapsed := time.Since(start)
	c.sendJSON(&DoneMessage{
		BaseMessage: newBase(MessageTypeDone, requestID),
		ElapsedMs:   elapsed.Milliseconds(),
	})
	logger.Info("Roast streamed", zap.Duration("elapsed", elapsed), zap.Bool("audio", audio != nil))
}

func (c *Client) sendError(requestID string, err error) {
	code := errorCode(err)
	if code == CodeInternal || code == CodeMissingCredential {
		c.logger.Error("Roast request failed", zap.String("request_id", requestID), zap.Error(err))
	} else {
		c.logger.Warn("Roast request rejected", zap.String("request_id", requestID), zap.Error(err))
	}
	c.sendJSON(CreateErrorMessage(requestID, code, domain.PublicMessage(err)))
}

// sendJSON queues v for the write pump. It drops v once the client is gone.
func (c *Client) sendJSON(v any) {
	payload, err := json.Marshal(v)
	if err != nil {
		c.logger.Error("Failed to marshal message", zap.Error(err))
		return
	}
	select {
	case c.send <- WriteData{Type: websocket.TextMessage, Payload: payload}:
	case <-c.ctx.Done():
	}
}

func errorCode(err error) string {
	switch {
	case errors.Is(err, domain.ErrNoImage):
		return CodeNoImage
	case errors.Is(err, domain.ErrInvalidImage):
		return CodeInvalidImage
	case errors.Is(err, domain.ErrBlocked):
		return CodeBlocked
	case errors.Is(err, domain.ErrParseFailure):
		return CodeParseFailure
	case errors.Is(err, domain.ErrMissingCredential):
		return CodeMissingCredential
	case errors.Is(err, domain.ErrUpstreamTimeout):
		return CodeUpstreamTimeout
	}
	return CodeInternal
}
