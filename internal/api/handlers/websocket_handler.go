package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"

	"github.com/postcraft/backend/internal/auth"
	mwauth "github.com/postcraft/backend/internal/middleware/auth"
	"github.com/postcraft/backend/pkg/logger"
)

const initialSession = "INITIAL_SESSION"

type EventSource interface {
	Subscribe(userID string) (<-chan auth.Event, func())
}

// WebSocketHandler streams session changes for the signed-in user. The stream
// ends after a SIGNED_OUT event or when the client goes away.
type WebSocketHandler struct {
	events EventSource
}

func NewWebSocketHandler(events EventSource) *WebSocketHandler {
	return &WebSocketHandler{
		events: events,
	}
}

// Upgrade rejects plain HTTP requests to the events endpoint.
func (h *WebSocketHandler) Upgrade(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}
	return c.Next()
}

func (h *WebSocketHandler) HandleConnection(c *websocket.Conn) {
	userID, _ := c.Locals(mwauth.LocalUserID).(string)
	logger.Info("Session stream opened", zap.String("user_id", userID))

	events, unsubscribe := h.events.Subscribe(userID)

	defer func() {
		unsubscribe()
		c.Close()
		logger.Info("Session stream closed", zap.String("user_id", userID))
	}()

	if err := h.send(c, auth.Event{Type: initialSession, UserID: userID, At: time.Now().UTC()}); err != nil {
		return
	}

	gone := make(chan struct{})
	go func() {
		defer close(gone)
		for {
			if _, _, err := c.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-gone:
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			if err := h.send(c, event); err != nil {
				return
			}
			if event.Type == auth.EventSignedOut {
				return
			}
		}
	}
}

func (h *WebSocketHandler) send(c *websocket.Conn, event auth.Event) error {
	if err := c.WriteJSON(event); err != nil {
		logger.Error("Failed to write session event", zap.Error(err))
		return err
	}
	return nil
}
