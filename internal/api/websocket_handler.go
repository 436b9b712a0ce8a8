package api

import (
	"fmt"

	"github.com/yegors/flight-overlay/internal/websocket"
	"github.com/yegors/flight-overlay/pkg/logger"
)

// WebSocketHandler answers requests sent by overlay pages
type WebSocketHandler struct {
	frames *FrameCache
	logger *logger.Logger
}

// NewWebSocketHandler creates a new WebSocket message handler
func NewWebSocketHandler(frames *FrameCache, loggerObj *logger.Logger) *WebSocketHandler {
	return &WebSocketHandler{
		frames: frames,
		logger: loggerObj.Named("overlay-ws-handler"),
	}
}

// HandleMessage handles incoming WebSocket messages
func (h *WebSocketHandler) HandleMessage(client *websocket.Client, messageType string, data map[string]any) error {
	switch messageType {
	case websocket.MessageTypeStateRequest:
		return h.handleStateRequest(client)
	default:
		h.logger.Debug("Unhandled message type", logger.String("type", messageType))
		return nil
	}
}

// handleStateRequest sends the full overlay state, track included, to one client
func (h *WebSocketHandler) handleStateRequest(client *websocket.Client) error {
	state := h.frames.State()

	message := &websocket.Message{
		Type: websocket.MessageTypeOverlayState,
		Data: map[string]any{
			"readouts": state.Readouts,
			"view":     state.View,
			"track":    state.Track,
		},
	}

	if !client.SendMessage(message) {
		return fmt.Errorf("failed to send overlay state: client closed or send buffer full")
	}
	h.logger.Debug("Sent overlay state", logger.Int("track_points", len(state.Track)))
	return nil
}
