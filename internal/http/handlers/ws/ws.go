package ws

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/messicms/media-service/internal/http/middleware"
	"github.com/messicms/media-service/internal/utils/response"
	"github.com/messicms/media-service/internal/websocket"
)

type WSHandlers struct {
	hub *websocket.Hub
}

// NewWSHandlers creates a new WebSocket handlers instance
func NewWSHandlers(hub *websocket.Hub) *WSHandlers {
	return &WSHandlers{hub: hub}
}

// HandleWebSocket upgrades the connection and streams media events
// @Summary Connect to the media event stream
// @Description Upgrade to a WebSocket and receive upload and cleanup events for the authenticated user
// @Tags websocket
// @Success 101 "Switching protocols"
// @Failure 401 {object} response.Response "Authentication required"
// @Security BearerAuth
// @Router /ws [get]
func (h *WSHandlers) HandleWebSocket() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := middleware.GetUserIDFromContext(r.Context())
		if !ok || userID == 0 {
			response.WriteJSON(w, http.StatusUnauthorized, response.GeneralError(
				errors.New("authentication required")))
			return
		}

		conn, err := websocket.Upgrader.Upgrade(w, r, nil)
		if err != nil {
			slog.Error("Failed to upgrade WebSocket connection", slog.String("error", err.Error()))
			return
		}

		client := websocket.NewClient(conn, strconv.FormatInt(userID, 10), h.hub)
		h.hub.RegisterClient(client)
		client.Start()
	}
}
