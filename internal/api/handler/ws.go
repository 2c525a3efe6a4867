package handler

import (
	"log/slog"
	"net/http"

	"citizenpulse/backend/internal/events"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool { return true },
}

// ServeWebSocket upgrades the connection and subscribes it to change events, optionally
// filtered with ?report_id=.
func (h *Handler) ServeWebSocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade has already written the HTTP error.
		slog.Warn("WebSocket upgrade failed", "error", err)
		return
	}

	client := events.NewWebSocketClient(conn, h.Hub, c.Query("report_id"))
	if !h.Hub.Register(client) {
		_ = conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"))
		conn.Close()
		return
	}
	client.Run()
}
