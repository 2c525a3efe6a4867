package events

import (
	"encoding/json"
	"log/slog"
	"time"

	"citizenpulse/backend/internal/models"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
	sendBuffer     = 32
)

// WebSocketClient streams change events to one browser connection.
type WebSocketClient struct {
	ReportID string
	Conn     *websocket.Conn
	Hub      *Hub
	send     chan models.ChangeEvent
}

func NewWebSocketClient(conn *websocket.Conn, hub *Hub, reportID string) *WebSocketClient {
	return &WebSocketClient{
		ReportID: reportID,
		Conn:     conn,
		Hub:      hub,
		send:     make(chan models.ChangeEvent, sendBuffer),
	}
}

func (c *WebSocketClient) GetReportFilter() string                   { return c.ReportID }
func (c *WebSocketClient) GetSendChannel() chan<- models.ChangeEvent { return c.send }

// Run starts the read and write pumps.
func (c *WebSocketClient) Run() {
	go c.writePump()
	go c.readPump()
}

// Close closes the send channel, which stops writePump and closes the connection.
func (c *WebSocketClient) Close() {
	close(c.send)
}

// readPump only services control frames; the stream is server to client.
func (c *WebSocketClient) readPump() {
	defer func() {
		c.Hub.Unregister(c)
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	_ = c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		return c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.Conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				slog.Debug("Change stream read failed", "error", err)
			}
			return
		}
	}
}

func (c *WebSocketClient) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case ev, ok := <-c.send:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			data, err := json.Marshal(ev)
			if err != nil {
				slog.Error("Failed to encode change event", "error", err)
				continue
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
