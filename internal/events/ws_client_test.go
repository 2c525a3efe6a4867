package events_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"citizenpulse/backend/internal/events"
	"citizenpulse/backend/internal/models"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWebSocketClient_StreamsEvents(t *testing.T) {
	hub := events.NewHub()
	source := make(chan models.ChangeEvent)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx, source)

	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		client := events.NewWebSocketClient(conn, hub, r.URL.Query().Get("report_id"))
		if hub.Register(client) {
			client.Run()
		}
	}))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "?report_id=r1"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return hub.Count() == 1 }, time.Second, 10*time.Millisecond)

	source <- models.NewChangeEvent(models.ChangeStatusChanged, "other")
	source <- models.NewChangeEvent(models.ChangeStatusChanged, "r1")

	var ev models.ChangeEvent
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	require.NoError(t, conn.ReadJSON(&ev))
	assert.Equal(t, "r1", ev.ReportID)
	assert.Equal(t, models.ChangeStatusChanged, ev.Kind)

	conn.Close()
	assert.Eventually(t, func() bool { return hub.Count() == 0 }, 2*time.Second, 10*time.Millisecond)
}
