package events

import (
	"context"
	"log/slog"

	"citizenpulse/backend/internal/models"
)

// Hub owns the set of connected clients. All mutations of the set happen on the Run
// goroutine; other goroutines talk to it through channels.
type Hub struct {
	clients map[Client]struct{}

	registerCh   chan Client
	unregisterCh chan Client
	countCh      chan chan int
	done         chan struct{}
}

func NewHub() *Hub {
	return &Hub{
		clients:      make(map[Client]struct{}),
		registerCh:   make(chan Client),
		unregisterCh: make(chan Client),
		countCh:      make(chan chan int),
		done:         make(chan struct{}),
	}
}

// Run dispatches events from source to matching clients until ctx is cancelled or
// source is closed. Remaining clients are closed on return.
func (h *Hub) Run(ctx context.Context, source <-chan models.ChangeEvent) {
	defer func() {
		close(h.done)
		for c := range h.clients {
			c.Close()
		}
		h.clients = nil
	}()

	for {
		select {
		case <-ctx.Done():
			return

		case c := <-h.registerCh:
			h.clients[c] = struct{}{}
			slog.Debug("Change stream client registered", "report_filter", c.GetReportFilter(), "clients", len(h.clients))

		case c := <-h.unregisterCh:
			h.remove(c)

		case reply := <-h.countCh:
			reply <- len(h.clients)

		case ev, ok := <-source:
			if !ok {
				slog.Warn("Change event source closed, stopping hub")
				return
			}
			h.broadcast(ev)
		}
	}
}

func (h *Hub) broadcast(ev models.ChangeEvent) {
	for c := range h.clients {
		if filter := c.GetReportFilter(); filter != "" && filter != ev.ReportID {
			continue
		}
		select {
		case c.GetSendChannel() <- ev:
		default:
			// slow consumer
			slog.Warn("Dropping slow change stream client", "report_filter", c.GetReportFilter())
			h.remove(c)
		}
	}
}

func (h *Hub) remove(c Client) {
	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	c.Close()
}

// Register attaches a client. It returns false if the hub has stopped.
func (h *Hub) Register(c Client) bool {
	select {
	case h.registerCh <- c:
		return true
	case <-h.done:
		return false
	}
}

// Unregister detaches a client. Unknown or already dropped clients are ignored.
func (h *Hub) Unregister(c Client) {
	select {
	case h.unregisterCh <- c:
	case <-h.done:
	}
}

// Count returns the number of connected clients, or 0 once the hub has stopped.
func (h *Hub) Count() int {
	reply := make(chan int, 1)
	select {
	case h.countCh <- reply:
		return <-reply
	case <-h.done:
		return 0
	}
}
