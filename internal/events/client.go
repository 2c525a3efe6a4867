package events

import "citizenpulse/backend/internal/models"

// Client is a subscriber attached to the hub, typically a WebSocket connection.
type Client interface {
	// GetReportFilter returns the report id the client follows, or "" for every report.
	GetReportFilter() string

	// GetSendChannel returns the channel the hub delivers events on. The hub never
	// blocks on it; a full channel gets the client dropped.
	GetSendChannel() chan<- models.ChangeEvent

	// Run starts the client's pumps.
	Run()
	// Close releases the client. The hub calls it exactly once, on unregister or drop.
	Close()
}
