// Package events distributes report change notifications: services publish to a broker,
// the hub fans the stream out to connected WebSocket clients and other subscribers.
package events

import (
	"context"
	"fmt"
	"log/slog"

	"citizenpulse/backend/internal/config"
	"citizenpulse/backend/internal/models"

	"github.com/redis/go-redis/v9"
)

// Publisher accepts change events.
type Publisher interface {
	Publish(ctx context.Context, ev models.ChangeEvent) error
}

// Broker is a Publisher whose stream can also be consumed.
type Broker interface {
	Publisher
	// Subscribe delivers events until ctx is cancelled, then closes the channel.
	Subscribe(ctx context.Context) (<-chan models.ChangeEvent, error)
	Close() error
}

// Discard drops every event. Used where no broker is configured, e.g. the admin CLI.
type Discard struct{}

func (Discard) Publish(context.Context, models.ChangeEvent) error { return nil }

// Emit publishes a change event and logs, but never returns, a failure. The mutation
// that triggered the event has already committed.
func Emit(ctx context.Context, p Publisher, kind models.ChangeKind, reportID string) {
	if p == nil {
		return
	}
	if err := p.Publish(ctx, models.NewChangeEvent(kind, reportID)); err != nil {
		slog.Warn("Failed to publish change event", "kind", kind, "report_id", reportID, "error", err)
	}
}

// NewBroker builds the broker selected by cfg.Backend. The redis backend without a client
// degrades to an in-process LocalBroker: events then reach only this instance's subscribers.
func NewBroker(cfg config.EventsConfig, rdb *redis.Client) (Broker, error) {
	switch cfg.Backend {
	case config.EventsBackendRedis:
		if rdb == nil {
			slog.Warn("No redis client, change events stay in-process")
			return NewLocalBroker(), nil
		}
		return NewRedisBroker(rdb, cfg.Channel), nil
	case config.EventsBackendNATS:
		return NewNATSBroker(cfg.NATSURL, cfg.Channel)
	default:
		return nil, fmt.Errorf("unknown events backend %q", cfg.Backend)
	}
}
