package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"citizenpulse/backend/internal/models"

	"github.com/nats-io/nats.go"
)

// NATSBroker carries change events over a core NATS subject.
type NATSBroker struct {
	nc      *nats.Conn
	subject string
}

// NewNATSBroker connects to url and publishes on subject.
func NewNATSBroker(url, subject string) (*NATSBroker, error) {
	nc, err := nats.Connect(url,
		nats.Name("citizenpulse"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				slog.Warn("NATS disconnected", "error", err)
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			slog.Info("NATS reconnected", "url", c.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}
	return &NATSBroker{nc: nc, subject: subject}, nil
}

func (b *NATSBroker) Publish(ctx context.Context, ev models.ChangeEvent) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context cancelled before publish: %w", err)
	}
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal change event: %w", err)
	}
	return b.nc.Publish(b.subject, data)
}

func (b *NATSBroker) Subscribe(ctx context.Context) (<-chan models.ChangeEvent, error) {
	msgs := make(chan *nats.Msg, 64)
	sub, err := b.nc.ChanSubscribe(b.subject, msgs)
	if err != nil {
		return nil, fmt.Errorf("subscribe to %s: %w", b.subject, err)
	}

	out := make(chan models.ChangeEvent, 64)
	go func() {
		defer close(out)
		defer func() {
			if err := sub.Unsubscribe(); err != nil {
				slog.Debug("NATS unsubscribe failed", "error", err)
			}
		}()

		for {
			select {
			case <-ctx.Done():
				return
			case msg := <-msgs:
				var ev models.ChangeEvent
				if err := json.Unmarshal(msg.Data, &ev); err != nil {
					slog.Warn("Dropping malformed change event", "subject", msg.Subject, "error", err)
					continue
				}
				select {
				case out <- ev:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}

// Close drains the connection.
func (b *NATSBroker) Close() error {
	return b.nc.Drain()
}
