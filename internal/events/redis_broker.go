package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"citizenpulse/backend/internal/models"

	"github.com/redis/go-redis/v9"
)

// RedisBroker carries change events over a Redis pub/sub channel.
type RedisBroker struct {
	client  *redis.Client
	channel string
}

func NewRedisBroker(client *redis.Client, channel string) *RedisBroker {
	return &RedisBroker{client: client, channel: channel}
}

func (b *RedisBroker) Publish(ctx context.Context, ev models.ChangeEvent) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to encode change event: %w", err)
	}
	return b.client.Publish(ctx, b.channel, payload).Err()
}

func (b *RedisBroker) Subscribe(ctx context.Context) (<-chan models.ChangeEvent, error) {
	pubsub := b.client.Subscribe(ctx, b.channel)
	// wait for the subscription confirmation so no event published after return is missed
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, fmt.Errorf("failed to subscribe to %s: %w", b.channel, err)
	}

	out := make(chan models.ChangeEvent, 64)
	go func() {
		defer close(out)
		defer pubsub.Close()

		ch := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				var ev models.ChangeEvent
				if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
					slog.Warn("Dropping malformed change event", "channel", msg.Channel, "error", err)
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

// Close is a no-op; the Redis client is owned by the caller.
func (b *RedisBroker) Close() error { return nil }
