package events

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"citizenpulse/backend/internal/models"
)

// LocalBroker fans events out inside the process. It stands in for the Redis broker when
// Redis is unreachable, so a single instance still feeds its own hub.
type LocalBroker struct {
	mu     sync.RWMutex
	subs   map[chan models.ChangeEvent]struct{}
	done   chan struct{}
	closed bool
}

func NewLocalBroker() *LocalBroker {
	return &LocalBroker{
		subs: make(map[chan models.ChangeEvent]struct{}),
		done: make(chan struct{}),
	}
}

// Publish never blocks; a subscriber whose buffer is full misses the event.
func (b *LocalBroker) Publish(_ context.Context, ev models.ChangeEvent) error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return fmt.Errorf("local broker is closed")
	}
	for ch := range b.subs {
		select {
		case ch <- ev:
		default:
			slog.Warn("Local subscriber lagging, event dropped", "kind", ev.Kind, "report_id", ev.ReportID)
		}
	}
	return nil
}

func (b *LocalBroker) Subscribe(ctx context.Context) (<-chan models.ChangeEvent, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil, fmt.Errorf("local broker is closed")
	}

	ch := make(chan models.ChangeEvent, 64)
	b.subs[ch] = struct{}{}
	go func() {
		select {
		case <-ctx.Done():
		case <-b.done:
			return
		}
		b.mu.Lock()
		defer b.mu.Unlock()
		if _, ok := b.subs[ch]; ok {
			delete(b.subs, ch)
			close(ch)
		}
	}()
	return ch, nil
}

// Close ends every subscription.
func (b *LocalBroker) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.closed = true
	close(b.done)
	for ch := range b.subs {
		delete(b.subs, ch)
		close(ch)
	}
	return nil
}
