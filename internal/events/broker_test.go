package events_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"citizenpulse/backend/internal/config"
	"citizenpulse/backend/internal/events"
	"citizenpulse/backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []models.ChangeEvent
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, ev models.ChangeEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return p.err
}

func TestEmit(t *testing.T) {
	p := &recordingPublisher{}
	events.Emit(context.Background(), p, models.ChangeUpdateAppended, "r1")

	require.Len(t, p.events, 1)
	assert.Equal(t, models.ChangeUpdateAppended, p.events[0].Kind)
	assert.Equal(t, "report_updates", p.events[0].Table)
}

func TestEmit_SwallowsErrors(t *testing.T) {
	p := &recordingPublisher{err: errors.New("broker down")}
	assert.NotPanics(t, func() {
		events.Emit(context.Background(), p, models.ChangeReportCreated, "r1")
	})
	assert.NotPanics(t, func() {
		events.Emit(context.Background(), nil, models.ChangeReportCreated, "r1")
	})
}

func TestDiscard(t *testing.T) {
	assert.NoError(t, events.Discard{}.Publish(context.Background(), models.NewChangeEvent(models.ChangeReportCreated, "r")))
}

func TestNewBroker_Errors(t *testing.T) {
	_, err := events.NewBroker(config.EventsConfig{Backend: "kafka"}, nil)
	assert.Error(t, err)

	_, err = events.NewBroker(config.EventsConfig{Backend: config.EventsBackendNATS, NATSURL: "nats://127.0.0.1:1", Channel: "c"}, nil)
	assert.Error(t, err, "unreachable NATS server")
}

func TestRedisBroker_Construct(t *testing.T) {
	b := events.NewRedisBroker(nil, "citizenpulse.changes")
	assert.NoError(t, b.Close())
}

func TestNewBroker_RedisWithoutClientFallsBackToLocal(t *testing.T) {
	b, err := events.NewBroker(config.EventsConfig{Backend: config.EventsBackendRedis, Channel: "c"}, nil)
	require.NoError(t, err)
	defer b.Close()
	assert.IsType(t, &events.LocalBroker{}, b)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	stream, err := b.Subscribe(ctx)
	require.NoError(t, err)

	events.Emit(ctx, b, models.ChangeStatusChanged, "r1")

	select {
	case ev := <-stream:
		assert.Equal(t, models.ChangeStatusChanged, ev.Kind)
		assert.Equal(t, "r1", ev.ReportID)
	case <-time.After(time.Second):
		t.Fatal("event not delivered")
	}
}

func TestLocalBroker_FeedsHub(t *testing.T) {
	b := events.NewLocalBroker()
	defer b.Close()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stream, err := b.Subscribe(ctx)
	require.NoError(t, err)
	hub := events.NewHub()
	go hub.Run(ctx, stream)

	client := newMockClient("r1", 4)
	require.True(t, hub.Register(client))
	require.Eventually(t, func() bool { return hub.Count() == 1 }, time.Second, 10*time.Millisecond)

	require.NoError(t, b.Publish(ctx, models.NewChangeEvent(models.ChangeUpvotesChanged, "r1")))

	select {
	case ev := <-client.recv:
		assert.Equal(t, models.ChangeUpvotesChanged, ev.Kind)
	case <-time.After(time.Second):
		t.Fatal("hub did not forward the event")
	}
}

func TestLocalBroker_CancelAndClose(t *testing.T) {
	b := events.NewLocalBroker()
	ctx, cancel := context.WithCancel(context.Background())

	stream, err := b.Subscribe(ctx)
	require.NoError(t, err)
	cancel()

	require.Eventually(t, func() bool {
		select {
		case _, ok := <-stream:
			return !ok
		default:
			return false
		}
	}, time.Second, 10*time.Millisecond, "cancelled subscription is closed")

	kept, err := b.Subscribe(context.Background())
	require.NoError(t, err)
	require.NoError(t, b.Close())
	_, ok := <-kept
	assert.False(t, ok, "Close ends remaining subscriptions")

	assert.Error(t, b.Publish(context.Background(), models.NewChangeEvent(models.ChangeReportCreated, "r1")))
	_, err = b.Subscribe(context.Background())
	assert.Error(t, err)
	assert.NoError(t, b.Close())
}
