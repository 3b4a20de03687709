package worker

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/visitordesk/visitor-service/internal/events"
)

func TestWorkerDeliversAsynchronously(t *testing.T) {
	w := NewNotificationWorker(events.NewInMemoryDispatcher(nil), 4, nil)
	var delivered atomic.Int32
	w.Subscribe(events.EventVisitorCheckedOut, func(ctx context.Context, _ events.Event) error {
		if ctx.Err() == nil {
			delivered.Add(1)
		}
		return nil
	})
	w.Start()

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, w.Publish(ctx, events.NewEvent(events.EventVisitorCheckedOut, events.Actor{}, nil)))
	cancel()

	w.Stop()
	assert.Equal(t, int32(1), delivered.Load())
	assert.ErrorIs(t, w.Publish(context.Background(), events.NewEvent(events.EventVisitorCheckedOut, events.Actor{}, nil)), ErrStopped)
}

func TestWorkerRejectsWhenQueueFull(t *testing.T) {
	w := NewNotificationWorker(events.NewInMemoryDispatcher(nil), 1, nil)
	event := events.NewEvent(events.EventVisitorCheckedIn, events.Actor{}, nil)

	require.NoError(t, w.Publish(context.Background(), event))
	assert.ErrorIs(t, w.Publish(context.Background(), event), ErrQueueFull)

	w.Start()
	w.Stop()
}

func TestStopDrainsQueue(t *testing.T) {
	w := NewNotificationWorker(events.NewInMemoryDispatcher(nil), 8, nil)
	var delivered atomic.Int32
	w.Subscribe(events.EventVisitorCheckedIn, func(context.Context, events.Event) error {
		time.Sleep(time.Millisecond)
		delivered.Add(1)
		return nil
	})
	for i := 0; i < 5; i++ {
		require.NoError(t, w.Publish(context.Background(), events.NewEvent(events.EventVisitorCheckedIn, events.Actor{}, nil)))
	}
	w.Start()
	w.Stop()
	assert.Equal(t, int32(5), delivered.Load())
}
