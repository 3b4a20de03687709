package events

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestDispatcherContinuesAfterHandlerError(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	d := NewInMemoryDispatcher(zap.New(core))

	var calls []string
	d.Subscribe(EventVisitorCheckedIn, func(context.Context, Event) error {
		calls = append(calls, "first")
		return errors.New("boom")
	})
	d.Subscribe(EventVisitorCheckedIn, func(context.Context, Event) error {
		calls = append(calls, "second")
		return nil
	})
	d.Subscribe(EventVisitorCheckedOut, func(context.Context, Event) error {
		calls = append(calls, "other")
		return nil
	})

	ev := NewEvent(EventVisitorCheckedIn, Actor{UserID: 1}, VisitorCheckedInPayload{VisitorID: 3})
	require.NoError(t, d.Publish(context.Background(), ev))

	assert.Equal(t, []string{"first", "second"}, calls)
	assert.Equal(t, 1, logs.FilterMessage("event handler failed").Len())
	assert.NotEmpty(t, ev.ID)
	assert.False(t, ev.Timestamp.IsZero())
}
