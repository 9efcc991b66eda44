package events

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalDeliversToAllSubscribers(t *testing.T) {
	bus := NewLocal()
	var mu sync.Mutex
	var got []string

	for i := 0; i < 2; i++ {
		_, err := bus.Subscribe(func(ev Event) {
			mu.Lock()
			got = append(got, ev.Tag)
			mu.Unlock()
		})
		require.NoError(t, err)
	}

	require.NoError(t, bus.Publish(context.Background(), Event{Tag: "global_header"}))
	assert.Equal(t, []string{"global_header", "global_header"}, got)
}

func TestLocalCancelStopsDelivery(t *testing.T) {
	bus := NewLocal()
	calls := 0
	cancel, err := bus.Subscribe(func(Event) { calls++ })
	require.NoError(t, err)

	require.NoError(t, bus.Publish(context.Background(), Event{Tag: "posts"}))
	cancel()
	require.NoError(t, bus.Publish(context.Background(), Event{Tag: "posts"}))
	assert.Equal(t, 1, calls)
}

func TestLocalClosed(t *testing.T) {
	bus := NewLocal()
	require.NoError(t, bus.Close())
	_, err := bus.Subscribe(func(Event) {})
	assert.ErrorIs(t, err, ErrClosed)
}

func TestLocalPublishHonoursContext(t *testing.T) {
	bus := NewLocal()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Error(t, bus.Publish(ctx, Event{Tag: "posts"}))
}
