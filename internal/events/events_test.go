package events

import (
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishSubscribe(t *testing.T) {
	logger := zerolog.Nop()
	bus := NewBus(&logger)

	var got []Event
	bus.Subscribe(EventStockUpdated, func(e Event) { got = append(got, e) })
	bus.Subscribe(EventOrderComposed, func(e Event) { t.Fatal("wrong event type delivered") })

	require.NoError(t, bus.PublishJSON(EventStockUpdated, map[string]int64{"item_id": 4, "quantity": 2}))

	require.Len(t, got, 1)
	assert.Equal(t, EventStockUpdated, got[0].Type)
	assert.False(t, got[0].Timestamp.IsZero())

	var payload map[string]int64
	require.NoError(t, json.Unmarshal(got[0].Payload, &payload))
	assert.Equal(t, int64(4), payload["item_id"])
}

func TestPublishNoSubscribers(t *testing.T) {
	logger := zerolog.Nop()
	bus := NewBus(&logger)

	require.NoError(t, bus.PublishJSON(EventItemAdded, struct{}{}))
}

func TestMultipleSubscribers(t *testing.T) {
	logger := zerolog.Nop()
	bus := NewBus(&logger)

	count := 0
	bus.Subscribe(EventItemAdded, func(Event) { count++ })
	bus.Subscribe(EventItemAdded, func(Event) { count++ })

	bus.Publish(Event{Type: EventItemAdded})
	assert.Equal(t, 2, count)
}
