package events

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

const (
	EventItemAdded     = "item_added"
	EventStockUpdated  = "stock_updated"
	EventOrderComposed = "order_composed"
)

// Event is an in-process notification about an inventory change.
type Event struct {
	Type      string          `json:"type"`
	Payload   json.RawMessage `json:"payload"`
	Timestamp time.Time       `json:"timestamp"`
}

// Handler consumes events. Handlers run on the publisher's goroutine
// and must not block.
type Handler func(Event)

// Bus is a minimal synchronous pub/sub fan-out.
type Bus struct {
	mu       sync.RWMutex
	handlers map[string][]Handler
	logger   *zerolog.Logger
}

func NewBus(logger *zerolog.Logger) *Bus {
	return &Bus{
		handlers: make(map[string][]Handler),
		logger:   logger,
	}
}

// Subscribe registers a handler for the given event type.
func (b *Bus) Subscribe(eventType string, h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[eventType] = append(b.handlers[eventType], h)
}

// Publish delivers an event to every subscriber of its type.
func (b *Bus) Publish(event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	b.mu.RLock()
	handlers := b.handlers[event.Type]
	b.mu.RUnlock()

	for _, h := range handlers {
		h(event)
	}

	b.logger.Debug().
		Str("event_type", event.Type).
		Int("subscribers", len(handlers)).
		Msg("event published")
}

// PublishJSON marshals the payload and publishes it under eventType.
func (b *Bus) PublishJSON(eventType string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal event payload: %w", err)
	}
	b.Publish(Event{Type: eventType, Payload: data})
	return nil
}
