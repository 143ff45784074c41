package events

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

type Event interface {
	EventType() string
	EventID() string
	OccurredAt() time.Time
	Payload() interface{}
}

// BaseEvent carries the envelope shared by every inventory event.
type BaseEvent struct {
	ID        string                 `json:"id"`
	Type      string                 `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	Data      map[string]interface{} `json:"data"`
}

func (e BaseEvent) EventType() string     { return e.Type }
func (e BaseEvent) EventID() string       { return e.ID }
func (e BaseEvent) OccurredAt() time.Time { return e.Timestamp }
func (e BaseEvent) Payload() interface{}  { return e.Data }

type Handler func(ctx context.Context, event Event) error

// EventBus fans events out to in-process subscribers. Metrics and the debug
// event log are its only consumers; the audit log is written in the
// mutating transaction and never depends on it.
type EventBus struct {
	handlers map[string][]Handler
	logger   *slog.Logger
	mu       sync.RWMutex
	inflight sync.WaitGroup
}

func NewEventBus(logger *slog.Logger) *EventBus {
	return &EventBus{
		handlers: make(map[string][]Handler),
		logger:   logger,
	}
}

func (eb *EventBus) Subscribe(eventType string, handler Handler) {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	eb.handlers[eventType] = append(eb.handlers[eventType], handler)
	eb.logger.Debug("event handler registered",
		"event_type", eventType,
		"total_handlers", len(eb.handlers[eventType]))
}

func (eb *EventBus) subscribers(eventType string) []Handler {
	eb.mu.RLock()
	defer eb.mu.RUnlock()
	return eb.handlers[eventType]
}

// Publish runs every handler in its own goroutine. Handlers outlive the
// request, so they get a context that is never cancelled. A nil bus drops
// the event.
func (eb *EventBus) Publish(ctx context.Context, event Event) error {
	if eb == nil {
		return nil
	}
	handlers := eb.subscribers(event.EventType())
	if len(handlers) == 0 {
		return nil
	}
	ctx = context.WithoutCancel(ctx)

	eb.inflight.Add(len(handlers))
	for _, handler := range handlers {
		go func(h Handler) {
			defer eb.inflight.Done()
			defer func() {
				if rec := recover(); rec != nil {
					eb.logger.Error("event handler panicked",
						"event_type", event.EventType(),
						"event_id", event.EventID(),
						"panic", rec)
				}
			}()
			if err := h(ctx, event); err != nil {
				eb.logger.Error("event handler failed",
					"event_type", event.EventType(),
					"event_id", event.EventID(),
					"error", err)
			}
		}(handler)
	}

	return nil
}

// PublishSync runs handlers in order on the caller's goroutine and stops at
// the first error.
func (eb *EventBus) PublishSync(ctx context.Context, event Event) error {
	if eb == nil {
		return nil
	}

	for _, handler := range eb.subscribers(event.EventType()) {
		if err := handler(ctx, event); err != nil {
			return fmt.Errorf("handler failed for event %s: %w", event.EventType(), err)
		}
	}
	return nil
}

// Drain waits for in-flight async handlers, or until ctx is done.
func (eb *EventBus) Drain(ctx context.Context) error {
	if eb == nil {
		return nil
	}
	done := make(chan struct{})
	go func() {
		eb.inflight.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
