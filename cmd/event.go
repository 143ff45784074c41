package cmd

import (
	"context"
	"log/slog"

	"github.com/frahmantamala/inventory-management/internal/core/events"
)

// subscribeEventLog logs every domain event at debug level. The audit log is
// the durable record; this only makes the bus visible while developing.
func subscribeEventLog(bus *events.EventBus, lg *slog.Logger) {
	for _, eventType := range []string{
		events.EventTypeRecordMutated,
		events.EventTypeApprovalDecided,
		events.EventTypeSyncCompleted,
		events.EventTypeLoginAttempted,
	} {
		bus.Subscribe(eventType, func(ctx context.Context, event events.Event) error {
			lg.Debug("event received",
				"event_id", event.EventID(),
				"event_type", event.EventType(),
				"payload", event.Payload())
			return nil
		})
	}
}
