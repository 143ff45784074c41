// Package metrics defines the Prometheus collectors of the inventory service
// and feeds them from the domain event bus.
package metrics

import (
	"context"

	"github.com/frahmantamala/inventory-management/internal/core/events"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "inventory"

// HTTPRequestDuration measures handler latency.
// Labels:
//   - method: HTTP method
//   - route: chi route pattern (e.g. "/api/v1/equipment/{id}")
//   - status: response status code
var HTTPRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "Duration of HTTP requests.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"method", "route", "status"},
)

// MutationsTotal counts committed create/update/delete operations.
var MutationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "mutations_total",
		Help:      "Total number of committed record mutations, by entity and action.",
	},
	[]string{"entity", "action"},
)

// ApprovalDecisionsTotal counts approve and reject decisions.
var ApprovalDecisionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "approval_decisions_total",
		Help:      "Total number of approval decisions, by entity and decision.",
	},
	[]string{"entity", "decision"},
)

// LoginAttemptsTotal counts logins by outcome: success, challenge or failure.
var LoginAttemptsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "login_attempts_total",
		Help:      "Total number of login attempts, by outcome.",
	},
	[]string{"outcome"},
)

// SyncRunsTotal counts provider sync runs by result (success/failure).
var SyncRunsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "sync_runs_total",
		Help:      "Total number of provider sync runs, by provider and result.",
	},
	[]string{"provider", "result"},
)

// SyncDevicesTotal counts devices handled by sync runs by outcome (added/updated/skipped).
var SyncDevicesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "sync_devices_total",
		Help:      "Total number of devices reconciled, by provider and outcome.",
	},
	[]string{"provider", "outcome"},
)

// RegisterEventHandlers subscribes the collectors to the domain events.
func RegisterEventHandlers(bus *events.EventBus) {
	bus.Subscribe(events.EventTypeRecordMutated, func(_ context.Context, e events.Event) error {
		if ev, ok := e.(*events.RecordMutatedEvent); ok {
			MutationsTotal.WithLabelValues(ev.Entity, ev.Action).Inc()
		}
		return nil
	})

	bus.Subscribe(events.EventTypeApprovalDecided, func(_ context.Context, e events.Event) error {
		if ev, ok := e.(*events.ApprovalDecidedEvent); ok {
			ApprovalDecisionsTotal.WithLabelValues(ev.Entity, ev.Decision).Inc()
		}
		return nil
	})

	bus.Subscribe(events.EventTypeLoginAttempted, func(_ context.Context, e events.Event) error {
		if ev, ok := e.(*events.LoginAttemptedEvent); ok {
			LoginAttemptsTotal.WithLabelValues(ev.Outcome).Inc()
		}
		return nil
	})

	bus.Subscribe(events.EventTypeSyncCompleted, func(_ context.Context, e events.Event) error {
		ev, ok := e.(*events.SyncCompletedEvent)
		if !ok {
			return nil
		}
		if ev.Failed {
			SyncRunsTotal.WithLabelValues(ev.Provider, "failure").Inc()
			return nil
		}
		SyncRunsTotal.WithLabelValues(ev.Provider, "success").Inc()
		SyncDevicesTotal.WithLabelValues(ev.Provider, "added").Add(float64(ev.Added))
		SyncDevicesTotal.WithLabelValues(ev.Provider, "updated").Add(float64(ev.Updated))
		SyncDevicesTotal.WithLabelValues(ev.Provider, "skipped").Add(float64(ev.Skipped))
		return nil
	})
}
