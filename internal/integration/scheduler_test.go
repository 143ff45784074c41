package integration_test

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"time"

	"github.com/frahmantamala/inventory-management/internal"
	"github.com/frahmantamala/inventory-management/internal/integration"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type mockSyncer struct {
	failures []error
	calls    int
	actors   []*internal.Principal
}

func (m *mockSyncer) Sync(_ context.Context, actor *internal.Principal) (*integration.SyncResult, error) {
	m.calls++
	m.actors = append(m.actors, actor)
	if m.calls <= len(m.failures) {
		return nil, m.failures[m.calls-1]
	}
	return &integration.SyncResult{Added: 1}, nil
}

var _ = Describe("Scheduler", func() {
	var (
		logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		ctx    = context.Background()
	)

	transient := func() error {
		return internal.NewTransientError("provider unavailable", errors.New("timeout"))
	}

	It("retries transient failures and runs as the system principal", func() {
		syncer := &mockSyncer{failures: []error{transient(), transient()}}
		scheduler := integration.NewScheduler(syncer, time.Minute, time.Second, logger).WithBackoff(time.Millisecond)

		res, err := scheduler.RunOnce(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(res.Added).To(Equal(1))
		Expect(syncer.calls).To(Equal(3))
		Expect(syncer.actors[0]).To(Equal(internal.SystemPrincipal))
	})

	It("gives up after three attempts", func() {
		syncer := &mockSyncer{failures: []error{transient(), transient(), transient(), transient()}}
		scheduler := integration.NewScheduler(syncer, time.Minute, time.Second, logger).WithBackoff(time.Millisecond)

		_, err := scheduler.RunOnce(ctx)
		Expect(internal.IsType(err, internal.ErrorTypeTransient)).To(BeTrue())
		Expect(syncer.calls).To(Equal(3))
	})

	It("does not retry other errors", func() {
		syncer := &mockSyncer{failures: []error{internal.NewValidationError("not configured", internal.ErrCodeIntegrationNotConfigured)}}
		scheduler := integration.NewScheduler(syncer, time.Minute, time.Second, logger).WithBackoff(time.Millisecond)

		_, err := scheduler.RunOnce(ctx)
		Expect(internal.IsType(err, internal.ErrorTypeValidation)).To(BeTrue())
		Expect(syncer.calls).To(Equal(1))
	})

	It("returns at once when the interval is zero", func() {
		syncer := &mockSyncer{}
		scheduler := integration.NewScheduler(syncer, 0, time.Second, logger)

		Expect(scheduler.Run(ctx)).To(Succeed())
		Expect(syncer.calls).To(BeZero())
	})

	It("stops when the context is cancelled", func() {
		syncer := &mockSyncer{}
		scheduler := integration.NewScheduler(syncer, time.Hour, time.Second, logger)
		runCtx, cancel := context.WithCancel(ctx)

		done := make(chan error, 1)
		go func() { done <- scheduler.Run(runCtx) }()
		cancel()

		Eventually(done).Should(Receive(BeNil()))
	})
})
