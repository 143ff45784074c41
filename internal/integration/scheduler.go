package integration

import (
	"context"
	"log/slog"
	"time"

	"github.com/frahmantamala/inventory-management/internal"
	"github.com/sethvargo/go-retry"
)

const syncAttempts = 3

type Syncer interface {
	Sync(ctx context.Context, actor *internal.Principal) (*SyncResult, error)
}

// Scheduler runs Sync as the system principal on a fixed interval.
type Scheduler struct {
	syncer   Syncer
	interval time.Duration
	timeout  time.Duration
	backoff  time.Duration
	logger   *slog.Logger
}

func NewScheduler(syncer Syncer, interval, timeout time.Duration, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		syncer:   syncer,
		interval: interval,
		timeout:  timeout,
		backoff:  time.Second,
		logger:   logger,
	}
}

// WithBackoff sets the first retry delay; later delays double.
func (s *Scheduler) WithBackoff(d time.Duration) *Scheduler {
	s.backoff = d
	return s
}

// Run blocks until ctx is done. A zero interval disables the scheduler.
func (s *Scheduler) Run(ctx context.Context) error {
	if s.interval <= 0 {
		s.logger.Info("integration sync scheduler disabled")
		return nil
	}

	s.logger.Info("integration sync scheduler started", "interval", s.interval)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("integration sync scheduler stopped")
			return nil
		case <-ticker.C:
			if _, err := s.RunOnce(ctx); err != nil {
				s.logger.Error("scheduled integration sync failed", "error", err)
			}
		}
	}
}

// RunOnce performs one sync, retrying transient failures with exponential
// backoff. Other errors end the run at once.
func (s *Scheduler) RunOnce(ctx context.Context) (*SyncResult, error) {
	var res *SyncResult
	backoff := retry.WithMaxRetries(syncAttempts-1, retry.NewExponential(s.backoff))

	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		runCtx, cancel := internal.WithTimeout(ctx, s.timeout)
		defer cancel()

		out, err := s.syncer.Sync(runCtx, internal.SystemPrincipal)
		if err != nil {
			if internal.IsType(err, internal.ErrorTypeTransient) {
				s.logger.Warn("integration sync failed, retrying", "error", err)
				return retry.RetryableError(err)
			}
			return err
		}
		res = out
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}
