package dashboard

import (
	"context"
	"log/slog"
	"time"

	"github.com/frahmantamala/inventory-management/internal"
	"github.com/frahmantamala/inventory-management/internal/license"
	"github.com/frahmantamala/inventory-management/internal/policy"
	"github.com/frahmantamala/inventory-management/internal/store"
)

type RepositoryAPI interface {
	// EquipmentByStatus counts approved equipment grouped by status.
	EquipmentByStatus(ctx context.Context) ([]StatusCount, error)
	// LicenseExpirationDates returns the raw dates of approved licenses.
	LicenseExpirationDates(ctx context.Context) ([]string, error)
	PendingCount(ctx context.Context) (int, error)
}

type Service struct {
	repo   RepositoryAPI
	logger *slog.Logger
	now    func() time.Time
}

func NewService(repo RepositoryAPI, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
		now:    time.Now,
	}
}

// Summary counts approved records only. Pending approvals are reported to
// administrators alone; other roles see zero.
func (s *Service) Summary(ctx context.Context, actor *internal.Principal) (*Summary, error) {
	if err := policy.Check(actor, policy.ActionRead, policy.ResourceDashboard); err != nil {
		return nil, err
	}

	byStatus, err := s.repo.EquipmentByStatus(ctx)
	if err != nil {
		s.logger.Error("failed to count equipment", "error", err)
		return nil, store.TranslateError(err)
	}

	dates, err := s.repo.LicenseExpirationDates(ctx)
	if err != nil {
		s.logger.Error("failed to load license dates", "error", err)
		return nil, store.TranslateError(err)
	}

	sum := &Summary{EquipmentByStatus: byStatus, LicenseTotal: len(dates)}
	for _, c := range byStatus {
		sum.EquipmentTotal += c.Count
	}

	now := s.now()
	for _, d := range dates {
		switch license.Expiration(d, now) {
		case license.StateExpiring:
			sum.LicensesExpiring++
		case license.StateExpired:
			sum.LicensesExpired++
		}
	}

	if policy.Allow(actor.Role, policy.ActionRead, policy.ResourceApproval) {
		sum.PendingApprovals, err = s.repo.PendingCount(ctx)
		if err != nil {
			s.logger.Error("failed to count pending approvals", "error", err)
			return nil, store.TranslateError(err)
		}
	}

	return sum, nil
}
