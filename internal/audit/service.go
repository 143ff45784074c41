package audit

import (
	"context"
	"log/slog"

	"github.com/frahmantamala/inventory-management/internal"
	"github.com/frahmantamala/inventory-management/internal/policy"
	"github.com/frahmantamala/inventory-management/internal/store"
)

// Writer appends entries inside the caller's transaction. A failing
// append must abort that transaction.
type Writer interface {
	Append(entry *Entry) error
}

type RepositoryAPI interface {
	List(ctx context.Context, filter Filter) ([]*Entry, error)
}

type Service struct {
	repo   RepositoryAPI
	logger *slog.Logger
}

func NewService(repo RepositoryAPI, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

// List returns the newest entries first.
func (s *Service) List(ctx context.Context, actor *internal.Principal, filter Filter) ([]*Entry, error) {
	if err := policy.Check(actor, policy.ActionRead, policy.ResourceAuditLog); err != nil {
		return nil, err
	}
	if filter.TargetType != "" && !filter.TargetType.Valid() {
		return nil, internal.NewValidationFieldError("target_type", "unknown target type "+string(filter.TargetType), internal.ErrCodeValidationFailed)
	}

	entries, err := s.repo.List(ctx, filter.normalized())
	if err != nil {
		s.logger.Error("failed to list audit log", "error", err)
		return nil, store.TranslateError(err)
	}
	return entries, nil
}
