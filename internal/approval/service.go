package approval

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/frahmantamala/inventory-management/internal"
	"github.com/frahmantamala/inventory-management/internal/audit"
	"github.com/frahmantamala/inventory-management/internal/core/events"
	"github.com/frahmantamala/inventory-management/internal/policy"
	"github.com/frahmantamala/inventory-management/internal/store"
)

// TxStore is the repository bound to one open transaction. Every statement
// is conditional on the row still being pending.
type TxStore interface {
	Approve(entity Entity, id int64) (bool, error)
	PendingName(entity Entity, id int64) (string, bool, error)
	DeletePending(entity Entity, id int64) (bool, error)
	AppendAudit(entry *audit.Entry) error
}

type RepositoryAPI interface {
	ListPending(ctx context.Context) ([]*PendingItem, error)
	InTx(ctx context.Context, fn func(tx TxStore) error) error
}

type Service struct {
	repo   RepositoryAPI
	bus    *events.EventBus
	logger *slog.Logger
}

func NewService(repo RepositoryAPI, bus *events.EventBus, logger *slog.Logger) *Service {
	return &Service{repo: repo, bus: bus, logger: logger}
}

func (s *Service) ListPending(ctx context.Context, actor *internal.Principal) ([]*PendingItem, error) {
	if err := policy.Check(actor, policy.ActionRead, policy.ResourceApproval); err != nil {
		return nil, err
	}

	items, err := s.repo.ListPending(ctx)
	if err != nil {
		s.logger.Error("failed to list pending approvals", "error", err)
		return nil, store.TranslateError(err)
	}
	return items, nil
}

// Approve moves a pending row to approved. A row that is no longer pending,
// including one rejected concurrently, is ErrNotPending.
func (s *Service) Approve(ctx context.Context, actor *internal.Principal, dto DecisionDTO) (*DecisionResponse, error) {
	if err := policy.Check(actor, policy.ActionApprove, policy.ResourceApproval); err != nil {
		return nil, err
	}
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	err := s.repo.InTx(ctx, func(tx TxStore) error {
		approved, err := tx.Approve(dto.Entity, dto.ID)
		if err != nil {
			return err
		}
		if !approved {
			return internal.ErrNotPending
		}
		return tx.AppendAudit(audit.NewEntry(actor.Username, audit.ActionUpdate, dto.Entity.Target(), audit.ID(dto.ID),
			fmt.Sprintf("approved %s %d", dto.Entity, dto.ID)))
	})
	if err != nil {
		s.logger.Warn("approve failed", "error", err, "entity", dto.Entity, "id", dto.ID, "actor", actor.Username)
		return nil, store.TranslateError(err)
	}

	return s.decided(ctx, dto, DecisionApproved, actor), nil
}

// Reject deletes a pending row. The reason survives only in the audit log.
func (s *Service) Reject(ctx context.Context, actor *internal.Principal, dto DecisionDTO) (*DecisionResponse, error) {
	if err := policy.Check(actor, policy.ActionReject, policy.ResourceApproval); err != nil {
		return nil, err
	}
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	err := s.repo.InTx(ctx, func(tx TxStore) error {
		name, found, err := tx.PendingName(dto.Entity, dto.ID)
		if err != nil {
			return err
		}
		if !found {
			return internal.ErrNotPending
		}
		deleted, err := tx.DeletePending(dto.Entity, dto.ID)
		if err != nil {
			return err
		}
		if !deleted {
			return internal.ErrNotPending
		}

		reason := dto.Reason
		if reason == "" {
			reason = "no reason given"
		}
		return tx.AppendAudit(audit.NewEntry(actor.Username, audit.ActionDelete, dto.Entity.Target(), audit.ID(dto.ID),
			fmt.Sprintf("rejected %s %d (%s): %s", dto.Entity, dto.ID, name, reason)))
	})
	if err != nil {
		s.logger.Warn("reject failed", "error", err, "entity", dto.Entity, "id", dto.ID, "actor", actor.Username)
		return nil, store.TranslateError(err)
	}

	return s.decided(ctx, dto, DecisionRejected, actor), nil
}

func (s *Service) decided(ctx context.Context, dto DecisionDTO, decision string, actor *internal.Principal) *DecisionResponse {
	s.logger.Info("approval decided", "entity", dto.Entity, "id", dto.ID, "decision", decision, "actor", actor.Username)
	if err := s.bus.Publish(ctx, events.NewApprovalDecidedEvent(string(dto.Entity), dto.ID, decision, actor.Username)); err != nil {
		s.logger.Warn("failed to publish approval event", "error", err)
	}
	return &DecisionResponse{Entity: dto.Entity, ID: dto.ID, Decision: decision}
}
