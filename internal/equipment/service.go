package equipment

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/frahmantamala/inventory-management/internal"
	"github.com/frahmantamala/inventory-management/internal/audit"
	"github.com/frahmantamala/inventory-management/internal/core/changes"
	"github.com/frahmantamala/inventory-management/internal/core/common/csvimport"
	equipmentDatamodel "github.com/frahmantamala/inventory-management/internal/core/datamodel/equipment"
	"github.com/frahmantamala/inventory-management/internal/core/events"
	"github.com/frahmantamala/inventory-management/internal/core/workflow"
	"github.com/frahmantamala/inventory-management/internal/policy"
	"github.com/frahmantamala/inventory-management/internal/store"
)

// TxStore is the repository bound to one open transaction.
type TxStore interface {
	GetByID(id int64) (*equipmentDatamodel.Equipment, error)
	FindByAssetTag(tag string) (*equipmentDatamodel.Equipment, error)
	Create(row *equipmentDatamodel.Equipment) error
	Save(row *equipmentDatamodel.Equipment) error
	Delete(id int64) (bool, error)
	AppendHistory(rows []*equipmentDatamodel.History) error
	AppendAudit(entry *audit.Entry) error
}

type RepositoryAPI interface {
	List(ctx context.Context, includePending bool) ([]*equipmentDatamodel.Equipment, error)
	GetByID(ctx context.Context, id int64) (*equipmentDatamodel.Equipment, error)
	ListHistory(ctx context.Context, equipmentID int64) ([]*equipmentDatamodel.History, error)
	InTx(ctx context.Context, fn func(tx TxStore) error) error
}

type Service struct {
	repo   RepositoryAPI
	bus    *events.EventBus
	logger *slog.Logger
	now    func() time.Time
}

func NewService(repo RepositoryAPI, bus *events.EventBus, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		bus:    bus,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (s *Service) List(ctx context.Context, actor *internal.Principal) ([]*Equipment, error) {
	if err := policy.Check(actor, policy.ActionRead, policy.ResourceEquipment); err != nil {
		return nil, err
	}

	rows, err := s.repo.List(ctx, actor.IsAdmin())
	if err != nil {
		s.logger.Error("failed to list equipment", "error", err)
		return nil, store.TranslateError(err)
	}

	out := make([]*Equipment, 0, len(rows))
	for _, row := range rows {
		out = append(out, FromDataModel(row))
	}
	return out, nil
}

func (s *Service) Get(ctx context.Context, actor *internal.Principal, id int64) (*Equipment, error) {
	if err := policy.Check(actor, policy.ActionRead, policy.ResourceEquipment); err != nil {
		return nil, err
	}

	row, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, s.translate(err)
	}
	if !workflow.Visible(row.ApprovalStatus, actor) {
		return nil, internal.ErrEquipmentNotFound
	}
	return FromDataModel(row), nil
}

func (s *Service) History(ctx context.Context, actor *internal.Principal, id int64) ([]*HistoryEntry, error) {
	if _, err := s.Get(ctx, actor, id); err != nil {
		return nil, err
	}

	rows, err := s.repo.ListHistory(ctx, id)
	if err != nil {
		s.logger.Error("failed to list equipment history", "error", err, "equipment_id", id)
		return nil, store.TranslateError(err)
	}

	out := make([]*HistoryEntry, 0, len(rows))
	for _, row := range rows {
		out = append(out, HistoryFromDataModel(row))
	}
	return out, nil
}

func (s *Service) Create(ctx context.Context, actor *internal.Principal, dto CreateEquipmentDTO) (*Equipment, error) {
	if err := policy.Check(actor, policy.ActionCreate, policy.ResourceEquipment); err != nil {
		return nil, err
	}
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	item := &Equipment{}
	changes.Assign(item, Fields, dto.values())
	item.ApprovalStatus = string(workflow.InitialStatus(actor))
	if strings.TrimSpace(item.QRPayload) == "" {
		item.QRPayload = item.Identifier()
	}

	row := ToDataModel(item)
	err := s.repo.InTx(ctx, func(tx TxStore) error {
		if err := tx.Create(row); err != nil {
			return err
		}
		return tx.AppendAudit(audit.NewEntry(actor.Username, audit.ActionCreate, audit.TargetEquipment, audit.ID(row.ID),
			fmt.Sprintf("created equipment %s (%s), status %s", row.Description, item.Identifier(), row.ApprovalStatus)))
	})
	if err != nil {
		s.logger.Error("failed to create equipment", "error", err, "actor", actor.Username)
		return nil, s.translate(err)
	}

	s.logger.Info("equipment created", "equipment_id", row.ID, "actor", actor.Username, "approval_status", row.ApprovalStatus)
	s.publish(ctx, audit.ActionCreate, row.ID, actor)
	return FromDataModel(row), nil
}

// Update applies a partial update. Approved rows get one history entry per
// changed field; every call writes one audit entry, even when nothing changed.
// Concurrent updates are last-writer-wins.
func (s *Service) Update(ctx context.Context, actor *internal.Principal, id int64, dto UpdateEquipmentDTO) (*Equipment, error) {
	if err := policy.Check(actor, policy.ActionUpdate, policy.ResourceEquipment); err != nil {
		return nil, err
	}
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	var updated *Equipment
	err := s.repo.InTx(ctx, func(tx TxStore) error {
		row, err := tx.GetByID(id)
		if err != nil {
			return err
		}
		current := FromDataModel(row)
		if !workflow.Visible(current.ApprovalStatus, actor) {
			return internal.ErrEquipmentNotFound
		}

		diff, err := s.apply(tx, current, dto.Values(), actor)
		if err != nil {
			return err
		}
		if err := tx.AppendAudit(audit.NewEntry(actor.Username, audit.ActionUpdate, audit.TargetEquipment, audit.ID(id),
			"updated equipment: "+changes.Summary(diff))); err != nil {
			return err
		}
		updated = current
		return nil
	})
	if err != nil {
		s.logger.Error("failed to update equipment", "error", err, "equipment_id", id, "actor", actor.Username)
		return nil, s.translate(err)
	}

	s.publish(ctx, audit.ActionUpdate, id, actor)
	return updated, nil
}

// apply saves values into current and records history when current is approved.
func (s *Service) apply(tx TxStore, current *Equipment, values map[string]*string, actor *internal.Principal) ([]changes.Change, error) {
	diff := changes.Apply(current, Fields, values)
	if len(diff) == 0 {
		return nil, nil
	}

	row := ToDataModel(current)
	if err := tx.Save(row); err != nil {
		return nil, err
	}
	current.UpdatedAt = row.UpdatedAt

	if workflow.Status(current.ApprovalStatus) != workflow.StatusApproved {
		return diff, nil
	}

	entries := NewHistory(current.ID, diff, actor.Username, s.now())
	rows := make([]*equipmentDatamodel.History, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, HistoryToDataModel(e))
	}
	if err := tx.AppendHistory(rows); err != nil {
		return nil, err
	}
	return diff, nil
}

func (s *Service) Delete(ctx context.Context, actor *internal.Principal, id int64) error {
	if err := policy.Check(actor, policy.ActionDelete, policy.ResourceEquipment); err != nil {
		return err
	}

	err := s.repo.InTx(ctx, func(tx TxStore) error {
		row, err := tx.GetByID(id)
		if err != nil {
			return err
		}
		deleted, err := tx.Delete(id)
		if err != nil {
			return err
		}
		if !deleted {
			return internal.ErrEquipmentNotFound
		}
		return tx.AppendAudit(audit.NewEntry(actor.Username, audit.ActionDelete, audit.TargetEquipment, audit.ID(id),
			fmt.Sprintf("deleted equipment %s (%s)", row.Description, FromDataModel(row).Identifier())))
	})
	if err != nil {
		s.logger.Error("failed to delete equipment", "error", err, "equipment_id", id, "actor", actor.Username)
		return s.translate(err)
	}

	s.logger.Info("equipment deleted", "equipment_id", id, "actor", actor.Username)
	s.publish(ctx, audit.ActionDelete, id, actor)
	return nil
}

// Import upserts the rows of a ';'-delimited CSV by asset tag. Rows without a
// description are skipped.
func (s *Service) Import(ctx context.Context, actor *internal.Principal, r io.Reader) (*ImportResult, error) {
	if err := policy.Check(actor, policy.ActionImport, policy.ResourceEquipment); err != nil {
		return nil, err
	}

	rows, err := csvimport.Read(r, importAliases)
	if err != nil {
		return nil, internal.NewValidationError(err.Error(), internal.ErrCodeInvalidCSV)
	}

	records := make([]Record, 0, len(rows))
	skipped := 0
	for _, row := range rows {
		if row["description"] == "" {
			skipped++
			continue
		}
		records = append(records, Record(row))
	}

	res, err := s.Reconcile(ctx, actor, records, ReconcileOptions{
		Target: audit.TargetEquipment,
		Source: "csv import",
	})
	if err != nil {
		return nil, err
	}

	return &ImportResult{Imported: res.Added, Updated: res.Updated, Skipped: res.Skipped + skipped}, nil
}

// Reconcile upserts records by asset tag in one transaction with one audit
// entry. Matched rows take the supplied fields; missing rows are inserted as
// approved. Any failing row aborts the whole batch.
func (s *Service) Reconcile(ctx context.Context, actor *internal.Principal, records []Record, opts ReconcileOptions) (*ReconcileResult, error) {
	if actor == nil {
		return nil, internal.ErrUnauthenticated
	}

	res := &ReconcileResult{}
	err := s.repo.InTx(ctx, func(tx TxStore) error {
		for _, record := range records {
			tag := strings.TrimSpace(record["asset_tag"])
			if tag == "" && opts.RequireAssetTag {
				res.Skipped++
				continue
			}

			var existing *equipmentDatamodel.Equipment
			if tag != "" {
				found, err := tx.FindByAssetTag(tag)
				if err != nil {
					return err
				}
				existing = found
			}

			if existing != nil {
				values := make(map[string]*string, len(record))
				for k, v := range record {
					values[k] = &v
				}
				if _, err := s.apply(tx, FromDataModel(existing), values, actor); err != nil {
					return err
				}
				res.Updated++
				continue
			}

			item := &Equipment{}
			changes.Assign(item, Fields, map[string]string(opts.Defaults))
			changes.Assign(item, Fields, map[string]string(record))
			item.ApprovalStatus = string(workflow.StatusApproved)
			if strings.TrimSpace(item.QRPayload) == "" {
				item.QRPayload = item.Identifier()
			}
			if err := tx.Create(ToDataModel(item)); err != nil {
				return err
			}
			res.Added++
		}

		return tx.AppendAudit(audit.NewEntry(actor.Username, audit.ActionUpdate, opts.Target, nil,
			fmt.Sprintf("%s: added %d, updated %d, skipped %d", opts.Source, res.Added, res.Updated, res.Skipped)))
	})
	if err != nil {
		s.logger.Error("equipment reconcile failed", "error", err, "source", opts.Source, "actor", actor.Username)
		return nil, s.translate(err)
	}

	s.logger.Info("equipment reconciled", "source", opts.Source, "added", res.Added, "updated", res.Updated, "skipped", res.Skipped)
	return res, nil
}

func (s *Service) translate(err error) error {
	if store.IsUniqueViolation(err) {
		return internal.NewConstraintError("asset_tag", "asset tag is already in use").WithCause(err)
	}
	return store.TranslateError(err)
}

func (s *Service) publish(ctx context.Context, action audit.Action, id int64, actor *internal.Principal) {
	if err := s.bus.Publish(ctx, events.NewRecordMutatedEvent("equipment", string(action), id, actor.Username)); err != nil {
		s.logger.Warn("failed to publish equipment event", "error", err)
	}
}
