package license

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/frahmantamala/inventory-management/internal"
	"github.com/frahmantamala/inventory-management/internal/audit"
	"github.com/frahmantamala/inventory-management/internal/core/changes"
	"github.com/frahmantamala/inventory-management/internal/core/common/csvimport"
	licenseDatamodel "github.com/frahmantamala/inventory-management/internal/core/datamodel/license"
	"github.com/frahmantamala/inventory-management/internal/core/events"
	"github.com/frahmantamala/inventory-management/internal/core/workflow"
	"github.com/frahmantamala/inventory-management/internal/policy"
	"github.com/frahmantamala/inventory-management/internal/store"
)

// TxStore is the repository bound to one open transaction.
type TxStore interface {
	GetByID(id int64) (*licenseDatamodel.License, error)
	Create(row *licenseDatamodel.License) error
	CreateBatch(rows []*licenseDatamodel.License) error
	Save(row *licenseDatamodel.License) error
	Delete(id int64) (bool, error)
	DeleteProduct(product string) (int64, error)
	RenameProduct(oldName, newName string) (int64, error)
	GetTotal(product string) (*licenseDatamodel.Total, error)
	UpsertTotal(total *licenseDatamodel.Total) error
	DeleteTotal(product string) (bool, error)
	AppendAudit(entry *audit.Entry) error
}

type RepositoryAPI interface {
	List(ctx context.Context, includePending bool) ([]*licenseDatamodel.License, error)
	GetByID(ctx context.Context, id int64) (*licenseDatamodel.License, error)
	Usage(ctx context.Context) ([]Usage, error)
	Totals(ctx context.Context) ([]Total, error)
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

func (s *Service) List(ctx context.Context, actor *internal.Principal) ([]*License, error) {
	if err := policy.Check(actor, policy.ActionRead, policy.ResourceLicense); err != nil {
		return nil, err
	}

	rows, err := s.repo.List(ctx, actor.IsAdmin())
	if err != nil {
		s.logger.Error("failed to list licenses", "error", err)
		return nil, store.TranslateError(err)
	}

	now := s.now()
	out := make([]*License, 0, len(rows))
	for _, row := range rows {
		out = append(out, s.view(row, now))
	}
	return out, nil
}

func (s *Service) Get(ctx context.Context, actor *internal.Principal, id int64) (*License, error) {
	if err := policy.Check(actor, policy.ActionRead, policy.ResourceLicense); err != nil {
		return nil, err
	}

	row, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, store.TranslateError(err)
	}
	if !workflow.Visible(row.ApprovalStatus, actor) {
		return nil, internal.ErrLicenseNotFound
	}
	return s.view(row, s.now()), nil
}

func (s *Service) Create(ctx context.Context, actor *internal.Principal, dto CreateLicenseDTO) (*License, error) {
	if err := policy.Check(actor, policy.ActionCreate, policy.ResourceLicense); err != nil {
		return nil, err
	}
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	item := &License{}
	changes.Assign(item, Fields, dto.values())
	item.ApprovalStatus = string(workflow.InitialStatus(actor))

	row := ToDataModel(item)
	err := s.repo.InTx(ctx, func(tx TxStore) error {
		if err := tx.Create(row); err != nil {
			return err
		}
		return tx.AppendAudit(audit.NewEntry(actor.Username, audit.ActionCreate, audit.TargetLicense, audit.ID(row.ID),
			fmt.Sprintf("created license %s for %s, status %s", row.Product, row.AssignedUser, row.ApprovalStatus)))
	})
	if err != nil {
		s.logger.Error("failed to create license", "error", err, "actor", actor.Username)
		return nil, store.TranslateError(err)
	}

	s.logger.Info("license created", "license_id", row.ID, "actor", actor.Username, "approval_status", row.ApprovalStatus)
	s.publish(ctx, audit.ActionCreate, row.ID, actor)
	return s.view(row, s.now()), nil
}

// Update applies a partial update and writes one audit entry listing the
// changed fields. Concurrent updates are last-writer-wins.
func (s *Service) Update(ctx context.Context, actor *internal.Principal, id int64, dto UpdateLicenseDTO) (*License, error) {
	if err := policy.Check(actor, policy.ActionUpdate, policy.ResourceLicense); err != nil {
		return nil, err
	}
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	var updated *licenseDatamodel.License
	err := s.repo.InTx(ctx, func(tx TxStore) error {
		row, err := tx.GetByID(id)
		if err != nil {
			return err
		}
		if !workflow.Visible(row.ApprovalStatus, actor) {
			return internal.ErrLicenseNotFound
		}

		current := FromDataModel(row)
		diff := changes.Apply(current, Fields, dto.Values())
		updated = ToDataModel(current)
		if len(diff) > 0 {
			if err := tx.Save(updated); err != nil {
				return err
			}
		}
		return tx.AppendAudit(audit.NewEntry(actor.Username, audit.ActionUpdate, audit.TargetLicense, audit.ID(id),
			"updated license: "+changes.Summary(diff)))
	})
	if err != nil {
		s.logger.Error("failed to update license", "error", err, "license_id", id, "actor", actor.Username)
		return nil, store.TranslateError(err)
	}

	s.publish(ctx, audit.ActionUpdate, id, actor)
	return s.view(updated, s.now()), nil
}

func (s *Service) Delete(ctx context.Context, actor *internal.Principal, id int64) error {
	if err := policy.Check(actor, policy.ActionDelete, policy.ResourceLicense); err != nil {
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
			return internal.ErrLicenseNotFound
		}
		return tx.AppendAudit(audit.NewEntry(actor.Username, audit.ActionDelete, audit.TargetLicense, audit.ID(id),
			fmt.Sprintf("deleted license %s for %s", row.Product, row.AssignedUser)))
	})
	if err != nil {
		s.logger.Error("failed to delete license", "error", err, "license_id", id, "actor", actor.Username)
		return store.TranslateError(err)
	}

	s.logger.Info("license deleted", "license_id", id, "actor", actor.Username)
	s.publish(ctx, audit.ActionDelete, id, actor)
	return nil
}

// ProductStats reports seat usage per product, sorted by product. Products
// without a configured total use their usage as total, and available may be
// negative when a product is over-allocated.
func (s *Service) ProductStats(ctx context.Context, actor *internal.Principal) ([]*ProductStat, error) {
	if err := policy.Check(actor, policy.ActionRead, policy.ResourceLicenseTotal); err != nil {
		return nil, err
	}

	usage, err := s.repo.Usage(ctx)
	if err != nil {
		s.logger.Error("failed to load license usage", "error", err)
		return nil, store.TranslateError(err)
	}
	totals, err := s.repo.Totals(ctx)
	if err != nil {
		s.logger.Error("failed to load license totals", "error", err)
		return nil, store.TranslateError(err)
	}

	return BuildStats(usage, totals), nil
}

// BuildStats merges usage rows with configured totals.
func BuildStats(usage []Usage, totals []Total) []*ProductStat {
	byProduct := make(map[string]*ProductStat)
	configured := make(map[string]bool)

	for _, u := range usage {
		byProduct[u.Product] = &ProductStat{Product: u.Product, Used: u.Used}
	}
	for _, t := range totals {
		stat, ok := byProduct[t.Product]
		if !ok {
			stat = &ProductStat{Product: t.Product}
			byProduct[t.Product] = stat
		}
		stat.Total = t.Total
		configured[t.Product] = true
	}

	out := make([]*ProductStat, 0, len(byProduct))
	for product, stat := range byProduct {
		if !configured[product] {
			stat.Total = stat.Used
		}
		stat.Available = stat.Total - stat.Used
		out = append(out, stat)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Product < out[j].Product })
	return out
}

func (s *Service) SetProductTotal(ctx context.Context, actor *internal.Principal, product string, dto SetTotalDTO) (*Total, error) {
	if err := policy.Check(actor, policy.ActionUpdate, policy.ResourceLicenseTotal); err != nil {
		return nil, err
	}
	product = strings.TrimSpace(product)
	if product == "" {
		return nil, internal.NewValidationFieldError("product", "product is required", internal.ErrCodeValidationFailed)
	}
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	err := s.repo.InTx(ctx, func(tx TxStore) error {
		if err := tx.UpsertTotal(&licenseDatamodel.Total{Product: product, Total: *dto.Total}); err != nil {
			return err
		}
		return tx.AppendAudit(audit.NewEntry(actor.Username, audit.ActionUpdate, audit.TargetConfig, nil,
			fmt.Sprintf("set license total for %s to %d", product, *dto.Total)))
	})
	if err != nil {
		s.logger.Error("failed to set license total", "error", err, "product", product, "actor", actor.Username)
		return nil, store.TranslateError(err)
	}

	return &Total{Product: product, Total: *dto.Total}, nil
}

// DeleteProductTotal removes the configured total only. License rows stay.
func (s *Service) DeleteProductTotal(ctx context.Context, actor *internal.Principal, product string) error {
	if err := policy.Check(actor, policy.ActionDelete, policy.ResourceLicenseTotal); err != nil {
		return err
	}
	product = strings.TrimSpace(product)

	err := s.repo.InTx(ctx, func(tx TxStore) error {
		deleted, err := tx.DeleteTotal(product)
		if err != nil {
			return err
		}
		if !deleted {
			return internal.NewNotFoundError("no total configured for "+product, internal.ErrCodeProductNotFound)
		}
		return tx.AppendAudit(audit.NewEntry(actor.Username, audit.ActionDelete, audit.TargetConfig, nil,
			"deleted license total for "+product))
	})
	if err != nil {
		s.logger.Error("failed to delete license total", "error", err, "product", product, "actor", actor.Username)
		return store.TranslateError(err)
	}
	return nil
}

// RenameProduct moves every license row and the configured total from the
// old product name to the new one in a single transaction. When the new name
// already has a total, the two totals are summed.
func (s *Service) RenameProduct(ctx context.Context, actor *internal.Principal, dto RenameProductDTO) (*RenameResult, error) {
	if err := policy.Check(actor, policy.ActionRename, policy.ResourceLicense); err != nil {
		return nil, err
	}
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	res := &RenameResult{OldName: dto.OldName, NewName: dto.NewName}
	err := s.repo.InTx(ctx, func(tx TxStore) error {
		renamed, err := tx.RenameProduct(dto.OldName, dto.NewName)
		if err != nil {
			return err
		}
		res.Renamed = renamed

		oldTotal, err := tx.GetTotal(dto.OldName)
		if err != nil {
			return err
		}
		if renamed == 0 && oldTotal == nil {
			return internal.NewNotFoundError("product "+dto.OldName+" not found", internal.ErrCodeProductNotFound)
		}

		if oldTotal != nil {
			merged := oldTotal.Total
			newTotal, err := tx.GetTotal(dto.NewName)
			if err != nil {
				return err
			}
			if newTotal != nil {
				merged += newTotal.Total
			}
			if _, err := tx.DeleteTotal(dto.OldName); err != nil {
				return err
			}
			if err := tx.UpsertTotal(&licenseDatamodel.Total{Product: dto.NewName, Total: merged}); err != nil {
				return err
			}
			res.Total = &merged
		}

		return tx.AppendAudit(audit.NewEntry(actor.Username, audit.ActionUpdate, audit.TargetLicense, nil,
			fmt.Sprintf("renamed product %s to %s: %d licenses", dto.OldName, dto.NewName, renamed)))
	})
	if err != nil {
		s.logger.Error("failed to rename product", "error", err, "old_name", dto.OldName, "new_name", dto.NewName, "actor", actor.Username)
		return nil, store.TranslateError(err)
	}

	s.logger.Info("product renamed", "old_name", dto.OldName, "new_name", dto.NewName, "renamed", res.Renamed)
	s.publish(ctx, audit.ActionUpdate, 0, actor)
	return res, nil
}

// Import replaces all rows of product with the rows of a ';'-delimited CSV.
// The product column of the file is ignored and rows without a serial key
// are skipped.
func (s *Service) Import(ctx context.Context, actor *internal.Principal, product string, r io.Reader) (*ImportResult, error) {
	if err := policy.Check(actor, policy.ActionImport, policy.ResourceLicense); err != nil {
		return nil, err
	}
	product = strings.TrimSpace(product)
	if product == "" {
		return nil, internal.NewValidationFieldError("product", "product is required", internal.ErrCodeValidationFailed)
	}

	records, err := csvimport.Read(r, importAliases)
	if err != nil {
		return nil, internal.NewValidationError(err.Error(), internal.ErrCodeInvalidCSV)
	}

	res := &ImportResult{Product: product}
	rows := make([]*licenseDatamodel.License, 0, len(records))
	for _, record := range records {
		if record["serial_key"] == "" {
			res.Skipped++
			continue
		}
		item := &License{}
		changes.Assign(item, Fields, record)
		item.Product = product
		item.ApprovalStatus = string(workflow.StatusApproved)
		rows = append(rows, ToDataModel(item))
	}
	res.Imported = len(rows)

	err = s.repo.InTx(ctx, func(tx TxStore) error {
		replaced, err := tx.DeleteProduct(product)
		if err != nil {
			return err
		}
		res.Replaced = replaced
		if err := tx.CreateBatch(rows); err != nil {
			return err
		}
		return tx.AppendAudit(audit.NewEntry(actor.Username, audit.ActionUpdate, audit.TargetLicense, nil,
			fmt.Sprintf("csv import for %s: imported %d, replaced %d, skipped %d", product, res.Imported, res.Replaced, res.Skipped)))
	})
	if err != nil {
		s.logger.Error("license import failed", "error", err, "product", product, "actor", actor.Username)
		return nil, store.TranslateError(err)
	}

	s.logger.Info("licenses imported", "product", product, "imported", res.Imported, "replaced", res.Replaced, "skipped", res.Skipped)
	return res, nil
}

func (s *Service) view(row *licenseDatamodel.License, now time.Time) *License {
	item := FromDataModel(row)
	item.Expiration = Expiration(item.ExpirationDate, now)
	return item
}

func (s *Service) publish(ctx context.Context, action audit.Action, id int64, actor *internal.Principal) {
	if err := s.bus.Publish(ctx, events.NewRecordMutatedEvent("license", string(action), id, actor.Username)); err != nil {
		s.logger.Warn("failed to publish license event", "error", err)
	}
}
