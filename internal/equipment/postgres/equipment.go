package postgres

import (
	"context"
	"errors"

	"github.com/frahmantamala/inventory-management/internal"
	"github.com/frahmantamala/inventory-management/internal/audit"
	auditPostgres "github.com/frahmantamala/inventory-management/internal/audit/postgres"
	equipmentDatamodel "github.com/frahmantamala/inventory-management/internal/core/datamodel/equipment"
	"github.com/frahmantamala/inventory-management/internal/core/workflow"
	"github.com/frahmantamala/inventory-management/internal/equipment"
	"github.com/frahmantamala/inventory-management/internal/store"
	"gorm.io/gorm"
)

type EquipmentRepository struct {
	db *gorm.DB
}

func NewEquipmentRepository(db *gorm.DB) *EquipmentRepository {
	return &EquipmentRepository{db: db}
}

func (r *EquipmentRepository) List(ctx context.Context, includePending bool) ([]*equipmentDatamodel.Equipment, error) {
	query := r.db.WithContext(ctx).Order("id ASC")
	if !includePending {
		query = query.Where("approval_status = ?", string(workflow.StatusApproved))
	}

	var rows []*equipmentDatamodel.Equipment
	err := query.Find(&rows).Error
	return rows, err
}

func (r *EquipmentRepository) GetByID(ctx context.Context, id int64) (*equipmentDatamodel.Equipment, error) {
	return getByID(r.db.WithContext(ctx), id)
}

func (r *EquipmentRepository) ListHistory(ctx context.Context, equipmentID int64) ([]*equipmentDatamodel.History, error) {
	var rows []*equipmentDatamodel.History
	err := r.db.WithContext(ctx).
		Where("equipment_id = ?", equipmentID).
		Order("changed_at DESC").Order("id DESC").
		Find(&rows).Error
	return rows, err
}

func (r *EquipmentRepository) InTx(ctx context.Context, fn func(tx equipment.TxStore) error) error {
	return store.InTx(ctx, r.db, func(tx *gorm.DB) error {
		return fn(NewTxStore(tx))
	})
}

// TxStore runs every statement on one transaction handle.
type TxStore struct {
	tx    *gorm.DB
	audit *auditPostgres.Writer
}

func NewTxStore(tx *gorm.DB) *TxStore {
	return &TxStore{tx: tx, audit: auditPostgres.NewWriter(tx)}
}

func (s *TxStore) GetByID(id int64) (*equipmentDatamodel.Equipment, error) {
	return getByID(s.tx, id)
}

func (s *TxStore) FindByAssetTag(tag string) (*equipmentDatamodel.Equipment, error) {
	var row equipmentDatamodel.Equipment
	err := s.tx.Where("asset_tag = ?", tag).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

func (s *TxStore) Create(row *equipmentDatamodel.Equipment) error {
	return s.tx.Create(row).Error
}

func (s *TxStore) Save(row *equipmentDatamodel.Equipment) error {
	return s.tx.Save(row).Error
}

// Delete removes the row and its history. Postgres cascades on its own;
// the explicit delete keeps sqlite, which runs without foreign keys, in step.
func (s *TxStore) Delete(id int64) (bool, error) {
	if err := s.tx.Where("equipment_id = ?", id).Delete(&equipmentDatamodel.History{}).Error; err != nil {
		return false, err
	}
	res := s.tx.Where("id = ?", id).Delete(&equipmentDatamodel.Equipment{})
	return res.RowsAffected > 0, res.Error
}

func (s *TxStore) AppendHistory(rows []*equipmentDatamodel.History) error {
	if len(rows) == 0 {
		return nil
	}
	return s.tx.Create(&rows).Error
}

func (s *TxStore) AppendAudit(entry *audit.Entry) error {
	return s.audit.Append(entry)
}

func getByID(db *gorm.DB, id int64) (*equipmentDatamodel.Equipment, error) {
	var row equipmentDatamodel.Equipment
	err := db.Where("id = ?", id).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrEquipmentNotFound
		}
		return nil, err
	}
	return &row, nil
}
