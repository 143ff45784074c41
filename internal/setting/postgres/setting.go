package postgres

import (
	"context"

	"github.com/frahmantamala/inventory-management/internal/audit"
	auditPostgres "github.com/frahmantamala/inventory-management/internal/audit/postgres"
	settingDatamodel "github.com/frahmantamala/inventory-management/internal/core/datamodel/setting"
	"github.com/frahmantamala/inventory-management/internal/setting"
	"github.com/frahmantamala/inventory-management/internal/store"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SettingRepository struct {
	db *gorm.DB
}

func NewSettingRepository(db *gorm.DB) *SettingRepository {
	return &SettingRepository{
		db: db,
	}
}

func (r *SettingRepository) Get(ctx context.Context, names ...string) (map[string]string, error) {
	out := make(map[string]string, len(names))
	if len(names) == 0 {
		return out, nil
	}

	var rows []settingDatamodel.Setting
	if err := r.db.WithContext(ctx).Where("name IN ?", names).Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[row.Name] = row.Value
	}
	return out, nil
}

func (r *SettingRepository) InTx(ctx context.Context, fn func(tx setting.TxStore) error) error {
	return store.InTx(ctx, r.db, func(tx *gorm.DB) error {
		return fn(&TxStore{tx: tx, audit: auditPostgres.NewWriter(tx)})
	})
}

type TxStore struct {
	tx    *gorm.DB
	audit *auditPostgres.Writer
}

func (s *TxStore) Put(name, value string) error {
	return s.tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&settingDatamodel.Setting{Name: name, Value: value}).Error
}

func (s *TxStore) Delete(names ...string) error {
	if len(names) == 0 {
		return nil
	}
	return s.tx.Where("name IN ?", names).Delete(&settingDatamodel.Setting{}).Error
}

func (s *TxStore) AppendAudit(entry *audit.Entry) error {
	return s.audit.Append(entry)
}
