package postgres

import (
	"context"
	"errors"

	"github.com/frahmantamala/inventory-management/internal"
	"github.com/frahmantamala/inventory-management/internal/audit"
	auditPostgres "github.com/frahmantamala/inventory-management/internal/audit/postgres"
	licenseDatamodel "github.com/frahmantamala/inventory-management/internal/core/datamodel/license"
	"github.com/frahmantamala/inventory-management/internal/core/workflow"
	"github.com/frahmantamala/inventory-management/internal/license"
	"github.com/frahmantamala/inventory-management/internal/store"
	"github.com/jmoiron/sqlx"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	usageQuery = `SELECT product, COUNT(*) AS used
		FROM licenses
		WHERE approval_status <> ?
		GROUP BY product`

	totalsQuery = `SELECT product, total FROM license_totals`
)

type LicenseRepository struct {
	db     *gorm.DB
	reader *sqlx.DB
}

func NewLicenseRepository(db *gorm.DB, reader *sqlx.DB) *LicenseRepository {
	return &LicenseRepository{db: db, reader: reader}
}

func (r *LicenseRepository) List(ctx context.Context, includePending bool) ([]*licenseDatamodel.License, error) {
	query := r.db.WithContext(ctx).Order("product ASC").Order("id ASC")
	if !includePending {
		query = query.Where("approval_status = ?", string(workflow.StatusApproved))
	}

	var rows []*licenseDatamodel.License
	err := query.Find(&rows).Error
	return rows, err
}

func (r *LicenseRepository) GetByID(ctx context.Context, id int64) (*licenseDatamodel.License, error) {
	return getByID(r.db.WithContext(ctx), id)
}

func (r *LicenseRepository) Usage(ctx context.Context) ([]license.Usage, error) {
	var usage []license.Usage
	err := r.reader.SelectContext(ctx, &usage, r.reader.Rebind(usageQuery), string(workflow.StatusRejected))
	return usage, err
}

func (r *LicenseRepository) Totals(ctx context.Context) ([]license.Total, error) {
	var totals []license.Total
	err := r.reader.SelectContext(ctx, &totals, totalsQuery)
	return totals, err
}

func (r *LicenseRepository) InTx(ctx context.Context, fn func(tx license.TxStore) error) error {
	return store.InTx(ctx, r.db, func(tx *gorm.DB) error {
		return fn(NewTxStore(tx))
	})
}

type TxStore struct {
	tx    *gorm.DB
	audit *auditPostgres.Writer
}

func NewTxStore(tx *gorm.DB) *TxStore {
	return &TxStore{tx: tx, audit: auditPostgres.NewWriter(tx)}
}

func (s *TxStore) GetByID(id int64) (*licenseDatamodel.License, error) {
	return getByID(s.tx, id)
}

func (s *TxStore) Create(row *licenseDatamodel.License) error {
	return s.tx.Create(row).Error
}

func (s *TxStore) CreateBatch(rows []*licenseDatamodel.License) error {
	if len(rows) == 0 {
		return nil
	}
	return s.tx.CreateInBatches(&rows, 200).Error
}

func (s *TxStore) Save(row *licenseDatamodel.License) error {
	return s.tx.Save(row).Error
}

func (s *TxStore) Delete(id int64) (bool, error) {
	res := s.tx.Where("id = ?", id).Delete(&licenseDatamodel.License{})
	return res.RowsAffected > 0, res.Error
}

func (s *TxStore) DeleteProduct(product string) (int64, error) {
	res := s.tx.Where("product = ?", product).Delete(&licenseDatamodel.License{})
	return res.RowsAffected, res.Error
}

func (s *TxStore) RenameProduct(oldName, newName string) (int64, error) {
	res := s.tx.Model(&licenseDatamodel.License{}).
		Where("product = ?", oldName).
		Update("product", newName)
	return res.RowsAffected, res.Error
}

func (s *TxStore) GetTotal(product string) (*licenseDatamodel.Total, error) {
	var total licenseDatamodel.Total
	err := s.tx.Where("product = ?", product).First(&total).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &total, nil
}

func (s *TxStore) UpsertTotal(total *licenseDatamodel.Total) error {
	return s.tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "product"}},
		DoUpdates: clause.AssignmentColumns([]string{"total", "updated_at"}),
	}).Create(total).Error
}

func (s *TxStore) DeleteTotal(product string) (bool, error) {
	res := s.tx.Where("product = ?", product).Delete(&licenseDatamodel.Total{})
	return res.RowsAffected > 0, res.Error
}

func (s *TxStore) AppendAudit(entry *audit.Entry) error {
	return s.audit.Append(entry)
}

func getByID(db *gorm.DB, id int64) (*licenseDatamodel.License, error) {
	var row licenseDatamodel.License
	err := db.Where("id = ?", id).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrLicenseNotFound
		}
		return nil, err
	}
	return &row, nil
}
