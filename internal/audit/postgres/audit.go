package postgres

import (
	"context"

	"github.com/frahmantamala/inventory-management/internal/audit"
	auditDatamodel "github.com/frahmantamala/inventory-management/internal/core/datamodel/audit"
	"gorm.io/gorm"
)

// Writer appends to audit_log through whatever handle it was built with,
// normally a transaction.
type Writer struct {
	db *gorm.DB
}

func NewWriter(db *gorm.DB) *Writer {
	return &Writer{db: db}
}

func (w *Writer) Append(entry *audit.Entry) error {
	row := audit.ToDataModel(entry)
	if err := w.db.Create(row).Error; err != nil {
		return err
	}
	entry.ID = row.ID
	return nil
}

type AuditRepository struct {
	db *gorm.DB
}

func NewAuditRepository(db *gorm.DB) audit.RepositoryAPI {
	return &AuditRepository{db: db}
}

func (r *AuditRepository) List(ctx context.Context, filter audit.Filter) ([]*audit.Entry, error) {
	query := r.db.WithContext(ctx).Order("timestamp DESC").Order("id DESC").Limit(filter.Limit)
	if filter.TargetType != "" {
		query = query.Where("target_type = ?", string(filter.TargetType))
	}

	var rows []*auditDatamodel.AuditLog
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}

	entries := make([]*audit.Entry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, audit.FromDataModel(row))
	}
	return entries, nil
}
