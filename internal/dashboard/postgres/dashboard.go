package postgres

import (
	"context"

	"github.com/frahmantamala/inventory-management/internal/core/workflow"
	"github.com/frahmantamala/inventory-management/internal/dashboard"
	"github.com/jmoiron/sqlx"
)

const (
	equipmentByStatusQuery = `
SELECT COALESCE(NULLIF(status, ''), 'unknown') AS status, COUNT(*) AS count
  FROM equipment
 WHERE approval_status = ?
 GROUP BY COALESCE(NULLIF(status, ''), 'unknown')
 ORDER BY status`

	licenseDatesQuery = `SELECT COALESCE(expiration_date, '') FROM licenses WHERE approval_status = ?`

	pendingCountQuery = `
SELECT (SELECT COUNT(*) FROM equipment WHERE approval_status = ?)
     + (SELECT COUNT(*) FROM licenses WHERE approval_status = ?)`
)

type DashboardRepository struct {
	reader *sqlx.DB
}

func NewDashboardRepository(reader *sqlx.DB) *DashboardRepository {
	return &DashboardRepository{
		reader: reader,
	}
}

func (r *DashboardRepository) EquipmentByStatus(ctx context.Context) ([]dashboard.StatusCount, error) {
	out := []dashboard.StatusCount{}
	if err := r.reader.SelectContext(ctx, &out, r.reader.Rebind(equipmentByStatusQuery), string(workflow.StatusApproved)); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *DashboardRepository) LicenseExpirationDates(ctx context.Context) ([]string, error) {
	var out []string
	if err := r.reader.SelectContext(ctx, &out, r.reader.Rebind(licenseDatesQuery), string(workflow.StatusApproved)); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *DashboardRepository) PendingCount(ctx context.Context) (int, error) {
	pending := string(workflow.StatusPendingApproval)
	var n int
	err := r.reader.GetContext(ctx, &n, r.reader.Rebind(pendingCountQuery), pending, pending)
	return n, err
}
