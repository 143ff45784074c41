package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/frahmantamala/inventory-management/internal/approval"
	"github.com/frahmantamala/inventory-management/internal/audit"
	auditPostgres "github.com/frahmantamala/inventory-management/internal/audit/postgres"
	"github.com/frahmantamala/inventory-management/internal/core/workflow"
	"github.com/frahmantamala/inventory-management/internal/store"
	"github.com/jmoiron/sqlx"
	"gorm.io/gorm"
)

const pendingQuery = `SELECT 'equipment' AS entity, id, description AS name, COALESCE(notes, '') AS notes
	FROM equipment WHERE approval_status = ?
	UNION ALL
	SELECT 'license' AS entity, id, product || ' / ' || COALESCE(assigned_user, '') AS name, COALESCE(notes, '') AS notes
	FROM licenses WHERE approval_status = ?
	ORDER BY entity, id`

var (
	tables = map[approval.Entity]string{
		approval.EntityEquipment: "equipment",
		approval.EntityLicense:   "licenses",
	}
	nameColumns = map[approval.Entity]string{
		approval.EntityEquipment: "description",
		approval.EntityLicense:   "product",
	}
)

type ApprovalRepository struct {
	db     *gorm.DB
	reader *sqlx.DB
}

func NewApprovalRepository(db *gorm.DB, reader *sqlx.DB) *ApprovalRepository {
	return &ApprovalRepository{db: db, reader: reader}
}

func (r *ApprovalRepository) ListPending(ctx context.Context) ([]*approval.PendingItem, error) {
	pending := string(workflow.StatusPendingApproval)
	items := []*approval.PendingItem{}
	err := r.reader.SelectContext(ctx, &items, r.reader.Rebind(pendingQuery), pending, pending)
	return items, err
}

func (r *ApprovalRepository) InTx(ctx context.Context, fn func(tx approval.TxStore) error) error {
	return store.InTx(ctx, r.db, func(tx *gorm.DB) error {
		return fn(&TxStore{tx: tx, audit: auditPostgres.NewWriter(tx)})
	})
}

type TxStore struct {
	tx    *gorm.DB
	audit *auditPostgres.Writer
}

func (s *TxStore) pending(entity approval.Entity, id int64) *gorm.DB {
	return s.tx.Table(tables[entity]).
		Where("id = ? AND approval_status = ?", id, string(workflow.StatusPendingApproval))
}

func (s *TxStore) Approve(entity approval.Entity, id int64) (bool, error) {
	res := s.pending(entity, id).Updates(map[string]interface{}{
		"approval_status": string(workflow.StatusApproved),
		"updated_at":      time.Now().UTC(),
	})
	return res.RowsAffected > 0, res.Error
}

func (s *TxStore) PendingName(entity approval.Entity, id int64) (string, bool, error) {
	var name string
	err := s.pending(entity, id).Select(nameColumns[entity]).Row().Scan(&name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		return "", false, err
	}
	return name, true, nil
}

func (s *TxStore) DeletePending(entity approval.Entity, id int64) (bool, error) {
	res := s.tx.Exec("DELETE FROM "+tables[entity]+" WHERE id = ? AND approval_status = ?",
		id, string(workflow.StatusPendingApproval))
	return res.RowsAffected > 0, res.Error
}

func (s *TxStore) AppendAudit(entry *audit.Entry) error {
	return s.audit.Append(entry)
}
