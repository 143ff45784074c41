package postgres

import (
	"context"
	"fmt"

	"github.com/frahmantamala/inventory-management/internal/audit"
	auditPostgres "github.com/frahmantamala/inventory-management/internal/audit/postgres"
	auditDatamodel "github.com/frahmantamala/inventory-management/internal/core/datamodel/audit"
	equipmentDatamodel "github.com/frahmantamala/inventory-management/internal/core/datamodel/equipment"
	licenseDatamodel "github.com/frahmantamala/inventory-management/internal/core/datamodel/license"
	userDatamodel "github.com/frahmantamala/inventory-management/internal/core/datamodel/user"
	"github.com/frahmantamala/inventory-management/internal/database"
	"github.com/frahmantamala/inventory-management/internal/store"
	"github.com/frahmantamala/inventory-management/internal/user"
	userPostgres "github.com/frahmantamala/inventory-management/internal/user/postgres"
	"github.com/jmoiron/sqlx"
	"gorm.io/gorm"
)

const batchSize = 200

// wipeOrder deletes children before parents.
var wipeOrder = []string{
	"equipment_history",
	"equipment",
	"license_totals",
	"licenses",
	"audit_log",
	"users",
}

// sequenced tables have a serial id column.
var sequenced = []string{"users", "equipment", "equipment_history", "licenses", "audit_log"}

const (
	postgresStatusQuery = `
SELECT 'postgres' AS driver,
       version() AS version,
       current_database() AS database,
       (SELECT COUNT(*) FROM information_schema.tables
         WHERE table_schema = current_schema() AND table_type = 'BASE TABLE') AS table_count`

	sqliteStatusQuery = `
SELECT 'sqlite' AS driver,
       sqlite_version() AS version,
       'main' AS database,
       (SELECT COUNT(*) FROM sqlite_master
         WHERE type = 'table' AND name NOT LIKE 'sqlite_%') AS table_count`
)

type DatabaseRepository struct {
	db     *gorm.DB
	reader *sqlx.DB
}

func NewDatabaseRepository(db *gorm.DB, reader *sqlx.DB) *DatabaseRepository {
	return &DatabaseRepository{
		db:     db,
		reader: reader,
	}
}

func (r *DatabaseRepository) Status(ctx context.Context) (*database.Status, error) {
	query := postgresStatusQuery
	if isSQLite(r.db) {
		query = sqliteStatusQuery
	}

	var status database.Status
	if err := r.reader.GetContext(ctx, &status, query); err != nil {
		return nil, err
	}
	return &status, nil
}

func (r *DatabaseRepository) Snapshot(ctx context.Context) (*database.Snapshot, error) {
	db := r.db.WithContext(ctx)

	var (
		users    []userDatamodel.User
		items    []equipmentDatamodel.Equipment
		history  []equipmentDatamodel.History
		licenses []licenseDatamodel.License
		logs     []auditDatamodel.AuditLog
		totals   []licenseDatamodel.Total
	)
	for _, dst := range []interface{}{&users, &items, &history, &licenses, &logs} {
		if err := db.Order("id").Find(dst).Error; err != nil {
			return nil, err
		}
	}
	if err := db.Order("product").Find(&totals).Error; err != nil {
		return nil, err
	}

	return &database.Snapshot{
		Users:            &users,
		Equipment:        &items,
		EquipmentHistory: &history,
		Licenses:         &licenses,
		AuditLog:         &logs,
		LicenseTotals:    &totals,
	}, nil
}

func (r *DatabaseRepository) InTx(ctx context.Context, fn func(tx database.TxStore) error) error {
	return store.InTx(ctx, r.db, func(tx *gorm.DB) error {
		return fn(&TxStore{tx: tx, audit: auditPostgres.NewWriter(tx)})
	})
}

type TxStore struct {
	tx    *gorm.DB
	audit *auditPostgres.Writer
}

func (s *TxStore) Wipe() error {
	for _, table := range wipeOrder {
		if err := s.tx.Exec("DELETE FROM " + table).Error; err != nil {
			return fmt.Errorf("wipe %s: %w", table, err)
		}
	}
	return nil
}

// Load inserts the snapshot rows verbatim, ids included.
func (s *TxStore) Load(snapshot *database.Snapshot) error {
	type step struct {
		table string
		rows  interface{}
		n     int
	}
	steps := []step{
		{"users", snapshot.Users, len(*snapshot.Users)},
		{"equipment", snapshot.Equipment, len(*snapshot.Equipment)},
		{"equipment_history", snapshot.EquipmentHistory, len(*snapshot.EquipmentHistory)},
		{"licenses", snapshot.Licenses, len(*snapshot.Licenses)},
		{"audit_log", snapshot.AuditLog, len(*snapshot.AuditLog)},
	}
	if snapshot.LicenseTotals != nil {
		steps = append(steps, step{"license_totals", snapshot.LicenseTotals, len(*snapshot.LicenseTotals)})
	}

	for _, st := range steps {
		if st.n == 0 {
			continue
		}
		if err := s.tx.CreateInBatches(st.rows, batchSize).Error; err != nil {
			return fmt.Errorf("restore %s: %w", st.table, err)
		}
	}
	return nil
}

// ResetSequences is a no-op on sqlite, whose rowids follow MAX(id).
func (s *TxStore) ResetSequences() error {
	if isSQLite(s.tx) {
		return nil
	}
	for _, table := range sequenced {
		query := fmt.Sprintf(
			"SELECT setval(pg_get_serial_sequence('%[1]s', 'id'), COALESCE(MAX(id), 1), MAX(id) IS NOT NULL) FROM %[1]s",
			table,
		)
		if err := s.tx.Exec(query).Error; err != nil {
			return fmt.Errorf("reset %s sequence: %w", table, err)
		}
	}
	return nil
}

func (s *TxStore) Users() user.TxStore {
	return userPostgres.NewTxStore(s.tx)
}

func (s *TxStore) AppendAudit(entry *audit.Entry) error {
	return s.audit.Append(entry)
}

func isSQLite(db *gorm.DB) bool {
	return db.Dialector.Name() == "sqlite"
}
