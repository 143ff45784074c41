// Package store opens the relational database and provides the single
// transaction primitive every mutation runs through.
package store

import (
	"context"
	"fmt"
	"time"

	"github.com/frahmantamala/inventory-management/internal"
	auditDatamodel "github.com/frahmantamala/inventory-management/internal/core/datamodel/audit"
	equipmentDatamodel "github.com/frahmantamala/inventory-management/internal/core/datamodel/equipment"
	licenseDatamodel "github.com/frahmantamala/inventory-management/internal/core/datamodel/license"
	settingDatamodel "github.com/frahmantamala/inventory-management/internal/core/datamodel/setting"
	userDatamodel "github.com/frahmantamala/inventory-management/internal/core/datamodel/user"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open connects gorm to the configured driver and applies pool limits.
func Open(cfg internal.DatabaseConfig) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case internal.DatabaseDriverSQLite:
		dialector = sqlite.Open(cfg.Source)
	default:
		dialector = postgres.Open(cfg.Source)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", cfg.Driver, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return db, nil
}

// NewReader wraps the pool behind db in sqlx for hand-written read queries.
func NewReader(db *gorm.DB) (*sqlx.DB, error) {
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql.DB: %w", err)
	}
	return sqlx.NewDb(sqlDB, ReaderDriverName(db)), nil
}

// ReaderDriverName returns the sqlx driver name matching the gorm dialect,
// which selects the bind variable style.
func ReaderDriverName(db *gorm.DB) string {
	if db.Dialector.Name() == "sqlite" {
		return "sqlite3"
	}
	return "pgx"
}

// Models lists every table in dependency order, parents first.
func Models() []interface{} {
	return []interface{}{
		&userDatamodel.User{},
		&equipmentDatamodel.Equipment{},
		&equipmentDatamodel.History{},
		&licenseDatamodel.License{},
		&licenseDatamodel.Total{},
		&auditDatamodel.AuditLog{},
		&settingDatamodel.Setting{},
	}
}

// AutoMigrate creates the schema from the gorm models. Postgres deployments
// use the goose migrations instead.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(Models()...)
}

// InTx runs fn in one transaction; any error rolls everything back.
func InTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	return db.WithContext(ctx).Transaction(fn)
}
