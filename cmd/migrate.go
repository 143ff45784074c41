package cmd

import (
	"context"
	"log"

	"github.com/frahmantamala/inventory-management/db"
	"github.com/frahmantamala/inventory-management/internal"
	"github.com/frahmantamala/inventory-management/internal/store"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/spf13/cobra"
)

var (
	migrateCmd = &cobra.Command{
		RunE:  runMigration,
		Use:   "migrate",
		Short: "to run db migration files under db/migrations directory",
	}
	migrateRollback bool
)

func init() {
	migrateCmd.Flags().BoolVarP(&migrateRollback, "rollback", "r", false, "to rollback the latest version of sql migration")
}

func runMigration(_ *cobra.Command, _ []string) error {
	ctx := context.Background()
	cfg := mustLoadConfig()

	if cfg.Database.Driver == internal.DatabaseDriverSQLite {
		gdb, err := store.Open(cfg.Database)
		if err != nil {
			log.Fatal(err)
		}
		if err := store.AutoMigrate(gdb); err != nil {
			log.Fatalf("sqlite automigrate: %v", err)
		}
		return nil
	}

	sqlDB, err := goose.OpenDBWithDriver("pgx", cfg.Database.Source)
	if err != nil {
		log.Fatalf("goose: failed to open DB: %v\n", err)
	}
	defer sqlDB.Close()

	goose.SetBaseFS(db.Migrations)
	goose.SetTableName("schema_migrations")

	command := "up"
	if migrateRollback {
		command = "down"
	}
	if err := goose.RunContext(ctx, command, sqlDB, db.MigrationsDir); err != nil {
		log.Fatalf("goose %s: %v", command, err)
	}

	return nil
}
