package database

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/frahmantamala/inventory-management/internal"
	"github.com/frahmantamala/inventory-management/internal/audit"
	"github.com/frahmantamala/inventory-management/internal/policy"
	"github.com/frahmantamala/inventory-management/internal/store"
	"github.com/frahmantamala/inventory-management/internal/user"
)

// TxStore is the repository bound to one open transaction.
type TxStore interface {
	// Wipe deletes every row of the backed-up tables and the license totals,
	// children first.
	Wipe() error
	Load(snapshot *Snapshot) error
	// ResetSequences moves id sequences past the restored rows.
	ResetSequences() error
	Users() user.TxStore
	AppendAudit(entry *audit.Entry) error
}

type RepositoryAPI interface {
	Status(ctx context.Context) (*Status, error)
	Snapshot(ctx context.Context) (*Snapshot, error)
	InTx(ctx context.Context, fn func(tx TxStore) error) error
}

// AdminSeeder re-creates the bootstrap administrator inside a transaction.
type AdminSeeder interface {
	BootstrapAdmin(tx user.TxStore) (bool, error)
}

type Service struct {
	repo   RepositoryAPI
	seeder AdminSeeder
	logger *slog.Logger
	now    func() time.Time
}

func NewService(repo RepositoryAPI, seeder AdminSeeder, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		seeder: seeder,
		logger: logger,
		now:    time.Now,
	}
}

func (s *Service) Status(ctx context.Context, actor *internal.Principal) (*Status, error) {
	if err := policy.Check(actor, policy.ActionRead, policy.ResourceDatabase); err != nil {
		return nil, err
	}

	status, err := s.repo.Status(ctx)
	if err != nil {
		s.logger.Error("failed to read database status", "error", err)
		return nil, store.TranslateError(err)
	}
	return status, nil
}

func (s *Service) Backup(ctx context.Context, actor *internal.Principal) (*Snapshot, error) {
	if err := policy.Check(actor, policy.ActionBackup, policy.ResourceDatabase); err != nil {
		return nil, err
	}

	snapshot, err := s.repo.Snapshot(ctx)
	if err != nil {
		s.logger.Error("failed to build backup", "error", err)
		return nil, store.TranslateError(err)
	}
	snapshot.BackupDate = s.now().UTC()

	s.logger.Info("database backup created", "actor", actor.Username, "tables", snapshot.Counts())
	return snapshot, nil
}

// Restore replaces every row with the snapshot in one transaction. The
// bootstrap administrator is re-created if the snapshot has none.
func (s *Service) Restore(ctx context.Context, actor *internal.Principal, snapshot *Snapshot) error {
	if err := policy.Check(actor, policy.ActionRestore, policy.ResourceDatabase); err != nil {
		return err
	}
	if snapshot == nil {
		return internal.NewValidationError("backup is required", internal.ErrCodeInvalidBackup)
	}
	if err := snapshot.Validate(); err != nil {
		return err
	}

	err := s.repo.InTx(ctx, func(tx TxStore) error {
		if err := tx.Wipe(); err != nil {
			return err
		}
		if err := tx.Load(snapshot); err != nil {
			return err
		}
		if err := tx.ResetSequences(); err != nil {
			return err
		}
		if _, err := s.seeder.BootstrapAdmin(tx.Users()); err != nil {
			return err
		}
		return tx.AppendAudit(audit.NewEntry(actor.Username, audit.ActionUpdate, audit.TargetConfig, nil,
			"restored database backup: "+describeCounts(snapshot.Counts())))
	})
	if err != nil {
		s.logger.Error("database restore failed", "error", err, "actor", actor.Username)
		return store.TranslateError(err)
	}

	s.logger.Warn("database restored", "actor", actor.Username, "tables", snapshot.Counts())
	return nil
}

// Reset wipes all data and re-seeds the bootstrap administrator.
func (s *Service) Reset(ctx context.Context, actor *internal.Principal) (*ResetResult, error) {
	if err := policy.Check(actor, policy.ActionReset, policy.ResourceDatabase); err != nil {
		return nil, err
	}

	res := &ResetResult{}
	err := s.repo.InTx(ctx, func(tx TxStore) error {
		if err := tx.Wipe(); err != nil {
			return err
		}
		if err := tx.ResetSequences(); err != nil {
			return err
		}
		created, err := s.seeder.BootstrapAdmin(tx.Users())
		if err != nil {
			return err
		}
		res.AdminCreated = created
		return tx.AppendAudit(audit.NewEntry(actor.Username, audit.ActionDelete, audit.TargetConfig, nil,
			"reset database to factory state"))
	})
	if err != nil {
		s.logger.Error("database reset failed", "error", err, "actor", actor.Username)
		return nil, store.TranslateError(err)
	}

	s.logger.Warn("database reset", "actor", actor.Username)
	return res, nil
}

func describeCounts(counts map[string]int) string {
	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s=%d", name, counts[name]))
	}
	return strings.Join(parts, ", ")
}
