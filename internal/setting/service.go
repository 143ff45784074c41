package setting

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/frahmantamala/inventory-management/internal"
	"github.com/frahmantamala/inventory-management/internal/audit"
	"github.com/frahmantamala/inventory-management/internal/policy"
	"github.com/frahmantamala/inventory-management/internal/store"
)

// TxStore is the repository bound to one open transaction.
type TxStore interface {
	Put(name, value string) error
	Delete(names ...string) error
	AppendAudit(entry *audit.Entry) error
}

type RepositoryAPI interface {
	// Get returns the stored values of names; missing keys are absent.
	Get(ctx context.Context, names ...string) (map[string]string, error)
	InTx(ctx context.Context, fn func(tx TxStore) error) error
}

type Service struct {
	repo   RepositoryAPI
	logger *slog.Logger
}

func NewService(repo RepositoryAPI, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

// GetPublic returns every whitelisted key, falling back to its default.
func (s *Service) GetPublic(ctx context.Context, actor *internal.Principal) (map[string]string, error) {
	if err := policy.Check(actor, policy.ActionRead, policy.ResourceSettings); err != nil {
		return nil, err
	}

	stored, err := s.repo.Get(ctx, PublicKeys()...)
	if err != nil {
		s.logger.Error("failed to load settings", "error", err)
		return nil, store.TranslateError(err)
	}

	out := make(map[string]string, len(Defaults))
	for name, def := range Defaults {
		out[name] = def
		if v, ok := stored[name]; ok {
			out[name] = v
		}
	}
	return out, nil
}

func (s *Service) Update(ctx context.Context, actor *internal.Principal, dto UpdateSettingsDTO) (map[string]string, error) {
	if err := policy.Check(actor, policy.ActionUpdate, policy.ResourceSettings); err != nil {
		return nil, err
	}
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	names := make([]string, 0, len(dto))
	for name := range dto {
		names = append(names, name)
	}
	sort.Strings(names)

	err := s.repo.InTx(ctx, func(tx TxStore) error {
		for _, name := range names {
			if err := tx.Put(name, dto[name]); err != nil {
				return err
			}
		}
		return tx.AppendAudit(audit.NewEntry(actor.Username, audit.ActionUpdate, audit.TargetConfig, nil,
			fmt.Sprintf("updated settings: %s", strings.Join(names, ", "))))
	})
	if err != nil {
		s.logger.Error("failed to update settings", "error", err, "actor", actor.Username)
		return nil, store.TranslateError(err)
	}

	s.logger.Info("settings updated", "keys", names, "actor", actor.Username)
	return s.GetPublic(ctx, actor)
}
