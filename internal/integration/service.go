package integration

import (
	"context"
	"log/slog"

	"github.com/frahmantamala/inventory-management/internal"
	"github.com/frahmantamala/inventory-management/internal/audit"
	"github.com/frahmantamala/inventory-management/internal/core/events"
	"github.com/frahmantamala/inventory-management/internal/equipment"
	"github.com/frahmantamala/inventory-management/internal/policy"
	"github.com/frahmantamala/inventory-management/internal/setting"
	"github.com/frahmantamala/inventory-management/internal/store"
)

// CredentialStore persists provider credentials in the settings table.
type CredentialStore interface {
	Get(ctx context.Context, names ...string) (map[string]string, error)
	InTx(ctx context.Context, fn func(tx setting.TxStore) error) error
}

// Reconciler upserts equipment records in one transaction.
type Reconciler interface {
	Reconcile(ctx context.Context, actor *internal.Principal, records []equipment.Record, opts equipment.ReconcileOptions) (*equipment.ReconcileResult, error)
}

type Service struct {
	provider  Provider
	creds     CredentialStore
	equipment Reconciler
	bus       *events.EventBus
	logger    *slog.Logger
}

func NewService(provider Provider, creds CredentialStore, equipment Reconciler, bus *events.EventBus, logger *slog.Logger) *Service {
	return &Service{
		provider:  provider,
		creds:     creds,
		equipment: equipment,
		bus:       bus,
		logger:    logger,
	}
}

func (s *Service) GetConfig(ctx context.Context, actor *internal.Principal) (*ConfigResponse, error) {
	if err := policy.Check(actor, policy.ActionRead, policy.ResourceIntegration); err != nil {
		return nil, err
	}

	creds, err := s.stored(ctx)
	if err != nil {
		return nil, err
	}
	return s.describe(creds), nil
}

// SaveConfig stores the credentials. The audit entry never contains them.
func (s *Service) SaveConfig(ctx context.Context, actor *internal.Principal, dto SaveConfigDTO) (*ConfigResponse, error) {
	if err := policy.Check(actor, policy.ActionUpdate, policy.ResourceIntegration); err != nil {
		return nil, err
	}
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	name := s.provider.Name()
	err := s.creds.InTx(ctx, func(tx setting.TxStore) error {
		if err := tx.Put(tokenIDKey(name), dto.TokenID); err != nil {
			return err
		}
		if err := tx.Put(secretKeyKey(name), dto.SecretKey); err != nil {
			return err
		}
		return tx.AppendAudit(audit.NewEntry(actor.Username, audit.ActionUpdate, audit.TargetIntegration, nil,
			"updated "+name+" credentials"))
	})
	if err != nil {
		s.logger.Error("failed to save integration credentials", "error", err, "provider", name)
		return nil, store.TranslateError(err)
	}

	s.logger.Info("integration credentials saved", "provider", name, "actor", actor.Username)
	return s.describe(Credentials{TokenID: dto.TokenID, SecretKey: dto.SecretKey}), nil
}

// TestConnection tries the supplied credentials, or the stored ones when
// none are given.
func (s *Service) TestConnection(ctx context.Context, actor *internal.Principal, dto TestConnectionDTO) (*TestResult, error) {
	if err := policy.Check(actor, policy.ActionTest, policy.ResourceIntegration); err != nil {
		return nil, err
	}

	creds := Credentials{TokenID: dto.TokenID, SecretKey: dto.SecretKey}
	if !creds.Complete() {
		stored, err := s.configured(ctx)
		if err != nil {
			return nil, err
		}
		creds = stored
	}

	if err := s.provider.TestConnection(ctx, creds); err != nil {
		s.logger.Warn("integration connection test failed", "error", err, "provider", s.provider.Name())
		return nil, err
	}
	return &TestResult{Success: true, Message: "connection to " + s.provider.Name() + " succeeded"}, nil
}

func (s *Service) Inventory(ctx context.Context, actor *internal.Principal) ([]Device, error) {
	if err := policy.Check(actor, policy.ActionRead, policy.ResourceIntegration); err != nil {
		return nil, err
	}

	creds, err := s.configured(ctx)
	if err != nil {
		return nil, err
	}

	devices, err := s.provider.ListDevices(ctx, creds)
	if err != nil {
		s.logger.Error("failed to list provider devices", "error", err, "provider", s.provider.Name())
		return nil, err
	}
	return devices, nil
}

// Sync reconciles the provider's devices into equipment by asset tag.
// Devices without an asset tag are skipped; new ones are inserted approved.
func (s *Service) Sync(ctx context.Context, actor *internal.Principal) (*SyncResult, error) {
	if err := policy.Check(actor, policy.ActionSync, policy.ResourceIntegration); err != nil {
		return nil, err
	}

	name := s.provider.Name()
	res, err := s.sync(ctx, actor)
	if err != nil {
		s.publish(ctx, events.NewSyncCompletedEvent(name, 0, 0, 0, actor.Username, true))
		return nil, err
	}

	s.logger.Info("integration sync completed", "provider", name, "added", res.Added, "updated", res.Updated, "skipped", res.Skipped)
	s.publish(ctx, events.NewSyncCompletedEvent(name, res.Added, res.Updated, res.Skipped, actor.Username, false))
	return res, nil
}

func (s *Service) sync(ctx context.Context, actor *internal.Principal) (*SyncResult, error) {
	creds, err := s.configured(ctx)
	if err != nil {
		return nil, err
	}

	devices, err := s.provider.ListDevices(ctx, creds)
	if err != nil {
		s.logger.Error("failed to list provider devices", "error", err, "provider", s.provider.Name())
		return nil, err
	}

	records := make([]equipment.Record, 0, len(devices))
	for _, d := range devices {
		records = append(records, d.Record())
	}

	res, err := s.equipment.Reconcile(ctx, actor, records, equipment.ReconcileOptions{
		Target:          audit.TargetIntegration,
		Source:          s.provider.Name() + " sync",
		RequireAssetTag: true,
		Defaults:        equipment.Record{"ownership_type": OwnershipType},
	})
	if err != nil {
		return nil, err
	}
	return &SyncResult{Added: res.Added, Updated: res.Updated, Skipped: res.Skipped}, nil
}

func (s *Service) stored(ctx context.Context) (Credentials, error) {
	name := s.provider.Name()
	values, err := s.creds.Get(ctx, tokenIDKey(name), secretKeyKey(name))
	if err != nil {
		s.logger.Error("failed to load integration credentials", "error", err, "provider", name)
		return Credentials{}, store.TranslateError(err)
	}
	return Credentials{TokenID: values[tokenIDKey(name)], SecretKey: values[secretKeyKey(name)]}, nil
}

func (s *Service) configured(ctx context.Context) (Credentials, error) {
	creds, err := s.stored(ctx)
	if err != nil {
		return Credentials{}, err
	}
	if !creds.Complete() {
		return Credentials{}, internal.NewValidationError(
			s.provider.Name()+" credentials are not configured",
			internal.ErrCodeIntegrationNotConfigured,
		)
	}
	return creds, nil
}

func (s *Service) describe(creds Credentials) *ConfigResponse {
	resp := &ConfigResponse{Provider: s.provider.Name(), Configured: creds.Complete()}
	if resp.Configured {
		resp.TokenID = maskToken(creds.TokenID)
	}
	return resp
}

func (s *Service) publish(ctx context.Context, event events.Event) {
	if err := s.bus.Publish(ctx, event); err != nil {
		s.logger.Warn("failed to publish sync event", "error", err)
	}
}
