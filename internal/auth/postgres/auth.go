package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/frahmantamala/inventory-management/internal"
	"github.com/frahmantamala/inventory-management/internal/audit"
	auditPostgres "github.com/frahmantamala/inventory-management/internal/audit/postgres"
	"github.com/frahmantamala/inventory-management/internal/auth"
	userDatamodel "github.com/frahmantamala/inventory-management/internal/core/datamodel/user"
	"github.com/frahmantamala/inventory-management/internal/store"
	"gorm.io/gorm"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		db: db,
	}
}

func (r *Repository) GetByUsername(ctx context.Context, username string) (*userDatamodel.User, error) {
	var row userDatamodel.User
	err := r.db.WithContext(ctx).Where("username = ?", username).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

func (r *Repository) GetByID(ctx context.Context, id int64) (*userDatamodel.User, error) {
	return getByID(r.db.WithContext(ctx), id)
}

func (r *Repository) SetLastLogin(ctx context.Context, id int64, at time.Time) error {
	return r.db.WithContext(ctx).Model(&userDatamodel.User{}).
		Where("id = ?", id).
		UpdateColumn("last_login", at).Error
}

func (r *Repository) InTx(ctx context.Context, fn func(tx auth.TxStore) error) error {
	return store.InTx(ctx, r.db, func(tx *gorm.DB) error {
		return fn(&TxStore{tx: tx, audit: auditPostgres.NewWriter(tx)})
	})
}

type TxStore struct {
	tx    *gorm.DB
	audit *auditPostgres.Writer
}

func (s *TxStore) GetByID(id int64) (*userDatamodel.User, error) {
	return getByID(s.tx, id)
}

func (s *TxStore) SetTwoFactor(id int64, secret *string, enabled bool) error {
	return s.tx.Model(&userDatamodel.User{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"two_factor_secret":  secret,
			"two_factor_enabled": enabled,
		}).Error
}

// SetTwoFactorSecret replaces the secret and leaves the enabled flag alone.
func (s *TxStore) SetTwoFactorSecret(id int64, secret string) error {
	return s.tx.Model(&userDatamodel.User{}).
		Where("id = ?", id).
		UpdateColumn("two_factor_secret", secret).Error
}

func (s *TxStore) AppendAudit(entry *audit.Entry) error {
	return s.audit.Append(entry)
}

func getByID(db *gorm.DB, id int64) (*userDatamodel.User, error) {
	var row userDatamodel.User
	err := db.Where("id = ?", id).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrUserNotFound
		}
		return nil, err
	}
	return &row, nil
}
