package postgres

import (
	"context"
	"errors"

	"github.com/frahmantamala/inventory-management/internal"
	"github.com/frahmantamala/inventory-management/internal/audit"
	auditPostgres "github.com/frahmantamala/inventory-management/internal/audit/postgres"
	userDatamodel "github.com/frahmantamala/inventory-management/internal/core/datamodel/user"
	"github.com/frahmantamala/inventory-management/internal/store"
	"github.com/frahmantamala/inventory-management/internal/user"
	"gorm.io/gorm"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) List(ctx context.Context) ([]*userDatamodel.User, error) {
	var rows []*userDatamodel.User
	err := r.db.WithContext(ctx).Order("username ASC").Find(&rows).Error
	return rows, err
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*userDatamodel.User, error) {
	return getByID(r.db.WithContext(ctx), id)
}

func (r *UserRepository) InTx(ctx context.Context, fn func(tx user.TxStore) error) error {
	return store.InTx(ctx, r.db, func(tx *gorm.DB) error {
		return fn(NewTxStore(tx))
	})
}

type TxStore struct {
	tx    *gorm.DB
	audit *auditPostgres.Writer
}

// NewTxStore binds the user store to an open transaction. Other packages use
// it to seed the bootstrap administrator inside their own transactions.
func NewTxStore(tx *gorm.DB) *TxStore {
	return &TxStore{tx: tx, audit: auditPostgres.NewWriter(tx)}
}

func (s *TxStore) GetByID(id int64) (*userDatamodel.User, error) {
	return getByID(s.tx, id)
}

func (s *TxStore) FindBy(column, value string, excludeID int64) (*userDatamodel.User, error) {
	var row userDatamodel.User
	err := s.tx.Where(column+" = ? AND id <> ?", value, excludeID).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

func (s *TxStore) CountByRole(role internal.Role) (int64, error) {
	var n int64
	err := s.tx.Model(&userDatamodel.User{}).Where("role = ?", string(role)).Count(&n).Error
	return n, err
}

func (s *TxStore) Create(row *userDatamodel.User) error {
	return s.tx.Create(row).Error
}

func (s *TxStore) Save(row *userDatamodel.User) error {
	return s.tx.Save(row).Error
}

func (s *TxStore) Delete(id int64) (bool, error) {
	res := s.tx.Where("id = ?", id).Delete(&userDatamodel.User{})
	return res.RowsAffected > 0, res.Error
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
