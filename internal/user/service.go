package user

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/frahmantamala/inventory-management/internal"
	"github.com/frahmantamala/inventory-management/internal/audit"
	userDatamodel "github.com/frahmantamala/inventory-management/internal/core/datamodel/user"
	"github.com/frahmantamala/inventory-management/internal/core/events"
	"github.com/frahmantamala/inventory-management/internal/policy"
	"github.com/frahmantamala/inventory-management/internal/store"
	"golang.org/x/crypto/bcrypt"
)

// ErrBootstrapPasswordMissing means security.bootstrap_admin_password is unset.
var ErrBootstrapPasswordMissing = internal.NewInternalError("bootstrap admin password is not configured", nil)

const (
	BootstrapUsername = "admin"
	bootstrapRealName = "Administrator"
	bootstrapEmail    = "admin@localhost"
)

// TxStore is the repository bound to one open transaction.
type TxStore interface {
	GetByID(id int64) (*userDatamodel.User, error)
	// FindBy returns the user whose column equals value, ignoring excludeID,
	// or nil when there is none.
	FindBy(column, value string, excludeID int64) (*userDatamodel.User, error)
	CountByRole(role internal.Role) (int64, error)
	Create(row *userDatamodel.User) error
	Save(row *userDatamodel.User) error
	Delete(id int64) (bool, error)
	AppendAudit(entry *audit.Entry) error
}

type RepositoryAPI interface {
	List(ctx context.Context) ([]*userDatamodel.User, error)
	GetByID(ctx context.Context, id int64) (*userDatamodel.User, error)
	InTx(ctx context.Context, fn func(tx TxStore) error) error
}

type Options struct {
	BCryptCost        int
	BootstrapPassword string
}

type Service struct {
	repo   RepositoryAPI
	bus    *events.EventBus
	logger *slog.Logger
	opts   Options
}

func NewService(repo RepositoryAPI, bus *events.EventBus, logger *slog.Logger, opts Options) *Service {
	if opts.BCryptCost == 0 {
		opts.BCryptCost = bcrypt.DefaultCost
	}
	return &Service{repo: repo, bus: bus, logger: logger, opts: opts}
}

func (s *Service) List(ctx context.Context, actor *internal.Principal) ([]*User, error) {
	if err := policy.Check(actor, policy.ActionRead, policy.ResourceUser); err != nil {
		return nil, err
	}

	rows, err := s.repo.List(ctx)
	if err != nil {
		s.logger.Error("failed to list users", "error", err)
		return nil, store.TranslateError(err)
	}

	out := make([]*User, 0, len(rows))
	for _, row := range rows {
		out = append(out, FromDataModel(row))
	}
	return out, nil
}

// Get returns any user to user managers and the caller's own account to
// everyone.
func (s *Service) Get(ctx context.Context, actor *internal.Principal, id int64) (*User, error) {
	if actor == nil {
		return nil, internal.ErrUnauthenticated
	}
	if actor.ID != id {
		if err := policy.Check(actor, policy.ActionRead, policy.ResourceUser); err != nil {
			return nil, err
		}
	}

	row, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, store.TranslateError(err)
	}
	return FromDataModel(row), nil
}

func (s *Service) Create(ctx context.Context, actor *internal.Principal, dto CreateUserDTO) (*User, error) {
	if err := policy.Check(actor, policy.ActionCreate, policy.ResourceUser); err != nil {
		return nil, err
	}
	if err := dto.Validate(); err != nil {
		return nil, err
	}
	if err := canGrant(actor, dto.Role); err != nil {
		return nil, err
	}

	hash, err := s.HashPassword(dto.Password)
	if err != nil {
		return nil, err
	}

	row := &userDatamodel.User{
		RealName:     dto.RealName,
		Username:     dto.Username,
		Email:        dto.Email,
		PasswordHash: hash,
		Role:         string(dto.Role),
	}
	err = s.repo.InTx(ctx, func(tx TxStore) error {
		if err := checkUnique(tx, row.Username, row.Email, 0); err != nil {
			return err
		}
		if err := tx.Create(row); err != nil {
			return err
		}
		return tx.AppendAudit(audit.NewEntry(actor.Username, audit.ActionCreate, audit.TargetUser, audit.ID(row.ID),
			fmt.Sprintf("created user %s with role %s", row.Username, row.Role)))
	})
	if err != nil {
		s.logger.Error("failed to create user", "error", err, "username", dto.Username, "actor", actor.Username)
		return nil, translate(err)
	}

	s.logger.Info("user created", "user_id", row.ID, "username", row.Username, "role", row.Role, "actor", actor.Username)
	s.publish(ctx, audit.ActionCreate, row.ID, actor)
	return FromDataModel(row), nil
}

func (s *Service) Update(ctx context.Context, actor *internal.Principal, id int64, dto UpdateUserDTO) (*User, error) {
	if err := policy.Check(actor, policy.ActionUpdate, policy.ResourceUser); err != nil {
		return nil, err
	}
	if err := dto.Validate(); err != nil {
		return nil, err
	}
	if dto.Role != nil {
		if err := canGrant(actor, *dto.Role); err != nil {
			return nil, err
		}
	}

	var hash string
	if dto.Password != nil {
		var err error
		if hash, err = s.HashPassword(*dto.Password); err != nil {
			return nil, err
		}
	}

	var updated *userDatamodel.User
	err := s.repo.InTx(ctx, func(tx TxStore) error {
		row, err := tx.GetByID(id)
		if err != nil {
			return err
		}
		if internal.Role(row.Role) == internal.RoleAdmin && !actor.IsAdmin() {
			return internal.NewForbiddenError("only an administrator may modify an administrator", internal.ErrCodeRoleNotGrantable)
		}

		var changed []string
		if dto.RealName != nil && *dto.RealName != row.RealName {
			row.RealName = *dto.RealName
			changed = append(changed, "real_name")
		}
		if dto.Username != nil && *dto.Username != row.Username {
			row.Username = *dto.Username
			changed = append(changed, "username")
		}
		if dto.Email != nil && *dto.Email != row.Email {
			row.Email = *dto.Email
			changed = append(changed, "email")
		}
		if hash != "" {
			row.PasswordHash = hash
			changed = append(changed, "password")
		}
		if dto.Role != nil && string(*dto.Role) != row.Role {
			if internal.Role(row.Role) == internal.RoleAdmin {
				if err := ensureOtherAdmin(tx); err != nil {
					return err
				}
			}
			changed = append(changed, fmt.Sprintf("role %s -> %s", row.Role, *dto.Role))
			row.Role = string(*dto.Role)
		}

		if err := checkUnique(tx, row.Username, row.Email, row.ID); err != nil {
			return err
		}
		if err := tx.Save(row); err != nil {
			return err
		}
		updated = row
		return tx.AppendAudit(audit.NewEntry(actor.Username, audit.ActionUpdate, audit.TargetUser, audit.ID(id),
			fmt.Sprintf("updated user %s: %s", row.Username, describe(changed))))
	})
	if err != nil {
		s.logger.Error("failed to update user", "error", err, "user_id", id, "actor", actor.Username)
		return nil, translate(err)
	}

	s.publish(ctx, audit.ActionUpdate, id, actor)
	return FromDataModel(updated), nil
}

// UpdateProfile lets any authenticated user edit their own name, email and
// password. The role is never changed here.
func (s *Service) UpdateProfile(ctx context.Context, actor *internal.Principal, dto UpdateProfileDTO) (*User, error) {
	if actor == nil {
		return nil, internal.ErrUnauthenticated
	}
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	var hash string
	if dto.NewPassword != nil {
		var err error
		if hash, err = s.HashPassword(*dto.NewPassword); err != nil {
			return nil, err
		}
	}

	var updated *userDatamodel.User
	err := s.repo.InTx(ctx, func(tx TxStore) error {
		row, err := tx.GetByID(actor.ID)
		if err != nil {
			return err
		}

		var changed []string
		if hash != "" {
			if bcrypt.CompareHashAndPassword([]byte(row.PasswordHash), []byte(dto.CurrentPassword)) != nil {
				return internal.NewValidationFieldError("current_password", "current password is incorrect", internal.ErrCodeInvalidCredentials)
			}
			row.PasswordHash = hash
			changed = append(changed, "password")
		}
		if dto.RealName != nil && *dto.RealName != "" && *dto.RealName != row.RealName {
			row.RealName = *dto.RealName
			changed = append(changed, "real_name")
		}
		if dto.Email != nil && *dto.Email != "" && *dto.Email != row.Email {
			row.Email = *dto.Email
			changed = append(changed, "email")
		}

		if err := checkUnique(tx, row.Username, row.Email, row.ID); err != nil {
			return err
		}
		if err := tx.Save(row); err != nil {
			return err
		}
		updated = row
		return tx.AppendAudit(audit.NewEntry(actor.Username, audit.ActionUpdate, audit.TargetUser, audit.ID(row.ID),
			fmt.Sprintf("updated own profile: %s", describe(changed))))
	})
	if err != nil {
		s.logger.Warn("failed to update profile", "error", err, "user_id", actor.ID)
		return nil, translate(err)
	}

	return FromDataModel(updated), nil
}

// Delete removes a user. Nobody can delete themselves and the last
// administrator always stays.
func (s *Service) Delete(ctx context.Context, actor *internal.Principal, id int64) error {
	if err := policy.Check(actor, policy.ActionDelete, policy.ResourceUser); err != nil {
		return err
	}
	if actor.ID == id {
		return internal.NewValidationError("you cannot delete your own account", internal.ErrCodeSelfDelete)
	}

	err := s.repo.InTx(ctx, func(tx TxStore) error {
		row, err := tx.GetByID(id)
		if err != nil {
			return err
		}
		if internal.Role(row.Role) == internal.RoleAdmin {
			if err := ensureOtherAdmin(tx); err != nil {
				return err
			}
		}
		if _, err := tx.Delete(id); err != nil {
			return err
		}
		return tx.AppendAudit(audit.NewEntry(actor.Username, audit.ActionDelete, audit.TargetUser, audit.ID(id),
			fmt.Sprintf("deleted user %s", row.Username)))
	})
	if err != nil {
		s.logger.Error("failed to delete user", "error", err, "user_id", id, "actor", actor.Username)
		return translate(err)
	}

	s.logger.Info("user deleted", "user_id", id, "actor", actor.Username)
	s.publish(ctx, audit.ActionDelete, id, actor)
	return nil
}

// EnsureBootstrapAdmin creates the bootstrap administrator when no
// administrator exists.
func (s *Service) EnsureBootstrapAdmin(ctx context.Context) (bool, error) {
	var created bool
	err := s.repo.InTx(ctx, func(tx TxStore) error {
		var err error
		created, err = s.BootstrapAdmin(tx)
		return err
	})
	if err != nil {
		s.logger.Error("failed to ensure bootstrap admin", "error", err)
		return false, store.TranslateError(err)
	}
	return created, nil
}

// BootstrapAdmin runs inside the caller's transaction, so database resets and
// restores can seed the administrator atomically.
func (s *Service) BootstrapAdmin(tx TxStore) (bool, error) {
	admins, err := tx.CountByRole(internal.RoleAdmin)
	if err != nil {
		return false, err
	}
	if admins > 0 {
		return false, nil
	}

	if s.opts.BootstrapPassword == "" {
		return false, ErrBootstrapPasswordMissing
	}
	hash, err := s.HashPassword(s.opts.BootstrapPassword)
	if err != nil {
		return false, err
	}

	existing, err := tx.FindBy("username", BootstrapUsername, 0)
	if err != nil {
		return false, err
	}

	row := existing
	if row == nil {
		row = &userDatamodel.User{RealName: bootstrapRealName, Username: BootstrapUsername, Email: bootstrapEmail}
	}
	row.Role = string(internal.RoleAdmin)
	row.PasswordHash = hash

	if existing == nil {
		err = tx.Create(row)
	} else {
		err = tx.Save(row)
	}
	if err != nil {
		return false, err
	}

	if err := tx.AppendAudit(audit.NewEntry(internal.SystemPrincipal.Username, audit.ActionCreate, audit.TargetUser, audit.ID(row.ID),
		"bootstrap administrator ensured")); err != nil {
		return false, err
	}

	s.logger.Info("bootstrap administrator created", "username", BootstrapUsername)
	return true, nil
}

func (s *Service) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.opts.BCryptCost)
	if err != nil {
		return "", internal.NewInternalError("failed to hash password", err)
	}
	return string(hash), nil
}

func (s *Service) publish(ctx context.Context, action audit.Action, id int64, actor *internal.Principal) {
	if err := s.bus.Publish(ctx, events.NewRecordMutatedEvent("user", string(action), id, actor.Username)); err != nil {
		s.logger.Warn("failed to publish user event", "error", err)
	}
}

func canGrant(actor *internal.Principal, role internal.Role) error {
	if role == internal.RoleAdmin && !actor.IsAdmin() {
		return internal.NewForbiddenError("only an administrator may grant the admin role", internal.ErrCodeRoleNotGrantable)
	}
	return nil
}

func ensureOtherAdmin(tx TxStore) error {
	admins, err := tx.CountByRole(internal.RoleAdmin)
	if err != nil {
		return err
	}
	if admins <= 1 {
		return internal.NewConflictError("the last administrator cannot be removed", internal.ErrCodeLastAdmin)
	}
	return nil
}

func checkUnique(tx TxStore, username, email string, excludeID int64) error {
	if found, err := tx.FindBy("username", username, excludeID); err != nil {
		return err
	} else if found != nil {
		return internal.NewConstraintError("username", "username is already in use")
	}
	if found, err := tx.FindBy("email", email, excludeID); err != nil {
		return err
	} else if found != nil {
		return internal.NewConstraintError("email", "email is already in use")
	}
	return nil
}

// translate covers the race where a concurrent insert wins after checkUnique.
func translate(err error) error {
	if store.IsUniqueViolation(err) {
		return internal.NewConstraintError("username", "username or email is already in use").WithCause(err)
	}
	return store.TranslateError(err)
}

func describe(changed []string) string {
	if len(changed) == 0 {
		return "no changes"
	}
	return strings.Join(changed, ", ")
}
