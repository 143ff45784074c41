package user

import (
	"time"

	"github.com/frahmantamala/inventory-management/internal"
	userDatamodel "github.com/frahmantamala/inventory-management/internal/core/datamodel/user"
)

// User never serializes its password hash or TOTP secret.
type User struct {
	ID               int64         `json:"id"`
	RealName         string        `json:"real_name"`
	Username         string        `json:"username"`
	Email            string        `json:"email"`
	PasswordHash     string        `json:"-"`
	Role             internal.Role `json:"role"`
	SSOProvider      *string       `json:"sso_provider,omitempty"`
	TwoFactorSecret  *string       `json:"-"`
	TwoFactorEnabled bool          `json:"two_factor_enabled"`
	LastLogin        *time.Time    `json:"last_login,omitempty"`
	CreatedAt        time.Time     `json:"created_at"`
	UpdatedAt        time.Time     `json:"updated_at"`
}

func (u *User) Principal() *internal.Principal {
	return &internal.Principal{ID: u.ID, Username: u.Username, Role: u.Role}
}

// RequiresTwoFactor is true when 2FA is on and the account is not SSO-backed.
func (u *User) RequiresTwoFactor() bool {
	return u.TwoFactorEnabled && (u.SSOProvider == nil || *u.SSOProvider == "")
}

func ToDataModel(u *User) *userDatamodel.User {
	return &userDatamodel.User{
		ID:               u.ID,
		RealName:         u.RealName,
		Username:         u.Username,
		Email:            u.Email,
		PasswordHash:     u.PasswordHash,
		Role:             string(u.Role),
		SSOProvider:      u.SSOProvider,
		TwoFactorSecret:  u.TwoFactorSecret,
		TwoFactorEnabled: u.TwoFactorEnabled,
		LastLogin:        u.LastLogin,
		CreatedAt:        u.CreatedAt,
		UpdatedAt:        u.UpdatedAt,
	}
}

func FromDataModel(u *userDatamodel.User) *User {
	return &User{
		ID:               u.ID,
		RealName:         u.RealName,
		Username:         u.Username,
		Email:            u.Email,
		PasswordHash:     u.PasswordHash,
		Role:             internal.Role(u.Role),
		SSOProvider:      u.SSOProvider,
		TwoFactorSecret:  u.TwoFactorSecret,
		TwoFactorEnabled: u.TwoFactorEnabled,
		LastLogin:        u.LastLogin,
		CreatedAt:        u.CreatedAt,
		UpdatedAt:        u.UpdatedAt,
	}
}
