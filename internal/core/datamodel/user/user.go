package user

import "time"

type User struct {
	ID               int64      `gorm:"primaryKey" json:"id"`
	RealName         string     `gorm:"column:real_name;not null" json:"real_name"`
	Username         string     `gorm:"column:username;uniqueIndex;not null" json:"username"`
	Email            string     `gorm:"column:email;uniqueIndex;not null" json:"email"`
	PasswordHash     string     `gorm:"column:password_hash;not null" json:"password_hash"`
	Role             string     `gorm:"column:role;not null" json:"role"`
	SSOProvider      *string    `gorm:"column:sso_provider" json:"sso_provider"`
	TwoFactorSecret  *string    `gorm:"column:two_factor_secret" json:"two_factor_secret"`
	TwoFactorEnabled bool       `gorm:"column:two_factor_enabled;not null" json:"two_factor_enabled"`
	LastLogin        *time.Time `gorm:"column:last_login" json:"last_login"`
	CreatedAt        time.Time  `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time  `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}
