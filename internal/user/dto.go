package user

import (
	"strings"

	"github.com/frahmantamala/inventory-management/internal"
	"github.com/frahmantamala/inventory-management/internal/core/common/validation"
)

const MinPasswordLength = 6

type CreateUserDTO struct {
	RealName string        `json:"real_name" validate:"required,max=255"`
	Username string        `json:"username" validate:"required,max=100"`
	Email    string        `json:"email" validate:"required,email,max=255"`
	Password string        `json:"password" validate:"required,min=6,max=72"`
	Role     internal.Role `json:"role" validate:"required"`
}

func (d *CreateUserDTO) Validate() error {
	d.RealName = strings.TrimSpace(d.RealName)
	d.Username = strings.TrimSpace(d.Username)
	d.Email = strings.TrimSpace(d.Email)
	if err := validation.Struct(d); err != nil {
		return err
	}
	if !d.Role.Valid() {
		return internal.NewValidationFieldError("role", "role must be admin, user_manager or operator", internal.ErrCodeValidationFailed)
	}
	return nil
}

// UpdateUserDTO is a partial update. An absent password keeps the current one.
type UpdateUserDTO struct {
	RealName *string        `json:"real_name" validate:"omitempty,max=255"`
	Username *string        `json:"username" validate:"omitempty,max=100"`
	Email    *string        `json:"email" validate:"omitempty,email,max=255"`
	Password *string        `json:"password" validate:"omitempty,min=6,max=72"`
	Role     *internal.Role `json:"role"`
}

func (d *UpdateUserDTO) Validate() error {
	trim(d.RealName, d.Username, d.Email)
	v := validation.NewValidator()
	if d.RealName != nil {
		v.Field("real_name", d.RealName).Required()
	}
	if d.Username != nil {
		v.Field("username", d.Username).Required()
	}
	if err := v.Validate(); err != nil {
		return err
	}
	if d.Password != nil && *d.Password == "" {
		d.Password = nil
	}
	if err := validation.Struct(d); err != nil {
		return err
	}
	if d.Role != nil && !d.Role.Valid() {
		return internal.NewValidationFieldError("role", "role must be admin, user_manager or operator", internal.ErrCodeValidationFailed)
	}
	return nil
}

// UpdateProfileDTO is what users may change about themselves. Changing the
// password requires the current one.
type UpdateProfileDTO struct {
	RealName        *string `json:"real_name" validate:"omitempty,max=255"`
	Email           *string `json:"email" validate:"omitempty,email,max=255"`
	CurrentPassword string  `json:"current_password"`
	NewPassword     *string `json:"new_password" validate:"omitempty,min=6,max=72"`
}

func (d *UpdateProfileDTO) Validate() error {
	trim(d.RealName, d.Email)
	if d.NewPassword != nil && *d.NewPassword == "" {
		d.NewPassword = nil
	}
	if err := validation.Struct(d); err != nil {
		return err
	}
	if d.NewPassword != nil && d.CurrentPassword == "" {
		return internal.NewValidationFieldError("current_password", "current password is required to change the password", internal.ErrCodeValidationFailed)
	}
	return nil
}

type ListResponse struct {
	Users []*User `json:"users"`
}

func trim(values ...*string) {
	for _, v := range values {
		if v != nil {
			*v = strings.TrimSpace(*v)
		}
	}
}
