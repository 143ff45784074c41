package auth

import (
	"strings"

	"github.com/frahmantamala/inventory-management/internal"
	"github.com/frahmantamala/inventory-management/internal/core/common/validation"
	"github.com/frahmantamala/inventory-management/internal/user"
)

type LoginDTO struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (d *LoginDTO) Validate() error {
	d.Username = strings.TrimSpace(d.Username)
	v := validation.NewValidator()
	v.Field("username", d.Username).Required()
	v.Field("password", d.Password).Required()
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}

type RefreshTokenDTO struct {
	RefreshToken string `json:"refresh_token"`
}

func (d RefreshTokenDTO) Validate() error {
	if strings.TrimSpace(d.RefreshToken) == "" {
		return internal.NewValidationFieldError("refresh_token", "refresh_token is required", internal.ErrCodeValidationFailed)
	}
	return nil
}

type VerifyTwoFactorDTO struct {
	ChallengeToken string `json:"challenge_token"`
	Code           string `json:"code"`
}

func (d *VerifyTwoFactorDTO) Validate() error {
	d.Code = strings.TrimSpace(d.Code)
	v := validation.NewValidator()
	v.Field("challenge_token", d.ChallengeToken).Required()
	v.Field("code", d.Code).Required()
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}

type EnableTwoFactorDTO struct {
	Secret string `json:"secret"`
	Code   string `json:"code"`
}

func (d *EnableTwoFactorDTO) Validate() error {
	d.Secret = strings.TrimSpace(d.Secret)
	d.Code = strings.TrimSpace(d.Code)
	v := validation.NewValidator()
	v.Field("secret", d.Secret).Required()
	v.Field("code", d.Code).Required()
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}

// LoginResponse carries either session tokens or, when a second factor is
// due, a short-lived challenge token.
type LoginResponse struct {
	User              *user.User  `json:"user"`
	RequiresTwoFactor bool        `json:"requires_two_factor"`
	Tokens            *AuthTokens `json:"tokens,omitempty"`
	ChallengeToken    string      `json:"challenge_token,omitempty"`
}
