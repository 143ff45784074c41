package integration

import (
	"strings"

	"github.com/frahmantamala/inventory-management/internal/core/common/validation"
)

type SaveConfigDTO struct {
	TokenID   string `json:"token_id"`
	SecretKey string `json:"secret_key"`
}

func (d *SaveConfigDTO) Validate() error {
	d.TokenID = strings.TrimSpace(d.TokenID)
	d.SecretKey = strings.TrimSpace(d.SecretKey)
	v := validation.NewValidator()
	v.Field("token_id", d.TokenID).Required()
	v.Field("secret_key", d.SecretKey).Required()
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}

// TestConnectionDTO optionally carries credentials to try before saving them.
type TestConnectionDTO struct {
	TokenID   string `json:"token_id"`
	SecretKey string `json:"secret_key"`
}

type ConfigResponse struct {
	Provider   string `json:"provider"`
	Configured bool   `json:"configured"`
	TokenID    string `json:"token_id,omitempty"`
}

type TestResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type InventoryResponse struct {
	Devices []Device `json:"devices"`
}

type SyncResult struct {
	Added   int `json:"added"`
	Updated int `json:"updated"`
	Skipped int `json:"skipped"`
}
