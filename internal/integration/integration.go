// Package integration pulls device inventories from an external endpoint
// management provider and reconciles them into the equipment table.
package integration

import (
	"context"
	"fmt"
	"strings"

	"github.com/frahmantamala/inventory-management/internal/equipment"
)

// OwnershipType marks equipment rows created by a provider sync.
const OwnershipType = "ABSOLUTE"

type Credentials struct {
	TokenID   string `json:"token_id"`
	SecretKey string `json:"secret_key"`
}

func (c Credentials) Complete() bool {
	return strings.TrimSpace(c.TokenID) != "" && strings.TrimSpace(c.SecretKey) != ""
}

// Device is one machine as reported by the provider.
type Device struct {
	ID            int64  `json:"id"`
	Description   string `json:"description"`
	AssetTag      string `json:"asset_tag"`
	Serial        string `json:"serial"`
	CurrentHolder string `json:"current_holder"`
	Site          string `json:"site"`
	Status        string `json:"status"`
}

// Record maps the device onto the equipment columns a sync may overwrite.
func (d Device) Record() equipment.Record {
	return equipment.Record{
		"description":    d.Description,
		"asset_tag":      d.AssetTag,
		"serial":         d.Serial,
		"current_holder": d.CurrentHolder,
		"site":           d.Site,
		"status":         d.Status,
	}
}

type Provider interface {
	Name() string
	TestConnection(ctx context.Context, creds Credentials) error
	ListDevices(ctx context.Context, creds Credentials) ([]Device, error)
}

func tokenIDKey(provider string) string {
	return fmt.Sprintf("integration.%s.token_id", provider)
}

func secretKeyKey(provider string) string {
	return fmt.Sprintf("integration.%s.secret_key", provider)
}

// maskToken keeps the last four characters visible.
func maskToken(token string) string {
	if len(token) <= 4 {
		return strings.Repeat("*", len(token))
	}
	return strings.Repeat("*", len(token)-4) + token[len(token)-4:]
}
