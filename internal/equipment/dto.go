package equipment

import (
	"strings"

	"github.com/frahmantamala/inventory-management/internal"
	"github.com/frahmantamala/inventory-management/internal/audit"
	"github.com/frahmantamala/inventory-management/internal/core/common/validation"
)

type CreateEquipmentDTO struct {
	Description        string `json:"description" validate:"required,max=500"`
	WarrantyDate       string `json:"warranty_date" validate:"max=30"`
	AssetTag           string `json:"asset_tag" validate:"max=100"`
	Serial             string `json:"serial" validate:"max=255"`
	CurrentHolder      string `json:"current_holder" validate:"max=255"`
	PreviousHolder     string `json:"previous_holder" validate:"max=255"`
	Site               string `json:"site" validate:"max=255"`
	Department         string `json:"department" validate:"max=255"`
	DeliveryDate       string `json:"delivery_date" validate:"max=30"`
	Status             string `json:"status" validate:"max=100"`
	ReturnDate         string `json:"return_date" validate:"max=30"`
	OwnershipType      string `json:"ownership_type" validate:"max=100"`
	PurchaseNote       string `json:"purchase_note" validate:"max=255"`
	ResponsibilityTerm string `json:"responsibility_term" validate:"max=255"`
	PhotoURL           string `json:"photo_url"`
	QRPayload          string `json:"qr_payload"`
	Notes              string `json:"notes"`
}

func (d *CreateEquipmentDTO) Validate() error {
	d.Description = strings.TrimSpace(d.Description)
	d.AssetTag = strings.TrimSpace(d.AssetTag)
	if err := validation.Struct(d); err != nil {
		return err
	}
	return nil
}

func (d *CreateEquipmentDTO) values() map[string]string {
	return map[string]string{
		"description":         d.Description,
		"warranty_date":       d.WarrantyDate,
		"asset_tag":           d.AssetTag,
		"serial":              d.Serial,
		"current_holder":      d.CurrentHolder,
		"previous_holder":     d.PreviousHolder,
		"site":                d.Site,
		"department":          d.Department,
		"delivery_date":       d.DeliveryDate,
		"status":              d.Status,
		"return_date":         d.ReturnDate,
		"ownership_type":      d.OwnershipType,
		"purchase_note":       d.PurchaseNote,
		"responsibility_term": d.ResponsibilityTerm,
		"photo_url":           d.PhotoURL,
		"qr_payload":          d.QRPayload,
		"notes":               d.Notes,
	}
}

// UpdateEquipmentDTO is a partial update: nil fields are left untouched.
type UpdateEquipmentDTO struct {
	Description        *string `json:"description" validate:"omitempty,max=500"`
	WarrantyDate       *string `json:"warranty_date" validate:"omitempty,max=30"`
	AssetTag           *string `json:"asset_tag" validate:"omitempty,max=100"`
	Serial             *string `json:"serial" validate:"omitempty,max=255"`
	CurrentHolder      *string `json:"current_holder" validate:"omitempty,max=255"`
	PreviousHolder     *string `json:"previous_holder" validate:"omitempty,max=255"`
	Site               *string `json:"site" validate:"omitempty,max=255"`
	Department         *string `json:"department" validate:"omitempty,max=255"`
	DeliveryDate       *string `json:"delivery_date" validate:"omitempty,max=30"`
	Status             *string `json:"status" validate:"omitempty,max=100"`
	ReturnDate         *string `json:"return_date" validate:"omitempty,max=30"`
	OwnershipType      *string `json:"ownership_type" validate:"omitempty,max=100"`
	PurchaseNote       *string `json:"purchase_note" validate:"omitempty,max=255"`
	ResponsibilityTerm *string `json:"responsibility_term" validate:"omitempty,max=255"`
	PhotoURL           *string `json:"photo_url"`
	QRPayload          *string `json:"qr_payload"`
	Notes              *string `json:"notes"`
}

func (d *UpdateEquipmentDTO) Validate() error {
	if d.Description != nil && strings.TrimSpace(*d.Description) == "" {
		return internal.NewValidationFieldError("description", "description is required", internal.ErrCodeValidationFailed)
	}
	if err := validation.Struct(d); err != nil {
		return err
	}
	return nil
}

// Values maps the supplied fields by column name.
func (d *UpdateEquipmentDTO) Values() map[string]*string {
	return map[string]*string{
		"description":         d.Description,
		"warranty_date":       d.WarrantyDate,
		"asset_tag":           d.AssetTag,
		"serial":              d.Serial,
		"current_holder":      d.CurrentHolder,
		"previous_holder":     d.PreviousHolder,
		"site":                d.Site,
		"department":          d.Department,
		"delivery_date":       d.DeliveryDate,
		"status":              d.Status,
		"return_date":         d.ReturnDate,
		"ownership_type":      d.OwnershipType,
		"purchase_note":       d.PurchaseNote,
		"responsibility_term": d.ResponsibilityTerm,
		"photo_url":           d.PhotoURL,
		"qr_payload":          d.QRPayload,
		"notes":               d.Notes,
	}
}

type ListResponse struct {
	Equipment []*Equipment `json:"equipment"`
}

type HistoryResponse struct {
	History []*HistoryEntry `json:"history"`
}

// Record is one row to reconcile, keyed by column name.
type Record map[string]string

// ReconcileOptions tunes Reconcile for CSV imports and provider syncs.
type ReconcileOptions struct {
	// Target is the audit target of the single summary entry.
	Target audit.TargetType
	// Source names the origin in the audit details, e.g. "csv import".
	Source string
	// RequireAssetTag skips records without an asset tag instead of inserting them.
	RequireAssetTag bool
	// Defaults are applied to inserted rows only.
	Defaults Record
}

type ReconcileResult struct {
	Added   int `json:"added"`
	Updated int `json:"updated"`
	Skipped int `json:"skipped"`
}

type ImportResult struct {
	Imported int `json:"imported"`
	Updated  int `json:"updated"`
	Skipped  int `json:"skipped"`
}
