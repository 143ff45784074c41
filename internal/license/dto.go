package license

import (
	"strings"

	"github.com/frahmantamala/inventory-management/internal"
	"github.com/frahmantamala/inventory-management/internal/core/common/validation"
)

type CreateLicenseDTO struct {
	Product        string `json:"product" validate:"required,max=255"`
	LicenseType    string `json:"license_type" validate:"max=100"`
	SerialKey      string `json:"serial_key" validate:"max=500"`
	ExpirationDate string `json:"expiration_date" validate:"max=30"`
	AssignedUser   string `json:"assigned_user" validate:"max=255"`
	JobRole        string `json:"job_role" validate:"max=255"`
	Department     string `json:"department" validate:"max=255"`
	Manager        string `json:"manager" validate:"max=255"`
	CostCenter     string `json:"cost_center" validate:"max=100"`
	LedgerAccount  string `json:"ledger_account" validate:"max=100"`
	ComputerName   string `json:"computer_name" validate:"max=255"`
	TicketNumber   string `json:"ticket_number" validate:"max=100"`
	Notes          string `json:"notes"`
}

func (d *CreateLicenseDTO) Validate() error {
	d.Product = strings.TrimSpace(d.Product)
	if err := validation.Struct(d); err != nil {
		return err
	}
	return nil
}

func (d *CreateLicenseDTO) values() map[string]string {
	return map[string]string{
		"product":         d.Product,
		"license_type":    d.LicenseType,
		"serial_key":      d.SerialKey,
		"expiration_date": d.ExpirationDate,
		"assigned_user":   d.AssignedUser,
		"job_role":        d.JobRole,
		"department":      d.Department,
		"manager":         d.Manager,
		"cost_center":     d.CostCenter,
		"ledger_account":  d.LedgerAccount,
		"computer_name":   d.ComputerName,
		"ticket_number":   d.TicketNumber,
		"notes":           d.Notes,
	}
}

// UpdateLicenseDTO is a partial update: nil fields are left untouched.
type UpdateLicenseDTO struct {
	Product        *string `json:"product" validate:"omitempty,max=255"`
	LicenseType    *string `json:"license_type" validate:"omitempty,max=100"`
	SerialKey      *string `json:"serial_key" validate:"omitempty,max=500"`
	ExpirationDate *string `json:"expiration_date" validate:"omitempty,max=30"`
	AssignedUser   *string `json:"assigned_user" validate:"omitempty,max=255"`
	JobRole        *string `json:"job_role" validate:"omitempty,max=255"`
	Department     *string `json:"department" validate:"omitempty,max=255"`
	Manager        *string `json:"manager" validate:"omitempty,max=255"`
	CostCenter     *string `json:"cost_center" validate:"omitempty,max=100"`
	LedgerAccount  *string `json:"ledger_account" validate:"omitempty,max=100"`
	ComputerName   *string `json:"computer_name" validate:"omitempty,max=255"`
	TicketNumber   *string `json:"ticket_number" validate:"omitempty,max=100"`
	Notes          *string `json:"notes"`
}

func (d *UpdateLicenseDTO) Validate() error {
	if d.Product != nil && strings.TrimSpace(*d.Product) == "" {
		return internal.NewValidationFieldError("product", "product is required", internal.ErrCodeValidationFailed)
	}
	if err := validation.Struct(d); err != nil {
		return err
	}
	return nil
}

func (d *UpdateLicenseDTO) Values() map[string]*string {
	return map[string]*string{
		"product":         d.Product,
		"license_type":    d.LicenseType,
		"serial_key":      d.SerialKey,
		"expiration_date": d.ExpirationDate,
		"assigned_user":   d.AssignedUser,
		"job_role":        d.JobRole,
		"department":      d.Department,
		"manager":         d.Manager,
		"cost_center":     d.CostCenter,
		"ledger_account":  d.LedgerAccount,
		"computer_name":   d.ComputerName,
		"ticket_number":   d.TicketNumber,
		"notes":           d.Notes,
	}
}

type SetTotalDTO struct {
	Total *int `json:"total"`
}

func (d *SetTotalDTO) Validate() error {
	if d.Total == nil {
		return internal.NewValidationFieldError("total", "total is required", internal.ErrCodeValidationFailed)
	}
	v := validation.NewValidator()
	v.Field("total", *d.Total).MinInt(0, internal.ErrCodeNegativeTotal)
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}

type RenameProductDTO struct {
	OldName string `json:"old_name"`
	NewName string `json:"new_name"`
}

func (d *RenameProductDTO) Validate() error {
	d.OldName = strings.TrimSpace(d.OldName)
	d.NewName = strings.TrimSpace(d.NewName)

	v := validation.NewValidator()
	v.Field("old_name", d.OldName).Required()
	v.Field("new_name", d.NewName).Required()
	if err := v.Validate(); err != nil {
		return err
	}
	if d.OldName == d.NewName {
		return internal.NewValidationFieldError("new_name", "new name must differ from the old name", internal.ErrCodeSameProductName)
	}
	return nil
}

type ListResponse struct {
	Licenses []*License `json:"licenses"`
}

type StatsResponse struct {
	Products []*ProductStat `json:"products"`
}

type RenameResult struct {
	OldName string `json:"old_name"`
	NewName string `json:"new_name"`
	Renamed int64  `json:"renamed"`
	Total   *int   `json:"total,omitempty"`
}

type ImportResult struct {
	Product  string `json:"product"`
	Imported int    `json:"imported"`
	Replaced int64  `json:"replaced"`
	Skipped  int    `json:"skipped"`
}
