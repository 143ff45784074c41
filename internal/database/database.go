// Package database implements the administrator's whole-database operations:
// status, JSON backup, restore and factory reset.
package database

import (
	"time"

	"github.com/frahmantamala/inventory-management/internal"
	auditDatamodel "github.com/frahmantamala/inventory-management/internal/core/datamodel/audit"
	equipmentDatamodel "github.com/frahmantamala/inventory-management/internal/core/datamodel/equipment"
	licenseDatamodel "github.com/frahmantamala/inventory-management/internal/core/datamodel/license"
	userDatamodel "github.com/frahmantamala/inventory-management/internal/core/datamodel/user"
)

type Status struct {
	Driver     string `json:"driver" db:"driver"`
	Version    string `json:"version" db:"version"`
	Database   string `json:"database" db:"database"`
	TableCount int    `json:"table_count" db:"table_count"`
}

// Snapshot is the backup document. Restore requires all five arrays;
// license totals are optional so older backups still load.
type Snapshot struct {
	BackupDate       time.Time                       `json:"backup_date"`
	Users            *[]userDatamodel.User           `json:"users"`
	Equipment        *[]equipmentDatamodel.Equipment `json:"equipment"`
	EquipmentHistory *[]equipmentDatamodel.History   `json:"equipment_history"`
	Licenses         *[]licenseDatamodel.License     `json:"licenses"`
	AuditLog         *[]auditDatamodel.AuditLog      `json:"audit_log"`
	LicenseTotals    *[]licenseDatamodel.Total       `json:"license_totals,omitempty"`
}

func (s *Snapshot) Validate() error {
	var missing []string
	if s.Users == nil {
		missing = append(missing, "users")
	}
	if s.Equipment == nil {
		missing = append(missing, "equipment")
	}
	if s.EquipmentHistory == nil {
		missing = append(missing, "equipment_history")
	}
	if s.Licenses == nil {
		missing = append(missing, "licenses")
	}
	if s.AuditLog == nil {
		missing = append(missing, "audit_log")
	}
	if len(missing) == 0 {
		return nil
	}

	errs := internal.ValidationErrors{}
	for _, name := range missing {
		errs.Errors = append(errs.Errors, internal.ValidationError{
			Field:   name,
			Message: name + " is required",
			Code:    string(internal.ErrCodeInvalidBackup),
		})
	}
	return internal.NewValidationError("backup is missing required tables", internal.ErrCodeInvalidBackup).WithDetails(errs)
}

// Counts summarises a restore for the audit trail.
func (s *Snapshot) Counts() map[string]int {
	counts := map[string]int{}
	if s.Users != nil {
		counts["users"] = len(*s.Users)
	}
	if s.Equipment != nil {
		counts["equipment"] = len(*s.Equipment)
	}
	if s.EquipmentHistory != nil {
		counts["equipment_history"] = len(*s.EquipmentHistory)
	}
	if s.Licenses != nil {
		counts["licenses"] = len(*s.Licenses)
	}
	if s.AuditLog != nil {
		counts["audit_log"] = len(*s.AuditLog)
	}
	return counts
}

type ResetResult struct {
	AdminCreated bool `json:"admin_created"`
}
