package audit

import (
	"time"

	auditDatamodel "github.com/frahmantamala/inventory-management/internal/core/datamodel/audit"
)

type Action string

const (
	ActionCreate Action = "CREATE"
	ActionUpdate Action = "UPDATE"
	ActionDelete Action = "DELETE"
)

type TargetType string

const (
	TargetEquipment   TargetType = "EQUIPMENT"
	TargetLicense     TargetType = "LICENSE"
	TargetUser        TargetType = "USER"
	TargetIntegration TargetType = "INTEGRATION"
	TargetConfig      TargetType = "CONFIG"
)

func (t TargetType) Valid() bool {
	switch t {
	case TargetEquipment, TargetLicense, TargetUser, TargetIntegration, TargetConfig:
		return true
	}
	return false
}

// Entry is one immutable line of the audit log.
type Entry struct {
	ID         int64      `json:"id"`
	Username   string     `json:"username"`
	Action     Action     `json:"action"`
	TargetType TargetType `json:"target_type"`
	TargetID   *int64     `json:"target_id"`
	Details    string     `json:"details"`
	Timestamp  time.Time  `json:"timestamp"`
}

// NewEntry stamps an entry for actor at the current time.
func NewEntry(actor string, action Action, target TargetType, targetID *int64, details string) *Entry {
	return &Entry{
		Username:   actor,
		Action:     action,
		TargetType: target,
		TargetID:   targetID,
		Details:    details,
		Timestamp:  time.Now().UTC(),
	}
}

// ID is a convenience for the optional target id.
func ID(id int64) *int64 {
	return &id
}

func ToDataModel(e *Entry) *auditDatamodel.AuditLog {
	return &auditDatamodel.AuditLog{
		ID:         e.ID,
		Username:   e.Username,
		Action:     string(e.Action),
		TargetType: string(e.TargetType),
		TargetID:   e.TargetID,
		Details:    e.Details,
		Timestamp:  e.Timestamp,
	}
}

func FromDataModel(a *auditDatamodel.AuditLog) *Entry {
	return &Entry{
		ID:         a.ID,
		Username:   a.Username,
		Action:     Action(a.Action),
		TargetType: TargetType(a.TargetType),
		TargetID:   a.TargetID,
		Details:    a.Details,
		Timestamp:  a.Timestamp,
	}
}
