// Package approval drives the pending_approval queue shared by equipment and
// licenses. Approving flips the row to approved; rejecting deletes it.
package approval

import (
	"strings"

	"github.com/frahmantamala/inventory-management/internal"
	"github.com/frahmantamala/inventory-management/internal/audit"
)

type Entity string

const (
	EntityEquipment Entity = "equipment"
	EntityLicense   Entity = "license"
)

func (e Entity) Valid() bool {
	return e == EntityEquipment || e == EntityLicense
}

// Target is the audit target type of the entity.
func (e Entity) Target() audit.TargetType {
	if e == EntityLicense {
		return audit.TargetLicense
	}
	return audit.TargetEquipment
}

const (
	DecisionApproved = "approved"
	DecisionRejected = "rejected"
)

// PendingItem is one row waiting for an administrator.
type PendingItem struct {
	Entity Entity `db:"entity" json:"entity"`
	ID     int64  `db:"id" json:"id"`
	Name   string `db:"name" json:"name"`
	Notes  string `db:"notes" json:"notes"`
}

type DecisionDTO struct {
	Entity Entity `json:"entity"`
	ID     int64  `json:"id"`
	Reason string `json:"reason"`
}

func (d *DecisionDTO) Validate() error {
	d.Entity = Entity(strings.ToLower(strings.TrimSpace(string(d.Entity))))
	if !d.Entity.Valid() {
		return internal.NewValidationFieldError("entity", "entity must be equipment or license", internal.ErrCodeValidationFailed)
	}
	if d.ID <= 0 {
		return internal.NewValidationFieldError("id", "id is required", internal.ErrCodeInvalidID)
	}
	d.Reason = strings.TrimSpace(d.Reason)
	return nil
}

type ListResponse struct {
	Items []*PendingItem `json:"items"`
}

type DecisionResponse struct {
	Entity   Entity `json:"entity"`
	ID       int64  `json:"id"`
	Decision string `json:"decision"`
}
