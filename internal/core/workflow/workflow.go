// Package workflow holds the approval states shared by equipment and licenses.
package workflow

import "github.com/frahmantamala/inventory-management/internal"

type Status string

const (
	StatusApproved        Status = "approved"
	StatusPendingApproval Status = "pending_approval"
	StatusRejected        Status = "rejected"
)

// InitialStatus is approved for administrators and pending for everyone else.
func InitialStatus(actor *internal.Principal) Status {
	if actor.IsAdmin() {
		return StatusApproved
	}
	return StatusPendingApproval
}

// Visible reports whether a row in the given state may be shown to actor.
func Visible(status string, actor *internal.Principal) bool {
	return actor.IsAdmin() || Status(status) == StatusApproved
}
