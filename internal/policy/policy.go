// Package policy is the single capability table of the service. Every
// authorization decision, in middleware or in a service, goes through Allow.
package policy

import (
	"fmt"

	"github.com/frahmantamala/inventory-management/internal"
)

type Action string

const (
	ActionRead       Action = "read"
	ActionCreate     Action = "create"
	ActionUpdate     Action = "update"
	ActionDelete     Action = "delete"
	ActionImport     Action = "import"
	ActionRename     Action = "rename"
	ActionApprove    Action = "approve"
	ActionReject     Action = "reject"
	ActionDisable2FA Action = "disable_2fa"
	ActionBackup     Action = "backup"
	ActionRestore    Action = "restore"
	ActionReset      Action = "reset"
	ActionTest       Action = "test"
	ActionSync       Action = "sync"
)

type Resource string

const (
	ResourceEquipment    Resource = "equipment"
	ResourceLicense      Resource = "license"
	ResourceLicenseTotal Resource = "license_total"
	ResourceApproval     Resource = "approval"
	ResourceUser         Resource = "user"
	ResourceAuditLog     Resource = "audit_log"
	ResourceDatabase     Resource = "database"
	ResourceIntegration  Resource = "integration"
	ResourceSettings     Resource = "settings"
	ResourceDashboard    Resource = "dashboard"
)

type rule struct {
	resource Resource
	action   Action
}

var (
	everyone     = roles(internal.RoleAdmin, internal.RoleUserManager, internal.RoleOperator)
	adminOnly    = roles(internal.RoleAdmin)
	userManagers = roles(internal.RoleAdmin, internal.RoleUserManager)
)

var rules = map[rule]map[internal.Role]bool{
	{ResourceEquipment, ActionRead}:   everyone,
	{ResourceEquipment, ActionCreate}: everyone,
	{ResourceEquipment, ActionUpdate}: everyone,
	{ResourceEquipment, ActionDelete}: adminOnly,
	{ResourceEquipment, ActionImport}: adminOnly,

	{ResourceLicense, ActionRead}:   everyone,
	{ResourceLicense, ActionCreate}: everyone,
	{ResourceLicense, ActionUpdate}: everyone,
	{ResourceLicense, ActionDelete}: adminOnly,
	{ResourceLicense, ActionImport}: adminOnly,
	{ResourceLicense, ActionRename}: adminOnly,

	{ResourceLicenseTotal, ActionRead}:   everyone,
	{ResourceLicenseTotal, ActionUpdate}: adminOnly,
	{ResourceLicenseTotal, ActionDelete}: adminOnly,

	{ResourceApproval, ActionRead}:    adminOnly,
	{ResourceApproval, ActionApprove}: adminOnly,
	{ResourceApproval, ActionReject}:  adminOnly,

	{ResourceUser, ActionRead}:       userManagers,
	{ResourceUser, ActionCreate}:     userManagers,
	{ResourceUser, ActionUpdate}:     userManagers,
	{ResourceUser, ActionDelete}:     adminOnly,
	{ResourceUser, ActionDisable2FA}: adminOnly,

	{ResourceAuditLog, ActionRead}: adminOnly,

	{ResourceDatabase, ActionRead}:    adminOnly,
	{ResourceDatabase, ActionBackup}:  adminOnly,
	{ResourceDatabase, ActionRestore}: adminOnly,
	{ResourceDatabase, ActionReset}:   adminOnly,

	{ResourceIntegration, ActionRead}:   userManagers,
	{ResourceIntegration, ActionUpdate}: adminOnly,
	{ResourceIntegration, ActionTest}:   adminOnly,
	{ResourceIntegration, ActionSync}:   adminOnly,

	{ResourceSettings, ActionRead}:   everyone,
	{ResourceSettings, ActionUpdate}: adminOnly,

	{ResourceDashboard, ActionRead}: everyone,
}

func roles(rs ...internal.Role) map[internal.Role]bool {
	m := make(map[internal.Role]bool, len(rs))
	for _, r := range rs {
		m[r] = true
	}
	return m
}

// Allow reports whether role may perform action on resource. Unknown pairs
// are denied.
func Allow(role internal.Role, action Action, resource Resource) bool {
	return rules[rule{resource, action}][role]
}

// Check is Allow for a request principal. A missing principal is an
// authentication failure, a denied one is forbidden.
func Check(p *internal.Principal, action Action, resource Resource) error {
	if p == nil {
		return internal.ErrUnauthenticated
	}
	if !Allow(p.Role, action, resource) {
		return internal.NewForbiddenError(
			fmt.Sprintf("role %s may not %s %s", p.Role, action, resource),
			internal.ErrCodeAccessDenied,
		)
	}
	return nil
}
