// Package dashboard aggregates the counters shown on the landing page.
package dashboard

type StatusCount struct {
	Status string `json:"status" db:"status"`
	Count  int    `json:"count" db:"count"`
}

type Summary struct {
	EquipmentTotal    int           `json:"equipment_total"`
	EquipmentByStatus []StatusCount `json:"equipment_by_status"`
	LicenseTotal      int           `json:"license_total"`
	LicensesExpiring  int           `json:"licenses_expiring"`
	LicensesExpired   int           `json:"licenses_expired"`
	PendingApprovals  int           `json:"pending_approvals"`
}
