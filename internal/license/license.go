package license

import (
	"strings"
	"time"

	"github.com/frahmantamala/inventory-management/internal/core/changes"
	licenseDatamodel "github.com/frahmantamala/inventory-management/internal/core/datamodel/license"
)

type License struct {
	ID              int64           `json:"id"`
	Product         string          `json:"product"`
	LicenseType     string          `json:"license_type"`
	SerialKey       string          `json:"serial_key"`
	ExpirationDate  string          `json:"expiration_date"`
	Expiration      ExpirationState `json:"expiration_state"`
	AssignedUser    string          `json:"assigned_user"`
	JobRole         string          `json:"job_role"`
	Department      string          `json:"department"`
	Manager         string          `json:"manager"`
	CostCenter      string          `json:"cost_center"`
	LedgerAccount   string          `json:"ledger_account"`
	ComputerName    string          `json:"computer_name"`
	TicketNumber    string          `json:"ticket_number"`
	ApprovalStatus  string          `json:"approval_status"`
	RejectionReason *string         `json:"rejection_reason,omitempty"`
	Notes           string          `json:"notes"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// ExpirationState classifies a license's expiration date relative to today.
type ExpirationState string

const (
	StatePerpetual ExpirationState = "perpetual"
	StateExpired   ExpirationState = "expired"
	StateExpiring  ExpirationState = "expiring"
	StateValid     ExpirationState = "valid"
	StateUnknown   ExpirationState = "unknown"
)

// ExpiringWindow is how far ahead a license counts as expiring.
const ExpiringWindow = 30 * 24 * time.Hour

var dateLayouts = []string{"2006-01-02", "02/01/2006", time.RFC3339}

// ParseDate reads the date formats found in license spreadsheets.
func ParseDate(s string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), true
		}
	}
	return time.Time{}, false
}

// Expiration classifies date against now. An empty date or "N/A" is perpetual.
func Expiration(date string, now time.Time) ExpirationState {
	date = strings.TrimSpace(date)
	if date == "" || strings.EqualFold(date, "N/A") {
		return StatePerpetual
	}

	expires, ok := ParseDate(date)
	if !ok {
		return StateUnknown
	}

	now = now.UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	switch {
	case expires.Before(today):
		return StateExpired
	case !expires.After(today.Add(ExpiringWindow)):
		return StateExpiring
	default:
		return StateValid
	}
}

// ProductStat is the seat usage of one product.
type ProductStat struct {
	Product   string `json:"product"`
	Total     int    `json:"total"`
	Used      int    `json:"used"`
	Available int    `json:"available"`
}

// Usage is the raw per-product data ProductStats is computed from.
type Usage struct {
	Product string `db:"product"`
	Used    int    `db:"used"`
}

type Total struct {
	Product string `db:"product" json:"product"`
	Total   int    `db:"total" json:"total"`
}

func field(name string, get func(*License) string, set func(*License, string)) changes.Field[License] {
	return changes.Field[License]{Name: name, Get: get, Set: set}
}

// Fields lists every user-editable column, keyed by its json name.
var Fields = []changes.Field[License]{
	field("product", func(l *License) string { return l.Product }, func(l *License, v string) { l.Product = strings.TrimSpace(v) }),
	field("license_type", func(l *License) string { return l.LicenseType }, func(l *License, v string) { l.LicenseType = v }),
	field("serial_key", func(l *License) string { return l.SerialKey }, func(l *License, v string) { l.SerialKey = v }),
	field("expiration_date", func(l *License) string { return l.ExpirationDate }, func(l *License, v string) { l.ExpirationDate = v }),
	field("assigned_user", func(l *License) string { return l.AssignedUser }, func(l *License, v string) { l.AssignedUser = v }),
	field("job_role", func(l *License) string { return l.JobRole }, func(l *License, v string) { l.JobRole = v }),
	field("department", func(l *License) string { return l.Department }, func(l *License, v string) { l.Department = v }),
	field("manager", func(l *License) string { return l.Manager }, func(l *License, v string) { l.Manager = v }),
	field("cost_center", func(l *License) string { return l.CostCenter }, func(l *License, v string) { l.CostCenter = v }),
	field("ledger_account", func(l *License) string { return l.LedgerAccount }, func(l *License, v string) { l.LedgerAccount = v }),
	field("computer_name", func(l *License) string { return l.ComputerName }, func(l *License, v string) { l.ComputerName = v }),
	field("ticket_number", func(l *License) string { return l.TicketNumber }, func(l *License, v string) { l.TicketNumber = v }),
	field("notes", func(l *License) string { return l.Notes }, func(l *License, v string) { l.Notes = v }),
}

func ToDataModel(l *License) *licenseDatamodel.License {
	return &licenseDatamodel.License{
		ID:              l.ID,
		Product:         l.Product,
		LicenseType:     l.LicenseType,
		SerialKey:       l.SerialKey,
		ExpirationDate:  l.ExpirationDate,
		AssignedUser:    l.AssignedUser,
		JobRole:         l.JobRole,
		Department:      l.Department,
		Manager:         l.Manager,
		CostCenter:      l.CostCenter,
		LedgerAccount:   l.LedgerAccount,
		ComputerName:    l.ComputerName,
		TicketNumber:    l.TicketNumber,
		ApprovalStatus:  l.ApprovalStatus,
		RejectionReason: l.RejectionReason,
		Notes:           l.Notes,
		CreatedAt:       l.CreatedAt,
		UpdatedAt:       l.UpdatedAt,
	}
}

func FromDataModel(l *licenseDatamodel.License) *License {
	return &License{
		ID:              l.ID,
		Product:         l.Product,
		LicenseType:     l.LicenseType,
		SerialKey:       l.SerialKey,
		ExpirationDate:  l.ExpirationDate,
		AssignedUser:    l.AssignedUser,
		JobRole:         l.JobRole,
		Department:      l.Department,
		Manager:         l.Manager,
		CostCenter:      l.CostCenter,
		LedgerAccount:   l.LedgerAccount,
		ComputerName:    l.ComputerName,
		TicketNumber:    l.TicketNumber,
		ApprovalStatus:  l.ApprovalStatus,
		RejectionReason: l.RejectionReason,
		Notes:           l.Notes,
		CreatedAt:       l.CreatedAt,
		UpdatedAt:       l.UpdatedAt,
	}
}
