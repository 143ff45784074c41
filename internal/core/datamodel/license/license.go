package license

import "time"

type License struct {
	ID              int64     `gorm:"primaryKey" json:"id"`
	Product         string    `gorm:"column:product;not null;index" json:"product"`
	LicenseType     string    `gorm:"column:license_type" json:"license_type"`
	SerialKey       string    `gorm:"column:serial_key" json:"serial_key"`
	ExpirationDate  string    `gorm:"column:expiration_date" json:"expiration_date"`
	AssignedUser    string    `gorm:"column:assigned_user" json:"assigned_user"`
	JobRole         string    `gorm:"column:job_role" json:"job_role"`
	Department      string    `gorm:"column:department" json:"department"`
	Manager         string    `gorm:"column:manager" json:"manager"`
	CostCenter      string    `gorm:"column:cost_center" json:"cost_center"`
	LedgerAccount   string    `gorm:"column:ledger_account" json:"ledger_account"`
	ComputerName    string    `gorm:"column:computer_name" json:"computer_name"`
	TicketNumber    string    `gorm:"column:ticket_number" json:"ticket_number"`
	ApprovalStatus  string    `gorm:"column:approval_status;not null;index" json:"approval_status"`
	RejectionReason *string   `gorm:"column:rejection_reason" json:"rejection_reason"`
	Notes           string    `gorm:"column:notes" json:"notes"`
	CreatedAt       time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (License) TableName() string {
	return "licenses"
}

// Total is the contracted seat count of a product. It is configuration and
// has no foreign key to license rows.
type Total struct {
	Product   string    `gorm:"column:product;primaryKey" json:"product"`
	Total     int       `gorm:"column:total;not null" json:"total"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (Total) TableName() string {
	return "license_totals"
}
