package equipment

import "time"

// Equipment maps the equipment table. AssetTag is NULL when empty so the
// unique index only applies to real tags.
type Equipment struct {
	ID                 int64     `gorm:"primaryKey" json:"id"`
	Description        string    `gorm:"column:description;not null" json:"description"`
	WarrantyDate       string    `gorm:"column:warranty_date" json:"warranty_date"`
	AssetTag           *string   `gorm:"column:asset_tag;uniqueIndex" json:"asset_tag"`
	Serial             string    `gorm:"column:serial" json:"serial"`
	CurrentHolder      string    `gorm:"column:current_holder" json:"current_holder"`
	PreviousHolder     string    `gorm:"column:previous_holder" json:"previous_holder"`
	Site               string    `gorm:"column:site" json:"site"`
	Department         string    `gorm:"column:department" json:"department"`
	DeliveryDate       string    `gorm:"column:delivery_date" json:"delivery_date"`
	Status             string    `gorm:"column:status" json:"status"`
	ReturnDate         string    `gorm:"column:return_date" json:"return_date"`
	OwnershipType      string    `gorm:"column:ownership_type" json:"ownership_type"`
	PurchaseNote       string    `gorm:"column:purchase_note" json:"purchase_note"`
	ResponsibilityTerm string    `gorm:"column:responsibility_term" json:"responsibility_term"`
	PhotoURL           string    `gorm:"column:photo_url" json:"photo_url"`
	QRPayload          string    `gorm:"column:qr_payload" json:"qr_payload"`
	ApprovalStatus     string    `gorm:"column:approval_status;not null;index" json:"approval_status"`
	RejectionReason    *string   `gorm:"column:rejection_reason" json:"rejection_reason"`
	Notes              string    `gorm:"column:notes" json:"notes"`
	CreatedAt          time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt          time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (Equipment) TableName() string {
	return "equipment"
}

// History is an append-only per-field change of an approved equipment row.
type History struct {
	ID          int64     `gorm:"primaryKey" json:"id"`
	EquipmentID int64     `gorm:"column:equipment_id;not null;index" json:"equipment_id"`
	Category    string    `gorm:"column:category;not null" json:"category"`
	Field       string    `gorm:"column:field;not null" json:"field"`
	OldValue    string    `gorm:"column:old_value" json:"old_value"`
	NewValue    string    `gorm:"column:new_value" json:"new_value"`
	ChangedBy   string    `gorm:"column:changed_by;not null" json:"changed_by"`
	ChangedAt   time.Time `gorm:"column:changed_at;not null" json:"changed_at"`
}

func (History) TableName() string {
	return "equipment_history"
}
