package equipment

import (
	"strings"
	"time"

	"github.com/frahmantamala/inventory-management/internal/core/changes"
	equipmentDatamodel "github.com/frahmantamala/inventory-management/internal/core/datamodel/equipment"
)

type Equipment struct {
	ID                 int64     `json:"id"`
	Description        string    `json:"description"`
	WarrantyDate       string    `json:"warranty_date"`
	AssetTag           string    `json:"asset_tag"`
	Serial             string    `json:"serial"`
	CurrentHolder      string    `json:"current_holder"`
	PreviousHolder     string    `json:"previous_holder"`
	Site               string    `json:"site"`
	Department         string    `json:"department"`
	DeliveryDate       string    `json:"delivery_date"`
	Status             string    `json:"status"`
	ReturnDate         string    `json:"return_date"`
	OwnershipType      string    `json:"ownership_type"`
	PurchaseNote       string    `json:"purchase_note"`
	ResponsibilityTerm string    `json:"responsibility_term"`
	PhotoURL           string    `json:"photo_url"`
	QRPayload          string    `json:"qr_payload"`
	ApprovalStatus     string    `json:"approval_status"`
	RejectionReason    *string   `json:"rejection_reason,omitempty"`
	Notes              string    `json:"notes"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// Identifier is how people refer to a device: asset tag, then serial.
func (e *Equipment) Identifier() string {
	if e.AssetTag != "" {
		return e.AssetTag
	}
	return e.Serial
}

// HistoryEntry records one changed field of an approved equipment row.
type HistoryEntry struct {
	ID          int64     `json:"id"`
	EquipmentID int64     `json:"equipment_id"`
	Category    Category  `json:"category"`
	Field       string    `json:"field"`
	OldValue    string    `json:"old_value"`
	NewValue    string    `json:"new_value"`
	ChangedBy   string    `json:"changed_by"`
	ChangedAt   time.Time `json:"changed_at"`
}

// Category is an advisory classification of a history entry.
type Category string

const (
	CategoryLocation   Category = "location"
	CategoryUser       Category = "user"
	CategoryDepartment Category = "department"
	CategoryStatus     Category = "status"
	CategoryDetails    Category = "details"
)

func CategoryOf(field string) Category {
	switch field {
	case "site":
		return CategoryLocation
	case "current_holder", "previous_holder":
		return CategoryUser
	case "department":
		return CategoryDepartment
	case "status":
		return CategoryStatus
	default:
		return CategoryDetails
	}
}

func field(name string, get func(*Equipment) string, set func(*Equipment, string)) changes.Field[Equipment] {
	return changes.Field[Equipment]{Name: name, Get: get, Set: set}
}

// Fields lists every user-editable column, keyed by its json name.
var Fields = []changes.Field[Equipment]{
	field("description", func(e *Equipment) string { return e.Description }, func(e *Equipment, v string) { e.Description = v }),
	field("warranty_date", func(e *Equipment) string { return e.WarrantyDate }, func(e *Equipment, v string) { e.WarrantyDate = v }),
	field("asset_tag", func(e *Equipment) string { return e.AssetTag }, func(e *Equipment, v string) { e.AssetTag = strings.TrimSpace(v) }),
	field("serial", func(e *Equipment) string { return e.Serial }, func(e *Equipment, v string) { e.Serial = v }),
	field("current_holder", func(e *Equipment) string { return e.CurrentHolder }, func(e *Equipment, v string) { e.CurrentHolder = v }),
	field("previous_holder", func(e *Equipment) string { return e.PreviousHolder }, func(e *Equipment, v string) { e.PreviousHolder = v }),
	field("site", func(e *Equipment) string { return e.Site }, func(e *Equipment, v string) { e.Site = v }),
	field("department", func(e *Equipment) string { return e.Department }, func(e *Equipment, v string) { e.Department = v }),
	field("delivery_date", func(e *Equipment) string { return e.DeliveryDate }, func(e *Equipment, v string) { e.DeliveryDate = v }),
	field("status", func(e *Equipment) string { return e.Status }, func(e *Equipment, v string) { e.Status = v }),
	field("return_date", func(e *Equipment) string { return e.ReturnDate }, func(e *Equipment, v string) { e.ReturnDate = v }),
	field("ownership_type", func(e *Equipment) string { return e.OwnershipType }, func(e *Equipment, v string) { e.OwnershipType = v }),
	field("purchase_note", func(e *Equipment) string { return e.PurchaseNote }, func(e *Equipment, v string) { e.PurchaseNote = v }),
	field("responsibility_term", func(e *Equipment) string { return e.ResponsibilityTerm }, func(e *Equipment, v string) { e.ResponsibilityTerm = v }),
	field("photo_url", func(e *Equipment) string { return e.PhotoURL }, func(e *Equipment, v string) { e.PhotoURL = v }),
	field("qr_payload", func(e *Equipment) string { return e.QRPayload }, func(e *Equipment, v string) { e.QRPayload = v }),
	field("notes", func(e *Equipment) string { return e.Notes }, func(e *Equipment, v string) { e.Notes = v }),
}

// NewHistory turns the changes of one update into history rows.
func NewHistory(equipmentID int64, diff []changes.Change, actor string, at time.Time) []*HistoryEntry {
	entries := make([]*HistoryEntry, 0, len(diff))
	for _, c := range diff {
		entries = append(entries, &HistoryEntry{
			EquipmentID: equipmentID,
			Category:    CategoryOf(c.Field),
			Field:       c.Field,
			OldValue:    c.Old,
			NewValue:    c.New,
			ChangedBy:   actor,
			ChangedAt:   at,
		})
	}
	return entries
}

func ToDataModel(e *Equipment) *equipmentDatamodel.Equipment {
	var assetTag *string
	if tag := strings.TrimSpace(e.AssetTag); tag != "" {
		assetTag = &tag
	}
	return &equipmentDatamodel.Equipment{
		ID:                 e.ID,
		Description:        e.Description,
		WarrantyDate:       e.WarrantyDate,
		AssetTag:           assetTag,
		Serial:             e.Serial,
		CurrentHolder:      e.CurrentHolder,
		PreviousHolder:     e.PreviousHolder,
		Site:               e.Site,
		Department:         e.Department,
		DeliveryDate:       e.DeliveryDate,
		Status:             e.Status,
		ReturnDate:         e.ReturnDate,
		OwnershipType:      e.OwnershipType,
		PurchaseNote:       e.PurchaseNote,
		ResponsibilityTerm: e.ResponsibilityTerm,
		PhotoURL:           e.PhotoURL,
		QRPayload:          e.QRPayload,
		ApprovalStatus:     e.ApprovalStatus,
		RejectionReason:    e.RejectionReason,
		Notes:              e.Notes,
		CreatedAt:          e.CreatedAt,
		UpdatedAt:          e.UpdatedAt,
	}
}

func FromDataModel(e *equipmentDatamodel.Equipment) *Equipment {
	var assetTag string
	if e.AssetTag != nil {
		assetTag = *e.AssetTag
	}
	return &Equipment{
		ID:                 e.ID,
		Description:        e.Description,
		WarrantyDate:       e.WarrantyDate,
		AssetTag:           assetTag,
		Serial:             e.Serial,
		CurrentHolder:      e.CurrentHolder,
		PreviousHolder:     e.PreviousHolder,
		Site:               e.Site,
		Department:         e.Department,
		DeliveryDate:       e.DeliveryDate,
		Status:             e.Status,
		ReturnDate:         e.ReturnDate,
		OwnershipType:      e.OwnershipType,
		PurchaseNote:       e.PurchaseNote,
		ResponsibilityTerm: e.ResponsibilityTerm,
		PhotoURL:           e.PhotoURL,
		QRPayload:          e.QRPayload,
		ApprovalStatus:     e.ApprovalStatus,
		RejectionReason:    e.RejectionReason,
		Notes:              e.Notes,
		CreatedAt:          e.CreatedAt,
		UpdatedAt:          e.UpdatedAt,
	}
}

func HistoryToDataModel(h *HistoryEntry) *equipmentDatamodel.History {
	return &equipmentDatamodel.History{
		ID:          h.ID,
		EquipmentID: h.EquipmentID,
		Category:    string(h.Category),
		Field:       h.Field,
		OldValue:    h.OldValue,
		NewValue:    h.NewValue,
		ChangedBy:   h.ChangedBy,
		ChangedAt:   h.ChangedAt,
	}
}

func HistoryFromDataModel(h *equipmentDatamodel.History) *HistoryEntry {
	return &HistoryEntry{
		ID:          h.ID,
		EquipmentID: h.EquipmentID,
		Category:    Category(h.Category),
		Field:       h.Field,
		OldValue:    h.OldValue,
		NewValue:    h.NewValue,
		ChangedBy:   h.ChangedBy,
		ChangedAt:   h.ChangedAt,
	}
}
