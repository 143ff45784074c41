package audit

import "time"

type AuditLog struct {
	ID         int64     `gorm:"primaryKey" json:"id"`
	Username   string    `gorm:"column:username;not null" json:"username"`
	Action     string    `gorm:"column:action;not null" json:"action"`
	TargetType string    `gorm:"column:target_type;not null;index" json:"target_type"`
	TargetID   *int64    `gorm:"column:target_id" json:"target_id"`
	Details    string    `gorm:"column:details;type:text" json:"details"`
	Timestamp  time.Time `gorm:"column:timestamp;not null;index" json:"timestamp"`
}

func (AuditLog) TableName() string {
	return "audit_log"
}
