package setting

import "time"

type Setting struct {
	Name      string    `gorm:"column:name;primaryKey"`
	Value     string    `gorm:"column:value;type:text"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (Setting) TableName() string {
	return "settings"
}
