package entities

import (
	"time"
)

type Setting struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Key       string    `gorm:"uniqueIndex;size:100" json:"key"`
	Value     string    `gorm:"type:text" json:"value"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Setting) TableName() string {
	return "settings"
}

// Known setting keys
const (
	// Hydration settings
	SettingKeyHydrationEnabled     = "hydration_enabled"
	SettingKeyHydrationAPIToken    = "hydration_api_token"
	SettingKeyHydrationSchedule    = "hydration_schedule"
	SettingKeyHydrationLastAt      = "hydration_last_at"
	SettingKeyHydrationLastStatus  = "hydration_last_status"
	SettingKeyHydrationLastMessage = "hydration_last_message"
	SettingKeyHydrationLastObjects = "hydration_last_objects"
)
