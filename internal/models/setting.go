package models

import (
	"time"
)

// Well-known setting keys.
const (
	SettingSiteName          = "site.name"
	SettingAnnouncement      = "site.announcement"
	SettingShowAnnouncement  = "site.show_announcement"
	SettingMaxApologyLength  = "apology.max_length"
	SettingModerationEnabled = "moderation.enabled"
)

// Setting is a key/value row for operator-tunable site configuration.
type Setting struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Key       string    `json:"key" gorm:"uniqueIndex"`
	Value     string    `json:"value" gorm:"type:text"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
