package models

import (
	"time"
)

// Actions recorded in the activity log.
const (
	ActivityApologyCreated = "APOLOGY_CREATED"
	ActivityApologyUpdated = "APOLOGY_UPDATED"
	ActivityApologyDeleted = "APOLOGY_DELETED"
	ActivityBulkDelete     = "BULK_DELETE"
)

// ActivityLog records content mutations for the admin audit view.
type ActivityLog struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Action    string    `json:"action" gorm:"index"`
	Details   string    `json:"details" gorm:"type:text"`
	IPAddress string    `json:"ip_address,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
