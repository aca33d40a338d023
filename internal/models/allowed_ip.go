package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AllowedIP is a client identifier that bypasses all security checks.
// Allow always wins over block. Lifecycle mirrors BlockedIP: soft delete
// via IsActive, optional expiry, periodic sweep.
type AllowedIP struct {
	ID          uint       `json:"id" gorm:"primaryKey"`
	UUID        string     `json:"uuid" gorm:"uniqueIndex"`
	IPAddress   string     `json:"ip_address" gorm:"index"`
	Description string     `json:"description"`
	AddedBy     string     `json:"added_by"`
	AddedAt     time.Time  `json:"added_at"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
	IsActive    bool       `json:"is_active" gorm:"index"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func (a *AllowedIP) BeforeCreate(tx *gorm.DB) (err error) {
	if a.UUID == "" {
		a.UUID = uuid.NewString()
	}
	if a.AddedAt.IsZero() {
		a.AddedAt = time.Now()
	}
	return
}
