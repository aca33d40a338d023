package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BlockedIP is a client identifier currently denied access. Records are
// never hard-deleted; unblocking flips IsActive so history stays queryable.
// At most one active record may exist per IP address.
type BlockedIP struct {
	ID            uint       `json:"id" gorm:"primaryKey"`
	UUID          string     `json:"uuid" gorm:"uniqueIndex"`
	IPAddress     string     `json:"ip_address" gorm:"index"`
	Reason        string     `json:"reason" gorm:"type:text"`
	BlockedBy     string     `json:"blocked_by"`
	BlockedAt     time.Time  `json:"blocked_at"`
	ExpiresAt     *time.Time `json:"expires_at,omitempty"`
	IsActive      bool       `json:"is_active" gorm:"index"`
	RequestCount  int        `json:"request_count"`
	LastRequestAt time.Time  `json:"last_request_at"`
	EdgeRuleID    string     `json:"edge_rule_id,omitempty"` // external firewall rule reference
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

func (b *BlockedIP) BeforeCreate(tx *gorm.DB) (err error) {
	if b.UUID == "" {
		b.UUID = uuid.NewString()
	}
	if b.BlockedAt.IsZero() {
		b.BlockedAt = time.Now()
	}
	return
}
