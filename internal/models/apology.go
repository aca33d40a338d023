package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Apology is an anonymous short message posted by a visitor.
type Apology struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UUID      string    `json:"uuid" gorm:"uniqueIndex"`
	Content   string    `json:"content" gorm:"type:text"`
	ToWho     string    `json:"to_who,omitempty"`
	FromWho   string    `json:"from_who,omitempty"`
	IPAddress string    `json:"-"` // never serialized to the public feed
	Views     int       `json:"views"`
	CreatedAt time.Time `json:"created_at" gorm:"index"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (a *Apology) BeforeCreate(tx *gorm.DB) (err error) {
	if a.UUID == "" {
		a.UUID = uuid.NewString()
	}
	return
}
