package models

import (
	"time"
)

// ProfanityWord is a moderated term. Matching is case-insensitive
// substring matching.
type ProfanityWord struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Word      string    `json:"word" gorm:"uniqueIndex"`
	Language  string    `json:"language" gorm:"default:'en'"`
	IsActive  bool      `json:"is_active" gorm:"default:true"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
