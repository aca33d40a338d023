package models

import (
	"time"
)

// DailyStat aggregates submission and view counts per calendar day.
type DailyStat struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Date        time.Time `json:"date" gorm:"uniqueIndex"`
	Submissions int       `json:"submissions"`
	Views       int       `json:"views"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
