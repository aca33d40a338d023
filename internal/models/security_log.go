package models

import (
	"time"
)

// Severity levels for security log entries.
const (
	SeverityLow      = "low"
	SeverityMedium   = "medium"
	SeverityHigh     = "high"
	SeverityCritical = "critical"
)

// Actions recorded in the security log.
const (
	ActionIPBlocked         = "ip_blocked"
	ActionIPUnblocked       = "ip_unblocked"
	ActionBlockedAttempt    = "blocked_request_attempt"
	ActionSuspiciousTraffic = "suspicious_activity_detected"
	ActionBotBlocked        = "bot_blocked"
	ActionSuspiciousUA      = "suspicious_user_agent"
	ActionSpamDetected      = "spam_detected"
)

// Typed reason codes so statistics are computed by exact match instead of
// searching free-text details.
const (
	ReasonBotDetected  = "bot_detected"
	ReasonSuspiciousUA = "suspicious_user_agent"
	ReasonRateExceeded = "rate_exceeded"
	ReasonSpam         = "spam"
	ReasonManual       = "manual"
)

// SecurityLog is an immutable audit record of a security-relevant decision.
// Entries are append-only and are never mutated or deleted by normal
// operation.
type SecurityLog struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	IPAddress  string    `json:"ip_address" gorm:"index"`
	Action     string    `json:"action" gorm:"index"`
	Endpoint   string    `json:"endpoint,omitempty"`
	UserAgent  string    `json:"user_agent,omitempty"`
	Details    string    `json:"details,omitempty" gorm:"type:text"`
	ReasonCode string    `json:"reason_code,omitempty" gorm:"index"`
	Severity   string    `json:"severity" gorm:"index;default:'low'"`
	CreatedAt  time.Time `json:"created_at" gorm:"index"`
}
