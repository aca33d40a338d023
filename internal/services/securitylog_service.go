package services

import (
	"time"

	"gorm.io/gorm"

	"github.com/arsya371/apologyhub/internal/logger"
	"github.com/arsya371/apologyhub/internal/models"
)

// ActionCount is a group-by bucket for security log statistics.
type ActionCount struct {
	Action string `json:"action"`
	Count  int64  `json:"count"`
}

// SeverityCount is a group-by bucket for security log statistics.
type SeverityCount struct {
	Severity string `json:"severity"`
	Count    int64  `json:"count"`
}

// SecurityStats aggregates log activity over a trailing window.
type SecurityStats struct {
	TotalBlocked   int64           `json:"total_blocked"`
	RecentLogs     int64           `json:"recent_logs"`
	LogsByAction   []ActionCount   `json:"logs_by_action"`
	LogsBySeverity []SeverityCount `json:"logs_by_severity"`
}

// BotStats aggregates bot detection activity over a trailing window.
type BotStats struct {
	TotalBlocked    int64                `json:"total_blocked"`
	TotalSuspicious int64                `json:"total_suspicious"`
	RecentActivity  []models.SecurityLog `json:"recent_activity"`
}

// SecurityLogService is the append-only audit trail of security decisions.
type SecurityLogService struct {
	db *gorm.DB
}

func NewSecurityLogService(db *gorm.DB) *SecurityLogService {
	return &SecurityLogService{db: db}
}

// Record appends one immutable entry. A write failure must never fail the
// triggering request, so errors are swallowed after a diagnostic log line.
func (s *SecurityLogService) Record(entry *models.SecurityLog) {
	if entry == nil {
		return
	}
	if entry.Severity == "" {
		entry.Severity = models.SeverityLow
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	if err := s.db.Create(entry).Error; err != nil {
		logger.WithFields(map[string]interface{}{
			"ip":     entry.IPAddress,
			"action": entry.Action,
		}).WithError(err).Error("failed to record security log entry")
	}
}

// ByIP returns recent entries for one identifier, newest first.
func (s *SecurityLogService) ByIP(ipAddress string, limit int) ([]models.SecurityLog, error) {
	if limit <= 0 {
		limit = 50
	}
	var entries []models.SecurityLog
	err := s.db.Where("ip_address = ?", ipAddress).
		Order("created_at desc").
		Limit(limit).
		Find(&entries).Error
	return entries, err
}

// Filtered returns entries matching the optional severity and action
// filters, newest first.
func (s *SecurityLogService) Filtered(severity, action string, limit int) ([]models.SecurityLog, error) {
	if limit <= 0 {
		limit = 100
	}
	q := s.db.Order("created_at desc").Limit(limit)
	if severity != "" {
		q = q.Where("severity = ?", severity)
	}
	if action != "" {
		q = q.Where("action = ?", action)
	}
	var entries []models.SecurityLog
	err := q.Find(&entries).Error
	return entries, err
}

// CountRecentBotBlocks counts high-severity bot denials for the identifier
// inside the trailing window. The admission controller treats 5 or more as a
// derived temporary block.
func (s *SecurityLogService) CountRecentBotBlocks(ipAddress string, window time.Duration) (int64, error) {
	var count int64
	err := s.db.Model(&models.SecurityLog{}).
		Where("ip_address = ?", ipAddress).
		Where("severity = ?", models.SeverityHigh).
		Where("reason_code = ?", models.ReasonBotDetected).
		Where("created_at >= ?", time.Now().Add(-window)).
		Count(&count).Error
	return count, err
}

// StatsSince aggregates log counts by action and severity over the trailing
// number of days, plus the current active block count.
func (s *SecurityLogService) StatsSince(days int) (*SecurityStats, error) {
	if days <= 0 {
		days = 7
	}
	since := time.Now().AddDate(0, 0, -days)
	stats := &SecurityStats{}

	if err := s.db.Model(&models.BlockedIP{}).
		Where("is_active = ?", true).
		Count(&stats.TotalBlocked).Error; err != nil {
		return nil, err
	}

	if err := s.db.Model(&models.SecurityLog{}).
		Where("created_at >= ?", since).
		Count(&stats.RecentLogs).Error; err != nil {
		return nil, err
	}

	if err := s.db.Model(&models.SecurityLog{}).
		Select("action, count(*) as count").
		Where("created_at >= ?", since).
		Group("action").
		Scan(&stats.LogsByAction).Error; err != nil {
		return nil, err
	}

	if err := s.db.Model(&models.SecurityLog{}).
		Select("severity, count(*) as count").
		Where("created_at >= ?", since).
		Group("severity").
		Scan(&stats.LogsBySeverity).Error; err != nil {
		return nil, err
	}

	return stats, nil
}

// BotStatsSince aggregates bot detection counts by typed reason code over
// the trailing number of days.
func (s *SecurityLogService) BotStatsSince(days int) (*BotStats, error) {
	if days <= 0 {
		days = 7
	}
	since := time.Now().AddDate(0, 0, -days)
	stats := &BotStats{}

	if err := s.db.Model(&models.SecurityLog{}).
		Where("reason_code = ?", models.ReasonBotDetected).
		Where("created_at >= ?", since).
		Count(&stats.TotalBlocked).Error; err != nil {
		return nil, err
	}

	if err := s.db.Model(&models.SecurityLog{}).
		Where("reason_code = ?", models.ReasonSuspiciousUA).
		Where("created_at >= ?", since).
		Count(&stats.TotalSuspicious).Error; err != nil {
		return nil, err
	}

	if err := s.db.Where("reason_code IN ?", []string{models.ReasonBotDetected, models.ReasonSuspiciousUA}).
		Where("created_at >= ?", since).
		Order("created_at desc").
		Limit(50).
		Find(&stats.RecentActivity).Error; err != nil {
		return nil, err
	}

	return stats, nil
}
