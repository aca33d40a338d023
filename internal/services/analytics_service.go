package services

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/arsya371/apologyhub/internal/models"
)

// AnalyticsOverview is the admin dashboard summary.
type AnalyticsOverview struct {
	TotalApologies   int64              `json:"total_apologies"`
	TotalViews       int64              `json:"total_views"`
	SubmissionsToday int64              `json:"submissions_today"`
	ViewsToday       int64              `json:"views_today"`
	Daily            []models.DailyStat `json:"daily"`
}

// AnalyticsService maintains per-day submission and view counters.
type AnalyticsService struct {
	db *gorm.DB
}

func NewAnalyticsService(db *gorm.DB) *AnalyticsService {
	return &AnalyticsService{db: db}
}

// RecordSubmission bumps today's submission counter.
func (s *AnalyticsService) RecordSubmission() error {
	return s.bump("submissions")
}

// RecordView bumps today's view counter.
func (s *AnalyticsService) RecordView() error {
	return s.bump("views")
}

// Series returns daily stats for the trailing N days, oldest first.
func (s *AnalyticsService) Series(days int) ([]models.DailyStat, error) {
	if days <= 0 {
		days = 30
	}
	since := dateKey(time.Now().AddDate(0, 0, -days))
	var stats []models.DailyStat
	err := s.db.Where("date >= ?", since).Order("date asc").Find(&stats).Error
	return stats, err
}

// Overview assembles the dashboard summary.
func (s *AnalyticsService) Overview(days int) (*AnalyticsOverview, error) {
	overview := &AnalyticsOverview{}

	if err := s.db.Model(&models.Apology{}).Count(&overview.TotalApologies).Error; err != nil {
		return nil, err
	}
	var totalViews *int64
	if err := s.db.Model(&models.Apology{}).Select("sum(views)").Scan(&totalViews).Error; err != nil {
		return nil, err
	}
	if totalViews != nil {
		overview.TotalViews = *totalViews
	}

	var today models.DailyStat
	err := s.db.Where("date = ?", dateKey(time.Now())).First(&today).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	overview.SubmissionsToday = int64(today.Submissions)
	overview.ViewsToday = int64(today.Views)

	daily, err := s.Series(days)
	if err != nil {
		return nil, err
	}
	overview.Daily = daily
	return overview, nil
}

func (s *AnalyticsService) bump(column string) error {
	today := dateKey(time.Now())
	return s.db.Transaction(func(tx *gorm.DB) error {
		var stat models.DailyStat
		err := tx.Where("date = ?", today).First(&stat).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			stat = models.DailyStat{Date: today}
			if err := tx.Create(&stat).Error; err != nil {
				return err
			}
		} else if err != nil {
			return err
		}
		return tx.Model(&stat).Update(column, gorm.Expr(column+" + 1")).Error
	})
}

// dateKey truncates a timestamp to its UTC calendar day.
func dateKey(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
