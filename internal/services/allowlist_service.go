package services

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/arsya371/apologyhub/internal/models"
)

var ErrAllowNotFound = errors.New("no active allowlist entry for identifier")

// AllowOptions carries the metadata of a new allowlist entry.
type AllowOptions struct {
	Description string
	AddedBy     string
	ExpiresAt   *time.Time
}

// AllowlistStats summarizes the allowlist for the admin dashboard.
type AllowlistStats struct {
	TotalAllowed  int64 `json:"total_allowed"`
	ActiveAllowed int64 `json:"active_allowed"`
}

// AllowlistService manages persisted AllowedIP records. An allowed
// identifier bypasses every security check; allow always wins over block.
type AllowlistService struct {
	db *gorm.DB
}

func NewAllowlistService(db *gorm.DB) *AllowlistService {
	return &AllowlistService{db: db}
}

// IsAllowed reports whether the identifier has an active, unexpired
// allowlist entry.
func (s *AllowlistService) IsAllowed(ipAddress string) (bool, error) {
	var count int64
	err := s.activeQuery(ipAddress).
		Where("expires_at IS NULL OR expires_at > ?", time.Now()).
		Count(&count).Error
	return count > 0, err
}

// GetAllowed returns the active allowlist entry for the identifier.
func (s *AllowlistService) GetAllowed(ipAddress string) (*models.AllowedIP, error) {
	var allowed models.AllowedIP
	err := s.activeQuery(ipAddress).First(&allowed).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrAllowNotFound
	}
	if err != nil {
		return nil, err
	}
	return &allowed, nil
}

// Allow adds the identifier to the allowlist. Idempotent: an existing
// active entry is returned unchanged.
func (s *AllowlistService) Allow(ipAddress string, opts AllowOptions) (*models.AllowedIP, error) {
	if ipAddress == "" {
		return nil, ErrEmptyIP
	}

	existing, err := s.GetAllowed(ipAddress)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, ErrAllowNotFound) {
		return nil, err
	}

	if opts.AddedBy == "" {
		opts.AddedBy = "system"
	}

	allowed := &models.AllowedIP{
		IPAddress:   ipAddress,
		Description: opts.Description,
		AddedBy:     opts.AddedBy,
		ExpiresAt:   opts.ExpiresAt,
		IsActive:    true,
	}
	if err := s.db.Create(allowed).Error; err != nil {
		return nil, fmt.Errorf("create allowlist entry: %w", err)
	}
	return allowed, nil
}

// Remove soft-deletes the active entry. Returns ErrAllowNotFound when no
// active entry exists.
func (s *AllowlistService) Remove(ipAddress string) (*models.AllowedIP, error) {
	allowed, err := s.GetAllowed(ipAddress)
	if err != nil {
		return nil, err
	}

	allowed.IsActive = false
	if err := s.db.Save(allowed).Error; err != nil {
		return nil, fmt.Errorf("deactivate allowlist entry: %w", err)
	}
	return allowed, nil
}

// List returns allowlist entries, newest first.
func (s *AllowlistService) List(activeOnly bool) ([]models.AllowedIP, error) {
	q := s.db.Order("added_at desc")
	if activeOnly {
		q = q.Where("is_active = ?", true)
	}
	var entries []models.AllowedIP
	err := q.Find(&entries).Error
	return entries, err
}

// SweepExpired deactivates every active entry whose expiry has passed and
// returns the number swept.
func (s *AllowlistService) SweepExpired() (int, error) {
	var expired []models.AllowedIP
	err := s.db.Where("is_active = ?", true).
		Where("expires_at IS NOT NULL AND expires_at <= ?", time.Now()).
		Find(&expired).Error
	if err != nil {
		return 0, err
	}

	for _, entry := range expired {
		if _, err := s.Remove(entry.IPAddress); err != nil && !errors.Is(err, ErrAllowNotFound) {
			return 0, err
		}
	}
	return len(expired), nil
}

// Stats returns total and active allowlist entry counts.
func (s *AllowlistService) Stats() (*AllowlistStats, error) {
	stats := &AllowlistStats{}
	if err := s.db.Model(&models.AllowedIP{}).Count(&stats.TotalAllowed).Error; err != nil {
		return nil, err
	}
	if err := s.db.Model(&models.AllowedIP{}).Where("is_active = ?", true).Count(&stats.ActiveAllowed).Error; err != nil {
		return nil, err
	}
	return stats, nil
}

func (s *AllowlistService) activeQuery(ipAddress string) *gorm.DB {
	return s.db.Model(&models.AllowedIP{}).
		Where("ip_address = ?", ipAddress).
		Where("is_active = ?", true)
}
