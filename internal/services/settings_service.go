package services

import (
	"errors"
	"strconv"

	"gorm.io/gorm"

	"github.com/arsya371/apologyhub/internal/models"
)

var ErrSettingNotFound = errors.New("setting not found")

// SettingsService is a thin key/value store for operator-tunable options.
type SettingsService struct {
	db *gorm.DB
}

func NewSettingsService(db *gorm.DB) *SettingsService {
	return &SettingsService{db: db}
}

// Get returns the stored value for a key, or fallback when unset.
func (s *SettingsService) Get(key, fallback string) string {
	var setting models.Setting
	if err := s.db.Where("key = ?", key).First(&setting).Error; err != nil {
		return fallback
	}
	return setting.Value
}

// GetInt parses the stored value as an integer.
func (s *SettingsService) GetInt(key string, fallback int) int {
	raw := s.Get(key, "")
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}

// GetBool parses the stored value as a boolean.
func (s *SettingsService) GetBool(key string, fallback bool) bool {
	raw := s.Get(key, "")
	if raw == "" {
		return fallback
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return fallback
	}
	return b
}

// Set upserts one setting.
func (s *SettingsService) Set(key, value string) (*models.Setting, error) {
	setting := &models.Setting{Key: key}
	err := s.db.Where("key = ?", key).First(setting).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		setting.Value = value
		if err := s.db.Create(setting).Error; err != nil {
			return nil, err
		}
	case err != nil:
		return nil, err
	default:
		setting.Value = value
		if err := s.db.Save(setting).Error; err != nil {
			return nil, err
		}
	}
	return setting, nil
}

// All returns every stored setting keyed by name.
func (s *SettingsService) All() (map[string]string, error) {
	var settings []models.Setting
	if err := s.db.Find(&settings).Error; err != nil {
		return nil, err
	}
	out := make(map[string]string, len(settings))
	for _, setting := range settings {
		out[setting.Key] = setting.Value
	}
	return out, nil
}

// Delete removes one setting.
func (s *SettingsService) Delete(key string) error {
	result := s.db.Where("key = ?", key).Delete(&models.Setting{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrSettingNotFound
	}
	return nil
}
