package services

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"gorm.io/gorm"

	"github.com/arsya371/apologyhub/internal/models"
	"github.com/arsya371/apologyhub/internal/util"
)

var (
	ErrApologyNotFound = errors.New("apology not found")
	ErrContentTooShort = errors.New("apology content is too short")
	ErrContentTooLong  = errors.New("apology content is too long")
	ErrNameTooLong     = errors.New("name exceeds the maximum length")
)

const (
	apologyMinLength  = 10
	apologyNameMax    = 100
	defaultPageSize   = 20
	maxPageSize       = 100
	defaultApologyMax = 500
	featuredLimitMax  = 20
)

// ApologyInput is the payload for creating an apology. MaxLength is the
// content limit for this request; zero means the default. It travels with
// the input so callers can apply the operator setting without mutating
// shared service state.
type ApologyInput struct {
	Content   string
	ToWho     string
	FromWho   string
	IPAddress string
	MaxLength int
}

// ApologyUpdate carries optional admin edits. Nil fields are left unchanged.
type ApologyUpdate struct {
	Content   *string
	ToWho     *string
	FromWho   *string
	MaxLength int
}

// ApologyFilter selects and orders a page of the public feed.
type ApologyFilter struct {
	Search    string
	ToWho     string
	Page      int
	PageSize  int
	SortBy    string // "created_at" or "views"
	SortOrder string // "asc" or "desc"
}

// Pagination describes the returned page.
type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
}

// ApologyStats are the public feed totals.
type ApologyStats struct {
	TotalApologies int64 `json:"total_apologies"`
	TotalViews     int64 `json:"total_views"`
}

// ApologyService implements the apology content store.
type ApologyService struct {
	db *gorm.DB
}

func NewApologyService(db *gorm.DB) *ApologyService {
	return &ApologyService{db: db}
}

func maxLengthOrDefault(n int) int {
	if n > 0 {
		return n
	}
	return defaultApologyMax
}

// Create validates, sanitizes and stores a new apology and records the
// mutation in the activity log.
func (s *ApologyService) Create(input ApologyInput) (*models.Apology, error) {
	content := util.SanitizeContent(input.Content)
	if len(content) < apologyMinLength {
		return nil, ErrContentTooShort
	}
	if len(content) > maxLengthOrDefault(input.MaxLength) {
		return nil, ErrContentTooLong
	}

	toWho := util.SanitizeContent(input.ToWho)
	fromWho := util.SanitizeContent(input.FromWho)
	if len(toWho) > apologyNameMax || len(fromWho) > apologyNameMax {
		return nil, ErrNameTooLong
	}

	apology := &models.Apology{
		Content:   content,
		ToWho:     toWho,
		FromWho:   fromWho,
		IPAddress: input.IPAddress,
	}
	if err := s.db.Create(apology).Error; err != nil {
		return nil, fmt.Errorf("create apology: %w", err)
	}

	s.logActivity(models.ActivityApologyCreated, fmt.Sprintf("New apology created: %s", apology.UUID), input.IPAddress)
	return apology, nil
}

// GetByUUID fetches one apology.
func (s *ApologyService) GetByUUID(uuid string) (*models.Apology, error) {
	var apology models.Apology
	err := s.db.Where("uuid = ?", uuid).First(&apology).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrApologyNotFound
	}
	if err != nil {
		return nil, err
	}
	return &apology, nil
}

// IncrementViews bumps the view counter for one apology.
func (s *ApologyService) IncrementViews(uuid string) error {
	return s.db.Model(&models.Apology{}).
		Where("uuid = ?", uuid).
		Update("views", gorm.Expr("views + 1")).Error
}

// List returns a filtered, sorted page of the feed.
func (s *ApologyService) List(filter ApologyFilter) ([]models.Apology, *Pagination, error) {
	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}

	q := s.db.Model(&models.Apology{})
	if filter.Search != "" {
		q = q.Where("content LIKE ?", "%"+filter.Search+"%")
	}
	if filter.ToWho != "" {
		q = q.Where("to_who LIKE ?", "%"+filter.ToWho+"%")
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, nil, err
	}

	sortBy := "created_at"
	if filter.SortBy == "views" {
		sortBy = "views"
	}
	sortOrder := "desc"
	if strings.EqualFold(filter.SortOrder, "asc") {
		sortOrder = "asc"
	}

	var apologies []models.Apology
	err := q.Order(fmt.Sprintf("%s %s", sortBy, sortOrder)).
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&apologies).Error
	if err != nil {
		return nil, nil, err
	}

	return apologies, &Pagination{
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: int(math.Ceil(float64(total) / float64(pageSize))),
	}, nil
}

// Featured returns the most viewed apologies.
func (s *ApologyService) Featured(limit int) ([]models.Apology, error) {
	if limit <= 0 || limit > featuredLimitMax {
		limit = 6
	}
	var apologies []models.Apology
	err := s.db.Order("views desc").Limit(limit).Find(&apologies).Error
	return apologies, err
}

// Recent returns the newest apologies.
func (s *ApologyService) Recent(limit int) ([]models.Apology, error) {
	if limit <= 0 || limit > maxPageSize {
		limit = 10
	}
	var apologies []models.Apology
	err := s.db.Order("created_at desc").Limit(limit).Find(&apologies).Error
	return apologies, err
}

// Stats returns total apology and view counts.
func (s *ApologyService) Stats() (*ApologyStats, error) {
	stats := &ApologyStats{}
	if err := s.db.Model(&models.Apology{}).Count(&stats.TotalApologies).Error; err != nil {
		return nil, err
	}
	var totalViews *int64
	if err := s.db.Model(&models.Apology{}).Select("sum(views)").Scan(&totalViews).Error; err != nil {
		return nil, err
	}
	if totalViews != nil {
		stats.TotalViews = *totalViews
	}
	return stats, nil
}

// Update applies admin edits to an apology.
func (s *ApologyService) Update(uuid string, updates ApologyUpdate) (*models.Apology, error) {
	apology, err := s.GetByUUID(uuid)
	if err != nil {
		return nil, err
	}

	if updates.Content != nil {
		content := util.SanitizeContent(*updates.Content)
		if len(content) < apologyMinLength {
			return nil, ErrContentTooShort
		}
		if len(content) > maxLengthOrDefault(updates.MaxLength) {
			return nil, ErrContentTooLong
		}
		apology.Content = content
	}
	if updates.ToWho != nil {
		apology.ToWho = util.SanitizeContent(*updates.ToWho)
	}
	if updates.FromWho != nil {
		apology.FromWho = util.SanitizeContent(*updates.FromWho)
	}

	if err := s.db.Save(apology).Error; err != nil {
		return nil, fmt.Errorf("update apology: %w", err)
	}

	s.logActivity(models.ActivityApologyUpdated, fmt.Sprintf("Apology updated: %s", uuid), "")
	return apology, nil
}

// Delete removes one apology.
func (s *ApologyService) Delete(uuid string) error {
	result := s.db.Where("uuid = ?", uuid).Delete(&models.Apology{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrApologyNotFound
	}

	s.logActivity(models.ActivityApologyDeleted, fmt.Sprintf("Apology deleted: %s", uuid), "")
	return nil
}

// BulkDelete removes a batch of apologies and returns the deleted count.
func (s *ApologyService) BulkDelete(uuids []string) (int64, error) {
	if len(uuids) == 0 {
		return 0, nil
	}
	result := s.db.Where("uuid IN ?", uuids).Delete(&models.Apology{})
	if result.Error != nil {
		return 0, result.Error
	}

	s.logActivity(models.ActivityBulkDelete, fmt.Sprintf("Deleted %d apologies", result.RowsAffected), "")
	return result.RowsAffected, nil
}

func (s *ApologyService) logActivity(action, details, ipAddress string) {
	_ = s.db.Create(&models.ActivityLog{
		Action:    action,
		Details:   details,
		IPAddress: ipAddress,
	}).Error
}
