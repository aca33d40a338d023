package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/arsya371/apologyhub/internal/edge"
	"github.com/arsya371/apologyhub/internal/logger"
	"github.com/arsya371/apologyhub/internal/models"
)

var (
	ErrBlockNotFound = errors.New("no active block for identifier")
	ErrEmptyIP       = errors.New("identifier must not be empty")
)

// BlockOptions carries the metadata of a new block.
type BlockOptions struct {
	Reason       string
	BlockedBy    string
	ExpiresAt    *time.Time
	RequestCount int
	SyncEdge     bool
}

// BlocklistService manages persisted BlockedIP records. Records are soft
// deleted so block history survives unblocking.
type BlocklistService struct {
	db     *gorm.DB
	edge   *edge.Client
	secLog *SecurityLogService
}

func NewBlocklistService(db *gorm.DB, edgeClient *edge.Client, secLog *SecurityLogService) *BlocklistService {
	return &BlocklistService{db: db, edge: edgeClient, secLog: secLog}
}

// IsBlocked reports whether the identifier has an active, unexpired block.
func (s *BlocklistService) IsBlocked(ipAddress string) (bool, error) {
	var count int64
	err := s.activeQuery(ipAddress).
		Where("expires_at IS NULL OR expires_at > ?", time.Now()).
		Count(&count).Error
	return count > 0, err
}

// GetBlocked returns the active block record for the identifier.
func (s *BlocklistService) GetBlocked(ipAddress string) (*models.BlockedIP, error) {
	var blocked models.BlockedIP
	err := s.activeQuery(ipAddress).First(&blocked).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrBlockNotFound
	}
	if err != nil {
		return nil, err
	}
	return &blocked, nil
}

// Block denies access for the identifier. Idempotent: an existing active
// record is returned unchanged. When SyncEdge is set and credentials are
// configured the block is mirrored into an edge firewall rule; edge failure
// never cancels the local block.
func (s *BlocklistService) Block(ctx context.Context, ipAddress string, opts BlockOptions) (*models.BlockedIP, error) {
	if ipAddress == "" {
		return nil, ErrEmptyIP
	}

	existing, err := s.GetBlocked(ipAddress)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, ErrBlockNotFound) {
		return nil, err
	}

	if opts.BlockedBy == "" {
		opts.BlockedBy = "system"
	}

	var edgeRuleID string
	if opts.SyncEdge {
		resp, edgeErr := s.edge.BlockIP(ctx, ipAddress, opts.Reason)
		switch {
		case edgeErr != nil:
			logger.WithFields(map[string]interface{}{"ip": ipAddress}).WithError(edgeErr).Warn("edge sync failed, keeping local block")
		case resp != nil && resp.Success && resp.Result != nil:
			edgeRuleID = resp.Result.ID
		}
	}

	blocked := &models.BlockedIP{
		IPAddress:     ipAddress,
		Reason:        opts.Reason,
		BlockedBy:     opts.BlockedBy,
		ExpiresAt:     opts.ExpiresAt,
		IsActive:      true,
		RequestCount:  opts.RequestCount,
		LastRequestAt: time.Now(),
		EdgeRuleID:    edgeRuleID,
	}
	if err := s.db.Create(blocked).Error; err != nil {
		return nil, fmt.Errorf("create block record: %w", err)
	}

	s.secLog.Record(&models.SecurityLog{
		IPAddress:  ipAddress,
		Action:     models.ActionIPBlocked,
		Details:    fmt.Sprintf("IP blocked: %s", opts.Reason),
		ReasonCode: models.ReasonManual,
		Severity:   models.SeverityHigh,
	})

	return blocked, nil
}

// Unblock soft-deletes the active block. Returns ErrBlockNotFound when no
// active record exists, so a second call reports nothing to remove. The
// edge rule, if any, is deleted best-effort.
func (s *BlocklistService) Unblock(ctx context.Context, ipAddress, unblockedBy string) (*models.BlockedIP, error) {
	blocked, err := s.GetBlocked(ipAddress)
	if err != nil {
		return nil, err
	}

	if blocked.EdgeRuleID != "" {
		if _, edgeErr := s.edge.UnblockRule(ctx, blocked.EdgeRuleID); edgeErr != nil {
			logger.WithFields(map[string]interface{}{"ip": ipAddress, "rule_id": blocked.EdgeRuleID}).
				WithError(edgeErr).Warn("failed to delete edge firewall rule")
		}
	}

	blocked.IsActive = false
	blocked.EdgeRuleID = ""
	if err := s.db.Save(blocked).Error; err != nil {
		return nil, fmt.Errorf("deactivate block record: %w", err)
	}

	if unblockedBy == "" {
		unblockedBy = "system"
	}
	s.secLog.Record(&models.SecurityLog{
		IPAddress: ipAddress,
		Action:    models.ActionIPUnblocked,
		Details:   fmt.Sprintf("IP unblocked by %s", unblockedBy),
		Severity:  models.SeverityLow,
	})

	return blocked, nil
}

// List returns block records, newest first.
func (s *BlocklistService) List(activeOnly bool) ([]models.BlockedIP, error) {
	q := s.db.Order("blocked_at desc")
	if activeOnly {
		q = q.Where("is_active = ?", true)
	}
	var blocks []models.BlockedIP
	err := q.Find(&blocks).Error
	return blocks, err
}

// IncrementRequestCount bumps the request counter on the active block so the
// admin view shows how often a blocked client keeps retrying.
func (s *BlocklistService) IncrementRequestCount(ipAddress string) error {
	return s.activeQuery(ipAddress).Updates(map[string]interface{}{
		"request_count":   gorm.Expr("request_count + 1"),
		"last_request_at": time.Now(),
	}).Error
}

// SweepExpired deactivates every active block whose expiry has passed and
// returns the number swept. Idempotent: a second pass in the same window
// finds nothing active.
func (s *BlocklistService) SweepExpired(ctx context.Context) (int, error) {
	var expired []models.BlockedIP
	err := s.db.Where("is_active = ?", true).
		Where("expires_at IS NOT NULL AND expires_at <= ?", time.Now()).
		Find(&expired).Error
	if err != nil {
		return 0, err
	}

	for _, block := range expired {
		if _, err := s.Unblock(ctx, block.IPAddress, "system_cleanup"); err != nil && !errors.Is(err, ErrBlockNotFound) {
			return 0, err
		}
	}
	return len(expired), nil
}

func (s *BlocklistService) activeQuery(ipAddress string) *gorm.DB {
	return s.db.Model(&models.BlockedIP{}).
		Where("ip_address = ?", ipAddress).
		Where("is_active = ?", true)
}
