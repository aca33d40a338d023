package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/arsya371/apologyhub/internal/api/middleware"
	"github.com/arsya371/apologyhub/internal/guard"
	"github.com/arsya371/apologyhub/internal/services"
)

// SecurityHandler exposes the admin surface of the request-defense pipeline:
// block and allow lists, the security log, aggregate statistics, and edge
// firewall status.
type SecurityHandler struct {
	guard *guard.Guard
}

func NewSecurityHandler(g *guard.Guard) *SecurityHandler {
	return &SecurityHandler{guard: g}
}

// RegisterRoutes registers the security admin endpoints.
func (h *SecurityHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/security/blocked-ips", h.ListBlocked)
	router.POST("/security/blocked-ips", h.Block)
	router.DELETE("/security/blocked-ips/:ip", h.Unblock)

	router.GET("/security/allowed-ips", h.ListAllowed)
	router.POST("/security/allowed-ips", h.Allow)
	router.DELETE("/security/allowed-ips/:ip", h.RemoveAllowed)

	router.GET("/security/logs", h.Logs)
	router.GET("/security/stats", h.Stats)
	router.GET("/security/bot-stats", h.BotStats)
	router.GET("/security/spam-check/:ip", h.SpamCheck)
	router.GET("/security/edge", h.EdgeStatus)
	router.POST("/security/edge", h.EdgeBlock)
	router.DELETE("/security/edge/:rule_id", h.EdgeUnblock)
}

// ListBlocked returns block records; ?active=true limits to live blocks.
func (h *SecurityHandler) ListBlocked(c *gin.Context) {
	blocks, err := h.guard.Blocklist.List(c.Query("active") == "true")
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list blocked IPs"})
		return
	}
	c.JSON(http.StatusOK, blocks)
}

type blockRequest struct {
	IPAddress string `json:"ip_address" binding:"required"`
	Reason    string `json:"reason"`
	ExpiresIn string `json:"expires_in"`
	SyncEdge  bool   `json:"sync_edge"`
}

// Block creates a manual block for an identifier.
func (h *SecurityHandler) Block(c *gin.Context) {
	var req blockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ip_address is required"})
		return
	}

	var expiresAt *time.Time
	if req.ExpiresIn != "" {
		d, err := time.ParseDuration(req.ExpiresIn)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "expires_in must be a duration like 24h"})
			return
		}
		t := time.Now().Add(d)
		expiresAt = &t
	}

	blockedBy := "admin"
	if claims := middleware.GetClaims(c); claims != nil {
		blockedBy = claims.Email
	}

	record, err := h.guard.Blocklist.Block(c.Request.Context(), req.IPAddress, services.BlockOptions{
		Reason:    req.Reason,
		BlockedBy: blockedBy,
		ExpiresAt: expiresAt,
		SyncEdge:  req.SyncEdge,
	})
	if errors.Is(err, services.ErrEmptyIP) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ip_address is required"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "block failed"})
		return
	}
	c.JSON(http.StatusCreated, record)
}

// Unblock lifts an active block.
func (h *SecurityHandler) Unblock(c *gin.Context) {
	unblockedBy := "admin"
	if claims := middleware.GetClaims(c); claims != nil {
		unblockedBy = claims.Email
	}

	record, err := h.guard.Blocklist.Unblock(c.Request.Context(), c.Param("ip"), unblockedBy)
	if errors.Is(err, services.ErrBlockNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "no active block for that IP"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "unblock failed"})
		return
	}
	c.JSON(http.StatusOK, record)
}

// ListAllowed returns allowlist entries; ?active=true limits to live entries.
func (h *SecurityHandler) ListAllowed(c *gin.Context) {
	entries, err := h.guard.Allowlist.List(c.Query("active") == "true")
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list allowed IPs"})
		return
	}
	c.JSON(http.StatusOK, entries)
}

type allowRequest struct {
	IPAddress   string `json:"ip_address" binding:"required"`
	Description string `json:"description"`
	ExpiresIn   string `json:"expires_in"`
}

// Allow adds an identifier to the allowlist.
func (h *SecurityHandler) Allow(c *gin.Context) {
	var req allowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ip_address is required"})
		return
	}

	var expiresAt *time.Time
	if req.ExpiresIn != "" {
		d, err := time.ParseDuration(req.ExpiresIn)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "expires_in must be a duration like 24h"})
			return
		}
		t := time.Now().Add(d)
		expiresAt = &t
	}

	addedBy := "admin"
	if claims := middleware.GetClaims(c); claims != nil {
		addedBy = claims.Email
	}

	entry, err := h.guard.Allowlist.Allow(req.IPAddress, services.AllowOptions{
		Description: req.Description,
		AddedBy:     addedBy,
		ExpiresAt:   expiresAt,
	})
	if errors.Is(err, services.ErrEmptyIP) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ip_address is required"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "allow failed"})
		return
	}
	c.JSON(http.StatusCreated, entry)
}

// RemoveAllowed deactivates an allowlist entry.
func (h *SecurityHandler) RemoveAllowed(c *gin.Context) {
	entry, err := h.guard.Allowlist.Remove(c.Param("ip"))
	if errors.Is(err, services.ErrAllowNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "no active allowlist entry for that IP"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "remove failed"})
		return
	}
	c.JSON(http.StatusOK, entry)
}

// Logs returns recent security log entries with optional filters.
func (h *SecurityHandler) Logs(c *gin.Context) {
	if ip := c.Query("ip"); ip != "" {
		entries, err := h.guard.SecLog.ByIP(ip, intQuery(c, "limit", 50))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read security log"})
			return
		}
		c.JSON(http.StatusOK, entries)
		return
	}

	entries, err := h.guard.SecLog.Filtered(c.Query("severity"), c.Query("action"), intQuery(c, "limit", 100))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read security log"})
		return
	}
	c.JSON(http.StatusOK, entries)
}

// Stats returns security log aggregates for the trailing window.
func (h *SecurityHandler) Stats(c *gin.Context) {
	stats, err := h.guard.SecLog.StatsSince(intQuery(c, "days", 7))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to compute security stats"})
		return
	}
	c.JSON(http.StatusOK, stats)
}

// BotStats returns bot detection aggregates for the trailing window.
func (h *SecurityHandler) BotStats(c *gin.Context) {
	stats, err := h.guard.SecLog.BotStatsSince(intQuery(c, "days", 7))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to compute bot stats"})
		return
	}
	c.JSON(http.StatusOK, stats)
}

// SpamCheck reports the live request ledger counts for an identifier.
func (h *SecurityHandler) SpamCheck(c *gin.Context) {
	ip := c.Param("ip")
	counts := h.guard.Ledger.Counts(ip)
	c.JSON(http.StatusOK, gin.H{
		"ip_address": ip,
		"counts":     counts,
		"spam":       counts.Minute > h.guard.Security.SpamThreshold,
	})
}

// EdgeStatus reports whether edge firewall sync is configured.
func (h *SecurityHandler) EdgeStatus(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"configured": h.guard.Edge.Configured()})
}

type edgeBlockRequest struct {
	IPAddress string `json:"ip_address" binding:"required"`
	Note      string `json:"note"`
}

// EdgeBlock creates an edge firewall rule directly, without touching the
// local blocklist.
func (h *SecurityHandler) EdgeBlock(c *gin.Context) {
	var req edgeBlockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ip_address is required"})
		return
	}

	resp, err := h.guard.Edge.BlockIP(c.Request.Context(), req.IPAddress, req.Note)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "edge firewall request failed"})
		return
	}
	if resp == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "edge firewall is not configured"})
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// EdgeUnblock deletes an edge firewall rule by ID.
func (h *SecurityHandler) EdgeUnblock(c *gin.Context) {
	resp, err := h.guard.Edge.UnblockRule(c.Request.Context(), c.Param("rule_id"))
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "edge firewall request failed"})
		return
	}
	if resp == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "edge firewall is not configured"})
		return
	}
	c.JSON(http.StatusOK, resp)
}
