package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/arsya371/apologyhub/internal/api/middleware"
	"github.com/arsya371/apologyhub/internal/guard"
	"github.com/arsya371/apologyhub/internal/services"
)

// ApologyHandler handles the public apology feed and the admin moderation
// surface.
type ApologyHandler struct {
	apologies  *services.ApologyService
	moderation *services.ModerationService
	settings   *services.SettingsService
	analytics  *services.AnalyticsService
	turnstile  *services.TurnstileService
	guard      *guard.Guard
}

func NewApologyHandler(
	apologies *services.ApologyService,
	moderation *services.ModerationService,
	settings *services.SettingsService,
	analytics *services.AnalyticsService,
	turnstile *services.TurnstileService,
	g *guard.Guard,
) *ApologyHandler {
	return &ApologyHandler{
		apologies:  apologies,
		moderation: moderation,
		settings:   settings,
		analytics:  analytics,
		turnstile:  turnstile,
		guard:      g,
	}
}

// RegisterPublicReadRoutes registers the anonymous read endpoints. The
// create endpoint is registered separately so it can carry the full
// admission pipeline.
func (h *ApologyHandler) RegisterPublicReadRoutes(router *gin.RouterGroup) {
	router.GET("/apologies", h.List)
	router.GET("/apologies/featured", h.Featured)
	router.GET("/apologies/recent", h.Recent)
	router.GET("/apologies/stats", h.Stats)
	router.GET("/apologies/:uuid", h.Get)
}

// RegisterAdminRoutes registers the moderation endpoints.
func (h *ApologyHandler) RegisterAdminRoutes(router *gin.RouterGroup) {
	router.GET("/apologies", h.AdminList)
	router.PUT("/apologies/:uuid", h.Update)
	router.DELETE("/apologies/:uuid", h.Delete)
	router.POST("/apologies/bulk-delete", h.BulkDelete)
}

type createApologyRequest struct {
	Content        string `json:"content" binding:"required"`
	ToWho          string `json:"to_who"`
	FromWho        string `json:"from_who"`
	TurnstileToken string `json:"turnstile_token"`
}

// Create accepts a new anonymous apology. The submission gate runs here, not
// in middleware, so over-limit attempts are counted against the same window
// they tried to consume.
func (h *ApologyHandler) Create(c *gin.Context) {
	if decision := h.guard.SubmissionGate(c); !decision.Allowed {
		c.JSON(decision.Status, decision.Body)
		return
	}

	var req createApologyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "content is required"})
		return
	}

	ok, err := h.turnstile.Verify(c.Request.Context(), req.TurnstileToken, c.ClientIP())
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "challenge verification unavailable"})
		return
	}
	if !ok {
		c.JSON(http.StatusForbidden, gin.H{"error": "challenge verification failed"})
		return
	}

	if h.settings.GetBool("moderation.enabled", true) {
		dirty, err := h.moderation.ContainsProfanity(req.Content)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "moderation check failed"})
			return
		}
		if dirty {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "content did not pass moderation"})
			return
		}
	}

	apology, err := h.apologies.Create(services.ApologyInput{
		Content:   req.Content,
		ToWho:     req.ToWho,
		FromWho:   req.FromWho,
		IPAddress: c.ClientIP(),
		MaxLength: h.settings.GetInt("apology.max_length", 500),
	})
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.analytics.RecordSubmission(); err != nil {
		middleware.GetRequestLogger(c).WithError(err).Warn("failed to record submission stat")
	}

	c.JSON(http.StatusCreated, apology)
}

// List returns a page of the public feed.
func (h *ApologyHandler) List(c *gin.Context) {
	filter := services.ApologyFilter{
		Search:    c.Query("search"),
		ToWho:     c.Query("to_who"),
		Page:      intQuery(c, "page", 1),
		PageSize:  intQuery(c, "page_size", 20),
		SortBy:    c.Query("sort_by"),
		SortOrder: c.Query("sort_order"),
	}

	apologies, pagination, err := h.apologies.List(filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list apologies"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"apologies": apologies, "pagination": pagination})
}

// Get returns one apology and counts the view.
func (h *ApologyHandler) Get(c *gin.Context) {
	apology, err := h.apologies.GetByUUID(c.Param("uuid"))
	if errors.Is(err, services.ErrApologyNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "apology not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "lookup failed"})
		return
	}

	if err := h.apologies.IncrementViews(apology.UUID); err == nil {
		apology.Views++
	}
	if err := h.analytics.RecordView(); err != nil {
		middleware.GetRequestLogger(c).WithError(err).Warn("failed to record view stat")
	}

	c.JSON(http.StatusOK, apology)
}

// Featured returns the most viewed apologies.
func (h *ApologyHandler) Featured(c *gin.Context) {
	apologies, err := h.apologies.Featured(intQuery(c, "limit", 6))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load featured apologies"})
		return
	}
	c.JSON(http.StatusOK, apologies)
}

// Recent returns the newest apologies.
func (h *ApologyHandler) Recent(c *gin.Context) {
	apologies, err := h.apologies.Recent(intQuery(c, "limit", 10))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load recent apologies"})
		return
	}
	c.JSON(http.StatusOK, apologies)
}

// Stats returns public feed totals.
func (h *ApologyHandler) Stats(c *gin.Context) {
	stats, err := h.apologies.Stats()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load stats"})
		return
	}
	c.JSON(http.StatusOK, stats)
}

// AdminList is the moderation view of the feed; same filters as List.
func (h *ApologyHandler) AdminList(c *gin.Context) {
	h.List(c)
}

type updateApologyRequest struct {
	Content *string `json:"content"`
	ToWho   *string `json:"to_who"`
	FromWho *string `json:"from_who"`
}

// Update applies admin edits to one apology.
func (h *ApologyHandler) Update(c *gin.Context) {
	var req updateApologyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	apology, err := h.apologies.Update(c.Param("uuid"), services.ApologyUpdate{
		Content:   req.Content,
		ToWho:     req.ToWho,
		FromWho:   req.FromWho,
		MaxLength: h.settings.GetInt("apology.max_length", 500),
	})
	if errors.Is(err, services.ErrApologyNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "apology not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, apology)
}

// Delete removes one apology.
func (h *ApologyHandler) Delete(c *gin.Context) {
	err := h.apologies.Delete(c.Param("uuid"))
	if errors.Is(err, services.ErrApologyNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "apology not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

type bulkDeleteRequest struct {
	UUIDs []string `json:"uuids" binding:"required"`
}

// BulkDelete removes a batch of apologies.
func (h *ApologyHandler) BulkDelete(c *gin.Context) {
	var req bulkDeleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "uuids are required"})
		return
	}

	deleted, err := h.apologies.BulkDelete(req.UUIDs)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "bulk delete failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": deleted})
}

func intQuery(c *gin.Context, key string, fallback int) int {
	raw := c.Query(key)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}
