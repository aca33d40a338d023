package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/arsya371/apologyhub/internal/services"
)

// AnalyticsHandler serves the admin dashboard aggregates.
type AnalyticsHandler struct {
	analytics *services.AnalyticsService
}

func NewAnalyticsHandler(analytics *services.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{analytics: analytics}
}

// RegisterRoutes registers the analytics admin endpoints.
func (h *AnalyticsHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/analytics", h.Overview)
	router.GET("/analytics/daily", h.Daily)
}

// Overview returns dashboard totals and the daily series.
func (h *AnalyticsHandler) Overview(c *gin.Context) {
	overview, err := h.analytics.Overview(intQuery(c, "days", 30))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to compute analytics"})
		return
	}
	c.JSON(http.StatusOK, overview)
}

// Daily returns the raw per-day counters.
func (h *AnalyticsHandler) Daily(c *gin.Context) {
	series, err := h.analytics.Series(intQuery(c, "days", 30))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load daily stats"})
		return
	}
	c.JSON(http.StatusOK, series)
}
