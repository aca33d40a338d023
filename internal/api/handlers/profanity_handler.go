package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/arsya371/apologyhub/internal/services"
)

// ProfanityHandler manages the moderation word list.
type ProfanityHandler struct {
	moderation *services.ModerationService
}

func NewProfanityHandler(moderation *services.ModerationService) *ProfanityHandler {
	return &ProfanityHandler{moderation: moderation}
}

// RegisterRoutes registers the profanity admin endpoints.
func (h *ProfanityHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/profanity", h.List)
	router.POST("/profanity", h.Add)
	router.DELETE("/profanity/:word", h.Remove)
	router.POST("/profanity/check", h.Check)
}

// List returns the stored word list.
func (h *ProfanityHandler) List(c *gin.Context) {
	words, err := h.moderation.ListWords()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list words"})
		return
	}
	c.JSON(http.StatusOK, words)
}

type wordRequest struct {
	Word     string `json:"word" binding:"required"`
	Language string `json:"language"`
}

// Add inserts a word.
func (h *ProfanityHandler) Add(c *gin.Context) {
	var req wordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "word is required"})
		return
	}

	entry, err := h.moderation.AddWord(req.Word, req.Language)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to add word"})
		return
	}
	c.JSON(http.StatusCreated, entry)
}

// Remove deletes a word.
func (h *ProfanityHandler) Remove(c *gin.Context) {
	err := h.moderation.RemoveWord(c.Param("word"))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "word not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

type checkRequest struct {
	Content string `json:"content" binding:"required"`
}

// Check runs the moderation filter against arbitrary content.
func (h *ProfanityHandler) Check(c *gin.Context) {
	var req checkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "content is required"})
		return
	}

	result, err := h.moderation.Moderate(req.Content)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "moderation check failed"})
		return
	}

	masked, err := h.moderation.Mask(req.Content)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "moderation check failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"clean": result.Clean, "matches": result.Matches, "masked": masked})
}
