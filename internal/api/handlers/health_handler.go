package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/arsya371/apologyhub/internal/version"
)

// HealthHandler reports service liveness and version.
func HealthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"name":    version.Name,
		"version": version.Full(),
	})
}
