package controllers

import (
	"net/http"
	"strconv"
	"time"

	"procurement-tracking-api/services"
	"procurement-tracking-api/utils"

	"github.com/gin-gonic/gin"
)

// GetDashboardStats returns the portfolio summary statistics
func GetDashboardStats(c *gin.Context) {
	stats, err := services.NewPortfolioStatsService(nil).Stats(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "Failed to build dashboard statistics",
		})
		return
	}

	now := time.Now()
	c.JSON(http.StatusOK, gin.H{
		"stats":           stats,
		"current_date":    now.Format("2006-01-02"),
		"current_date_th": utils.FormatThaiDate(now),
		"current_year_be": utils.ToBuddhistYear(now.Year()),
	})
}

// GetAttentionSteps returns derived steps needing attention, most urgent first
func GetAttentionSteps(c *gin.Context) {
	limit := 20
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = parsed
	}

	steps, err := services.NewDeadlineScanJob(nil).StepsNeedingAttention(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch attention steps"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"steps": steps,
		"total": len(steps),
	})
}
