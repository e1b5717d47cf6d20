package controllers

import (
	"net/http"
	"time"

	"procurement-tracking-api/config"
	"procurement-tracking-api/models"
	"procurement-tracking-api/services"
	"procurement-tracking-api/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"
)

type UpdateStepRequest struct {
	Status       *string   `json:"status"`
	ActualStart  *string   `json:"actual_start"`
	ActualEnd    *string   `json:"actual_end"`
	Notes        *string   `json:"notes"`
	ImageURLs    *[]string `json:"image_urls"`
	DocumentURLs *[]string `json:"document_urls"`
}

// GetProjectSteps returns a project's steps with derived state
func GetProjectSteps(c *gin.Context) {
	var steps []models.ProjectStep
	if err := config.DB.
		Where("project_id = ?", c.Param("id")).
		Order("step_number ASC").
		Find(&steps).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch steps"})
		return
	}

	now := time.Now()
	results := make([]gin.H, 0, len(steps))
	for i := range steps {
		state, err := services.DeriveStepState(&steps[i], now)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		results = append(results, gin.H{
			"step":            state.Step,
			"computed_status": state.ComputedStatus,
			"delay_days":      state.DelayDays,
			"days_remaining":  state.DaysRemaining,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"steps": results,
		"total": len(results),
	})
}

// UpdateProjectStep applies a user-driven step transition and refreshes the
// project's persisted progress through the central write-back path.
func UpdateProjectStep(c *gin.Context) {
	var req UpdateStepRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var step models.ProjectStep
	if err := config.DB.
		Where("project_id = ? AND step_id = ?", c.Param("id"), c.Param("step_id")).
		First(&step).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Step not found"})
		return
	}

	if req.Status != nil {
		switch *req.Status {
		case models.StepStatusPending, models.StepStatusInProgress,
			models.StepStatusCompleted, models.StepStatusOnHold:
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid step status"})
			return
		}
		step.Status = *req.Status

		// Explicit transitions stamp the actual dates when absent.
		now := time.Now()
		if *req.Status == models.StepStatusInProgress && step.ActualStart == nil {
			step.ActualStart = &now
		}
		if *req.Status == models.StepStatusCompleted && step.ActualEnd == nil {
			step.ActualEnd = &now
		}
	}
	if req.ActualStart != nil {
		t, err := time.Parse("2006-01-02", *req.ActualStart)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "actual_start must be YYYY-MM-DD"})
			return
		}
		step.ActualStart = &t
	}
	if req.ActualEnd != nil {
		t, err := time.Parse("2006-01-02", *req.ActualEnd)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "actual_end must be YYYY-MM-DD"})
			return
		}
		step.ActualEnd = &t
	}
	if req.Notes != nil {
		notes := utils.SanitizeInput(*req.Notes)
		step.Notes = &notes
	}
	if req.ImageURLs != nil {
		step.ImageURLs = datatypes.NewJSONSlice(*req.ImageURLs)
	}
	if req.DocumentURLs != nil {
		step.DocumentURLs = datatypes.NewJSONSlice(*req.DocumentURLs)
	}

	now := time.Now()
	step.UpdatedAt = &now

	if err := config.DB.Save(&step).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update step"})
		return
	}

	view, err := services.RefreshProjectProgress(c.Request.Context(), config.DB, step.ProjectID, nil)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to refresh project progress"})
		return
	}

	state, err := services.DeriveStepState(&step, now)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":             true,
		"step":                step,
		"computed_status":     state.ComputedStatus,
		"delay_days":          state.DelayDays,
		"progress_percentage": view.ProgressPercentage,
		"effective_status":    view.EffectiveStatus,
	})
}
