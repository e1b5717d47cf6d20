package controllers

import (
	"fmt"
	"net/http"
	"time"

	"procurement-tracking-api/config"
	"procurement-tracking-api/models"
	"procurement-tracking-api/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type CreateReviewRequest struct {
	ReviewType string `json:"review_type" binding:"required,oneof=feedback concern approval question"`
	Priority   string `json:"priority" binding:"required,oneof=high medium low"`
	Message    string `json:"message" binding:"required"`
}

// CreateSupervisorReview appends a review to a project and notifies its owner
func CreateSupervisorReview(c *gin.Context) {
	var req CreateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var project models.Project
	if err := config.DB.First(&project, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Project not found"})
		return
	}

	userID, _ := c.Get("userID")
	supervisorID, _ := userID.(uint)

	now := time.Now()
	review := models.SupervisorReview{
		ProjectID:    project.ProjectID,
		SupervisorID: supervisorID,
		ReviewType:   req.ReviewType,
		Priority:     req.Priority,
		Message:      utils.SanitizeInput(req.Message),
		CreatedAt:    now,
	}

	err := config.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&review).Error; err != nil {
			return err
		}

		if project.CreatedBy == nil {
			return nil
		}

		projectID := project.ProjectID
		notification := models.Notification{
			UserID:           *project.CreatedBy,
			Type:             models.NotificationTypeReview,
			Priority:         req.Priority,
			Message:          fmt.Sprintf("[%s] มีความเห็นจากผู้กำกับดูแล: %s", project.ProjectName, review.Message),
			RelatedProjectID: &projectID,
			CreatedAt:        now,
		}
		return tx.Create(&notification).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create review"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"review":  review,
	})
}

// GetProjectReviews lists a project's supervisor reviews, newest first
func GetProjectReviews(c *gin.Context) {
	var reviews []models.SupervisorReview
	if err := config.DB.
		Where("project_id = ?", c.Param("id")).
		Order("created_at DESC").
		Find(&reviews).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch reviews"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"reviews": reviews,
		"total":   len(reviews),
	})
}
