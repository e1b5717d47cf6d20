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
	"gorm.io/gorm"
)

type CreateProjectRequest struct {
	ProjectName       string           `json:"project_name" binding:"required"`
	Description       string           `json:"description"`
	DepartmentID      uint             `json:"department_id" binding:"required"`
	ProcurementMethod string           `json:"procurement_method" binding:"required,oneof=public_invitation selection specific"`
	Budget            float64          `json:"budget" binding:"required,gt=0"`
	BudgetYear        int              `json:"budget_year"` // Gregorian; clients convert from BE before sending
	StartDate         string           `json:"start_date" binding:"required"`
	Location          *models.GeoPoint `json:"location"`
}

type UpdateProjectRequest struct {
	ProjectName   *string          `json:"project_name"`
	Description   *string          `json:"description"`
	Budget        *float64         `json:"budget"`
	Status        *string          `json:"status"`
	ActualEndDate *string          `json:"actual_end_date"`
	Location      *models.GeoPoint `json:"location"`
}

// projectResponse augments a stored project with its derived view. Every
// status badge on every screen comes from here; no screen recomputes it.
func projectResponse(view *services.ProjectView) gin.H {
	p := view.Project
	return gin.H{
		"project":             p,
		"effective_status":    view.EffectiveStatus,
		"progress_percentage": view.ProgressPercentage,
		"budget_year_be":      utils.ToBuddhistYear(p.BudgetYear),
	}
}

// GetProjects lists projects with derived status and progress
func GetProjects(c *gin.Context) {
	query := config.DB.
		Preload("Steps", func(db *gorm.DB) *gorm.DB {
			return db.Order("step_number ASC")
		}).
		Preload("Department")

	if departmentID := c.Query("department_id"); departmentID != "" {
		query = query.Where("department_id = ?", departmentID)
	}
	if year := c.Query("budget_year"); year != "" {
		query = query.Where("budget_year = ?", year)
	}

	var projects []models.Project
	if err := query.Order("created_at DESC").Find(&projects).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch projects"})
		return
	}

	now := time.Now()
	statusFilter := c.Query("status")

	results := make([]gin.H, 0, len(projects))
	for i := range projects {
		view, err := services.AggregateProject(&projects[i], projects[i].Steps, now)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		if statusFilter != "" && view.EffectiveStatus != statusFilter {
			continue
		}
		results = append(results, projectResponse(view))
	}

	c.JSON(http.StatusOK, gin.H{
		"projects": results,
		"total":    len(results),
	})
}

// GetProject returns one project with derived step states
func GetProject(c *gin.Context) {
	var project models.Project
	if err := config.DB.
		Preload("Steps", func(db *gorm.DB) *gorm.DB {
			return db.Order("step_number ASC")
		}).
		Preload("Department").
		First(&project, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Project not found"})
		return
	}

	view, err := services.AggregateProject(&project, project.Steps, time.Now())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	response := projectResponse(view)
	stepStates := make([]gin.H, 0, len(view.StepStates))
	for _, state := range view.StepStates {
		stepStates = append(stepStates, gin.H{
			"step":            state.Step,
			"computed_status": state.ComputedStatus,
			"delay_days":      state.DelayDays,
			"days_remaining":  state.DaysRemaining,
		})
	}
	response["steps"] = stepStates

	c.JSON(http.StatusOK, response)
}

// CreateProject creates a project and instantiates its workflow steps
func CreateProject(c *gin.Context) {
	var req CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	startDate, err := time.Parse("2006-01-02", req.StartDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "start_date must be YYYY-MM-DD"})
		return
	}

	if _, err := services.GetDepartmentByID(req.DepartmentID); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown department"})
		return
	}

	if req.Location != nil && !utils.ValidGeoPoint(req.Location.Type, req.Location.Coordinates) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "location must be a GeoJSON Point with two finite coordinates"})
		return
	}

	now := time.Now()
	budgetYear := req.BudgetYear
	if budgetYear == 0 {
		budgetYear = startDate.Year()
	}

	userID, _ := c.Get("userID")
	createdBy, _ := userID.(uint)

	project := models.Project{
		ProjectCode:       services.NewProjectCode(startDate.Year()),
		ProjectName:       utils.SanitizeInput(req.ProjectName),
		DepartmentID:      req.DepartmentID,
		ProcurementMethod: req.ProcurementMethod,
		Budget:            req.Budget,
		BudgetYear:        budgetYear,
		StartDate:         startDate,
		Status:            models.ProjectStatusDraft,
		CreatedBy:         &createdBy,
		CreatedAt:         now,
	}
	if req.Description != "" {
		desc := utils.SanitizeInput(req.Description)
		project.Description = &desc
	}
	if req.Location != nil {
		loc := datatypes.NewJSONType(*req.Location)
		project.Location = &loc
	}

	err = config.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&project).Error; err != nil {
			return err
		}
		steps, err := services.InstantiateWorkflow(tx, &project, now)
		if err != nil {
			return err
		}
		project.Steps = steps
		return nil
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create project"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"project": project,
	})
}

// UpdateProject applies a manual edit. A status change here is the explicit
// user-override path: it records intent and is never confused with the
// derived effective status.
func UpdateProject(c *gin.Context) {
	var req UpdateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var project models.Project
	if err := config.DB.First(&project, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Project not found"})
		return
	}

	if req.Status != nil {
		switch *req.Status {
		case models.ProjectStatusDraft, models.ProjectStatusInProgress, models.ProjectStatusCompleted,
			models.ProjectStatusCancelled, models.ProjectStatusOnHold:
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status"})
			return
		}
		project.Status = *req.Status
	}
	if req.ProjectName != nil {
		project.ProjectName = utils.SanitizeInput(*req.ProjectName)
	}
	if req.Description != nil {
		desc := utils.SanitizeInput(*req.Description)
		project.Description = &desc
	}
	if req.Budget != nil {
		if *req.Budget <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Budget must be positive"})
			return
		}
		project.Budget = *req.Budget
	}
	if req.ActualEndDate != nil {
		t, err := time.Parse("2006-01-02", *req.ActualEndDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "actual_end_date must be YYYY-MM-DD"})
			return
		}
		project.ActualEndDate = &t
	}
	if req.Location != nil {
		if !utils.ValidGeoPoint(req.Location.Type, req.Location.Coordinates) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "location must be a GeoJSON Point with two finite coordinates"})
			return
		}
		loc := datatypes.NewJSONType(*req.Location)
		project.Location = &loc
	}

	now := time.Now()
	project.UpdatedAt = &now

	if err := config.DB.Save(&project).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update project"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"project": project,
	})
}

// DeleteProject removes a project and its steps
func DeleteProject(c *gin.Context) {
	var project models.Project
	if err := config.DB.First(&project, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Project not found"})
		return
	}

	err := config.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("project_id = ?", project.ProjectID).Delete(&models.ProjectStep{}).Error; err != nil {
			return err
		}
		return tx.Delete(&project).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete project"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}
