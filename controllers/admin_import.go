package controllers

import (
	"errors"
	"fmt"
	"net/http"

	"procurement-tracking-api/models"
	"procurement-tracking-api/services"

	"github.com/gin-gonic/gin"
)

type ImportProjectsRequest struct {
	Rows []services.ImportRow `json:"rows" binding:"required"`
	// ReplaceAll deletes existing non-completed projects first. Because that
	// is irreversible, ConfirmReplace must also be set; replace is never the
	// silent default.
	ReplaceAll     bool `json:"replace_all"`
	ConfirmReplace bool `json:"confirm_replace"`
}

// AdminImportProjects reconciles an externally parsed project batch. The
// spreadsheet itself is parsed upstream; this endpoint receives rows.
func AdminImportProjects(c *gin.Context) {
	roleID, ok := c.Get("roleID")
	if !ok || roleID.(int) != models.RoleAdmin {
		c.JSON(http.StatusForbidden, gin.H{"error": "Admin access required"})
		return
	}

	var req ImportProjectsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ข้อมูลนำเข้าไม่ถูกต้อง"})
		return
	}

	if len(req.Rows) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ไม่มีข้อมูลสำหรับนำเข้า"})
		return
	}

	if req.ReplaceAll && !req.ConfirmReplace {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "การแทนที่ข้อมูลทั้งหมดต้องยืนยันด้วย confirm_replace",
		})
		return
	}

	var createdBy *uint
	if userID, ok := c.Get("userID"); ok {
		if id, ok := userID.(uint); ok {
			createdBy = &id
		}
	}

	summary, err := services.NewProjectImportService(nil).
		Reconcile(c.Request.Context(), req.Rows, req.ReplaceAll, createdBy)
	if err != nil {
		if errors.Is(err, services.ErrTooManyImportRows) {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": fmt.Sprintf("นำเข้าได้สูงสุด %d รายการต่อครั้ง", services.MaxImportRows),
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "เกิดข้อผิดพลาดระหว่างนำเข้าโครงการ"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"message":  fmt.Sprintf("นำเข้าโครงการสำเร็จ %d รายการ", summary.Imported),
		"imported": summary.Imported,
		"skipped":  summary.Skipped,
		"failed":   summary.Failed,
		"errors":   summary.Errors,
	})
}
