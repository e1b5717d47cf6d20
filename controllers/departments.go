package controllers

import (
	"net/http"
	"procurement-tracking-api/services"

	"github.com/gin-gonic/gin"
)

// GetDepartments returns the department reference list
func GetDepartments(c *gin.Context) {
	departments, err := services.GetDepartments()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch departments"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"departments": departments,
		"total":       len(departments),
	})
}
