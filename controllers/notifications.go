package controllers

import (
	"net/http"
	"time"

	"procurement-tracking-api/config"
	"procurement-tracking-api/models"

	"github.com/gin-gonic/gin"
)

// GetMyNotifications returns the caller's notifications, most urgent first
func GetMyNotifications(c *gin.Context) {
	userID, _ := c.Get("userID")

	query := config.DB.Where("user_id = ?", userID)
	if c.Query("unread") == "1" {
		query = query.Where("is_read = ?", false)
	}

	var notifications []models.Notification
	if err := query.
		Order("FIELD(priority, 'high', 'medium', 'low'), created_at DESC").
		Limit(100).
		Find(&notifications).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch notifications"})
		return
	}

	var unreadCount int64
	config.DB.Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Count(&unreadCount)

	c.JSON(http.StatusOK, gin.H{
		"notifications": notifications,
		"total":         len(notifications),
		"unread_count":  unreadCount,
	})
}

// MarkNotificationRead marks one of the caller's notifications as read
func MarkNotificationRead(c *gin.Context) {
	userID, _ := c.Get("userID")

	var notification models.Notification
	if err := config.DB.
		Where("notification_id = ? AND user_id = ?", c.Param("id"), userID).
		First(&notification).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Notification not found"})
		return
	}

	now := time.Now()
	notification.IsRead = true
	notification.UpdatedAt = &now

	if err := config.DB.Save(&notification).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update notification"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// MarkAllNotificationsRead marks every unread notification of the caller as read
func MarkAllNotificationsRead(c *gin.Context) {
	userID, _ := c.Get("userID")

	now := time.Now()
	result := config.DB.Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Updates(map[string]interface{}{"is_read": true, "updated_at": now})
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update notifications"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"updated": result.RowsAffected,
	})
}
