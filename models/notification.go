package models

import "time"

// Notification types emitted by the deadline scan
const (
	NotificationTypeOverdue     = "overdue"
	NotificationTypeApproaching = "approaching"
	NotificationTypeWarning     = "warning"
	NotificationTypeReview      = "review"
)

// Notification priorities
const (
	PriorityHigh   = "high"
	PriorityMedium = "medium"
	PriorityLow    = "low"
)

// Notification represents the notifications table. Notifications are an
// append-only log: the scan never retracts entries, it only stops emitting.
type Notification struct {
	NotificationID   uint       `gorm:"primaryKey;column:notification_id" json:"notification_id"`
	UserID           uint       `gorm:"column:user_id" json:"user_id"`
	Type             string     `gorm:"column:type" json:"type"`
	Priority         string     `gorm:"column:priority" json:"priority"`
	Message          string     `gorm:"column:message" json:"message"`
	RelatedProjectID *uint      `gorm:"column:related_project_id" json:"related_project_id,omitempty"`
	RelatedStepID    *uint      `gorm:"column:related_step_id" json:"related_step_id,omitempty"`
	IsRead           bool       `gorm:"column:is_read" json:"is_read"`
	CreatedAt        time.Time  `gorm:"column:created_at" json:"created_at"`
	UpdatedAt        *time.Time `gorm:"column:updated_at" json:"-"`
}

// TableName overrides the table name for Notification
func (Notification) TableName() string { return "notifications" }

// PriorityRank orders priorities most urgent first (high < medium < low).
func PriorityRank(priority string) int {
	switch priority {
	case PriorityHigh:
		return 0
	case PriorityMedium:
		return 1
	case PriorityLow:
		return 2
	default:
		return 3
	}
}
