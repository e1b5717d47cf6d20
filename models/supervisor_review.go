package models

import "time"

// Supervisor review types
const (
	ReviewTypeFeedback = "feedback"
	ReviewTypeConcern  = "concern"
	ReviewTypeApproval = "approval"
	ReviewTypeQuestion = "question"
)

// SupervisorReview represents the supervisor_reviews table, an append-only
// communication log between supervisors and project owners.
type SupervisorReview struct {
	ReviewID     uint      `gorm:"primaryKey;column:review_id" json:"review_id"`
	ProjectID    uint      `gorm:"column:project_id" json:"project_id"`
	SupervisorID uint      `gorm:"column:supervisor_id" json:"supervisor_id"`
	ReviewType   string    `gorm:"column:review_type" json:"review_type"`
	Priority     string    `gorm:"column:priority" json:"priority"`
	Message      string    `gorm:"column:message" json:"message"`
	CreatedAt    time.Time `gorm:"column:created_at" json:"created_at"`

	Project Project `gorm:"foreignKey:ProjectID;references:ProjectID" json:"project,omitempty"`
}

// TableName overrides the table name for SupervisorReview
func (SupervisorReview) TableName() string { return "supervisor_reviews" }
