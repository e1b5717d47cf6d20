package models

import (
	"time"

	"gorm.io/datatypes"
)

// Stored step statuses (user-driven transitions). The displayed status may
// additionally be "overdue", which is derived and never persisted.
const (
	StepStatusPending    = "pending"
	StepStatusInProgress = "in_progress"
	StepStatusCompleted  = "completed"
	StepStatusOnHold     = "on_hold"

	StepStatusOverdue = "overdue" // computed only
)

// ProjectStep represents the project_steps table. Steps are created when a
// project's workflow template is instantiated and are owned by their project.
type ProjectStep struct {
	StepID       uint                        `gorm:"primaryKey;column:step_id" json:"step_id"`
	ProjectID    uint                        `gorm:"column:project_id;uniqueIndex:ux_project_step_number" json:"project_id"`
	StepNumber   int                         `gorm:"column:step_number;uniqueIndex:ux_project_step_number" json:"step_number"`
	StepName     string                      `gorm:"column:step_name" json:"step_name"`
	Description  *string                     `gorm:"column:description" json:"description"`
	SLADays      int                         `gorm:"column:sla_days" json:"sla_days"`
	PlannedStart *time.Time                  `gorm:"column:planned_start" json:"planned_start"`
	PlannedEnd   *time.Time                  `gorm:"column:planned_end" json:"planned_end"`
	ActualStart  *time.Time                  `gorm:"column:actual_start" json:"actual_start"`
	ActualEnd    *time.Time                  `gorm:"column:actual_end" json:"actual_end"`
	Status       string                      `gorm:"column:status" json:"status"`
	IsCritical   bool                        `gorm:"column:is_critical" json:"is_critical"`
	Notes        *string                     `gorm:"column:notes" json:"notes"`
	ImageURLs    datatypes.JSONSlice[string] `gorm:"column:image_urls" json:"image_urls"`
	DocumentURLs datatypes.JSONSlice[string] `gorm:"column:document_urls" json:"document_urls"`
	CreatedAt    time.Time                   `gorm:"column:created_at" json:"created_at"`
	UpdatedAt    *time.Time                  `gorm:"column:updated_at" json:"updated_at"`
}

// TableName overrides the table name for ProjectStep
func (ProjectStep) TableName() string {
	return "project_steps"
}
