package models

import (
	"time"

	"gorm.io/datatypes"
)

// Stored project statuses. Status is the user's last explicit intent;
// the effective status shown to clients is derived in services and may differ.
const (
	ProjectStatusDraft      = "draft"
	ProjectStatusInProgress = "in_progress"
	ProjectStatusCompleted  = "completed"
	ProjectStatusDelayed    = "delayed"
	ProjectStatusCancelled  = "cancelled"
	ProjectStatusOnHold     = "on_hold"
)

// Procurement methods (fixed acquisition routes)
const (
	MethodPublicInvitation = "public_invitation"
	MethodSelection        = "selection"
	MethodSpecific         = "specific"
)

// ProcurementMethods lists every valid procurement_method value.
var ProcurementMethods = []string{MethodPublicInvitation, MethodSelection, MethodSpecific}

// GeoPoint is a GeoJSON Point stored verbatim as {type, coordinates:[lng,lat]}.
type GeoPoint struct {
	Type        string     `json:"type"`
	Coordinates [2]float64 `json:"coordinates"`
}

// Project represents the projects table
type Project struct {
	ProjectID          uint                          `gorm:"primaryKey;column:project_id" json:"project_id"`
	ProjectCode        string                        `gorm:"column:project_code;uniqueIndex" json:"project_code"`
	ProjectName        string                        `gorm:"column:project_name" json:"project_name"`
	Description        *string                       `gorm:"column:description" json:"description"`
	DepartmentID       uint                          `gorm:"column:department_id" json:"department_id"`
	ProcurementMethod  string                        `gorm:"column:procurement_method" json:"procurement_method"`
	Budget             float64                       `gorm:"column:budget" json:"budget"`
	BudgetYear         int                           `gorm:"column:budget_year" json:"budget_year"` // Gregorian; UI converts to BE
	StartDate          time.Time                     `gorm:"column:start_date" json:"start_date"`
	ExpectedEndDate    time.Time                     `gorm:"column:expected_end_date" json:"expected_end_date"`
	ActualEndDate      *time.Time                    `gorm:"column:actual_end_date" json:"actual_end_date"`
	Status             string                        `gorm:"column:status" json:"status"`
	Location           *datatypes.JSONType[GeoPoint] `gorm:"column:location" json:"location,omitempty"`
	ProgressPercentage int                           `gorm:"column:progress_percentage" json:"progress_percentage"`
	CreatedBy          *uint                         `gorm:"column:created_by" json:"created_by"`
	CreatedAt          time.Time                     `gorm:"column:created_at" json:"created_at"`
	UpdatedAt          *time.Time                    `gorm:"column:updated_at" json:"updated_at"`

	Department Department    `gorm:"foreignKey:DepartmentID;references:DepartmentID" json:"department"`
	Steps      []ProjectStep `gorm:"foreignKey:ProjectID;references:ProjectID;constraint:OnDelete:CASCADE" json:"steps,omitempty"`
}

// TableName overrides the table name for Project
func (Project) TableName() string {
	return "projects"
}

// IsActive reports whether the project should still produce deadline signals.
func (p *Project) IsActive() bool {
	return p.Status != ProjectStatusCompleted && p.Status != ProjectStatusCancelled
}
