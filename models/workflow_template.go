package models

// WorkflowStepTemplate represents the workflow_step_templates table: the
// fixed sequence of procurement steps instantiated into project_steps when
// a project is created.
type WorkflowStepTemplate struct {
	TemplateID  uint    `gorm:"primaryKey;column:template_id" json:"template_id"`
	StepNumber  int     `gorm:"column:step_number;uniqueIndex" json:"step_number"`
	StepName    string  `gorm:"column:step_name" json:"step_name"`
	Description *string `gorm:"column:description" json:"description"`
	SLADays     int     `gorm:"column:sla_days" json:"sla_days"`
	IsCritical  bool    `gorm:"column:is_critical" json:"is_critical"`
}

// TableName overrides the table name for WorkflowStepTemplate
func (WorkflowStepTemplate) TableName() string {
	return "workflow_step_templates"
}
