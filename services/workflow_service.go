package services

import (
	"fmt"
	"time"

	"procurement-tracking-api/models"

	"gorm.io/gorm"
)

// defaultWorkflowTemplates seeds the fixed procurement sequence when the
// workflow_step_templates table is empty.
var defaultWorkflowTemplates = []models.WorkflowStepTemplate{
	{StepNumber: 1, StepName: "จัดทำร่างขอบเขตงาน (TOR)", SLADays: 15, IsCritical: true},
	{StepNumber: 2, StepName: "ขออนุมัติจัดซื้อจัดจ้าง", SLADays: 7},
	{StepNumber: 3, StepName: "ประกาศเชิญชวนผู้รับจ้าง", SLADays: 15},
	{StepNumber: 4, StepName: "พิจารณาผลและอนุมัติผู้ชนะ", SLADays: 10, IsCritical: true},
	{StepNumber: 5, StepName: "ลงนามสัญญา", SLADays: 7, IsCritical: true},
	{StepNumber: 6, StepName: "ดำเนินงานตามสัญญา", SLADays: 60},
	{StepNumber: 7, StepName: "ตรวจรับงาน", SLADays: 10, IsCritical: true},
	{StepNumber: 8, StepName: "เบิกจ่ายเงิน", SLADays: 15},
}

// LoadWorkflowTemplates returns the workflow template ordered by step number,
// falling back to the built-in sequence when none is configured.
func LoadWorkflowTemplates(tx *gorm.DB) ([]models.WorkflowStepTemplate, error) {
	var templates []models.WorkflowStepTemplate
	if err := tx.Order("step_number ASC").Find(&templates).Error; err != nil {
		return nil, fmt.Errorf("failed to load workflow templates: %w", err)
	}
	if len(templates) == 0 {
		templates = defaultWorkflowTemplates
	}
	return templates, nil
}

// LayoutPlannedWindows assigns sequential planned windows starting at the
// project start date, each window as long as the step's SLA.
func LayoutPlannedWindows(templates []models.WorkflowStepTemplate, start time.Time) []models.ProjectStep {
	steps := make([]models.ProjectStep, 0, len(templates))
	cursor := start
	for _, tpl := range templates {
		plannedStart := cursor
		plannedEnd := cursor.AddDate(0, 0, tpl.SLADays)
		steps = append(steps, models.ProjectStep{
			StepNumber:   tpl.StepNumber,
			StepName:     tpl.StepName,
			Description:  tpl.Description,
			SLADays:      tpl.SLADays,
			PlannedStart: &plannedStart,
			PlannedEnd:   &plannedEnd,
			Status:       models.StepStatusPending,
			IsCritical:   tpl.IsCritical,
		})
		cursor = plannedEnd
	}
	return steps
}

// InstantiateWorkflow creates the project's steps from the workflow template
// inside the caller's transaction and returns them. The project's expected
// end date, when unset, becomes the last planned window's end.
func InstantiateWorkflow(tx *gorm.DB, project *models.Project, now time.Time) ([]models.ProjectStep, error) {
	templates, err := LoadWorkflowTemplates(tx)
	if err != nil {
		return nil, err
	}

	steps := LayoutPlannedWindows(templates, project.StartDate)
	for i := range steps {
		steps[i].ProjectID = project.ProjectID
		steps[i].CreatedAt = now
	}

	if len(steps) > 0 {
		if err := tx.Create(&steps).Error; err != nil {
			return nil, fmt.Errorf("failed to create project steps: %w", err)
		}

		if project.ExpectedEndDate.IsZero() {
			last := steps[len(steps)-1].PlannedEnd
			if err := tx.Model(&models.Project{}).
				Where("project_id = ?", project.ProjectID).
				Update("expected_end_date", last).Error; err != nil {
				return nil, err
			}
			project.ExpectedEndDate = *last
		}
	}

	return steps, nil
}
