package services

import (
	"context"
	"fmt"
	"log"
	"sort"

	"procurement-tracking-api/models"

	"gorm.io/gorm"
)

// AttentionStep is a step augmented with its derived state for the
// "needs attention" listing.
type AttentionStep struct {
	Step           models.ProjectStep `json:"step"`
	ProjectID      uint               `json:"project_id"`
	ProjectCode    string             `json:"project_code"`
	ProjectName    string             `json:"project_name"`
	ComputedStatus string             `json:"computed_status"`
	DelayDays      int                `json:"delay_days"`
	DaysRemaining  int                `json:"days_remaining"`
	Type           string             `json:"type"`
	Priority       string             `json:"priority"`
}

// StepsNeedingAttention returns derived, classified steps ordered the same
// way notifications are delivered: most urgent first, then ascending
// deadline. The listing and the scan share ClassifyDeadline, so a step never
// shows a different urgency here than in the notification feed.
func (j *DeadlineScanJob) StepsNeedingAttention(ctx context.Context, limit int) ([]AttentionStep, error) {
	now := j.clock.Now()

	var projects []models.Project
	if err := j.db.WithContext(ctx).
		Preload("Steps", func(db *gorm.DB) *gorm.DB {
			return db.Where("status NOT IN ?", []string{models.StepStatusCompleted}).
				Order("step_number ASC")
		}).
		Where("status IN ?", []string{
			models.ProjectStatusDraft,
			models.ProjectStatusInProgress,
			models.ProjectStatusDelayed,
		}).
		Find(&projects).Error; err != nil {
		return nil, fmt.Errorf("failed to load active projects: %w", err)
	}

	var out []AttentionStep
	for i := range projects {
		project := &projects[i]
		for s := range project.Steps {
			step := project.Steps[s]

			state, err := DeriveStepState(&step, now)
			if err != nil {
				log.Printf("attention listing: %v", err)
				continue
			}
			alert, ok := ClassifyDeadline(state)
			if !ok {
				continue
			}

			out = append(out, AttentionStep{
				Step:           step,
				ProjectID:      project.ProjectID,
				ProjectCode:    project.ProjectCode,
				ProjectName:    project.ProjectName,
				ComputedStatus: state.ComputedStatus,
				DelayDays:      state.DelayDays,
				DaysRemaining:  state.DaysRemaining,
				Type:           alert.Type,
				Priority:       alert.Priority,
			})
		}
	}

	sort.SliceStable(out, func(a, b int) bool {
		ra, rb := models.PriorityRank(out[a].Priority), models.PriorityRank(out[b].Priority)
		if ra != rb {
			return ra < rb
		}
		return out[a].Step.PlannedEnd.Before(*out[b].Step.PlannedEnd)
	})

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
