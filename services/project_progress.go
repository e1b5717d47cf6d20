package services

import (
	"context"
	"fmt"
	"math"
	"time"

	"procurement-tracking-api/config"
	"procurement-tracking-api/models"

	"gorm.io/gorm"
)

// ProjectView is the derived, read-time view of a project: its progress and
// the status clients should display. The stored project status is the user's
// last explicit intent and is never overwritten by this rollup.
type ProjectView struct {
	Project            *models.Project
	ProgressPercentage int
	EffectiveStatus    string
	StepStates         []*StepState
}

// AggregateProject rolls a project's steps into progress and an effective
// status. Rules:
//   - cancelled wins over every step-derived signal
//   - completed when every step is completed and the actual end date is set
//   - delayed when any step is overdue and the project itself is not
//     completed or cancelled
//   - otherwise the stored status passes through unchanged
func AggregateProject(project *models.Project, steps []models.ProjectStep, now time.Time) (*ProjectView, error) {
	if project == nil {
		return nil, fmt.Errorf("project is nil")
	}

	view := &ProjectView{
		Project:    project,
		StepStates: make([]*StepState, 0, len(steps)),
	}

	completed := 0
	anyOverdue := false
	for i := range steps {
		state, err := DeriveStepState(&steps[i], now)
		if err != nil {
			return nil, fmt.Errorf("project %d: %w", project.ProjectID, err)
		}
		view.StepStates = append(view.StepStates, state)

		if state.ComputedStatus == models.StepStatusCompleted {
			completed++
		}
		if state.ComputedStatus == models.StepStatusOverdue {
			anyOverdue = true
		}
	}

	if len(steps) > 0 {
		view.ProgressPercentage = int(math.Round(100 * float64(completed) / float64(len(steps))))
	}

	switch {
	case project.Status == models.ProjectStatusCancelled:
		view.EffectiveStatus = models.ProjectStatusCancelled
	case len(steps) > 0 && completed == len(steps) && project.ActualEndDate != nil:
		view.EffectiveStatus = models.ProjectStatusCompleted
	case anyOverdue && project.Status != models.ProjectStatusCompleted:
		view.EffectiveStatus = models.ProjectStatusDelayed
	default:
		view.EffectiveStatus = project.Status
	}

	return view, nil
}

// RefreshProjectProgress recomputes and persists progress_percentage after a
// step transition. It is the only writer of that column; every other caller
// gets progress through AggregateProject at read time.
func RefreshProjectProgress(ctx context.Context, db *gorm.DB, projectID uint, clock Clock) (*ProjectView, error) {
	if db == nil {
		db = config.DB
	}
	if clock == nil {
		clock = SystemClock()
	}

	var project models.Project
	if err := db.WithContext(ctx).First(&project, projectID).Error; err != nil {
		return nil, err
	}

	var steps []models.ProjectStep
	if err := db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("step_number ASC").
		Find(&steps).Error; err != nil {
		return nil, err
	}

	view, err := AggregateProject(&project, steps, clock.Now())
	if err != nil {
		return nil, err
	}

	if view.ProgressPercentage != project.ProgressPercentage {
		if err := db.WithContext(ctx).Model(&models.Project{}).
			Where("project_id = ?", projectID).
			Update("progress_percentage", view.ProgressPercentage).Error; err != nil {
			return nil, err
		}
		project.ProgressPercentage = view.ProgressPercentage
	}

	return view, nil
}
