package services

import (
	"testing"
	"time"

	"procurement-tracking-api/models"
)

func makeStep(number int, status string, plannedEnd time.Time) models.ProjectStep {
	pe := plannedEnd
	return models.ProjectStep{
		StepID:     uint(number),
		StepNumber: number,
		Status:     status,
		PlannedEnd: &pe,
	}
}

func TestAggregateProjectProgressPercentage(t *testing.T) {
	now := date(2024, time.April, 1)
	future := date(2024, time.June, 1)

	project := &models.Project{ProjectID: 1, Status: models.ProjectStatusInProgress}
	steps := []models.ProjectStep{
		makeStep(1, models.StepStatusCompleted, future),
		makeStep(2, models.StepStatusCompleted, future),
		makeStep(3, models.StepStatusInProgress, future),
	}

	view, err := AggregateProject(project, steps, now)
	if err != nil {
		t.Fatalf("AggregateProject returned error: %v", err)
	}
	if view.ProgressPercentage != 67 {
		t.Fatalf("expected 67%% progress, got %d", view.ProgressPercentage)
	}
	if view.EffectiveStatus != models.ProjectStatusInProgress {
		t.Fatalf("expected stored status passthrough, got %s", view.EffectiveStatus)
	}
}

func TestAggregateProjectNoStepsIsZeroProgress(t *testing.T) {
	project := &models.Project{ProjectID: 2, Status: models.ProjectStatusDraft}

	view, err := AggregateProject(project, nil, date(2024, time.April, 1))
	if err != nil {
		t.Fatalf("AggregateProject returned error: %v", err)
	}
	if view.ProgressPercentage != 0 {
		t.Fatalf("expected 0%% for project without steps, got %d", view.ProgressPercentage)
	}
	if view.EffectiveStatus != models.ProjectStatusDraft {
		t.Fatalf("expected draft, got %s", view.EffectiveStatus)
	}
}

func TestAggregateProjectDelayedWhenAnyStepOverdue(t *testing.T) {
	now := date(2024, time.April, 10)

	project := &models.Project{ProjectID: 3, Status: models.ProjectStatusInProgress}
	steps := []models.ProjectStep{
		makeStep(1, models.StepStatusCompleted, date(2024, time.March, 1)),
		makeStep(2, models.StepStatusInProgress, date(2024, time.April, 1)), // past deadline
		makeStep(3, models.StepStatusPending, date(2024, time.May, 1)),
	}

	view, err := AggregateProject(project, steps, now)
	if err != nil {
		t.Fatalf("AggregateProject returned error: %v", err)
	}
	if view.EffectiveStatus != models.ProjectStatusDelayed {
		t.Fatalf("expected delayed, got %s", view.EffectiveStatus)
	}
}

func TestAggregateProjectCancelledWins(t *testing.T) {
	now := date(2024, time.April, 10)

	project := &models.Project{ProjectID: 4, Status: models.ProjectStatusCancelled}
	steps := []models.ProjectStep{
		makeStep(1, models.StepStatusInProgress, date(2024, time.January, 1)), // long overdue
	}

	view, err := AggregateProject(project, steps, now)
	if err != nil {
		t.Fatalf("AggregateProject returned error: %v", err)
	}
	if view.EffectiveStatus != models.ProjectStatusCancelled {
		t.Fatalf("cancelled must win over step signals, got %s", view.EffectiveStatus)
	}
}

func TestAggregateProjectCompletedNeedsAllStepsAndActualEnd(t *testing.T) {
	now := date(2024, time.July, 1)
	actualEnd := date(2024, time.June, 20)

	steps := []models.ProjectStep{
		makeStep(1, models.StepStatusCompleted, date(2024, time.May, 1)),
		makeStep(2, models.StepStatusCompleted, date(2024, time.June, 1)),
	}

	// all steps done but no actual end date: stored status passes through
	project := &models.Project{ProjectID: 5, Status: models.ProjectStatusInProgress}
	view, err := AggregateProject(project, steps, now)
	if err != nil {
		t.Fatalf("AggregateProject returned error: %v", err)
	}
	if view.EffectiveStatus != models.ProjectStatusInProgress {
		t.Fatalf("expected in_progress without actual end date, got %s", view.EffectiveStatus)
	}
	if view.ProgressPercentage != 100 {
		t.Fatalf("expected 100%% progress, got %d", view.ProgressPercentage)
	}

	project.ActualEndDate = &actualEnd
	view, err = AggregateProject(project, steps, now)
	if err != nil {
		t.Fatalf("AggregateProject returned error: %v", err)
	}
	if view.EffectiveStatus != models.ProjectStatusCompleted {
		t.Fatalf("expected completed, got %s", view.EffectiveStatus)
	}
}

func TestAggregateProjectProgressBounds(t *testing.T) {
	now := date(2024, time.April, 1)
	future := date(2024, time.June, 1)

	for completed := 0; completed <= 7; completed++ {
		steps := make([]models.ProjectStep, 0, 7)
		for i := 0; i < 7; i++ {
			status := models.StepStatusPending
			if i < completed {
				status = models.StepStatusCompleted
			}
			steps = append(steps, makeStep(i+1, status, future))
		}

		project := &models.Project{ProjectID: 6, Status: models.ProjectStatusInProgress}
		view, err := AggregateProject(project, steps, now)
		if err != nil {
			t.Fatalf("AggregateProject returned error: %v", err)
		}
		if view.ProgressPercentage < 0 || view.ProgressPercentage > 100 {
			t.Fatalf("progress out of bounds: %d", view.ProgressPercentage)
		}
		if completed == 7 && view.ProgressPercentage != 100 {
			t.Fatalf("all steps completed must be 100%%, got %d", view.ProgressPercentage)
		}
		if completed < 7 && view.ProgressPercentage == 100 {
			t.Fatalf("%d of 7 completed must not round to 100%%", completed)
		}
	}
}
