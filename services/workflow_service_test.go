package services

import (
	"testing"
	"time"

	"procurement-tracking-api/models"
)

func TestLayoutPlannedWindowsSequential(t *testing.T) {
	start := date(2024, time.January, 10)
	steps := LayoutPlannedWindows(defaultWorkflowTemplates, start)

	if len(steps) != len(defaultWorkflowTemplates) {
		t.Fatalf("expected %d steps, got %d", len(defaultWorkflowTemplates), len(steps))
	}

	cursor := start
	for i, step := range steps {
		if step.StepNumber != i+1 {
			t.Fatalf("step %d: number=%d", i, step.StepNumber)
		}
		if step.Status != models.StepStatusPending {
			t.Fatalf("step %d: status=%s", i, step.Status)
		}
		if step.PlannedStart == nil || !step.PlannedStart.Equal(cursor) {
			t.Fatalf("step %d: planned_start=%v, want %v", i, step.PlannedStart, cursor)
		}
		wantEnd := cursor.AddDate(0, 0, step.SLADays)
		if step.PlannedEnd == nil || !step.PlannedEnd.Equal(wantEnd) {
			t.Fatalf("step %d: planned_end=%v, want %v", i, step.PlannedEnd, wantEnd)
		}
		cursor = wantEnd
	}

	// total window equals the sum of the SLAs
	totalDays := 0
	for _, tpl := range defaultWorkflowTemplates {
		totalDays += tpl.SLADays
	}
	if last := steps[len(steps)-1].PlannedEnd; !last.Equal(start.AddDate(0, 0, totalDays)) {
		t.Fatalf("last window ends at %v, want %v", last, start.AddDate(0, 0, totalDays))
	}
}

func TestLayoutPlannedWindowsEmptyTemplate(t *testing.T) {
	steps := LayoutPlannedWindows(nil, date(2024, time.January, 10))
	if len(steps) != 0 {
		t.Fatalf("expected no steps, got %d", len(steps))
	}
}

func TestDefaultWorkflowTemplatesOrdered(t *testing.T) {
	for i, tpl := range defaultWorkflowTemplates {
		if tpl.StepNumber != i+1 {
			t.Fatalf("template %d out of order: step_number=%d", i, tpl.StepNumber)
		}
		if tpl.SLADays <= 0 {
			t.Fatalf("template %d has non-positive SLA", i)
		}
		if tpl.StepName == "" {
			t.Fatalf("template %d has empty name", i)
		}
	}
}
