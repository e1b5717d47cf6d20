package services

import (
	"testing"
	"time"

	"procurement-tracking-api/models"
)

func derive(t *testing.T, step *models.ProjectStep, now time.Time) *StepState {
	t.Helper()
	state, err := DeriveStepState(step, now)
	if err != nil {
		t.Fatalf("DeriveStepState returned error: %v", err)
	}
	return state
}

func TestClassifyDeadlineTiers(t *testing.T) {
	now := date(2024, time.February, 25)

	cases := []struct {
		name         string
		status       string
		plannedEnd   time.Time
		wantOK       bool
		wantType     string
		wantPriority string
	}{
		{"overdue", models.StepStatusInProgress, date(2024, time.February, 19), true, models.NotificationTypeOverdue, models.PriorityHigh},
		{"due in 2 days", models.StepStatusInProgress, date(2024, time.February, 27), true, models.NotificationTypeApproaching, models.PriorityMedium},
		{"due in 6 days", models.StepStatusPending, date(2024, time.March, 2), true, models.NotificationTypeApproaching, models.PriorityLow},
		{"due in 12 days", models.StepStatusPending, date(2024, time.March, 8), true, models.NotificationTypeWarning, models.PriorityLow},
		{"due in 30 days", models.StepStatusPending, date(2024, time.March, 26), false, "", ""},
		{"completed long overdue", models.StepStatusCompleted, date(2024, time.January, 1), false, "", ""},
		{"on hold past deadline", models.StepStatusOnHold, date(2024, time.January, 1), false, "", ""},
	}

	for _, tc := range cases {
		step := stepWithPlannedEnd(tc.status, tc.plannedEnd)
		step.StepName = tc.name
		alert, ok := ClassifyDeadline(derive(t, step, now))
		if ok != tc.wantOK {
			t.Fatalf("%s: classified=%v, want %v", tc.name, ok, tc.wantOK)
		}
		if !ok {
			continue
		}
		if alert.Type != tc.wantType {
			t.Fatalf("%s: type=%s, want %s", tc.name, alert.Type, tc.wantType)
		}
		if alert.Priority != tc.wantPriority {
			t.Fatalf("%s: priority=%s, want %s", tc.name, alert.Priority, tc.wantPriority)
		}
		if alert.Message == "" {
			t.Fatalf("%s: empty message", tc.name)
		}
	}
}

func candidateAt(t *testing.T, stepID uint, status string, plannedEnd, now time.Time, project *models.Project) stepCandidate {
	t.Helper()
	pe := plannedEnd
	step := &models.ProjectStep{StepID: stepID, StepName: "step", Status: status, PlannedEnd: &pe}
	return stepCandidate{State: derive(t, step, now), Project: project}
}

func TestPlanNotificationsOrdering(t *testing.T) {
	now := date(2024, time.February, 25)
	owner := uint(7)
	project := &models.Project{ProjectID: 1, ProjectName: "ปรับปรุงถนน", CreatedBy: &owner}

	candidates := []stepCandidate{
		// warning (low), deadline Mar 8
		candidateAt(t, 10, models.StepStatusPending, date(2024, time.March, 8), now, project),
		// approaching (medium), deadline Feb 27
		candidateAt(t, 11, models.StepStatusInProgress, date(2024, time.February, 27), now, project),
		// overdue (high), deadline Feb 19
		candidateAt(t, 12, models.StepStatusInProgress, date(2024, time.February, 19), now, project),
		// overdue (high) but later deadline Feb 22
		candidateAt(t, 13, models.StepStatusInProgress, date(2024, time.February, 22), now, project),
		// approaching (low), deadline Mar 2
		candidateAt(t, 14, models.StepStatusPending, date(2024, time.March, 2), now, project),
	}

	plan := planNotifications(candidates, map[alertKey]bool{}, now)
	if len(plan) != 5 {
		t.Fatalf("expected 5 planned notifications, got %d", len(plan))
	}

	wantStepOrder := []uint{12, 13, 11, 14, 10}
	for i, want := range wantStepOrder {
		if *plan[i].RelatedStepID != want {
			t.Fatalf("position %d: expected step %d, got %d", i, want, *plan[i].RelatedStepID)
		}
	}

	wantPriorities := []string{
		models.PriorityHigh, models.PriorityHigh,
		models.PriorityMedium,
		models.PriorityLow, models.PriorityLow,
	}
	for i, want := range wantPriorities {
		if plan[i].Priority != want {
			t.Fatalf("position %d: expected priority %s, got %s", i, want, plan[i].Priority)
		}
	}

	for _, n := range plan {
		if n.UserID != owner {
			t.Fatalf("notification addressed to %d, want project owner %d", n.UserID, owner)
		}
	}
}

func TestPlanNotificationsDeduplicatesUnread(t *testing.T) {
	now := date(2024, time.February, 25)
	owner := uint(7)
	project := &models.Project{ProjectID: 1, ProjectName: "โครงการ", CreatedBy: &owner}

	candidates := []stepCandidate{
		candidateAt(t, 20, models.StepStatusInProgress, date(2024, time.February, 19), now, project),
		candidateAt(t, 21, models.StepStatusInProgress, date(2024, time.February, 27), now, project),
	}

	first := planNotifications(candidates, map[alertKey]bool{}, now)
	if len(first) != 2 {
		t.Fatalf("expected 2 notifications on first pass, got %d", len(first))
	}

	// Simulate the first batch persisted and still unread.
	unread := make(map[alertKey]bool)
	for _, n := range first {
		unread[alertKey{StepID: *n.RelatedStepID, Type: n.Type}] = true
	}

	second := planNotifications(candidates, unread, now)
	if len(second) != 0 {
		t.Fatalf("unchanged conditions must not re-emit, got %d notifications", len(second))
	}
	if got := suppressedCount(candidates, unread); got != 2 {
		t.Fatalf("expected 2 suppressed, got %d", got)
	}
}

func TestPlanNotificationsEscalationEmitsNewType(t *testing.T) {
	owner := uint(7)
	project := &models.Project{ProjectID: 1, ProjectName: "โครงการ", CreatedBy: &owner}
	plannedEnd := date(2024, time.March, 1)

	// First scan: deadline 5 days out, approaching.
	early := date(2024, time.February, 25)
	firstPass := planNotifications([]stepCandidate{
		candidateAt(t, 30, models.StepStatusInProgress, plannedEnd, early, project),
	}, map[alertKey]bool{}, early)
	if len(firstPass) != 1 || firstPass[0].Type != models.NotificationTypeApproaching {
		t.Fatalf("expected one approaching notification, got %+v", firstPass)
	}

	unread := map[alertKey]bool{
		{StepID: 30, Type: models.NotificationTypeApproaching}: true,
	}

	// Later scan: deadline has passed. The overdue type is new, so the
	// unread approaching entry does not suppress it.
	late := date(2024, time.March, 5)
	secondPass := planNotifications([]stepCandidate{
		candidateAt(t, 30, models.StepStatusInProgress, plannedEnd, late, project),
	}, unread, late)
	if len(secondPass) != 1 {
		t.Fatalf("expected escalation to emit, got %d notifications", len(secondPass))
	}
	if secondPass[0].Type != models.NotificationTypeOverdue {
		t.Fatalf("expected overdue, got %s", secondPass[0].Type)
	}
	if secondPass[0].Priority != models.PriorityHigh {
		t.Fatalf("expected high priority, got %s", secondPass[0].Priority)
	}
}

func TestPlanNotificationsSkipsOwnerlessProjects(t *testing.T) {
	now := date(2024, time.February, 25)
	project := &models.Project{ProjectID: 2, ProjectName: "ไม่มีเจ้าของ"}

	plan := planNotifications([]stepCandidate{
		candidateAt(t, 40, models.StepStatusInProgress, date(2024, time.February, 19), now, project),
	}, map[alertKey]bool{}, now)
	if len(plan) != 0 {
		t.Fatalf("project without a creator must not notify, got %d", len(plan))
	}
}
