package services

import (
	"errors"
	"fmt"
	"time"

	"procurement-tracking-api/models"
)

// ErrMissingPlannedEnd reports a step with no planned end date. Lateness is
// undecidable for such a step, so the condition is surfaced, never defaulted.
var ErrMissingPlannedEnd = errors.New("project step has no planned_end date")

// StepState is the derived view of a single step: the status actually shown
// to clients plus its delay magnitude. It is computed, never persisted.
type StepState struct {
	Step           *models.ProjectStep
	ComputedStatus string
	// DelayDays is the display value: days past planned_end, clamped to >= 0.
	DelayDays int
	// SignedDelay keeps the unclamped value for auditing (negative = early).
	SignedDelay int
	// DaysRemaining is days until planned_end for steps that are not yet late.
	DaysRemaining int
}

// IsLate reports whether the step is past its planned end.
func (s *StepState) IsLate() bool {
	return s.ComputedStatus == models.StepStatusOverdue && s.DelayDays > 0
}

// daysBetween returns whole days from a to b, truncated toward zero.
func daysBetween(a, b time.Time) int {
	return int(b.Sub(a).Hours() / 24)
}

// DeriveStepState computes a step's effective status and delay from its
// dates and the given instant. This is the single lateness rule in the
// system: the step badge, project rollup, dashboard counts and the deadline
// scan all go through it.
func DeriveStepState(step *models.ProjectStep, now time.Time) (*StepState, error) {
	if step == nil {
		return nil, errors.New("step is nil")
	}
	if step.PlannedEnd == nil {
		return nil, fmt.Errorf("step %d: %w", step.StepID, ErrMissingPlannedEnd)
	}

	plannedEnd := *step.PlannedEnd
	state := &StepState{Step: step}

	switch step.Status {
	case models.StepStatusCompleted:
		// An explicit completion wins over any date signal.
		state.ComputedStatus = models.StepStatusCompleted
		if step.ActualEnd != nil {
			state.SignedDelay = daysBetween(plannedEnd, *step.ActualEnd)
		}
		if state.SignedDelay > 0 {
			state.DelayDays = state.SignedDelay
		}
		return state, nil

	case models.StepStatusOnHold:
		// An explicit pause suppresses lateness signaling.
		state.ComputedStatus = models.StepStatusOnHold
		return state, nil
	}

	if now.After(plannedEnd) {
		state.ComputedStatus = models.StepStatusOverdue
		state.SignedDelay = daysBetween(plannedEnd, now)
		state.DelayDays = state.SignedDelay
		return state, nil
	}

	state.ComputedStatus = step.Status
	state.DaysRemaining = daysBetween(now, plannedEnd)
	state.SignedDelay = -state.DaysRemaining
	return state, nil
}
