package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"procurement-tracking-api/config"
	"procurement-tracking-api/models"
	"procurement-tracking-api/utils"

	"gorm.io/gorm"
)

var ErrDeadlineScanAlreadyRunning = errors.New("deadline scan already running")

// DefaultScanInterval matches the reference polling cadence.
const DefaultScanInterval = 5 * time.Minute

const deadlineScanLockName = "procurement_deadline_scan"

// DeadlineAlert is the classification of one step's deadline proximity.
type DeadlineAlert struct {
	Type     string
	Priority string
	Message  string
}

// ClassifyDeadline maps a derived step state onto a notification tier.
// Returns false when the step needs no notification. Completed and on-hold
// states never classify; callers filter inactive parent projects.
func ClassifyDeadline(state *StepState) (*DeadlineAlert, bool) {
	if state == nil {
		return nil, false
	}
	switch state.ComputedStatus {
	case models.StepStatusCompleted, models.StepStatusOnHold:
		return nil, false
	}

	step := state.Step
	if state.ComputedStatus == models.StepStatusOverdue && state.DelayDays > 0 {
		return &DeadlineAlert{
			Type:     models.NotificationTypeOverdue,
			Priority: models.PriorityHigh,
			Message: fmt.Sprintf("ขั้นตอน \"%s\" เกินกำหนดมาแล้ว %d วัน (กำหนดเสร็จ %s)",
				step.StepName, state.DelayDays, utils.FormatThaiDatePtr(step.PlannedEnd)),
		}, true
	}

	remaining := state.DaysRemaining
	switch {
	case remaining <= 7:
		priority := models.PriorityLow
		if remaining <= 3 {
			priority = models.PriorityMedium
		}
		return &DeadlineAlert{
			Type:     models.NotificationTypeApproaching,
			Priority: priority,
			Message: fmt.Sprintf("ขั้นตอน \"%s\" ใกล้ถึงกำหนดในอีก %d วัน (กำหนดเสร็จ %s)",
				step.StepName, remaining, utils.FormatThaiDatePtr(step.PlannedEnd)),
		}, true
	case remaining <= 14:
		return &DeadlineAlert{
			Type:     models.NotificationTypeWarning,
			Priority: models.PriorityLow,
			Message: fmt.Sprintf("ขั้นตอน \"%s\" จะถึงกำหนดใน %d วัน (กำหนดเสร็จ %s)",
				step.StepName, remaining, utils.FormatThaiDatePtr(step.PlannedEnd)),
		}, true
	}

	return nil, false
}

type alertKey struct {
	StepID uint
	Type   string
}

// stepCandidate pairs a derived state with its parent project for planning.
type stepCandidate struct {
	State   *StepState
	Project *models.Project
}

// planNotifications classifies the candidates, drops pairs that already have
// an unread notification of the same type (a rescan of an unchanged condition
// must not duplicate), and orders the remainder most urgent first, then by
// ascending deadline.
func planNotifications(candidates []stepCandidate, unread map[alertKey]bool, createdAt time.Time) []models.Notification {
	type planned struct {
		notification models.Notification
		rank         int
		deadline     time.Time
	}

	var plan []planned
	for _, cand := range candidates {
		alert, ok := ClassifyDeadline(cand.State)
		if !ok {
			continue
		}

		step := cand.State.Step
		if unread[alertKey{StepID: step.StepID, Type: alert.Type}] {
			continue
		}
		if cand.Project.CreatedBy == nil {
			continue
		}

		projectID := cand.Project.ProjectID
		stepID := step.StepID
		plan = append(plan, planned{
			notification: models.Notification{
				UserID:           *cand.Project.CreatedBy,
				Type:             alert.Type,
				Priority:         alert.Priority,
				Message:          fmt.Sprintf("[%s] %s", cand.Project.ProjectName, alert.Message),
				RelatedProjectID: &projectID,
				RelatedStepID:    &stepID,
				CreatedAt:        createdAt,
			},
			rank:     models.PriorityRank(alert.Priority),
			deadline: *step.PlannedEnd,
		})
	}

	sort.SliceStable(plan, func(i, j int) bool {
		if plan[i].rank != plan[j].rank {
			return plan[i].rank < plan[j].rank
		}
		return plan[i].deadline.Before(plan[j].deadline)
	})

	out := make([]models.Notification, 0, len(plan))
	for _, p := range plan {
		out = append(out, p.notification)
	}
	return out
}

// DeadlineScanSummary reports one scan pass.
type DeadlineScanSummary struct {
	StepsScanned int `json:"steps_scanned"`
	Emitted      int `json:"emitted"`
	Deduplicated int `json:"deduplicated"`
	Errors       int `json:"errors"`
}

// DeadlineScanJob walks active steps on a timer and emits deduplicated
// deadline notifications. A scan is single-flight: a MySQL named lock
// serializes runs across every process.
type DeadlineScanJob struct {
	db    *gorm.DB
	clock Clock
}

func NewDeadlineScanJob(db *gorm.DB) *DeadlineScanJob {
	if db == nil {
		db = config.DB
	}
	return &DeadlineScanJob{db: db, clock: SystemClock()}
}

// WithClock substitutes the scan's time source.
func (j *DeadlineScanJob) WithClock(clock Clock) *DeadlineScanJob {
	j.clock = clock
	return j
}

// Run performs one scan pass.
func (j *DeadlineScanJob) Run(ctx context.Context) (*DeadlineScanSummary, error) {
	release, err := j.acquireLock(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		if relErr := release(); relErr != nil {
			log.Printf("failed to release deadline scan lock: %v", relErr)
		}
	}()

	now := j.clock.Now()
	summary := &DeadlineScanSummary{}

	// Projects still producing deadline signals. An on-hold project pauses
	// its whole workflow, so it is excluded along with completed/cancelled.
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

	var candidates []stepCandidate
	var stepIDs []uint
	for i := range projects {
		project := &projects[i]
		for s := range project.Steps {
			step := &project.Steps[s]
			summary.StepsScanned++

			state, err := DeriveStepState(step, now)
			if err != nil {
				log.Printf("deadline scan: %v", err)
				summary.Errors++
				continue
			}
			candidates = append(candidates, stepCandidate{State: state, Project: project})
			stepIDs = append(stepIDs, step.StepID)
		}
	}

	unread, err := j.loadUnread(ctx, stepIDs)
	if err != nil {
		return nil, err
	}

	notifications := planNotifications(candidates, unread, now)
	summary.Deduplicated = suppressedCount(candidates, unread)

	var highPriority []models.Notification
	for i := range notifications {
		n := &notifications[i]
		if err := j.insertWithRetry(ctx, n); err != nil {
			log.Printf("deadline scan: failed to create notification for step %d: %v", *n.RelatedStepID, err)
			summary.Errors++
			continue
		}
		summary.Emitted++
		if n.Priority == models.PriorityHigh {
			highPriority = append(highPriority, *n)
		}
	}

	j.emailHighPriority(ctx, highPriority)

	return summary, nil
}

// Start runs the scan loop until the context is cancelled. A pass that finds
// another scan in flight is skipped, not queued.
func (j *DeadlineScanJob) Start(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultScanInterval
	}

	run := func() {
		summary, err := j.Run(ctx)
		switch {
		case errors.Is(err, ErrDeadlineScanAlreadyRunning):
			log.Println("deadline scan skipped: previous scan still running")
		case err != nil:
			log.Printf("deadline scan failed: %v", err)
		default:
			log.Printf("deadline scan: %d steps, %d notifications emitted, %d deduplicated, %d errors",
				summary.StepsScanned, summary.Emitted, summary.Deduplicated, summary.Errors)
		}
	}

	run()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			run()
		}
	}
}

func (j *DeadlineScanJob) acquireLock(ctx context.Context) (func() error, error) {
	var ok int
	if err := j.db.WithContext(ctx).Raw("SELECT GET_LOCK(?, 0)", deadlineScanLockName).Scan(&ok).Error; err != nil {
		return nil, err
	}
	if ok != 1 {
		return nil, ErrDeadlineScanAlreadyRunning
	}

	return func() error {
		var released int
		return j.db.WithContext(ctx).Raw("SELECT RELEASE_LOCK(?)", deadlineScanLockName).Scan(&released).Error
	}, nil
}

func (j *DeadlineScanJob) loadUnread(ctx context.Context, stepIDs []uint) (map[alertKey]bool, error) {
	unread := make(map[alertKey]bool)
	if len(stepIDs) == 0 {
		return unread, nil
	}

	var rows []models.Notification
	if err := j.db.WithContext(ctx).
		Select("related_step_id, type").
		Where("related_step_id IN ? AND is_read = ?", stepIDs, false).
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to load unread notifications: %w", err)
	}

	for _, row := range rows {
		if row.RelatedStepID != nil {
			unread[alertKey{StepID: *row.RelatedStepID, Type: row.Type}] = true
		}
	}
	return unread, nil
}

// insertWithRetry retries a conflicting write once before giving up.
func (j *DeadlineScanJob) insertWithRetry(ctx context.Context, n *models.Notification) error {
	if err := j.db.WithContext(ctx).Create(n).Error; err == nil {
		return nil
	} else if ctx.Err() != nil {
		return err
	}
	return j.db.WithContext(ctx).Create(n).Error
}

// suppressedCount counts conditions that classified but already had an
// unread notification of the same type.
func suppressedCount(candidates []stepCandidate, unread map[alertKey]bool) int {
	count := 0
	for _, cand := range candidates {
		alert, ok := ClassifyDeadline(cand.State)
		if !ok || cand.Project.CreatedBy == nil {
			continue
		}
		if unread[alertKey{StepID: cand.State.Step.StepID, Type: alert.Type}] {
			count++
		}
	}
	return count
}

func (j *DeadlineScanJob) emailHighPriority(ctx context.Context, notifications []models.Notification) {
	if len(notifications) == 0 || !config.MailConfigured() {
		return
	}

	byUser := make(map[uint][]string)
	for _, n := range notifications {
		byUser[n.UserID] = append(byUser[n.UserID], n.Message)
	}

	for userID, messages := range byUser {
		var user models.User
		if err := j.db.WithContext(ctx).
			Where("user_id = ? AND delete_at IS NULL", userID).
			First(&user).Error; err != nil {
			continue
		}
		if user.Email == "" {
			continue
		}

		body := "<p>" + strings.Join(messages, "</p><p>") + "</p>"
		if err := config.SendMail([]string{user.Email}, "แจ้งเตือนโครงการเกินกำหนด", body); err != nil {
			log.Printf("deadline scan: failed to email user %d: %v", userID, err)
		}
	}
}
