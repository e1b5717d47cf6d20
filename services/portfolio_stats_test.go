package services

import (
	"testing"
	"time"

	"procurement-tracking-api/models"
)

func statsProject(id uint, deptID uint, status, method string, budget float64, start time.Time) models.Project {
	return models.Project{
		ProjectID:         id,
		ProjectName:       "โครงการทดสอบ",
		DepartmentID:      deptID,
		Department:        models.Department{DepartmentID: deptID, Name: "หน่วยงาน"},
		ProcurementMethod: method,
		Budget:            budget,
		Status:            status,
		StartDate:         start,
	}
}

func TestBuildPortfolioStatsCountsAndRates(t *testing.T) {
	now := date(2024, time.June, 15)
	start := date(2024, time.June, 1)
	actualEnd := date(2024, time.May, 30)

	completed := statsProject(1, 1, models.ProjectStatusCompleted, models.MethodSelection, 300000, start)
	completed.ActualEndDate = &actualEnd
	completed.Steps = []models.ProjectStep{makeStep(1, models.StepStatusCompleted, date(2024, time.May, 1))}

	running := statsProject(2, 1, models.ProjectStatusInProgress, models.MethodPublicInvitation, 2000000, start)
	running.Steps = []models.ProjectStep{makeStep(1, models.StepStatusInProgress, date(2024, time.July, 1))}

	// stored in_progress but a step is past its deadline
	late := statsProject(3, 2, models.ProjectStatusInProgress, models.MethodSelection, 800000, start)
	late.Steps = []models.ProjectStep{makeStep(1, models.StepStatusInProgress, date(2024, time.June, 1))}

	stats := BuildPortfolioStats([]models.Project{completed, running, late}, now, DefaultBudgetBands, DefaultTrendMonths)

	if stats.TotalProjects != 3 {
		t.Fatalf("expected 3 projects, got %d", stats.TotalProjects)
	}
	if stats.StatusCounts[models.ProjectStatusCompleted] != 1 {
		t.Fatalf("expected 1 completed, got %d", stats.StatusCounts[models.ProjectStatusCompleted])
	}
	if stats.StatusCounts[models.ProjectStatusDelayed] != 1 {
		t.Fatalf("expected overdue step to roll up as delayed, got %d", stats.StatusCounts[models.ProjectStatusDelayed])
	}
	if stats.StatusCounts[models.ProjectStatusInProgress] != 1 {
		t.Fatalf("expected 1 in_progress, got %d", stats.StatusCounts[models.ProjectStatusInProgress])
	}

	var statusTotal int64
	for _, c := range stats.StatusCounts {
		statusTotal += c
	}
	if statusTotal != stats.TotalProjects {
		t.Fatalf("status counts (%d) must sum to total (%d)", statusTotal, stats.TotalProjects)
	}

	if stats.CompletionRate != float64(1)/float64(3) {
		t.Fatalf("unexpected completion rate %f", stats.CompletionRate)
	}
	if stats.TotalBudget != 3100000 {
		t.Fatalf("expected total budget 3100000, got %f", stats.TotalBudget)
	}
	if stats.TotalBudgetText == "" {
		t.Fatalf("expected spelled-out budget text")
	}

	if stats.MethodStats[models.MethodSelection].Count != 2 {
		t.Fatalf("expected 2 selection projects, got %d", stats.MethodStats[models.MethodSelection].Count)
	}
	if stats.MethodStats[models.MethodSelection].Budget != 1100000 {
		t.Fatalf("expected selection budget 1100000, got %f", stats.MethodStats[models.MethodSelection].Budget)
	}
}

func TestBuildPortfolioStatsEmptyPortfolio(t *testing.T) {
	stats := BuildPortfolioStats(nil, date(2024, time.June, 15), DefaultBudgetBands, DefaultTrendMonths)
	if stats.TotalProjects != 0 {
		t.Fatalf("expected 0 projects, got %d", stats.TotalProjects)
	}
	if stats.CompletionRate != 0 {
		t.Fatalf("empty portfolio must not divide by zero, got %f", stats.CompletionRate)
	}
	if len(stats.MonthlyTrend) != DefaultTrendMonths {
		t.Fatalf("trend window must stay fixed, got %d buckets", len(stats.MonthlyTrend))
	}
}

func TestBuildPortfolioStatsDepartmentRollup(t *testing.T) {
	now := date(2024, time.June, 15)
	start := date(2024, time.June, 1)

	a1 := statsProject(1, 1, models.ProjectStatusInProgress, models.MethodSelection, 100000, start)
	a1.Steps = []models.ProjectStep{makeStep(1, models.StepStatusInProgress, date(2024, time.July, 1))}
	a2 := statsProject(2, 1, models.ProjectStatusInProgress, models.MethodSelection, 400000, start)
	a2.Steps = []models.ProjectStep{makeStep(1, models.StepStatusInProgress, date(2024, time.May, 1))} // overdue
	b1 := statsProject(3, 2, models.ProjectStatusDraft, models.MethodSpecific, 50000, start)

	stats := BuildPortfolioStats([]models.Project{a1, a2, b1}, now, DefaultBudgetBands, DefaultTrendMonths)

	if len(stats.Departments) != 2 {
		t.Fatalf("expected 2 departments, got %d", len(stats.Departments))
	}

	var deptA *DepartmentRollup
	for i := range stats.Departments {
		if stats.Departments[i].DepartmentID == 1 {
			deptA = &stats.Departments[i]
		}
	}
	if deptA == nil {
		t.Fatalf("department 1 missing from rollup")
	}
	if deptA.Count != 2 || deptA.Budget != 500000 {
		t.Fatalf("department 1: count=%d budget=%f", deptA.Count, deptA.Budget)
	}
	if deptA.InProgress != 1 || deptA.Delayed != 1 {
		t.Fatalf("department 1: in_progress=%d delayed=%d", deptA.InProgress, deptA.Delayed)
	}
}

func TestBuildPortfolioStatsBudgetBands(t *testing.T) {
	bands := []float64{100000, 500000}

	cases := []struct {
		budget float64
		want   int
	}{
		{50000, 0},
		{99999.99, 0},
		{100000, 1}, // boundary value belongs to the upper band
		{250000, 1},
		{500000, 2},
		{9000000, 2},
	}
	for _, tc := range cases {
		if got := bandIndex(bands, tc.budget); got != tc.want {
			t.Fatalf("budget %f: band %d, want %d", tc.budget, got, tc.want)
		}
	}

	made := makeBudgetBands(bands)
	if len(made) != 3 {
		t.Fatalf("expected 3 bands, got %d", len(made))
	}
	if made[2].LowerBound != 500000 || made[2].UpperBound != 0 {
		t.Fatalf("last band must be open-ended from 500000, got %+v", made[2])
	}
}

func TestMakeMonthBucketsWindow(t *testing.T) {
	buckets := makeMonthBuckets(date(2024, time.June, 15), 12)
	if len(buckets) != 12 {
		t.Fatalf("expected 12 buckets, got %d", len(buckets))
	}
	if buckets[0].Month != "2023-07" {
		t.Fatalf("expected window to open at 2023-07, got %s", buckets[0].Month)
	}
	if buckets[11].Month != "2024-06" {
		t.Fatalf("expected window to close at 2024-06, got %s", buckets[11].Month)
	}
}

func TestBuildPortfolioStatsSkipsBrokenProjects(t *testing.T) {
	now := date(2024, time.June, 15)
	start := date(2024, time.June, 1)

	broken := statsProject(1, 1, models.ProjectStatusInProgress, models.MethodSelection, 100000, start)
	broken.Steps = []models.ProjectStep{{StepID: 1, StepNumber: 1, Status: models.StepStatusInProgress}} // no planned_end

	ok := statsProject(2, 1, models.ProjectStatusDraft, models.MethodSelection, 100000, start)

	stats := BuildPortfolioStats([]models.Project{broken, ok}, now, DefaultBudgetBands, DefaultTrendMonths)
	if stats.TotalProjects != 1 {
		t.Fatalf("expected broken project excluded, total=%d", stats.TotalProjects)
	}
	if stats.SkippedProjects != 1 {
		t.Fatalf("expected 1 skipped project, got %d", stats.SkippedProjects)
	}
}
