package services

import (
	"context"
	"log"
	"time"

	"procurement-tracking-api/config"
	"procurement-tracking-api/models"
	"procurement-tracking-api/utils"

	"gorm.io/gorm"
)

// DefaultBudgetBands are the dashboard's budget histogram boundaries in baht.
var DefaultBudgetBands = []float64{100000, 500000, 1000000, 5000000, 10000000}

// DefaultTrendMonths is the trailing window of the monthly trend chart.
const DefaultTrendMonths = 12

// MethodStat is the per-procurement-method slice of the portfolio.
type MethodStat struct {
	Count  int64   `json:"count"`
	Budget float64 `json:"budget"`
}

// DepartmentRollup summarizes one department's share of the portfolio.
type DepartmentRollup struct {
	DepartmentID   uint    `json:"department_id"`
	DepartmentName string  `json:"department_name"`
	Count          int64   `json:"count"`
	Budget         float64 `json:"budget"`
	Completed      int64   `json:"completed"`
	InProgress     int64   `json:"in_progress"`
	Delayed        int64   `json:"delayed"`
}

// BudgetBand is one bucket of the budget histogram. UpperBound is zero for
// the open-ended last band.
type BudgetBand struct {
	LowerBound float64 `json:"lower_bound"`
	UpperBound float64 `json:"upper_bound,omitempty"`
	Count      int64   `json:"count"`
}

// MonthBucket is one month of the trend chart, keyed "YYYY-MM".
type MonthBucket struct {
	Month  string  `json:"month"`
	Count  int64   `json:"count"`
	Budget float64 `json:"budget"`
}

// PortfolioStats is the dashboard summary shape.
type PortfolioStats struct {
	TotalProjects   int64                 `json:"total_projects"`
	StatusCounts    map[string]int64      `json:"status_counts"`
	MethodStats     map[string]MethodStat `json:"method_stats"`
	Departments     []DepartmentRollup    `json:"departments"`
	BudgetBands     []BudgetBand          `json:"budget_bands"`
	MonthlyTrend    []MonthBucket         `json:"monthly_trend"`
	TotalBudget     float64               `json:"total_budget"`
	TotalBudgetText string                `json:"total_budget_text"`
	CompletionRate  float64               `json:"completion_rate"`
	SkippedProjects int64                 `json:"skipped_projects,omitempty"`
}

// BuildPortfolioStats reduces the whole portfolio in a single pass. Each
// project's effective status comes from AggregateProject, so every chart
// agrees with the step badges and the notification feed. Projects whose
// steps violate a data invariant are counted in SkippedProjects rather than
// silently bucketed.
func BuildPortfolioStats(projects []models.Project, now time.Time, bands []float64, months int) *PortfolioStats {
	if months <= 0 {
		months = DefaultTrendMonths
	}

	stats := &PortfolioStats{
		StatusCounts: make(map[string]int64),
		MethodStats:  make(map[string]MethodStat),
		BudgetBands:  makeBudgetBands(bands),
		MonthlyTrend: makeMonthBuckets(now, months),
	}

	trendIndex := make(map[string]int, months)
	for i, bucket := range stats.MonthlyTrend {
		trendIndex[bucket.Month] = i
	}

	deptIndex := make(map[uint]int)
	var completedCount int64

	for i := range projects {
		p := &projects[i]

		view, err := AggregateProject(p, p.Steps, now)
		if err != nil {
			log.Printf("portfolio stats: skipping project %d: %v", p.ProjectID, err)
			stats.SkippedProjects++
			continue
		}

		stats.TotalProjects++
		stats.TotalBudget += p.Budget
		stats.StatusCounts[view.EffectiveStatus]++
		if view.EffectiveStatus == models.ProjectStatusCompleted {
			completedCount++
		}

		ms := stats.MethodStats[p.ProcurementMethod]
		ms.Count++
		ms.Budget += p.Budget
		stats.MethodStats[p.ProcurementMethod] = ms

		idx, ok := deptIndex[p.DepartmentID]
		if !ok {
			idx = len(stats.Departments)
			deptIndex[p.DepartmentID] = idx
			stats.Departments = append(stats.Departments, DepartmentRollup{
				DepartmentID:   p.DepartmentID,
				DepartmentName: p.Department.Name,
			})
		}
		dept := &stats.Departments[idx]
		dept.Count++
		dept.Budget += p.Budget
		switch view.EffectiveStatus {
		case models.ProjectStatusCompleted:
			dept.Completed++
		case models.ProjectStatusInProgress:
			dept.InProgress++
		case models.ProjectStatusDelayed:
			dept.Delayed++
		}

		stats.BudgetBands[bandIndex(bands, p.Budget)].Count++

		if ti, ok := trendIndex[p.StartDate.Format("2006-01")]; ok {
			stats.MonthlyTrend[ti].Count++
			stats.MonthlyTrend[ti].Budget += p.Budget
		}
	}

	if stats.TotalProjects > 0 {
		stats.CompletionRate = float64(completedCount) / float64(stats.TotalProjects)
	}
	stats.TotalBudgetText = utils.BahtText(stats.TotalBudget)

	return stats
}

func makeBudgetBands(bands []float64) []BudgetBand {
	out := make([]BudgetBand, len(bands)+1)
	for i, bound := range bands {
		out[i].UpperBound = bound
		if i > 0 {
			out[i].LowerBound = bands[i-1]
		}
	}
	if len(bands) > 0 {
		out[len(bands)].LowerBound = bands[len(bands)-1]
	}
	return out
}

func bandIndex(bands []float64, budget float64) int {
	for i, bound := range bands {
		if budget < bound {
			return i
		}
	}
	return len(bands)
}

// makeMonthBuckets lays out the trailing window oldest to newest, empty
// months included, the way the dashboard chart expects.
func makeMonthBuckets(now time.Time, months int) []MonthBucket {
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()).AddDate(0, -(months - 1), 0)
	buckets := make([]MonthBucket, 0, months)
	for i := 0; i < months; i++ {
		buckets = append(buckets, MonthBucket{Month: start.AddDate(0, i, 0).Format("2006-01")})
	}
	return buckets
}

// PortfolioStatsService loads the portfolio and reduces it for the dashboard.
type PortfolioStatsService struct {
	db    *gorm.DB
	clock Clock
	bands []float64
}

func NewPortfolioStatsService(db *gorm.DB) *PortfolioStatsService {
	if db == nil {
		db = config.DB
	}
	return &PortfolioStatsService{db: db, clock: SystemClock(), bands: DefaultBudgetBands}
}

// Stats loads every project with its steps preloaded (one query plus the
// preload, no per-chart recomputation) and builds the summary.
func (s *PortfolioStatsService) Stats(ctx context.Context) (*PortfolioStats, error) {
	var projects []models.Project
	if err := s.db.WithContext(ctx).
		Preload("Steps", func(db *gorm.DB) *gorm.DB {
			return db.Order("step_number ASC")
		}).
		Preload("Department").
		Find(&projects).Error; err != nil {
		return nil, err
	}

	return BuildPortfolioStats(projects, s.clock.Now(), s.bands, DefaultTrendMonths), nil
}
