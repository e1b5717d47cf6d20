package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"procurement-tracking-api/config"
	"procurement-tracking-api/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MaxImportRows caps a single reconciliation batch. An over-cap batch is
// rejected before anything touches the database.
const MaxImportRows = 1000

var ErrTooManyImportRows = errors.New("import batch exceeds the row cap")

// ImportRow is one externally parsed spreadsheet row. OriginalNo carries the
// source row number for error reporting; zero means unknown.
type ImportRow struct {
	Name              string  `json:"name"`
	Description       string  `json:"description"`
	Budget            float64 `json:"budget"`
	DepartmentID      uint    `json:"department_id"`
	ProcurementMethod string  `json:"procurement_method"`
	OriginalNo        int     `json:"originalNo,omitempty"`
}

// ImportRowError records why one row was rejected, keyed by its source row number.
type ImportRowError struct {
	Row    int    `json:"row"`
	Reason string `json:"reason"`
}

// ImportSummary is the reconciliation result. Partial failure is a success
// shape: valid rows commit even when others fail validation.
type ImportSummary struct {
	Imported int              `json:"imported"`
	Skipped  int              `json:"skipped"`
	Failed   int              `json:"failed"`
	Errors   []ImportRowError `json:"errors"`
}

// ValidateImportRows checks every row independently against the known
// department set. One bad row never aborts the batch: failures are recorded
// with their source row number and processing continues. Rows duplicating an
// earlier row in the same batch (same name and department) are skipped, not
// failed.
func ValidateImportRows(rows []ImportRow, knownDepartments map[uint]struct{}) (accepted []ImportRow, skipped int, rowErrors []ImportRowError) {
	type batchKey struct {
		name         string
		departmentID uint
	}
	seen := make(map[batchKey]bool, len(rows))

	for i, row := range rows {
		rowNo := row.OriginalNo
		if rowNo == 0 {
			rowNo = i + 1
		}

		name := strings.TrimSpace(row.Name)
		switch {
		case name == "":
			rowErrors = append(rowErrors, ImportRowError{Row: rowNo, Reason: "ไม่ได้ระบุชื่อโครงการ"})
			continue
		case row.DepartmentID == 0:
			rowErrors = append(rowErrors, ImportRowError{Row: rowNo, Reason: "ไม่ได้ระบุหน่วยงาน"})
			continue
		case !validMethod(row.ProcurementMethod):
			rowErrors = append(rowErrors, ImportRowError{Row: rowNo, Reason: fmt.Sprintf("วิธีจัดซื้อจัดจ้างไม่ถูกต้อง: %s", row.ProcurementMethod)})
			continue
		case row.Budget <= 0:
			rowErrors = append(rowErrors, ImportRowError{Row: rowNo, Reason: "งบประมาณต้องมากกว่าศูนย์"})
			continue
		}

		if _, ok := knownDepartments[row.DepartmentID]; !ok {
			rowErrors = append(rowErrors, ImportRowError{Row: rowNo, Reason: fmt.Sprintf("ไม่พบหน่วยงานรหัส %d", row.DepartmentID)})
			continue
		}

		key := batchKey{name: name, departmentID: row.DepartmentID}
		if seen[key] {
			skipped++
			continue
		}
		seen[key] = true

		row.Name = name
		accepted = append(accepted, row)
	}

	return accepted, skipped, rowErrors
}

func validMethod(method string) bool {
	for _, m := range models.ProcurementMethods {
		if method == m {
			return true
		}
	}
	return false
}

// ProjectImportService reconciles externally sourced project batches against
// the project table.
type ProjectImportService struct {
	db    *gorm.DB
	clock Clock
}

func NewProjectImportService(db *gorm.DB) *ProjectImportService {
	if db == nil {
		db = config.DB
	}
	return &ProjectImportService{db: db, clock: SystemClock()}
}

// WithClock substitutes the service's time source.
func (s *ProjectImportService) WithClock(clock Clock) *ProjectImportService {
	s.clock = clock
	return s
}

// Reconcile validates the batch and applies the accepted subset atomically.
// With replaceAll, existing non-completed projects are deleted first inside
// the same transaction, so a failure partway leaves the prior state intact.
// Insert errors abort and roll back the whole batch; only validation
// failures participate in partial-failure reporting.
func (s *ProjectImportService) Reconcile(ctx context.Context, rows []ImportRow, replaceAll bool, createdBy *uint) (*ImportSummary, error) {
	if len(rows) > MaxImportRows {
		return nil, fmt.Errorf("%w: %d rows (cap %d)", ErrTooManyImportRows, len(rows), MaxImportRows)
	}

	known, err := KnownDepartmentIDs()
	if err != nil {
		return nil, err
	}

	accepted, skipped, rowErrors := ValidateImportRows(rows, known)
	summary := &ImportSummary{
		Skipped: skipped,
		Failed:  len(rowErrors),
		Errors:  rowErrors,
	}

	now := s.clock.Now()

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if replaceAll {
			// Completed projects are protected history and survive a replace.
			var replaceable []uint
			if err := tx.Model(&models.Project{}).
				Where("status <> ?", models.ProjectStatusCompleted).
				Pluck("project_id", &replaceable).Error; err != nil {
				return err
			}
			if len(replaceable) > 0 {
				if err := tx.Where("project_id IN ?", replaceable).Delete(&models.ProjectStep{}).Error; err != nil {
					return err
				}
				if err := tx.Where("project_id IN ?", replaceable).Delete(&models.Project{}).Error; err != nil {
					return err
				}
			}
		}

		for _, row := range accepted {
			description := row.Description
			project := models.Project{
				ProjectCode:        NewProjectCode(now.Year()),
				ProjectName:        row.Name,
				DepartmentID:       row.DepartmentID,
				ProcurementMethod:  row.ProcurementMethod,
				Budget:             row.Budget,
				BudgetYear:         now.Year(),
				StartDate:          now,
				Status:             models.ProjectStatusDraft,
				ProgressPercentage: 0,
				CreatedBy:          createdBy,
				CreatedAt:          now,
			}
			if description != "" {
				project.Description = &description
			}

			if err := tx.Create(&project).Error; err != nil {
				return fmt.Errorf("failed to insert project %q: %w", row.Name, err)
			}
			if _, err := InstantiateWorkflow(tx, &project, now); err != nil {
				return err
			}
			summary.Imported++
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return summary, nil
}

// NewProjectCode builds a unique external-style code, e.g. PRJ-2026-1a2b3c4d.
func NewProjectCode(year int) string {
	fragment := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return fmt.Sprintf("PRJ-%d-%s", year, fragment)
}
