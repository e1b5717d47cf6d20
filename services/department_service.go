package services

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"procurement-tracking-api/config"
	"procurement-tracking-api/models"
)

// ErrDepartmentNotFound reports a department reference that resolves to nothing.
var ErrDepartmentNotFound = errors.New("department not found")

var (
	deptCacheMu sync.RWMutex
	deptCache   *departmentCacheEntry
	deptTTL     = 5 * time.Minute
)

type departmentCacheEntry struct {
	departments []models.Department
	byID        map[uint]models.Department
	byCode      map[string]models.Department
	fetchedAt   time.Time
}

func loadDepartments(force bool) (*departmentCacheEntry, error) {
	deptCacheMu.RLock()
	cached := deptCache
	deptCacheMu.RUnlock()

	if cached != nil && !force && time.Since(cached.fetchedAt) < deptTTL {
		return cached, nil
	}

	deptCacheMu.Lock()
	defer deptCacheMu.Unlock()

	if deptCache != nil && !force && time.Since(deptCache.fetchedAt) < deptTTL {
		return deptCache, nil
	}

	var rows []models.Department
	if err := config.DB.Order("department_id ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to load departments: %w", err)
	}

	byID := make(map[uint]models.Department, len(rows))
	byCode := make(map[string]models.Department, len(rows))
	for _, dept := range rows {
		byID[dept.DepartmentID] = dept
		if dept.Code != "" {
			byCode[dept.Code] = dept
		}
	}

	entry := &departmentCacheEntry{
		departments: rows,
		byID:        byID,
		byCode:      byCode,
		fetchedAt:   time.Now(),
	}
	deptCache = entry
	return entry, nil
}

// ClearDepartmentCache invalidates the in-memory department cache.
func ClearDepartmentCache() {
	deptCacheMu.Lock()
	defer deptCacheMu.Unlock()
	deptCache = nil
}

// GetDepartments returns all departments with caching support.
func GetDepartments() ([]models.Department, error) {
	entry, err := loadDepartments(false)
	if err != nil {
		return nil, err
	}
	return entry.departments, nil
}

// GetDepartmentByID resolves a department id, refreshing the cache once
// before giving up.
func GetDepartmentByID(id uint) (*models.Department, error) {
	if id == 0 {
		return nil, ErrDepartmentNotFound
	}

	entry, err := loadDepartments(false)
	if err != nil {
		return nil, err
	}
	if dept, ok := entry.byID[id]; ok {
		return &dept, nil
	}

	entry, err = loadDepartments(true)
	if err != nil {
		return nil, err
	}
	if dept, ok := entry.byID[id]; ok {
		return &dept, nil
	}

	return nil, fmt.Errorf("department %d: %w", id, ErrDepartmentNotFound)
}

// KnownDepartmentIDs returns the current set of department ids, used by the
// import validator so each row check stays an in-memory lookup.
func KnownDepartmentIDs() (map[uint]struct{}, error) {
	entry, err := loadDepartments(true)
	if err != nil {
		return nil, err
	}
	known := make(map[uint]struct{}, len(entry.byID))
	for id := range entry.byID {
		known[id] = struct{}{}
	}
	return known, nil
}
