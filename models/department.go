package models

import "time"

// Department represents the departments reference table. The list is small
// and changes rarely, so services cache it in memory.
type Department struct {
	DepartmentID uint       `gorm:"primaryKey;column:department_id" json:"department_id"`
	Code         string     `gorm:"column:code;uniqueIndex" json:"code"`
	Name         string     `gorm:"column:name" json:"name"`
	ContactEmail *string    `gorm:"column:contact_email" json:"contact_email,omitempty"`
	CreatedAt    time.Time  `gorm:"column:created_at" json:"created_at"`
	UpdatedAt    *time.Time `gorm:"column:updated_at" json:"updated_at"`
}

// TableName overrides the table name for Department
func (Department) TableName() string {
	return "departments"
}
