package models

import "time"

// Role IDs
const (
	RoleStaff      = 1
	RoleSupervisor = 2
	RoleAdmin      = 3
)

// User represents the users table
type User struct {
	UserID       uint       `gorm:"primaryKey;column:user_id" json:"user_id"`
	Prefix       *string    `gorm:"column:prefix" json:"prefix,omitempty"`
	UserFname    string     `gorm:"column:user_fname" json:"user_fname"`
	UserLname    string     `gorm:"column:user_lname" json:"user_lname"`
	Email        string     `gorm:"column:email;uniqueIndex" json:"email"`
	Password     string     `gorm:"column:password" json:"-"`
	RoleID       int        `gorm:"column:role_id" json:"role_id"`
	DepartmentID *uint      `gorm:"column:department_id" json:"department_id,omitempty"`
	CreateAt     *time.Time `gorm:"column:create_at" json:"create_at"`
	UpdateAt     *time.Time `gorm:"column:update_at" json:"update_at"`
	DeleteAt     *time.Time `gorm:"column:delete_at" json:"delete_at,omitempty"`
}

// TableName overrides the table name for User
func (User) TableName() string {
	return "users"
}
