package model

import (
	"time"

	"gorm.io/gorm"
)

// User represents the user model stored in the database.
// A user with IsSystemAdmin set passes every permission check
// unconditionally; the flag is only ever set out of band.
type User struct {
	ID             uint           `json:"id" gorm:"primaryKey"`
	Email          string         `json:"email" gorm:"type:varchar(100);uniqueIndex"`
	Password       string         `json:"-" gorm:"type:varchar(255)"`
	Name           string         `json:"name" gorm:"type:varchar(100)"`
	EmployeeNumber string         `json:"employee_number,omitempty" gorm:"type:varchar(20)"`
	IsSystemAdmin  bool           `json:"is_system_admin" gorm:"default:false"`
	Active         bool           `json:"active" gorm:"default:true"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `json:"-" gorm:"index"`
}
