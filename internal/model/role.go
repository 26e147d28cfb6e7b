package model

import (
	"time"

	"gorm.io/gorm"
)

// Role represents a named permission group within a tenant.
// A role grants a set of (module, permission level) pairs through
// RoleModulePermission rows; modules without a row resolve to level none.
type Role struct {
	ID          uint           `json:"id" gorm:"primaryKey"`
	TenantID    uint           `json:"tenant_id" gorm:"index;not null"`
	Name        string         `json:"name" gorm:"type:varchar(50);not null"`
	Description string         `json:"description" gorm:"type:text"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `json:"-" gorm:"index"`

	// Relations
	Permissions []RoleModulePermission `json:"permissions,omitempty" gorm:"foreignKey:RoleID"`
}

// RoleModulePermission maps a role to a module with a permission level.
type RoleModulePermission struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	RoleID    uint      `json:"role_id" gorm:"not null;uniqueIndex:idx_role_module"`
	Module    string    `json:"module" gorm:"type:varchar(50);not null;uniqueIndex:idx_role_module"`
	Level     string    `json:"level" gorm:"type:varchar(20);not null;default:'none'"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
