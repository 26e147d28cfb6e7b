package model

import (
	"time"

	"gorm.io/gorm"
)

// Tenant represents a dealership stored in the database
// This is the core of our multi-tenant architecture
type Tenant struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	Name      string         `json:"name" gorm:"type:varchar(100);uniqueIndex"`
	MaxUsers  int            `json:"max_users" gorm:"not null;default:10"`
	Active    bool           `json:"active" gorm:"default:true"`
	Settings  string         `json:"settings" gorm:"type:jsonb"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

// TenantModule marks a functional module as enabled for a tenant.
// Service visibility and module permission checks both consult it.
type TenantModule struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	TenantID  uint      `json:"tenant_id" gorm:"index;not null;uniqueIndex:idx_tenant_module"`
	Module    string    `json:"module" gorm:"type:varchar(50);not null;uniqueIndex:idx_tenant_module"`
	Enabled   bool      `json:"enabled" gorm:"default:true"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Known module names
const (
	ModuleCarWash       = "car_wash"
	ModuleServiceOrders = "service_orders"
	ModuleEmployees     = "employees"
	ModuleInvoices      = "invoices"
	ModuleTimeTracking  = "time_tracking"
	ModuleContacts      = "contacts"
)
