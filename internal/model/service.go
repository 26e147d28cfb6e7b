package model

import (
	"time"

	"gorm.io/gorm"
)

// Service represents a service offering in a tenant's catalog.
// Visibility to members is gated by the module mapped from Category.
type Service struct {
	ID          uint           `json:"id" gorm:"primaryKey"`
	TenantID    uint           `json:"tenant_id" gorm:"index;not null"`
	Name        string         `json:"name" gorm:"type:varchar(100);not null"`
	Category    string         `json:"category" gorm:"type:varchar(30);not null"`
	Description string         `json:"description" gorm:"type:text"`
	PriceCents  int64          `json:"price_cents" gorm:"default:0"`
	Active      bool           `json:"active" gorm:"default:true"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `json:"-" gorm:"index"`
}

// Service categories
const (
	CategoryWash       = "wash"
	CategoryDetail     = "detail"
	CategoryProtection = "protection"
	CategoryRepair     = "repair"
	CategoryGeneral    = "general"
)

// NotificationRule configures automatic follower assignment for a tenant.
// When enabled with AutoFollowEnabled, every active member holding Role is
// added as a follower of new orders in Module.
type NotificationRule struct {
	ID                uint      `json:"id" gorm:"primaryKey"`
	TenantID          uint      `json:"tenant_id" gorm:"index;not null"`
	Module            string    `json:"module" gorm:"type:varchar(50);not null"`
	Role              string    `json:"role" gorm:"type:varchar(50);not null"`
	AutoFollowEnabled bool      `json:"auto_follow_enabled" gorm:"default:false"`
	Enabled           bool      `json:"enabled" gorm:"default:true"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}
