package model

import (
	"time"

	"gorm.io/gorm"
)

// Contact represents a dealership contact person.
// At most one active contact per tenant has IsPrimary set; the
// invariant pipeline demotes the others whenever a new primary is written.
type Contact struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	TenantID  uint           `json:"tenant_id" gorm:"index;not null"`
	Name      string         `json:"name" gorm:"type:varchar(100);not null"`
	Email     string         `json:"email" gorm:"type:varchar(100)"`
	Phone     string         `json:"phone" gorm:"type:varchar(30)"`
	IsPrimary bool           `json:"is_primary" gorm:"default:false"`
	Active    bool           `json:"active" gorm:"default:true"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}
