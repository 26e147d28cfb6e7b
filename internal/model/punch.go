package model

import (
	"time"

	"gorm.io/gorm"
)

// PunchRecord represents one employee clock session.
// A record is open while PunchOutAt is null; at most one open record
// may exist per employee.
type PunchRecord struct {
	ID             uint           `json:"id" gorm:"primaryKey"`
	UserID         uint           `json:"user_id" gorm:"index;not null"`
	TenantID       uint           `json:"tenant_id" gorm:"index;not null"`
	PunchInAt      time.Time      `json:"punch_in_at" gorm:"not null"`
	PunchOutAt     *time.Time     `json:"punch_out_at,omitempty"`
	PunchOutMethod string         `json:"punch_out_method,omitempty" gorm:"type:varchar(20)"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `json:"-" gorm:"index"`
}

// Punch-out methods
const (
	PunchOutManual    = "manual"
	PunchOutAutoClose = "auto_close"
	PunchOutAdmin     = "admin"
)

// IsOpen reports whether the session is still running.
func (p PunchRecord) IsOpen() bool {
	return p.PunchOutAt == nil
}
