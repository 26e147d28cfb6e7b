package model

import (
	"time"

	"gorm.io/gorm"
)

// Order represents a work order belonging to a tenant.
// DueDate is optional; when present it must satisfy the business-hours
// rules enforced by the invariant pipeline.
type Order struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	TenantID  uint           `json:"tenant_id" gorm:"index;not null"`
	Module    string         `json:"module" gorm:"type:varchar(50);not null"`
	Title     string         `json:"title" gorm:"type:varchar(200);not null"`
	Notes     string         `json:"notes" gorm:"type:text"`
	DueDate   *time.Time     `json:"due_date,omitempty"`
	CreatedBy uint           `json:"created_by" gorm:"index;not null"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	// Relations
	Followers []OrderFollower `json:"followers,omitempty" gorm:"foreignKey:OrderID"`
}

// OrderFollower subscribes a user to notifications for an order.
// Rows are created either by an explicit follow or derived from the
// tenant's notification rules at order creation.
type OrderFollower struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	OrderID   uint      `json:"order_id" gorm:"not null;uniqueIndex:idx_order_follower"`
	UserID    uint      `json:"user_id" gorm:"not null;uniqueIndex:idx_order_follower"`
	CreatedAt time.Time `json:"created_at"`
}

// Comment is a user-authored note on an order. It has no tenant column;
// its row scope is resolved transitively through the parent order.
type Comment struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	OrderID   uint           `json:"order_id" gorm:"index;not null"`
	AuthorID  uint           `json:"author_id" gorm:"index;not null"`
	Body      string         `json:"body" gorm:"type:text;not null"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}
