package model

import (
	"time"

	"gorm.io/gorm"
)

// Invitation represents a pending invitation to join a tenant.
// The token is the credential: lookups bypass normal authorization,
// so the token must be unguessable and matched exactly.
type Invitation struct {
	ID         uint           `json:"id" gorm:"primaryKey"`
	Token      string         `json:"-" gorm:"type:varchar(64);uniqueIndex;not null"`
	TenantID   uint           `json:"tenant_id" gorm:"index;not null"`
	Email      string         `json:"email" gorm:"type:varchar(100);not null"`
	Role       string         `json:"role" gorm:"type:varchar(50);not null;default:'member'"`
	ExpiresAt  time.Time      `json:"expires_at" gorm:"not null"`
	AcceptedAt *time.Time     `json:"accepted_at,omitempty"`
	InvitedBy  uint           `json:"invited_by" gorm:"index;not null"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `json:"-" gorm:"index"`

	// Relations
	Tenant  Tenant `json:"tenant,omitempty" gorm:"foreignKey:TenantID"`
	Inviter User   `json:"inviter,omitempty" gorm:"foreignKey:InvitedBy"`
}

// IsExpired reports whether the invitation has passed its expiry.
// Expired invitations are never physically deleted.
func (i Invitation) IsExpired(now time.Time) bool {
	return now.After(i.ExpiresAt)
}

// IsAccepted reports whether the invitation has already been used.
func (i Invitation) IsAccepted() bool {
	return i.AcceptedAt != nil
}
