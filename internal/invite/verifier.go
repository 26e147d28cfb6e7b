// Package invite implements the narrow, authorization-bypassing read
// paths for unauthenticated flows. The token itself is the credential,
// so the exposed field set is enumerated here and nowhere widened.
package invite

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"dealerops/internal/apperr"
	"dealerops/internal/invariant"
	"dealerops/internal/model"
	"dealerops/pkg/tokenutil"
)

// InvitationView is the complete set of fields an unauthenticated
// caller may learn about an invitation.
type InvitationView struct {
	ID           uint       `json:"id"`
	TenantID     uint       `json:"tenant_id"`
	Email        string     `json:"email"`
	Role         string     `json:"role"`
	ExpiresAt    time.Time  `json:"expires_at"`
	AcceptedAt   *time.Time `json:"accepted_at,omitempty"`
	InvitedBy    uint       `json:"invited_by"`
	TenantName   string     `json:"tenant_name"`
	InviterEmail string     `json:"inviter_email"`
}

// Verifier resolves invitation tokens and serves the kiosk employee
// listing.
type Verifier struct {
	db  *gorm.DB
	now func() time.Time
}

// NewVerifier returns a Verifier reading from db.
func NewVerifier(db *gorm.DB) *Verifier {
	return &Verifier{db: db, now: time.Now}
}

// WithClock overrides the wall-clock source for tests.
func (v *Verifier) WithClock(now func() time.Time) *Verifier {
	v.now = now
	return v
}

// ResolveInvitation looks an invitation up by exact token match.
// It returns apperr.ErrNotFound for any miss; expiry is not checked
// here so a caller cannot distinguish "expired" from "never existed"
// at this layer.
func (v *Verifier) ResolveInvitation(token string) (*InvitationView, error) {
	if token == "" {
		return nil, apperr.ErrNotFound
	}
	var inv model.Invitation
	err := v.db.Preload("Tenant").Preload("Inviter").
		Where("token = ?", token).First(&inv).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &InvitationView{
		ID:           inv.ID,
		TenantID:     inv.TenantID,
		Email:        inv.Email,
		Role:         inv.Role,
		ExpiresAt:    inv.ExpiresAt,
		AcceptedAt:   inv.AcceptedAt,
		InvitedBy:    inv.InvitedBy,
		TenantName:   inv.Tenant.Name,
		InviterEmail: inv.Inviter.Email,
	}, nil
}

// CreateInvitation issues a pending invitation with a fresh token.
func (v *Verifier) CreateInvitation(tenantID uint, email, role string, invitedBy uint, ttl time.Duration) (*model.Invitation, error) {
	token, err := tokenutil.NewToken()
	if err != nil {
		return nil, err
	}
	inv := model.Invitation{
		Token:     token,
		TenantID:  tenantID,
		Email:     email,
		Role:      role,
		ExpiresAt: v.now().Add(ttl),
		InvitedBy: invitedBy,
	}
	if err := v.db.Create(&inv).Error; err != nil {
		return nil, err
	}
	return &inv, nil
}

// AcceptInvitation marks the invitation accepted and admits the user
// into the tenant through the invariant pipeline, so the user-limit
// check applies. Expired or already-accepted invitations conflict.
// The terminal transition and the membership insert run in one
// transaction: a token is single-use even under concurrent
// presentations, and a failed admission leaves the invitation pending.
func (v *Verifier) AcceptInvitation(token string, userID uint, pipeline *invariant.Pipeline) (*model.Membership, error) {
	var membership *model.Membership
	err := v.db.Transaction(func(tx *gorm.DB) error {
		var inv model.Invitation
		err := tx.Where("token = ?", token).First(&inv).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.ErrNotFound
		}
		if err != nil {
			return err
		}
		if inv.IsExpired(v.now()) {
			return apperr.ErrConflictingState
		}

		// Conditional transition: only a still-pending invitation
		// accepts, so the second of two racing accepts loses here.
		res := tx.Model(&model.Invitation{}).
			Where("id = ? AND accepted_at IS NULL", inv.ID).
			Update("accepted_at", v.now())
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperr.ErrConflictingState
		}

		membership, err = pipeline.WithTx(tx).AddMembership(&model.Membership{
			UserID:   userID,
			TenantID: inv.TenantID,
			Role:     inv.Role,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return membership, nil
}
