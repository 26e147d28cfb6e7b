package invariant

import (
	"gorm.io/gorm"

	"dealerops/internal/apperr"
	"dealerops/internal/model"
)

// AddMembership inserts a new active membership, enforcing the tenant's
// user limit. The tenant row is locked before the count so two
// concurrent inserts cannot both observe count < limit. The limit only
// applies to inserts: an already-admitted member is never evicted by a
// later limit change.
func (p *Pipeline) AddMembership(m *model.Membership) (*model.Membership, error) {
	err := p.db.Transaction(func(tx *gorm.DB) error {
		tenant, err := p.lockTenant(tx, m.TenantID)
		if err != nil {
			return err
		}

		var count int64
		err = tx.Model(&model.Membership{}).
			Where("tenant_id = ? AND active = ?", m.TenantID, true).
			Count(&count).Error
		if err != nil {
			return err
		}
		if count >= int64(tenant.MaxUsers) {
			return &apperr.CapacityExceededError{Limit: tenant.MaxUsers}
		}

		var existing int64
		err = tx.Model(&model.Membership{}).
			Where("user_id = ? AND tenant_id = ? AND active = ?", m.UserID, m.TenantID, true).
			Count(&existing).Error
		if err != nil {
			return err
		}
		if existing > 0 {
			return apperr.ErrConflictingState
		}

		m.Active = true
		return tx.Create(m).Error
	})
	if err != nil {
		return nil, err
	}
	return m, nil
}
