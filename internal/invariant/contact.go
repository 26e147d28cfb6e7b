package invariant

import (
	"gorm.io/gorm"

	"dealerops/internal/model"
)

// CreateContact inserts a contact. When the new contact is primary,
// every other active contact of the tenant is demoted in the same
// transaction so the single-primary invariant holds at commit.
func (p *Pipeline) CreateContact(contact *model.Contact) (*model.Contact, error) {
	err := p.db.Transaction(func(tx *gorm.DB) error {
		if contact.IsPrimary {
			if err := p.demoteOtherPrimaries(tx, contact.TenantID, 0); err != nil {
				return err
			}
		}
		return tx.Create(contact).Error
	})
	if err != nil {
		return nil, err
	}
	return contact, nil
}

// UpdateContact saves changes to an existing contact, demoting other
// primaries first when the update promotes this one.
func (p *Pipeline) UpdateContact(contact *model.Contact) (*model.Contact, error) {
	err := p.db.Transaction(func(tx *gorm.DB) error {
		if contact.IsPrimary {
			if err := p.demoteOtherPrimaries(tx, contact.TenantID, contact.ID); err != nil {
				return err
			}
		}
		return tx.Save(contact).Error
	})
	if err != nil {
		return nil, err
	}
	return contact, nil
}

// demoteOtherPrimaries clears is_primary on the tenant's other active
// contacts. The direct UPDATE cannot re-trigger itself, so demotion
// never cascades.
func (p *Pipeline) demoteOtherPrimaries(tx *gorm.DB, tenantID, keepID uint) error {
	if _, err := p.lockTenant(tx, tenantID); err != nil {
		return err
	}
	return tx.Model(&model.Contact{}).
		Where("tenant_id = ? AND is_primary = ? AND id <> ?", tenantID, true, keepID).
		Update("is_primary", false).Error
}
