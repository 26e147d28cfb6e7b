package invariant

import (
	"gorm.io/gorm"

	"dealerops/internal/model"
)

// CreateOrder inserts an order after validating its due date, then
// derives the follower set from the tenant's notification rules as a
// side effect of the same transaction.
func (p *Pipeline) CreateOrder(order *model.Order) (*model.Order, error) {
	if err := p.validateDueDate(order.DueDate); err != nil {
		return nil, err
	}
	err := p.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(order).Error; err != nil {
			return err
		}
		return p.autoFollow(tx, order)
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

// UpdateOrder saves changes to an order, re-validating the due date.
// Followers are not re-derived: auto-follow is a creation-time effect.
func (p *Pipeline) UpdateOrder(order *model.Order) (*model.Order, error) {
	if err := p.validateDueDate(order.DueDate); err != nil {
		return nil, err
	}
	if err := p.db.Save(order).Error; err != nil {
		return nil, err
	}
	return order, nil
}

// autoFollow adds every active member holding a role named by an
// enabled auto-follow rule for the order's module to the follower set.
func (p *Pipeline) autoFollow(tx *gorm.DB, order *model.Order) error {
	var rules []model.NotificationRule
	err := tx.Where("tenant_id = ? AND module = ? AND enabled = ? AND auto_follow_enabled = ?",
		order.TenantID, order.Module, true, true).Find(&rules).Error
	if err != nil {
		return err
	}
	if len(rules) == 0 {
		return nil
	}

	roles := make([]string, 0, len(rules))
	for _, rule := range rules {
		roles = append(roles, rule.Role)
	}

	var memberships []model.Membership
	err = tx.Where("tenant_id = ? AND active = ? AND role IN ?", order.TenantID, true, roles).
		Find(&memberships).Error
	if err != nil {
		return err
	}

	seen := make(map[uint]bool, len(memberships))
	for _, m := range memberships {
		if seen[m.UserID] {
			continue
		}
		seen[m.UserID] = true
		follower := model.OrderFollower{OrderID: order.ID, UserID: m.UserID}
		if err := tx.Create(&follower).Error; err != nil {
			return err
		}
	}
	return nil
}
