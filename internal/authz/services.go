package authz

import (
	"dealerops/internal/model"
)

// categoryModule maps a service category to the tenant module that must
// be enabled for the category to be visible. Categories absent from the
// map (general) are always visible.
var categoryModule = map[string]string{
	model.CategoryWash:       model.ModuleCarWash,
	model.CategoryDetail:     model.ModuleServiceOrders,
	model.CategoryProtection: model.ModuleServiceOrders,
	model.CategoryRepair:     model.ModuleServiceOrders,
}

// VisibleServices lists the services a user may see in a tenant's
// catalog: the user must be an active member, the service active, and
// the service's category must map to a module the tenant has enabled.
// member is false when the user has no active membership; the caller
// turns that into its uniform denial.
func (r *Resolver) VisibleServices(user *model.User, tenantID uint) (visible []model.Service, member bool, err error) {
	member, err = r.AllowByMembership(user, tenantID)
	if err != nil || !member {
		return nil, member, err
	}

	var services []model.Service
	err = r.db.Where("tenant_id = ? AND active = ?", tenantID, true).
		Order("name").Find(&services).Error
	if err != nil {
		return nil, true, err
	}

	enabled, err := r.enabledModules(tenantID)
	if err != nil {
		return nil, true, err
	}

	visible = make([]model.Service, 0, len(services))
	for _, svc := range services {
		module, gated := categoryModule[svc.Category]
		if !gated || enabled[module] {
			visible = append(visible, svc)
		}
	}
	return visible, true, nil
}

func (r *Resolver) enabledModules(tenantID uint) (map[string]bool, error) {
	var rows []model.TenantModule
	err := r.db.Where("tenant_id = ? AND enabled = ?", tenantID, true).Find(&rows).Error
	if err != nil {
		return nil, err
	}
	enabled := make(map[string]bool, len(rows))
	for _, row := range rows {
		enabled[row.Module] = true
	}
	return enabled, nil
}
