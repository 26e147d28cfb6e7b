package invite

import (
	"dealerops/internal/model"
)

// EmployeeBasic is the complete set of fields the kiosk flow may learn
// about an employee. Contact info, wages and inactive employees are
// never exposed here.
type EmployeeBasic struct {
	ID             uint   `json:"id"`
	Name           string `json:"name"`
	EmployeeNumber string `json:"employee_number"`
}

// ListActiveEmployeesBasic lists a tenant's active employees for the
// kiosk clock-in screen. Callable by holders of a short-lived kiosk
// session token; bypasses per-user authorization by design of that flow.
func (v *Verifier) ListActiveEmployeesBasic(tenantID uint) ([]EmployeeBasic, error) {
	var employees []EmployeeBasic
	err := v.db.Model(&model.User{}).
		Select("users.id, users.name, users.employee_number").
		Joins("JOIN memberships ON memberships.user_id = users.id").
		Where("memberships.tenant_id = ? AND memberships.active = ? AND memberships.deleted_at IS NULL", tenantID, true).
		Where("users.active = ?", true).
		Order("users.name").
		Scan(&employees).Error
	if err != nil {
		return nil, err
	}
	return employees, nil
}
