// Package authz implements the permission resolver and row scope filter.
// Both are pure reads: they never mutate state and may run outside the
// transaction that carries the write they guard.
package authz

import (
	"errors"

	"gorm.io/gorm"

	"dealerops/internal/apperr"
	"dealerops/internal/model"
)

// Default named roles and the module levels they grant. A membership
// without a custom role resolves through this table.
var defaultRolePermissions = map[string]PermissionLevel{
	"owner":   LevelAdmin,
	"admin":   LevelAdmin,
	"manager": LevelWrite,
	"member":  LevelRead,
}

// Resolver decides whether a principal may act on a tenant-scoped row.
type Resolver struct {
	db *gorm.DB
}

// NewResolver returns a Resolver reading from db.
func NewResolver(db *gorm.DB) *Resolver {
	return &Resolver{db: db}
}

// Allow reports whether user may perform an action requiring the given
// permission level on module within tenant. System admins always pass.
// A violated one-active-membership invariant fails closed with
// apperr.ErrMembershipIntegrity.
func (r *Resolver) Allow(user *model.User, tenantID uint, module string, required PermissionLevel) (bool, error) {
	if user == nil || !user.Active {
		return false, nil
	}
	if user.IsSystemAdmin {
		return true, nil
	}

	membership, err := r.activeMembership(user.ID, tenantID)
	if err != nil {
		return false, err
	}
	if membership == nil {
		return false, nil
	}

	level, err := r.resolveLevel(membership, module)
	if err != nil {
		return false, err
	}
	return level >= required, nil
}

// AllowByMembership grants generic tenant-level actions to any active
// member without per-module checks. Used where no finer module
// distinction exists, e.g. creating comments.
func (r *Resolver) AllowByMembership(user *model.User, tenantID uint) (bool, error) {
	if user == nil || !user.Active {
		return false, nil
	}
	if user.IsSystemAdmin {
		return true, nil
	}
	membership, err := r.activeMembership(user.ID, tenantID)
	if err != nil {
		return false, err
	}
	return membership != nil, nil
}

// activeMembership loads the user's active membership in tenant.
// Returns nil without error when there is none. More than one active
// membership violates the data model and is surfaced as an integrity
// error rather than silently picking one.
func (r *Resolver) activeMembership(userID, tenantID uint) (*model.Membership, error) {
	var memberships []model.Membership
	err := r.db.Where("user_id = ? AND tenant_id = ? AND active = ?", userID, tenantID, true).
		Find(&memberships).Error
	if err != nil {
		return nil, err
	}
	switch len(memberships) {
	case 0:
		return nil, nil
	case 1:
		return &memberships[0], nil
	default:
		return nil, apperr.ErrMembershipIntegrity
	}
}

// resolveLevel maps a membership to its permission level for module.
// A custom role overrides the named role; a module absent from the
// custom role's permission set resolves to none.
func (r *Resolver) resolveLevel(membership *model.Membership, module string) (PermissionLevel, error) {
	if membership.CustomRoleID != nil {
		var perm model.RoleModulePermission
		err := r.db.Where("role_id = ? AND module = ?", *membership.CustomRoleID, module).
			First(&perm).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return LevelNone, nil
		}
		if err != nil {
			return LevelNone, err
		}
		return ParseLevel(perm.Level), nil
	}
	if level, ok := defaultRolePermissions[membership.Role]; ok {
		return level, nil
	}
	return LevelNone, nil
}
