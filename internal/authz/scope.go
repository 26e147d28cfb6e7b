package authz

import (
	"errors"

	"gorm.io/gorm"

	"dealerops/internal/model"
)

// Operation names the kind of mutation a write-time scope check guards.
type Operation string

const (
	OpInsert Operation = "insert"
	OpUpdate Operation = "update"
	OpDelete Operation = "delete"
)

// requiredLevel maps a mutation to the module permission level it needs.
func requiredLevel(op Operation) PermissionLevel {
	switch op {
	case OpDelete:
		return LevelDelete
	default:
		return LevelWrite
	}
}

// InScope reports whether a row belonging to tenantID is visible to user:
// the user holds an active membership in the tenant (or is a system
// admin). Soft-deleted rows are already excluded by the query layer.
func (r *Resolver) InScope(user *model.User, tenantID uint) (bool, error) {
	return r.AllowByMembership(user, tenantID)
}

// CommentInScope resolves a comment's scope transitively through its
// parent order; the comment itself has no tenant column.
func (r *Resolver) CommentInScope(user *model.User, comment *model.Comment) (bool, error) {
	var order model.Order
	err := r.db.Select("tenant_id").First(&order, comment.OrderID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return r.InScope(user, order.TenantID)
}

// CanMutate performs the write-time scope check: the row must be in
// scope and the user must hold the module permission the operation
// requires.
func (r *Resolver) CanMutate(user *model.User, tenantID uint, module string, op Operation) (bool, error) {
	inScope, err := r.InScope(user, tenantID)
	if err != nil || !inScope {
		return false, err
	}
	return r.Allow(user, tenantID, module, requiredLevel(op))
}

// CanMutateOwn is the narrower self-ownership allowance: a user may
// update or delete a record they authored even without broader module
// write permission, as long as the row is still in scope.
func (r *Resolver) CanMutateOwn(user *model.User, tenantID, authorID uint) (bool, error) {
	if user == nil || user.ID != authorID {
		return false, nil
	}
	return r.InScope(user, tenantID)
}

// VisibleTenantIDs returns the tenants whose rows user may see. For a
// system admin it returns nil with all=true, meaning no restriction.
func (r *Resolver) VisibleTenantIDs(user *model.User) (ids []uint, all bool, err error) {
	if user == nil || !user.Active {
		return nil, false, nil
	}
	if user.IsSystemAdmin {
		return nil, true, nil
	}
	err = r.db.Model(&model.Membership{}).
		Where("user_id = ? AND active = ?", user.ID, true).
		Pluck("tenant_id", &ids).Error
	return ids, false, err
}

// Scope returns a gorm scope restricting a query to rows the user may
// see. Apply it with db.Scopes(resolver.Scope(user)) on any model that
// carries a tenant_id column.
func (r *Resolver) Scope(user *model.User) func(*gorm.DB) *gorm.DB {
	return func(tx *gorm.DB) *gorm.DB {
		ids, all, err := r.VisibleTenantIDs(user)
		if err != nil {
			_ = tx.AddError(err)
			return tx
		}
		if all {
			return tx
		}
		if len(ids) == 0 {
			// No memberships: match nothing rather than leak rows.
			return tx.Where("1 = 0")
		}
		return tx.Where("tenant_id IN ?", ids)
	}
}
