package authz

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dealerops/internal/model"
)

func TestScope_RestrictsToMemberTenants(t *testing.T) {
	db := setupTestDB(t)
	resolver := NewResolver(db)

	user := createUser(t, db, "member@example.com", false)
	mine := createTenant(t, db, "Mine", 5)
	other := createTenant(t, db, "Other", 5)
	addMember(t, db, user, mine, "member")

	require.NoError(t, db.Create(&model.Order{TenantID: mine.ID, Module: model.ModuleCarWash, Title: "Wash A", CreatedBy: user.ID}).Error)
	require.NoError(t, db.Create(&model.Order{TenantID: other.ID, Module: model.ModuleCarWash, Title: "Wash B", CreatedBy: 99}).Error)

	var orders []model.Order
	require.NoError(t, db.Scopes(resolver.Scope(user)).Find(&orders).Error)
	require.Len(t, orders, 1)
	assert.Equal(t, mine.ID, orders[0].TenantID)
}

func TestScope_SystemAdminSeesEverything(t *testing.T) {
	db := setupTestDB(t)
	resolver := NewResolver(db)

	admin := createUser(t, db, "root@example.com", true)
	a := createTenant(t, db, "A", 5)
	b := createTenant(t, db, "B", 5)

	require.NoError(t, db.Create(&model.Order{TenantID: a.ID, Module: model.ModuleCarWash, Title: "A1", CreatedBy: 1}).Error)
	require.NoError(t, db.Create(&model.Order{TenantID: b.ID, Module: model.ModuleCarWash, Title: "B1", CreatedBy: 1}).Error)

	var orders []model.Order
	require.NoError(t, db.Scopes(resolver.Scope(admin)).Find(&orders).Error)
	assert.Len(t, orders, 2)
}

func TestScope_NoMembershipsMatchesNothing(t *testing.T) {
	db := setupTestDB(t)
	resolver := NewResolver(db)

	user := createUser(t, db, "lonely@example.com", false)
	tenant := createTenant(t, db, "T", 5)
	require.NoError(t, db.Create(&model.Order{TenantID: tenant.ID, Module: model.ModuleCarWash, Title: "X", CreatedBy: 1}).Error)

	var orders []model.Order
	require.NoError(t, db.Scopes(resolver.Scope(user)).Find(&orders).Error)
	assert.Empty(t, orders)
}

func TestCommentInScope_TransitiveThroughOrder(t *testing.T) {
	db := setupTestDB(t)
	resolver := NewResolver(db)

	member := createUser(t, db, "member@example.com", false)
	outsider := createUser(t, db, "outsider@example.com", false)
	tenant := createTenant(t, db, "T", 5)
	addMember(t, db, member, tenant, "member")

	order := model.Order{TenantID: tenant.ID, Module: model.ModuleCarWash, Title: "Wash", CreatedBy: member.ID}
	require.NoError(t, db.Create(&order).Error)
	comment := model.Comment{OrderID: order.ID, AuthorID: member.ID, Body: "done"}
	require.NoError(t, db.Create(&comment).Error)

	inScope, err := resolver.CommentInScope(member, &comment)
	require.NoError(t, err)
	assert.True(t, inScope)

	inScope, err = resolver.CommentInScope(outsider, &comment)
	require.NoError(t, err)
	assert.False(t, inScope)

	orphan := model.Comment{OrderID: 9999, AuthorID: member.ID, Body: "lost"}
	inScope, err = resolver.CommentInScope(member, &orphan)
	require.NoError(t, err)
	assert.False(t, inScope)
}

func TestCanMutate_RequiresModuleLevel(t *testing.T) {
	db := setupTestDB(t)
	resolver := NewResolver(db)

	tenant := createTenant(t, db, "T", 5)
	reader := createUser(t, db, "reader@example.com", false)
	writer := createUser(t, db, "writer@example.com", false)
	addMember(t, db, reader, tenant, "member")
	addMember(t, db, writer, tenant, "manager")

	allowed, err := resolver.CanMutate(reader, tenant.ID, model.ModuleCarWash, OpInsert)
	require.NoError(t, err)
	assert.False(t, allowed, "read-level member must not insert")

	allowed, err = resolver.CanMutate(writer, tenant.ID, model.ModuleCarWash, OpInsert)
	require.NoError(t, err)
	assert.True(t, allowed)

	// Delete needs delete level, which manager lacks.
	allowed, err = resolver.CanMutate(writer, tenant.ID, model.ModuleCarWash, OpDelete)
	require.NoError(t, err)
	assert.False(t, allowed)
}

func TestCanMutateOwn_SelfOwnershipAllowance(t *testing.T) {
	db := setupTestDB(t)
	resolver := NewResolver(db)

	tenant := createTenant(t, db, "T", 5)
	author := createUser(t, db, "author@example.com", false)
	peer := createUser(t, db, "peer@example.com", false)
	addMember(t, db, author, tenant, "member")
	addMember(t, db, peer, tenant, "member")

	// The author may touch their own record without module write level.
	allowed, err := resolver.CanMutateOwn(author, tenant.ID, author.ID)
	require.NoError(t, err)
	assert.True(t, allowed)

	// A peer may not, even though they are a member.
	allowed, err = resolver.CanMutateOwn(peer, tenant.ID, author.ID)
	require.NoError(t, err)
	assert.False(t, allowed)
}
