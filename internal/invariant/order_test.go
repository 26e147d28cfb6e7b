package invariant

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"dealerops/internal/apperr"
	"dealerops/internal/model"
)

func followerIDs(t *testing.T, db *gorm.DB, orderID uint) []uint {
	var ids []uint
	require.NoError(t, db.Model(&model.OrderFollower{}).
		Where("order_id = ?", orderID).Pluck("user_id", &ids).Error)
	return ids
}

func TestCreateOrder_RejectsInvalidDueDate(t *testing.T) {
	db := setupTestDB(t)
	p := newTestPipeline(t, db, dueNow)
	tenant := createTenant(t, db, 5)

	due := time.Date(2025, 1, 7, 9, 30, 0, 0, time.UTC)
	_, err := p.CreateOrder(&model.Order{
		TenantID: tenant.ID, Module: model.ModuleCarWash, Title: "Wash", DueDate: &due, CreatedBy: 1,
	})
	require.Error(t, err)
	assert.True(t, apperr.IsValidation(err))

	// Nothing committed.
	var count int64
	require.NoError(t, db.Model(&model.Order{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestCreateOrder_AutoFollowFromRules(t *testing.T) {
	db := setupTestDB(t)
	p := newTestPipeline(t, db, dueNow)
	tenant := createTenant(t, db, 10)
	users := createUsers(t, db, 4)

	// Two managers, one member, one manager in another tenant.
	other := model.Tenant{Name: "Other", MaxUsers: 5, Active: true}
	require.NoError(t, db.Create(&other).Error)
	require.NoError(t, db.Create(&model.Membership{UserID: users[0].ID, TenantID: tenant.ID, Role: "manager", Active: true}).Error)
	require.NoError(t, db.Create(&model.Membership{UserID: users[1].ID, TenantID: tenant.ID, Role: "manager", Active: true}).Error)
	require.NoError(t, db.Create(&model.Membership{UserID: users[2].ID, TenantID: tenant.ID, Role: "member", Active: true}).Error)
	require.NoError(t, db.Create(&model.Membership{UserID: users[3].ID, TenantID: other.ID, Role: "manager", Active: true}).Error)

	require.NoError(t, db.Create(&model.NotificationRule{
		TenantID: tenant.ID, Module: model.ModuleCarWash, Role: "manager",
		AutoFollowEnabled: true, Enabled: true,
	}).Error)

	order, err := p.CreateOrder(&model.Order{
		TenantID: tenant.ID, Module: model.ModuleCarWash, Title: "Wash", CreatedBy: users[2].ID,
	})
	require.NoError(t, err)

	assert.ElementsMatch(t, []uint{users[0].ID, users[1].ID}, followerIDs(t, db, order.ID))
}

func TestCreateOrder_DisabledRulesDoNotFollow(t *testing.T) {
	db := setupTestDB(t)
	p := newTestPipeline(t, db, dueNow)
	tenant := createTenant(t, db, 10)
	users := createUsers(t, db, 1)
	require.NoError(t, db.Create(&model.Membership{UserID: users[0].ID, TenantID: tenant.ID, Role: "manager", Active: true}).Error)

	// Rule disabled entirely.
	require.NoError(t, db.Create(&model.NotificationRule{
		TenantID: tenant.ID, Module: model.ModuleCarWash, Role: "manager",
		AutoFollowEnabled: true, Enabled: false,
	}).Error)
	// Auto-follow off.
	require.NoError(t, db.Create(&model.NotificationRule{
		TenantID: tenant.ID, Module: model.ModuleCarWash, Role: "manager",
		AutoFollowEnabled: false, Enabled: true,
	}).Error)
	// Different module.
	require.NoError(t, db.Create(&model.NotificationRule{
		TenantID: tenant.ID, Module: model.ModuleServiceOrders, Role: "manager",
		AutoFollowEnabled: true, Enabled: true,
	}).Error)

	order, err := p.CreateOrder(&model.Order{
		TenantID: tenant.ID, Module: model.ModuleCarWash, Title: "Wash", CreatedBy: users[0].ID,
	})
	require.NoError(t, err)
	assert.Empty(t, followerIDs(t, db, order.ID))
}

func TestCreateOrder_OverlappingRulesFollowOnce(t *testing.T) {
	db := setupTestDB(t)
	p := newTestPipeline(t, db, dueNow)
	tenant := createTenant(t, db, 10)
	users := createUsers(t, db, 1)
	require.NoError(t, db.Create(&model.Membership{UserID: users[0].ID, TenantID: tenant.ID, Role: "manager", Active: true}).Error)

	// Two rules matching the same role must not duplicate followers.
	for i := 0; i < 2; i++ {
		require.NoError(t, db.Create(&model.NotificationRule{
			TenantID: tenant.ID, Module: model.ModuleCarWash, Role: "manager",
			AutoFollowEnabled: true, Enabled: true,
		}).Error)
	}

	order, err := p.CreateOrder(&model.Order{
		TenantID: tenant.ID, Module: model.ModuleCarWash, Title: "Wash", CreatedBy: users[0].ID,
	})
	require.NoError(t, err)
	assert.Len(t, followerIDs(t, db, order.ID), 1)
}

func TestUpdateOrder_RevalidatesDueDate(t *testing.T) {
	db := setupTestDB(t)
	p := newTestPipeline(t, db, dueNow)
	tenant := createTenant(t, db, 5)

	order, err := p.CreateOrder(&model.Order{
		TenantID: tenant.ID, Module: model.ModuleCarWash, Title: "Wash", CreatedBy: 1,
	})
	require.NoError(t, err)

	bad := time.Date(2025, 1, 7, 19, 0, 0, 0, time.UTC)
	order.DueDate = &bad
	_, err = p.UpdateOrder(order)
	assert.True(t, apperr.IsValidation(err))
}
