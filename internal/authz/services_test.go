package authz

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"dealerops/internal/model"
)

func seedCatalog(t *testing.T, db *gorm.DB, tenantID uint) {
	services := []model.Service{
		{TenantID: tenantID, Name: "Basic Wash", Category: model.CategoryWash, Active: true},
		{TenantID: tenantID, Name: "Full Detail", Category: model.CategoryDetail, Active: true},
		{TenantID: tenantID, Name: "Ceramic Coat", Category: model.CategoryProtection, Active: true},
		{TenantID: tenantID, Name: "Dent Repair", Category: model.CategoryRepair, Active: true},
		{TenantID: tenantID, Name: "Pickup", Category: model.CategoryGeneral, Active: true},
		{TenantID: tenantID, Name: "Retired Wash", Category: model.CategoryWash, Active: false},
	}
	for i := range services {
		require.NoError(t, db.Create(&services[i]).Error)
	}
}

func TestVisibleServices_ModuleGating(t *testing.T) {
	db := setupTestDB(t)
	resolver := NewResolver(db)

	tenant := createTenant(t, db, "T", 5)
	user := createUser(t, db, "member@example.com", false)
	addMember(t, db, user, tenant, "member")
	seedCatalog(t, db, tenant.ID)

	// Only car_wash enabled: wash categories visible, service_orders
	// categories hidden, general always visible.
	require.NoError(t, db.Create(&model.TenantModule{TenantID: tenant.ID, Module: model.ModuleCarWash, Enabled: true}).Error)

	services, member, err := resolver.VisibleServices(user, tenant.ID)
	require.NoError(t, err)
	require.True(t, member)

	names := make([]string, 0, len(services))
	for _, s := range services {
		names = append(names, s.Name)
	}
	assert.ElementsMatch(t, []string{"Basic Wash", "Pickup"}, names)
}

func TestVisibleServices_ServiceOrdersModule(t *testing.T) {
	db := setupTestDB(t)
	resolver := NewResolver(db)

	tenant := createTenant(t, db, "T", 5)
	user := createUser(t, db, "member@example.com", false)
	addMember(t, db, user, tenant, "member")
	seedCatalog(t, db, tenant.ID)

	require.NoError(t, db.Create(&model.TenantModule{TenantID: tenant.ID, Module: model.ModuleServiceOrders, Enabled: true}).Error)

	services, member, err := resolver.VisibleServices(user, tenant.ID)
	require.NoError(t, err)
	require.True(t, member)

	names := make([]string, 0, len(services))
	for _, s := range services {
		names = append(names, s.Name)
	}
	assert.ElementsMatch(t, []string{"Full Detail", "Ceramic Coat", "Dent Repair", "Pickup"}, names)
}

func TestVisibleServices_DisabledModuleRowHidesCategory(t *testing.T) {
	db := setupTestDB(t)
	resolver := NewResolver(db)

	tenant := createTenant(t, db, "T", 5)
	user := createUser(t, db, "member@example.com", false)
	addMember(t, db, user, tenant, "member")
	seedCatalog(t, db, tenant.ID)

	require.NoError(t, db.Create(&model.TenantModule{TenantID: tenant.ID, Module: model.ModuleCarWash, Enabled: false}).Error)

	services, member, err := resolver.VisibleServices(user, tenant.ID)
	require.NoError(t, err)
	require.True(t, member)
	require.Len(t, services, 1)
	assert.Equal(t, "Pickup", services[0].Name)
}

func TestVisibleServices_NonMemberGetsNothing(t *testing.T) {
	db := setupTestDB(t)
	resolver := NewResolver(db)

	tenant := createTenant(t, db, "T", 5)
	outsider := createUser(t, db, "outsider@example.com", false)
	seedCatalog(t, db, tenant.ID)

	services, member, err := resolver.VisibleServices(outsider, tenant.ID)
	require.NoError(t, err)
	assert.False(t, member)
	assert.Empty(t, services)
}
