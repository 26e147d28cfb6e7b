package invite

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"dealerops/internal/apperr"
	"dealerops/internal/invariant"
	"dealerops/internal/model"
)

var inviteNow = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&model.User{},
		&model.Tenant{},
		&model.Membership{},
		&model.Invitation{},
	))
	return db
}

func newTestVerifier(t *testing.T, db *gorm.DB) *Verifier {
	return NewVerifier(db).WithClock(func() time.Time { return inviteNow })
}

func createTenant(t *testing.T, db *gorm.DB, maxUsers int) *model.Tenant {
	tenant := model.Tenant{Name: "Autohaus Nord", MaxUsers: maxUsers, Active: true}
	require.NoError(t, db.Create(&tenant).Error)
	return &tenant
}

func createUser(t *testing.T, db *gorm.DB, email string) *model.User {
	user := model.User{Email: email, Name: email, Active: true}
	require.NoError(t, db.Create(&user).Error)
	return &user
}

func TestResolveInvitation_UnknownToken(t *testing.T) {
	db := setupTestDB(t)
	v := newTestVerifier(t, db)

	_, err := v.ResolveInvitation("no-such-token")
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	_, err = v.ResolveInvitation("")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestResolveInvitation_ReturnsEnumeratedView(t *testing.T) {
	db := setupTestDB(t)
	v := newTestVerifier(t, db)
	tenant := createTenant(t, db, 5)
	inviter := createUser(t, db, "chef@example.com")

	inv, err := v.CreateInvitation(tenant.ID, "neu@example.com", "member", inviter.ID, 7*24*time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, inv.Token)

	view, err := v.ResolveInvitation(inv.Token)
	require.NoError(t, err)

	assert.Equal(t, inv.ID, view.ID)
	assert.Equal(t, tenant.ID, view.TenantID)
	assert.Equal(t, "neu@example.com", view.Email)
	assert.Equal(t, "member", view.Role)
	assert.Equal(t, "Autohaus Nord", view.TenantName)
	assert.Equal(t, "chef@example.com", view.InviterEmail)
	assert.Nil(t, view.AcceptedAt)
	assert.WithinDuration(t, inviteNow.Add(7*24*time.Hour), view.ExpiresAt, time.Second)
}

func TestResolveInvitation_ExpiredStillResolves(t *testing.T) {
	db := setupTestDB(t)
	v := newTestVerifier(t, db)
	tenant := createTenant(t, db, 5)
	inviter := createUser(t, db, "chef@example.com")

	inv, err := v.CreateInvitation(tenant.ID, "alt@example.com", "member", inviter.ID, -time.Hour)
	require.NoError(t, err)

	// Lookup does not distinguish expired from valid; acceptance does.
	view, err := v.ResolveInvitation(inv.Token)
	require.NoError(t, err)
	assert.True(t, view.ExpiresAt.Before(inviteNow))
}

func TestAcceptInvitation_CreatesMembership(t *testing.T) {
	db := setupTestDB(t)
	v := newTestVerifier(t, db)
	p := invariant.NewPipeline(db, time.UTC)
	tenant := createTenant(t, db, 5)
	inviter := createUser(t, db, "chef@example.com")
	joiner := createUser(t, db, "neu@example.com")

	inv, err := v.CreateInvitation(tenant.ID, joiner.Email, "manager", inviter.ID, 24*time.Hour)
	require.NoError(t, err)

	membership, err := v.AcceptInvitation(inv.Token, joiner.ID, p)
	require.NoError(t, err)
	assert.Equal(t, tenant.ID, membership.TenantID)
	assert.Equal(t, "manager", membership.Role)
	assert.True(t, membership.Active)

	var reloaded model.Invitation
	require.NoError(t, db.First(&reloaded, inv.ID).Error)
	assert.True(t, reloaded.IsAccepted())
}

func TestAcceptInvitation_ExpiredConflicts(t *testing.T) {
	db := setupTestDB(t)
	v := newTestVerifier(t, db)
	p := invariant.NewPipeline(db, time.UTC)
	tenant := createTenant(t, db, 5)
	inviter := createUser(t, db, "chef@example.com")
	joiner := createUser(t, db, "neu@example.com")

	inv, err := v.CreateInvitation(tenant.ID, joiner.Email, "member", inviter.ID, -time.Minute)
	require.NoError(t, err)

	_, err = v.AcceptInvitation(inv.Token, joiner.ID, p)
	assert.ErrorIs(t, err, apperr.ErrConflictingState)
}

func TestAcceptInvitation_SecondUseConflicts(t *testing.T) {
	db := setupTestDB(t)
	v := newTestVerifier(t, db)
	p := invariant.NewPipeline(db, time.UTC)
	tenant := createTenant(t, db, 5)
	inviter := createUser(t, db, "chef@example.com")
	joiner := createUser(t, db, "neu@example.com")

	inv, err := v.CreateInvitation(tenant.ID, joiner.Email, "member", inviter.ID, 24*time.Hour)
	require.NoError(t, err)

	_, err = v.AcceptInvitation(inv.Token, joiner.ID, p)
	require.NoError(t, err)
	_, err = v.AcceptInvitation(inv.Token, joiner.ID, p)
	assert.ErrorIs(t, err, apperr.ErrConflictingState)
}

// TestAcceptInvitation_SecondUserConflicts presents one token for two
// different users: the invitation is single-use, so the second accept
// conflicts and admits nobody.
func TestAcceptInvitation_SecondUserConflicts(t *testing.T) {
	db := setupTestDB(t)
	v := newTestVerifier(t, db)
	p := invariant.NewPipeline(db, time.UTC)
	tenant := createTenant(t, db, 5)
	inviter := createUser(t, db, "chef@example.com")
	first := createUser(t, db, "erste@example.com")
	second := createUser(t, db, "zweite@example.com")

	inv, err := v.CreateInvitation(tenant.ID, first.Email, "member", inviter.ID, 24*time.Hour)
	require.NoError(t, err)

	_, err = v.AcceptInvitation(inv.Token, first.ID, p)
	require.NoError(t, err)

	_, err = v.AcceptInvitation(inv.Token, second.ID, p)
	assert.ErrorIs(t, err, apperr.ErrConflictingState)

	var memberships int64
	require.NoError(t, db.Model(&model.Membership{}).
		Where("tenant_id = ?", tenant.ID).Count(&memberships).Error)
	assert.EqualValues(t, 1, memberships)
}

func TestAcceptInvitation_FullTenantRejected(t *testing.T) {
	db := setupTestDB(t)
	v := newTestVerifier(t, db)
	p := invariant.NewPipeline(db, time.UTC)
	tenant := createTenant(t, db, 1)
	inviter := createUser(t, db, "chef@example.com")
	joiner := createUser(t, db, "neu@example.com")

	require.NoError(t, db.Create(&model.Membership{
		UserID: inviter.ID, TenantID: tenant.ID, Role: "owner", Active: true,
	}).Error)

	inv, err := v.CreateInvitation(tenant.ID, joiner.Email, "member", inviter.ID, 24*time.Hour)
	require.NoError(t, err)

	_, err = v.AcceptInvitation(inv.Token, joiner.ID, p)
	require.Error(t, err)
	assert.True(t, apperr.IsCapacityExceeded(err))

	// The invitation stays usable once a seat frees up.
	var reloaded model.Invitation
	require.NoError(t, db.First(&reloaded, inv.ID).Error)
	assert.False(t, reloaded.IsAccepted())
}

func TestListActiveEmployeesBasic_FiltersInactive(t *testing.T) {
	db := setupTestDB(t)
	v := newTestVerifier(t, db)
	tenant := createTenant(t, db, 10)
	other := createTenant(t, db, 10)

	active := createUser(t, db, "anna@example.com")
	active.EmployeeNumber = "E-100"
	require.NoError(t, db.Save(active).Error)
	inactiveUser := createUser(t, db, "ben@example.com")
	require.NoError(t, db.Model(inactiveUser).Update("active", false).Error)
	gone := createUser(t, db, "carla@example.com")
	elsewhere := createUser(t, db, "dora@example.com")

	require.NoError(t, db.Create(&model.Membership{UserID: active.ID, TenantID: tenant.ID, Role: "member", Active: true}).Error)
	require.NoError(t, db.Create(&model.Membership{UserID: inactiveUser.ID, TenantID: tenant.ID, Role: "member", Active: true}).Error)
	require.NoError(t, db.Create(&model.Membership{UserID: gone.ID, TenantID: tenant.ID, Role: "member", Active: false}).Error)
	require.NoError(t, db.Create(&model.Membership{UserID: elsewhere.ID, TenantID: other.ID, Role: "member", Active: true}).Error)

	employees, err := v.ListActiveEmployeesBasic(tenant.ID)
	require.NoError(t, err)

	require.Len(t, employees, 1)
	assert.Equal(t, active.ID, employees[0].ID)
	assert.Equal(t, "E-100", employees[0].EmployeeNumber)
}
