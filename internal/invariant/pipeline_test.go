package invariant

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"dealerops/internal/model"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, migrate(db))
	return db
}

func migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.User{},
		&model.Tenant{},
		&model.Membership{},
		&model.Contact{},
		&model.Order{},
		&model.OrderFollower{},
		&model.NotificationRule{},
	)
}

func newTestPipeline(t *testing.T, db *gorm.DB, now time.Time) *Pipeline {
	return NewPipeline(db, time.UTC).WithClock(func() time.Time { return now })
}

func createTenant(t *testing.T, db *gorm.DB, maxUsers int) *model.Tenant {
	tenant := model.Tenant{Name: "Tenant-" + t.Name(), MaxUsers: maxUsers, Active: true}
	require.NoError(t, db.Create(&tenant).Error)
	return &tenant
}
