// Package persistencetest provides an in-memory database with the production schema
// shape for repository and service tests.
package persistencetest

import (
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"manestream/internal/core"
	"manestream/internal/persistence"
)

// NewDB opens a private in-memory SQLite database and migrates every core model into it.
func NewDB(t *testing.T) *persistence.DB {
	t.Helper()

	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"

	gormDB, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,

		DisableForeignKeyConstraintWhenMigrating: true,
	})
	require.NoError(t, err)

	sqlDB, err := gormDB.DB()
	require.NoError(t, err)

	// Single writer: concurrent fan-out upserts queue on the pool.
	sqlDB.SetMaxOpenConns(1)

	t.Cleanup(func() {
		sqlDB.Close() //nolint:errcheck
	})

	require.NoError(t, gormDB.AutoMigrate(core.AllModels()...))

	return persistence.Wrap(gormDB)
}

// NewUser inserts a user with a unique username and returns it.
func NewUser(t *testing.T, db core.DB, username string) core.User {
	t.Helper()

	user := core.User{
		Username: username + "-" + uuid.NewString()[:8],
		Email:    username + "@manestream.test",
	}
	require.NoError(t, db.Model(&core.User{}).Create(&user).Error)

	return user
}

// Befriend inserts both edges of a friendship between a and b. Accepted controls whether
// the pair is confirmed or still pending.
func Befriend(t *testing.T, db core.DB, a, b core.User, accepted bool) {
	t.Helper()

	edges := []core.FriendEdge{
		{OwnerID: a.ID, OtherID: b.ID, Accepted: accepted, OriginalRequest: true},
		{OwnerID: b.ID, OtherID: a.ID, Accepted: accepted},
	}
	require.NoError(t, db.Model(&core.FriendEdge{}).Create(&edges).Error)
}
