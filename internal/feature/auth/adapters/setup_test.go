package adapters

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"blog_backend/internal/feature/auth/domain/entity"
)

// setupTestDB prepares an in-memory SQLite database with the auth tables.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err, "failed to initialize test database")

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// Every connection to ":memory:" is a new database.
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.Exec("PRAGMA foreign_keys = ON").Error)
	require.NoError(t, db.AutoMigrate(&entity.User{}, &SessionModel{}), "failed to migrate tables")

	return db
}

// seedUser creates a user row and returns it.
func seedUser(t *testing.T, db *gorm.DB, email string) *entity.User {
	t.Helper()

	u := &entity.User{Name: "Test User", Email: email, Password: "hashed"}
	require.NoError(t, db.Create(u).Error, "failed to seed user")
	return u
}
