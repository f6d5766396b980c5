package database

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// NewTestDB opens an isolated, migrated in-memory SQLite database that is
// closed when the test ends. It also becomes the global Database handle.
func NewTestDB(t testing.TB) *gorm.DB {
	t.Helper()

	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared&_foreign_keys=off"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError:                           true,
		DisableForeignKeyConstraintWhenMigrating: true,
		Logger:                                   gormlogger.Default.LogMode(gormlogger.Silent),
		NowFunc:                                  utcNow,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// One connection keeps shared-cache SQLite free of table lock errors.
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, Migrate(db))

	previous := Database
	Database = DbInstance{Db: db}
	t.Cleanup(func() {
		Database = previous
		_ = sqlDB.Close()
	})
	return db
}
