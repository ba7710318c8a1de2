package database

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// openTestDB gives each test an isolated SQLite database with the full
// schema migrated.
func openTestDB(t *testing.T) *GormDB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	gdb := NewGormDBFromDB(db)
	require.NoError(t, gdb.InitSchema())
	t.Cleanup(func() { gdb.Close() })
	return gdb
}
