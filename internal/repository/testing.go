package repository

import (
	"path/filepath"
	"testing"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

// NewTestDB opens a migrated sqlite database in a temp dir that is removed
// when the test ends.
func NewTestDB(t testing.TB) *sqlx.DB {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	db, err := NewDB(DriverSQLite, dbPath, zap.NewNop())
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := MigrateDB(db, zap.NewNop()); err != nil {
		t.Fatalf("Failed to migrate database: %v", err)
	}
	return db
}
