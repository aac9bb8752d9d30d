// Package dbtest builds throwaway SQLite target databases for tests.
package dbtest

import (
	"path/filepath"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/suPer8Hu/askdb/internal/db"
	"gorm.io/gorm"
)

// Orders is the fixture used across the pipeline tests.
var Orders = []string{
	`CREATE TABLE orders (id INTEGER, amount REAL)`,
	`INSERT INTO orders (id, amount) VALUES (1, 10.5), (2, 20.25), (3, 4.25)`,
}

// NewTarget writes statements into a fresh database file and reopens it the
// way the application does (query-only). It returns the path too.
func NewTarget(t *testing.T, statements ...string) (*gorm.DB, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "target.db")

	rw, err := gorm.Open(sqlite.Open(path), &gorm.Config{})
	if err != nil {
		t.Fatalf("open writable sqlite: %v", err)
	}
	for _, stmt := range statements {
		if err := rw.Exec(stmt).Error; err != nil {
			t.Fatalf("exec %q: %v", stmt, err)
		}
	}
	sqlDB, err := rw.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	_ = sqlDB.Close()

	gdb, err := db.OpenTarget(path)
	if err != nil {
		t.Fatalf("open target: %v", err)
	}
	t.Cleanup(func() { Close(gdb) })
	return gdb, path
}

// Close releases the pool behind gdb.
func Close(gdb *gorm.DB) {
	if sqlDB, err := gdb.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
