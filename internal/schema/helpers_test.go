package schema

import (
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/suPer8Hu/askdb/internal/db"
	"github.com/suPer8Hu/askdb/internal/db/dbtest"
	"gorm.io/gorm"
)

func openWritable(t *testing.T, path string) *gorm.DB {
	t.Helper()
	gdb, err := gorm.Open(sqlite.Open(path), &gorm.Config{})
	if err != nil {
		t.Fatalf("open writable: %v", err)
	}
	t.Cleanup(func() { dbtest.Close(gdb) })
	return gdb
}

func reopenTarget(t *testing.T, path string) *gorm.DB {
	t.Helper()
	gdb, err := db.OpenTarget(path)
	if err != nil {
		t.Fatalf("open target: %v", err)
	}
	t.Cleanup(func() { dbtest.Close(gdb) })
	return gdb
}
