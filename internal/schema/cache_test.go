package schema

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/suPer8Hu/askdb/internal/db/dbtest"
)

var fixture = []string{
	`CREATE TABLE "Customer Accounts" ("Account ID" INTEGER PRIMARY KEY, full_name TEXT, "Signup_Date" DATE)`,
	`CREATE TABLE orders (id INTEGER, amount REAL)`,
}

func TestIntrospect_VerbatimNamesInOrder(t *testing.T) {
	gdb, _ := dbtest.NewTarget(t, fixture...)

	got, err := Introspect(context.Background(), gdb)
	if err != nil {
		t.Fatalf("introspect: %v", err)
	}

	want := Description{Tables: []Table{
		{Name: "Customer Accounts", Columns: []Column{
			{Name: "Account ID", Type: "INTEGER"},
			{Name: "full_name", Type: "TEXT"},
			{Name: "Signup_Date", Type: "DATE"},
		}},
		{Name: "orders", Columns: []Column{
			{Name: "id", Type: "INTEGER"},
			{Name: "amount", Type: "REAL"},
		}},
	}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected description:\n got %#v\nwant %#v", got, want)
	}
}

func TestDescription_JSONKeepsOrder(t *testing.T) {
	d := Description{Tables: []Table{
		{Name: "zeta", Columns: []Column{{Name: "b", Type: "TEXT"}}},
		{Name: "alpha", Columns: nil},
	}}

	b, err := json.Marshal(d)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(b) != `{"zeta":[{"name":"b","type":"TEXT"}],"alpha":[]}` {
		t.Fatalf("unexpected json: %s", b)
	}

	var back Description
	if err := json.Unmarshal(b, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back.Tables[0].Name != "zeta" || back.Tables[1].Name != "alpha" {
		t.Fatalf("order lost: %#v", back)
	}

	if err := json.Unmarshal([]byte(`["not","an","object"]`), &back); err == nil {
		t.Fatalf("expected error for non-object json")
	}
}

func TestCache_LoadPersistsAndIsIdempotent(t *testing.T) {
	gdb, _ := dbtest.NewTarget(t, fixture...)
	path := filepath.Join(t.TempDir(), "cache", "db_schema.json")
	ctx := context.Background()

	first, err := NewCache(gdb, NewFileStore(path)).Load(ctx)
	if err != nil {
		t.Fatalf("first load: %v", err)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("cache file not written: %v", err)
	}
	if !strings.Contains(string(raw), `"Customer Accounts"`) {
		t.Fatalf("cache file missing table: %s", raw)
	}

	// With the database gone, a fresh cache can only succeed by reading the file.
	dbtest.Close(gdb)
	second, err := NewCache(gdb, NewFileStore(path)).Load(ctx)
	if err != nil {
		t.Fatalf("second load should not touch the database: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("descriptions differ:\n%#v\n%#v", first, second)
	}
}

func TestCache_MemoryLayerSkipsStore(t *testing.T) {
	gdb, _ := dbtest.NewTarget(t, fixture...)
	path := filepath.Join(t.TempDir(), "db_schema.json")
	ctx := context.Background()

	c := NewCache(gdb, NewFileStore(path))
	first, err := c.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if err := os.Remove(path); err != nil {
		t.Fatalf("remove: %v", err)
	}
	dbtest.Close(gdb)

	second, err := c.Load(ctx)
	if err != nil {
		t.Fatalf("second load: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("memory copy differs")
	}
}

// The cache has no invalidation: a table added after the first Load stays
// invisible until Refresh.
func TestCache_StaleUntilRefresh(t *testing.T) {
	_, path := dbtest.NewTarget(t, `CREATE TABLE a (x INTEGER)`)
	ctx := context.Background()

	rw := openWritable(t, path)
	target := reopenTarget(t, path)
	c := NewCache(target, NewFileStore(filepath.Join(t.TempDir(), "s.json")))

	before, err := c.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(before.Tables) != 1 {
		t.Fatalf("expected 1 table, got %d", len(before.Tables))
	}

	if err := rw.Exec(`CREATE TABLE b (y TEXT)`).Error; err != nil {
		t.Fatalf("create b: %v", err)
	}

	stale, err := c.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if _, ok := stale.Table("b"); ok {
		t.Fatalf("cache should still be stale")
	}

	fresh, err := c.Refresh(ctx)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if _, ok := fresh.Table("b"); !ok {
		t.Fatalf("refresh should pick up new table, got %#v", fresh)
	}
}

func TestCache_PropagatesDatabaseError(t *testing.T) {
	gdb, _ := dbtest.NewTarget(t, fixture...)
	dbtest.Close(gdb)

	c := NewCache(gdb, NewFileStore(filepath.Join(t.TempDir(), "s.json")))
	if _, err := c.Load(context.Background()); err == nil {
		t.Fatalf("expected error from closed database")
	}
}

func TestFileStore_MissingAndDelete(t *testing.T) {
	s := NewFileStore(filepath.Join(t.TempDir(), "none.json"))
	ctx := context.Background()

	if _, found, err := s.Get(ctx); err != nil || found {
		t.Fatalf("expected not found, got found=%v err=%v", found, err)
	}
	if err := s.Delete(ctx); err != nil {
		t.Fatalf("delete of missing file should be a no-op: %v", err)
	}

	if err := os.WriteFile(s.Path, []byte("{broken"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, _, err := s.Get(ctx); err == nil {
		t.Fatalf("expected decode error")
	}
}
