package bootstrap

import (
	"context"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/suPer8Hu/askdb/internal/config"
	"github.com/suPer8Hu/askdb/internal/db/dbtest"
	"github.com/suPer8Hu/askdb/internal/schema"
)

func TestNewRegistry_Providers(t *testing.T) {
	reg := NewRegistry(config.Config{OllamaBaseURL: "http://localhost:11434", OllamaModel: "llama3"})

	want := []string{"gemini", "ollama", "openai", "openrouter"}
	if got := reg.Names(); !reflect.DeepEqual(got, want) {
		t.Fatalf("names = %v, want %v", got, want)
	}

	ctx := context.Background()
	if _, err := reg.Get(ctx, "gemini", ""); err == nil {
		t.Fatalf("gemini without key should fail")
	}
	if _, err := reg.Get(ctx, "openrouter", ""); err == nil {
		t.Fatalf("openrouter without key should fail")
	}
	if _, err := reg.Get(ctx, "ollama", ""); err != nil {
		t.Fatalf("ollama: %v", err)
	}
}

func TestNewSchemaStore_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "s.json")
	store, rdb, err := NewSchemaStore(context.Background(), config.Config{SchemaCacheBackend: "file", SchemaCachePath: path})
	if err != nil {
		t.Fatalf("store: %v", err)
	}
	if rdb != nil {
		t.Fatalf("file backend should not open redis")
	}
	fs, ok := store.(*schema.FileStore)
	if !ok || fs.Path != path {
		t.Fatalf("unexpected store %#v", store)
	}

	if _, _, err := NewSchemaStore(context.Background(), config.Config{SchemaCacheBackend: "memcached"}); err == nil {
		t.Fatalf("expected error for unknown backend")
	}
}

func TestNew_WiresPipeline(t *testing.T) {
	_, target := dbtest.NewTarget(t, dbtest.Orders...)
	dir := t.TempDir()
	cfg := config.Config{
		TargetDBPath:       target,
		SchemaCacheBackend: "file",
		SchemaCachePath:    filepath.Join(dir, "db_schema.json"),
		AppDBDriver:        "sqlite",
		AppDBDSN:           filepath.Join(dir, "askdb.db"),
		AIProvider:         "ollama",
		OllamaBaseURL:      "http://localhost:11434",
		OllamaModel:        "llama3",
	}

	app, err := New(context.Background(), cfg, nil)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	defer app.Close()

	desc, err := app.Schemas.Load(context.Background())
	if err != nil {
		t.Fatalf("load schema: %v", err)
	}
	if _, ok := desc.Table("orders"); !ok {
		t.Fatalf("orders table missing: %#v", desc)
	}
}

func TestNew_MissingTarget(t *testing.T) {
	cfg := config.Config{
		TargetDBPath: filepath.Join(t.TempDir(), "missing.db"),
		AppDBDriver:  "sqlite",
		AIProvider:   "ollama",
	}
	if _, err := New(context.Background(), cfg, nil); err == nil {
		t.Fatalf("expected error for missing target database")
	}
}
