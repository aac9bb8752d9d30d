package config

import "testing"

func TestLoad_Defaults(t *testing.T) {
	for _, k := range []string{"AI_PROVIDER", "TARGET_DB_PATH", "SCHEMA_CACHE_BACKEND", "WORKER_CONCURRENCY", "APP_DB_DRIVER"} {
		t.Setenv(k, "")
	}

	cfg := Load()
	if cfg.AIProvider != "gemini" {
		t.Fatalf("AIProvider = %q, want gemini", cfg.AIProvider)
	}
	if cfg.TargetDBPath != "database/database.db" {
		t.Fatalf("TargetDBPath = %q", cfg.TargetDBPath)
	}
	if cfg.SchemaCacheBackend != "file" {
		t.Fatalf("SchemaCacheBackend = %q", cfg.SchemaCacheBackend)
	}
	if cfg.WorkerConcurrency != 2 {
		t.Fatalf("WorkerConcurrency = %d", cfg.WorkerConcurrency)
	}
}

func TestLoad_ClampsConcurrency(t *testing.T) {
	t.Setenv("WORKER_CONCURRENCY", "500")
	if got := Load().WorkerConcurrency; got != 50 {
		t.Fatalf("WorkerConcurrency = %d, want 50", got)
	}

	t.Setenv("WORKER_CONCURRENCY", "-3")
	if got := Load().WorkerConcurrency; got != 2 {
		t.Fatalf("WorkerConcurrency = %d, want 2", got)
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"gemini without key", Config{AIProvider: "gemini", SchemaCacheBackend: "file", AppDBDriver: "sqlite"}, true},
		{"gemini with key", Config{AIProvider: "gemini", GeminiAPIKey: "k", SchemaCacheBackend: "file", AppDBDriver: "sqlite"}, false},
		{"ollama needs no key", Config{AIProvider: "ollama", SchemaCacheBackend: "redis", AppDBDriver: "mysql"}, false},
		{"unknown provider", Config{AIProvider: "bard", SchemaCacheBackend: "file", AppDBDriver: "sqlite"}, true},
		{"unknown cache backend", Config{AIProvider: "ollama", SchemaCacheBackend: "s3", AppDBDriver: "sqlite"}, true},
		{"unknown app driver", Config{AIProvider: "ollama", SchemaCacheBackend: "file", AppDBDriver: "postgres"}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.Validate()
			if (err != nil) != tc.wantErr {
				t.Fatalf("Validate() err = %v, wantErr %v", err, tc.wantErr)
			}
		})
	}
}
