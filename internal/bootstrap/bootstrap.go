// Package bootstrap assembles the pipeline from Config. cmd/server,
// cmd/worker and cmd/askctl all start here.
package bootstrap

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/suPer8Hu/askdb/internal/ai"
	"github.com/suPer8Hu/askdb/internal/assistant"
	"github.com/suPer8Hu/askdb/internal/config"
	"github.com/suPer8Hu/askdb/internal/db"
	"github.com/suPer8Hu/askdb/internal/history"
	"github.com/suPer8Hu/askdb/internal/query"
	"github.com/suPer8Hu/askdb/internal/schema"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// NewRegistry registers every provider Config knows how to build.
func NewRegistry(cfg config.Config) *ai.Registry {
	reg := ai.NewRegistry()

	reg.Register("gemini", func(_ context.Context, model string) (ai.Provider, error) {
		return ai.NewOpenAIProvider("gemini", cfg.GeminiAPIKey, cfg.GeminiBaseURL, pick(model, cfg.GeminiModel))
	})
	reg.Register("openai", func(_ context.Context, model string) (ai.Provider, error) {
		return ai.NewOpenAIProvider("openai", cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, pick(model, cfg.OpenAIModel))
	})
	reg.Register("openrouter", func(_ context.Context, model string) (ai.Provider, error) {
		if strings.TrimSpace(cfg.OpenRouterAPIKey) == "" {
			return nil, fmt.Errorf("openrouter: api key is required")
		}
		return ai.NewOpenRouterProvider(cfg.OpenRouterBaseURL, cfg.OpenRouterAPIKey, pick(model, cfg.OpenRouterModel), cfg.OpenRouterSiteURL, cfg.OpenRouterAppName), nil
	})
	reg.Register("ollama", func(_ context.Context, model string) (ai.Provider, error) {
		return ai.NewOllamaProvider(cfg.OllamaBaseURL, pick(model, cfg.OllamaModel)), nil
	})
	return reg
}

func pick(model, fallback string) string {
	if m := strings.TrimSpace(model); m != "" {
		return m
	}
	return fallback
}

// NewSchemaStore picks the persisted schema backend. The redis client is
// returned so the caller can close it; it is nil for the file backend.
func NewSchemaStore(ctx context.Context, cfg config.Config) (schema.Store, *redis.Client, error) {
	switch strings.ToLower(cfg.SchemaCacheBackend) {
	case "", "file":
		return schema.NewFileStore(cfg.SchemaCachePath), nil, nil
	case "redis":
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		pctx, cancel := context.WithTimeout(ctx, 3*time.Second)
		defer cancel()
		if err := rdb.Ping(pctx).Err(); err != nil {
			_ = rdb.Close()
			return nil, nil, fmt.Errorf("redis ping: %w", err)
		}
		return schema.NewRedisStore(rdb, cfg.SchemaCacheKey), rdb, nil
	default:
		return nil, nil, fmt.Errorf("unsupported SCHEMA_CACHE_BACKEND=%q", cfg.SchemaCacheBackend)
	}
}

// App holds the long-lived pieces of one process.
type App struct {
	Target  *gorm.DB
	AppDB   *gorm.DB
	Redis   *redis.Client
	Schemas *schema.Cache
	History *history.Repo
	Service *assistant.Service
}

// New opens the target and app databases, the schema cache and the model
// provider named by cfg.AIProvider, and wires them into a Service.
func New(ctx context.Context, cfg config.Config, log *zap.Logger) (*App, error) {
	if log == nil {
		log = zap.NewNop()
	}
	app := &App{}
	ok := false
	defer func() {
		if !ok {
			app.Close()
		}
	}()

	var err error
	app.Target, err = db.OpenTarget(cfg.TargetDBPath)
	if err != nil {
		return nil, err
	}

	app.AppDB, err = db.Connect(cfg.AppDBDriver, cfg.AppDBDSN)
	if err != nil {
		return nil, err
	}
	app.History = history.NewRepo(app.AppDB)
	if err := app.History.Migrate(); err != nil {
		return nil, fmt.Errorf("migrate history: %w", err)
	}

	store, rdb, err := NewSchemaStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	app.Redis = rdb
	app.Schemas = schema.NewCache(app.Target, store)

	provider, err := NewRegistry(cfg).Get(ctx, cfg.AIProvider, "")
	if err != nil {
		return nil, err
	}

	app.Service = assistant.NewService(app.Schemas, ai.NewPromptCompleter(provider), query.NewExecutor(app.Target), log)
	log.Info("pipeline ready",
		zap.String("target", cfg.TargetDBPath),
		zap.String("provider", cfg.AIProvider),
		zap.String("schema_backend", cfg.SchemaCacheBackend),
		zap.String("app_db", cfg.AppDBDriver),
	)
	ok = true
	return app, nil
}

func (a *App) Close() {
	if a.Redis != nil {
		_ = a.Redis.Close()
	}
	for _, gdb := range []*gorm.DB{a.Target, a.AppDB} {
		if gdb == nil {
			continue
		}
		if sqlDB, err := gdb.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
}
