package schema

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/redis/go-redis/v9"
)

// Store persists a Description between process restarts.
type Store interface {
	// Get reports found=false when nothing has been persisted yet.
	Get(ctx context.Context) (desc Description, found bool, err error)
	Put(ctx context.Context, desc Description) error
	Delete(ctx context.Context) error
}

// FileStore keeps the description as an indented JSON file.
type FileStore struct {
	Path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{Path: path}
}

func (s *FileStore) Get(_ context.Context) (Description, bool, error) {
	b, err := os.ReadFile(s.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Description{}, false, nil
		}
		return Description{}, false, err
	}
	var d Description
	if err := json.Unmarshal(b, &d); err != nil {
		return Description{}, false, fmt.Errorf("decode %s: %w", s.Path, err)
	}
	return d, true, nil
}

func (s *FileStore) Put(_ context.Context, desc Description) error {
	b, err := json.MarshalIndent(desc, "", "  ")
	if err != nil {
		return err
	}
	if dir := filepath.Dir(s.Path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}

	// write-then-rename so readers never see a half written file
	tmp := s.Path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, s.Path)
}

func (s *FileStore) Delete(_ context.Context) error {
	if err := os.Remove(s.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// RedisStore keeps the description under a single key with no expiry.
type RedisStore struct {
	rdb *redis.Client
	key string
}

func NewRedisStore(rdb *redis.Client, key string) *RedisStore {
	return &RedisStore{rdb: rdb, key: key}
}

func (s *RedisStore) Get(ctx context.Context) (Description, bool, error) {
	b, err := s.rdb.Get(ctx, s.key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return Description{}, false, nil
		}
		return Description{}, false, err
	}
	var d Description
	if err := json.Unmarshal(b, &d); err != nil {
		return Description{}, false, fmt.Errorf("decode redis key %s: %w", s.key, err)
	}
	return d, true, nil
}

func (s *RedisStore) Put(ctx context.Context, desc Description) error {
	b, err := json.Marshal(desc)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, s.key, b, 0).Err()
}

func (s *RedisStore) Delete(ctx context.Context) error {
	return s.rdb.Del(ctx, s.key).Err()
}
