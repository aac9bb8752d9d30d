package schema

import (
	"context"
	"sync"

	gocache "github.com/patrickmn/go-cache"
	"gorm.io/gorm"
)

const memKey = "schema"

// Cache serves the target database's Description from process memory, then
// from the persisted Store, and only introspects when both are empty.
//
// Nothing invalidates the cache on its own. A schema change in the target
// database stays invisible until Refresh is called or the persisted artifact
// is removed and the process restarts.
type Cache struct {
	db    *gorm.DB
	store Store
	mem   *gocache.Cache

	// serializes introspection so concurrent misses do one round of PRAGMAs
	mu sync.Mutex
}

func NewCache(db *gorm.DB, store Store) *Cache {
	return &Cache{
		db:    db,
		store: store,
		mem:   gocache.New(gocache.NoExpiration, 0),
	}
}

// Load returns the cached Description, building and persisting it on first use.
// Callers must treat the result as read-only.
func (c *Cache) Load(ctx context.Context) (Description, error) {
	if d, ok := c.fromMemory(); ok {
		return d, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if d, ok := c.fromMemory(); ok {
		return d, nil
	}

	d, found, err := c.store.Get(ctx)
	if err != nil {
		return Description{}, err
	}
	if !found {
		d, err = Introspect(ctx, c.db)
		if err != nil {
			return Description{}, err
		}
		if err := c.store.Put(ctx, d); err != nil {
			return Description{}, err
		}
	}

	c.mem.Set(memKey, d, gocache.NoExpiration)
	return d, nil
}

// Refresh discards every cached copy and introspects the database again.
func (c *Cache) Refresh(ctx context.Context) (Description, error) {
	c.mu.Lock()
	c.mem.Delete(memKey)
	err := c.store.Delete(ctx)
	c.mu.Unlock()
	if err != nil {
		return Description{}, err
	}
	return c.Load(ctx)
}

func (c *Cache) fromMemory() (Description, bool) {
	v, ok := c.mem.Get(memKey)
	if !ok {
		return Description{}, false
	}
	return v.(Description), true
}
