package storecache

import (
	"context"
	"io"
	"log/slog"
	"slices"
	"strings"
	"sync"

	"github.com/puzpuzpuz/xsync/v3"

	"github.com/goliatone/go-country-cache/cache"
	"github.com/goliatone/go-country-cache/country"
)

// Interface assertion to ensure CachedStore implements country.Store
var _ country.Store = (*CachedStore)(nil)

const (
	methodGet       = "Get"
	methodList      = "List"
	methodFavorites = "Favorites"
	methodSearch    = "Search"
)

// getResult wraps a single lookup so absence can be cached as well
type getResult struct {
	Country country.Country
	Found   bool
}

// CachedStore decorates a base store with read-through caching
type CachedStore struct {
	base          country.Store
	cache         cache.CacheService
	keySerializer cache.KeySerializer
	keyRegistry   *xsync.MapOf[string, struct{}] // Track active cache keys for invalidation
	logger        *slog.Logger

	// reads hold mu shared, writes hold it exclusively until invalidation is
	// done, so a fetch can never repopulate a key with pre-write data
	mu sync.RWMutex
}

// Option configures a CachedStore.
type Option func(*CachedStore)

// WithLogger sets the logger used to report invalidation failures.
func WithLogger(logger *slog.Logger) Option {
	return func(c *CachedStore) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New creates a CachedStore that wraps base with caching
func New(base country.Store, cacheService cache.CacheService, keySerializer cache.KeySerializer, opts ...Option) *CachedStore {
	c := &CachedStore{
		base:          base,
		cache:         cacheService,
		keySerializer: keySerializer,
		keyRegistry:   xsync.NewMapOf[string, struct{}](),
		logger:        slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get retrieves a single country by name, with caching. Misses are cached too.
func (c *CachedStore) Get(ctx context.Context, name string) (country.Country, error) {
	key := c.keySerializer.SerializeKey(methodGet, name)

	c.mu.RLock()
	defer c.mu.RUnlock()

	c.trackKey(key)
	res, err := cache.GetOrFetch(ctx, c.cache, key, func(ctx context.Context) (getResult, error) {
		found, err := c.base.Get(ctx, name)
		if country.IsNotFound(err) {
			return getResult{}, nil
		}
		if err != nil {
			return getResult{}, err
		}
		return getResult{Country: found, Found: true}, nil
	})
	if err != nil {
		return country.Country{}, err
	}
	if !res.Found {
		return country.Country{}, country.NotFound(name)
	}
	return res.Country, nil
}

// List retrieves every country, with caching
func (c *CachedStore) List(ctx context.Context) ([]country.Country, error) {
	return c.cachedSlice(ctx, c.keySerializer.SerializeKey(methodList), c.base.List)
}

// Favorites retrieves the favorite countries, with caching
func (c *CachedStore) Favorites(ctx context.Context) ([]country.Country, error) {
	return c.cachedSlice(ctx, c.keySerializer.SerializeKey(methodFavorites), c.base.Favorites)
}

// Search retrieves the countries matching pattern, with caching per pattern
func (c *CachedStore) Search(ctx context.Context, pattern string) ([]country.Country, error) {
	key := c.keySerializer.SerializeKey(methodSearch, pattern)
	return c.cachedSlice(ctx, key, func(ctx context.Context) ([]country.Country, error) {
		return c.base.Search(ctx, pattern)
	})
}

func (c *CachedStore) cachedSlice(ctx context.Context, key string, fetch func(context.Context) ([]country.Country, error)) ([]country.Country, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	c.trackKey(key)
	res, err := cache.GetOrFetch(ctx, c.cache, key, fetch)
	if err != nil {
		return nil, err
	}
	// callers own the returned slice, the cached one stays untouched
	if res == nil {
		return []country.Country{}, nil
	}
	return slices.Clone(res), nil
}

// Upsert writes through to the base store and drops the entries it affects
func (c *CachedStore) Upsert(ctx context.Context, record country.Country) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	err := c.base.Upsert(ctx, record)
	if err == nil {
		c.invalidateAfterRecordWrite(ctx, record.Name)
	}
	return err
}

// UpsertMany writes through to the base store and flushes every entry
func (c *CachedStore) UpsertMany(ctx context.Context, countries []country.Country) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	err := c.base.UpsertMany(ctx, countries)
	if err == nil {
		c.invalidateAll(ctx)
	}
	return err
}

// ReconcileAndStore writes through to the base store and flushes every entry
func (c *CachedStore) ReconcileAndStore(ctx context.Context, countries []country.Country) (country.ReconcileStats, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	stats, err := c.base.ReconcileAndStore(ctx, countries)
	if err == nil {
		c.invalidateAll(ctx)
	}
	return stats, err
}

// SetFavorite writes through to the base store and drops the entries it affects
func (c *CachedStore) SetFavorite(ctx context.Context, name string, favorite bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	err := c.base.SetFavorite(ctx, name, favorite)
	if err == nil {
		c.invalidateAfterRecordWrite(ctx, name)
	}
	return err
}

// Flush drops every entry this store has cached.
func (c *CachedStore) Flush(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.invalidateAll(ctx)
}

// trackKey registers a cache key in the key registry for later invalidation
func (c *CachedStore) trackKey(key string) {
	c.keyRegistry.Store(key, struct{}{})
}

func (c *CachedStore) invalidateKey(ctx context.Context, key string) {
	if err := c.cache.Delete(ctx, key); err != nil {
		c.logger.WarnContext(ctx, "cache invalidation failed", "key", key, "error", err)
	}
	c.keyRegistry.Delete(key)
}

// invalidateByPrefix removes all tracked keys that start with the given prefix
func (c *CachedStore) invalidateByPrefix(ctx context.Context, prefix string) {
	var keysToDelete []string
	c.keyRegistry.Range(func(key string, _ struct{}) bool {
		if strings.HasPrefix(key, prefix) {
			keysToDelete = append(keysToDelete, key)
		}
		return true
	})

	for _, key := range keysToDelete {
		c.invalidateKey(ctx, key)
	}
}

// invalidateAfterRecordWrite drops the lookup for name and every query result
func (c *CachedStore) invalidateAfterRecordWrite(ctx context.Context, name string) {
	c.invalidateKey(ctx, c.keySerializer.SerializeKey(methodGet, name))
	c.invalidateKey(ctx, c.keySerializer.SerializeKey(methodList))
	c.invalidateKey(ctx, c.keySerializer.SerializeKey(methodFavorites))
	c.invalidateByPrefix(ctx, methodSearch)
}

func (c *CachedStore) invalidateAll(ctx context.Context) {
	c.invalidateByPrefix(ctx, "")
}
