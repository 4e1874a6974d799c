// Package storecache provides a read-through caching decorator for country.Store.
//
// # Overview
//
// CachedStore wraps any country.Store and serves Get, List, Favorites and
// Search from a cache.CacheService. Write operations pass through to the base
// store and, once they succeed, drop the cache entries they affect:
//
//   - Upsert and SetFavorite drop the Get entry for that name plus every
//     List, Favorites and Search entry
//   - UpsertMany and ReconcileAndStore drop everything the store has cached
//
// Failed writes leave the cache untouched, matching the base store.
//
// # Basic Usage
//
//	base, _ := storage.Open(ctx, storage.DefaultConfig())
//	svc, _ := cache.NewCacheService(cache.DefaultConfig())
//
//	cached := storecache.New(base, svc, cache.NewDefaultKeySerializer())
//
//	japan, err := cached.Get(ctx, "Japan")
//	hits, err := cached.Search(ctx, "lov")
//
// # Consistency
//
// Reads run concurrently. A write holds the store exclusively from the moment
// it reaches the base store until its invalidation is complete, so a reader
// that started before the write cannot put stale data back into the cache.
// Lookups for unknown names are cached as misses and reported as NotFound.
//
// Returned slices are copies; callers may modify them freely.
//
// # Key Registry
//
// Every key the decorator reads is tracked in a registry. Invalidation walks
// the registry instead of the whole cache, so several decorators can share a
// CacheService without dropping each other's entries.
package storecache
