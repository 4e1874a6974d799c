// Package cache provides the read-through cache interface and key
// serialization shared by the cached store and the interactor.
//
// # Overview
//
// This package exports two interfaces and their default implementations:
//
//   - CacheService: read-through GetOrFetch plus key and prefix deletion,
//     backed by sturdyc through NewCacheService
//   - KeySerializer: builds stable cache keys from a method name and its
//     arguments
//
// Concurrent GetOrFetch calls for the same key share one fetch. The
// interactor relies on this so that two identical remote loads produce a
// single HTTP request and a single reconcile. The shared fetch does not
// inherit any caller's cancellation: a caller whose context ends gets
// ctx.Err() while the others keep waiting, and the fetch is canceled once
// nobody waits for it.
//
// # Basic Usage
//
//	svc, err := cache.NewCacheService(cache.DefaultConfig())
//	if err != nil {
//		return err
//	}
//	serializer := cache.NewDefaultKeySerializer()
//
//	key := serializer.SerializeKey("Get", "Japan") // "Get::Japan"
//	c, err := cache.GetOrFetch(ctx, svc, key, func(ctx context.Context) (country.Country, error) {
//		return store.Get(ctx, "Japan")
//	})
//
// # Key Serialization
//
// Segments are joined with KeySeparator. Scalars use their usual string
// form, pointers are dereferenced, slices are rendered as [a,b] and
// fmt.Stringer values use String. nil renders as "nil". Segments longer
// than 64 bytes are replaced by an xxhash digest so keys stay bounded.
//
// Keys start with the method name, which lets callers invalidate whole
// families with DeleteByPrefix. The interactor drops every remembered search
// after a catalog refresh this way:
//
//	svc.DeleteByPrefix(ctx, "FetchByName")
//
// # Custom Key Serializers
//
// Any type with a SerializeKey(method string, args ...any) string method can
// replace the default, for example to namespace keys when several stores
// share one CacheService.
package cache
