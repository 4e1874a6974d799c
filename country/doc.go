// Package country defines the catalog record, the contracts for the local
// store and the remote source, and the error kinds both of them raise.
//
// # Favorites
//
// IsFavorite is the only attribute owned by the local store. A remote refresh
// goes through Store.ReconcileAndStore, which copies the stored flag onto the
// incoming record before the bulk write, so a refresh never clears a favorite.
//
// # Errors
//
// Errors are github.com/goliatone/go-errors values. Use the Is* helpers to
// branch on the kind:
//
//	c, err := store.Get(ctx, "Slovakia")
//	switch {
//	case country.IsNotFound(err):
//		// absent
//	case country.IsStorageUnavailable(err):
//		// local database failed
//	}
package country
