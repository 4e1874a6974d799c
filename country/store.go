package country

import "context"

// Store owns the authoritative local set of countries. Implementations must
// serialize the mutating operations and hand out copies, never live records.
type Store interface {
	// Get returns the record stored under name or a NotFound error.
	Get(ctx context.Context, name string) (Country, error)
	// List returns every stored record ordered by name.
	List(ctx context.Context) ([]Country, error)
	// Favorites returns the records marked as favorite ordered by name.
	Favorites(ctx context.Context) ([]Country, error)
	// Search matches names case insensitively. A pattern without wildcards
	// is a substring match; '*' and '?' are wildcards.
	Search(ctx context.Context, pattern string) ([]Country, error)
	// Upsert inserts or fully replaces a single record.
	Upsert(ctx context.Context, c Country) error
	// UpsertMany inserts or fully replaces all records in one transaction.
	UpsertMany(ctx context.Context, countries []Country) error
	// ReconcileAndStore merges stored favorite flags into freshly fetched
	// records and writes them as a single atomic bulk replace.
	ReconcileAndStore(ctx context.Context, countries []Country) (ReconcileStats, error)
	// SetFavorite updates only the favorite flag of an existing record.
	SetFavorite(ctx context.Context, name string, favorite bool) error
}

// Source is the remote catalog. Records it returns never carry IsFavorite.
type Source interface {
	FetchAll(ctx context.Context) ([]Country, error)
	FetchByName(ctx context.Context, pattern string) ([]Country, error)
}
