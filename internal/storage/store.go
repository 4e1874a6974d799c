package storage

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"sync"

	"github.com/goliatone/go-errors"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/schema"

	// database/sql drivers selectable through Config.Driver
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	_ "modernc.org/sqlite"

	"github.com/goliatone/go-country-cache/country"
)

const (
	lookupChunkSize = 500
	insertChunkSize = 100
)

// Store is a bun backed country.Store. Mutating operations are serialized
// and each runs inside a single transaction.
type Store struct {
	db              *bun.DB
	logger          *slog.Logger
	strictFavorites bool

	writeMu sync.Mutex
}

var _ country.Store = (*Store)(nil)

// Open connects to the database described by cfg, verifies the connection
// and creates the schema if needed.
func Open(ctx context.Context, cfg Config, opts ...Option) (*Store, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	sqldb, err := sql.Open(cfg.Driver, cfg.DSN)
	if err != nil {
		return nil, country.StorageUnavailable(err, "open")
	}
	if cfg.MaxOpenConns > 0 {
		sqldb.SetMaxOpenConns(cfg.MaxOpenConns)
	}

	db := bun.NewDB(sqldb, dialectFor(cfg.Driver))
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, country.StorageUnavailable(err, "ping")
	}

	if cfg.StrictFavorites {
		opts = append(opts, WithStrictFavorites())
	}

	store := New(db, opts...)
	if err := store.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// New wraps an existing bun.DB. The schema is not created; call Migrate.
func New(db *bun.DB, opts ...Option) *Store {
	s := &Store{
		db:     db,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func dialectFor(driver string) schema.Dialect {
	if driver == DriverPostgres {
		return pgdialect.New()
	}
	return sqlitedialect.New()
}

// Migrate creates the countries table and its favorite index if missing.
func (s *Store) Migrate(ctx context.Context) error {
	_, err := s.db.NewCreateTable().
		Model((*countryRow)(nil)).
		IfNotExists().
		Exec(ctx)
	if err != nil {
		return country.StorageUnavailable(err, "create table")
	}

	_, err = s.db.NewCreateIndex().
		Model((*countryRow)(nil)).
		Index("countries_is_favorite_idx").
		Column("is_favorite").
		IfNotExists().
		Exec(ctx)
	if err != nil {
		return country.StorageUnavailable(err, "create index")
	}

	if err := s.addFoldedNames(ctx); err != nil {
		return country.StorageUnavailable(err, "add name_folded")
	}
	return nil
}

// addFoldedNames upgrades a countries table created before search matched
// on name_folded: it adds the column and fills it from name.
func (s *Store) addFoldedNames(ctx context.Context) error {
	_, err := s.db.NewSelect().
		Model((*countryRow)(nil)).
		Column("name_folded").
		Limit(1).
		Exists(ctx)
	if err == nil {
		return nil
	}

	_, err = s.db.NewAddColumn().
		Model((*countryRow)(nil)).
		ColumnExpr("name_folded VARCHAR NOT NULL DEFAULT ''").
		Exec(ctx)
	if err != nil {
		return err
	}

	return s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		var rows []countryRow
		if err := tx.NewSelect().Model(&rows).Column("name").Scan(ctx); err != nil {
			return err
		}
		for _, r := range rows {
			_, err := tx.NewUpdate().
				Model((*countryRow)(nil)).
				Set("name_folded = ?", foldName(r.Name)).
				Where("name = ?", r.Name).
				Exec(ctx)
			if err != nil {
				return err
			}
		}
		s.logger.InfoContext(ctx, "search names backfilled", "count", len(rows))
		return nil
	})
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}

// Get returns the country stored under name. Names match exactly. A missing
// name yields a NotFound error.
func (s *Store) Get(ctx context.Context, name string) (country.Country, error) {
	row := new(countryRow)
	err := s.db.NewSelect().
		Model(row).
		Where("name = ?", name).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return country.Country{}, country.NotFound(name)
	}
	if err != nil {
		return country.Country{}, country.StorageUnavailable(err, "get")
	}
	return row.toCountry(), nil
}

// List returns every stored country ordered by name.
func (s *Store) List(ctx context.Context) ([]country.Country, error) {
	var rows []countryRow
	err := s.db.NewSelect().
		Model(&rows).
		Order("name ASC").
		Scan(ctx)
	if err != nil {
		return nil, country.StorageUnavailable(err, "list")
	}
	return toCountries(rows), nil
}

// Favorites returns the countries marked favorite, ordered by name.
func (s *Store) Favorites(ctx context.Context) ([]country.Country, error) {
	var rows []countryRow
	err := s.db.NewSelect().
		Model(&rows).
		Where("is_favorite = ?", true).
		Order("name ASC").
		Scan(ctx)
	if err != nil {
		return nil, country.StorageUnavailable(err, "favorites")
	}
	return toCountries(rows), nil
}

// Search returns the countries whose name matches pattern, ignoring case.
// A plain pattern matches anywhere in the name; '*' and '?' act as
// wildcards. A blank pattern matches nothing.
func (s *Store) Search(ctx context.Context, pattern string) ([]country.Country, error) {
	like, ok := likePattern(pattern)
	if !ok {
		return []country.Country{}, nil
	}

	var rows []countryRow
	err := s.db.NewSelect().
		Model(&rows).
		Where("name_folded LIKE ? ESCAPE '!'", like).
		Order("name ASC").
		Scan(ctx)
	if err != nil {
		return nil, country.StorageUnavailable(err, "search")
	}
	return toCountries(rows), nil
}

// Upsert validates c and inserts it, or replaces the stored record with the
// same name, favorite flag included.
func (s *Store) Upsert(ctx context.Context, c country.Country) error {
	if err := c.Validate(); err != nil {
		return err
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	row := toRow(c)
	_, err := s.db.NewInsert().
		Model(&row).
		On("CONFLICT (name) DO UPDATE").
		Exec(ctx)
	if err != nil {
		return country.StorageUnavailable(err, "upsert")
	}

	s.logger.DebugContext(ctx, "country upserted", "name", c.Name)
	return nil
}

// UpsertMany validates every record and then upserts them in one
// transaction. Records repeating a name collapse to the last one.
func (s *Store) UpsertMany(ctx context.Context, countries []country.Country) error {
	if len(countries) == 0 {
		return nil
	}
	for _, c := range countries {
		if err := c.Validate(); err != nil {
			return err
		}
	}

	incoming := country.Dedupe(countries)
	rows := make([]countryRow, len(incoming))
	for i, c := range incoming {
		rows[i] = toRow(c)
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		return insertRows(ctx, tx, rows)
	})
	if err != nil {
		return country.StorageUnavailable(err, "upsert many")
	}

	s.logger.InfoContext(ctx, "countries upserted", "count", len(rows))
	return nil
}

// ReconcileAndStore upserts a remote batch in one transaction. Incoming
// records carry no favorite flag, so each keeps the flag already stored for
// its name and new ones start unfavored. Nothing is written when any record
// is invalid.
func (s *Store) ReconcileAndStore(ctx context.Context, countries []country.Country) (country.ReconcileStats, error) {
	stats := country.ReconcileStats{Received: len(countries)}
	if len(countries) == 0 {
		return stats, nil
	}
	for _, c := range countries {
		if err := c.Validate(); err != nil {
			return country.ReconcileStats{}, err
		}
	}

	incoming := country.Dedupe(countries)

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		stored, err := favoriteFlags(ctx, tx, country.Names(incoming))
		if err != nil {
			return err
		}

		rows := make([]countryRow, len(incoming))
		for i, c := range incoming {
			favorite, exists := stored[c.Name]
			switch {
			case !exists:
				stats.Inserted++
			case favorite:
				stats.Updated++
				stats.FavoritesKept++
			default:
				stats.Updated++
			}
			c.IsFavorite = favorite
			rows[i] = toRow(c)
		}

		return insertRows(ctx, tx, rows)
	})
	if err != nil {
		return country.ReconcileStats{}, country.StorageUnavailable(err, "reconcile")
	}

	s.logger.InfoContext(ctx, "countries reconciled",
		"received", stats.Received,
		"inserted", stats.Inserted,
		"updated", stats.Updated,
		"favorites_kept", stats.FavoritesKept,
	)
	return stats, nil
}

// SetFavorite sets the favorite flag of the named country. An unknown name
// is ignored, or reported as NotFound with WithStrictFavorites.
func (s *Store) SetFavorite(ctx context.Context, name string, favorite bool) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		row := new(countryRow)
		err := tx.NewSelect().
			Model(row).
			Where("name = ?", name).
			Scan(ctx)
		if errors.Is(err, sql.ErrNoRows) {
			if s.strictFavorites {
				return country.NotFound(name)
			}
			s.logger.DebugContext(ctx, "favorite toggle ignored, country not stored", "name", name)
			return nil
		}
		if err != nil {
			return err
		}

		if row.IsFavorite == favorite {
			return nil
		}

		_, err = tx.NewUpdate().
			Model((*countryRow)(nil)).
			Set("is_favorite = ?", favorite).
			Where("name = ?", name).
			Exec(ctx)
		return err
	})
	if err != nil {
		if country.IsNotFound(err) {
			return err
		}
		return country.StorageUnavailable(err, "set favorite")
	}
	return nil
}

// favoriteFlags returns the stored favorite flag for each of names that exists.
func favoriteFlags(ctx context.Context, db bun.IDB, names []string) (map[string]bool, error) {
	flags := make(map[string]bool, len(names))
	for start := 0; start < len(names); start += lookupChunkSize {
		end := min(start+lookupChunkSize, len(names))

		var rows []countryRow
		err := db.NewSelect().
			Model(&rows).
			Column("name", "is_favorite").
			Where("name IN (?)", bun.In(names[start:end])).
			Scan(ctx)
		if err != nil {
			return nil, err
		}
		for _, r := range rows {
			flags[r.Name] = r.IsFavorite
		}
	}
	return flags, nil
}

func insertRows(ctx context.Context, db bun.IDB, rows []countryRow) error {
	for start := 0; start < len(rows); start += insertChunkSize {
		end := min(start+insertChunkSize, len(rows))

		chunk := rows[start:end]
		_, err := db.NewInsert().
			Model(&chunk).
			On("CONFLICT (name) DO UPDATE").
			Exec(ctx)
		if err != nil {
			return err
		}
	}
	return nil
}
