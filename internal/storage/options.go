package storage

import "log/slog"

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used for write operations.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithStrictFavorites makes SetFavorite return a NotFound error when the
// name is not stored. The default silently ignores unknown names.
func WithStrictFavorites() Option {
	return func(s *Store) {
		s.strictFavorites = true
	}
}
