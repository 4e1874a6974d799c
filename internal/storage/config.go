package storage

import "strings"

// Supported database/sql driver names.
const (
	DriverSQLite3  = "sqlite3"  // github.com/mattn/go-sqlite3
	DriverSQLite   = "sqlite"   // modernc.org/sqlite
	DriverPostgres = "postgres" // github.com/lib/pq
)

// Config describes how to reach the database backing the store.
type Config struct {
	// Driver is one of DriverSQLite3, DriverSQLite or DriverPostgres.
	Driver string

	// DSN is passed to sql.Open unchanged. Leave empty to use DefaultDSN.
	DSN string

	// MaxOpenConns caps the pool. Zero keeps the database/sql default.
	MaxOpenConns int

	// StrictFavorites makes SetFavorite fail with NotFound for unknown names
	// instead of ignoring them.
	StrictFavorites bool
}

// DefaultConfig returns a file backed SQLite configuration.
func DefaultConfig() Config {
	return Config{
		Driver: DriverSQLite3,
		DSN:    DefaultDSN(DriverSQLite3, "countries.db"),
	}
}

// DefaultDSN builds a DSN for a SQLite database file with WAL journaling and
// a busy timeout, using the parameter syntax of the given driver.
func DefaultDSN(driver, path string) string {
	switch driver {
	case DriverSQLite:
		return "file:" + path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	case DriverSQLite3:
		return "file:" + path + "?_busy_timeout=5000&_journal_mode=WAL"
	default:
		return ""
	}
}

// Validate checks if the configuration values are valid.
func (c Config) Validate() error {
	switch c.Driver {
	case DriverSQLite3, DriverSQLite, DriverPostgres:
	case "":
		return &ConfigError{Field: "Driver", Message: "cannot be empty"}
	default:
		return &ConfigError{Field: "Driver", Message: "unsupported driver " + c.Driver}
	}

	if strings.TrimSpace(c.DSN) == "" {
		return &ConfigError{Field: "DSN", Message: "cannot be empty"}
	}

	if c.MaxOpenConns < 0 {
		return &ConfigError{Field: "MaxOpenConns", Message: "must be non-negative"}
	}

	return nil
}

// ConfigError represents a configuration validation error.
type ConfigError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	return "config error in field " + e.Field + ": " + e.Message
}
