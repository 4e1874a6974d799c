// Package config loads the application configuration from the environment.
package config

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/goliatone/go-country-cache/cache"
	"github.com/goliatone/go-country-cache/internal/restcountries"
	"github.com/goliatone/go-country-cache/internal/storage"
)

// Config is the complete application configuration.
type Config struct {
	DB    DBConfig    `envPrefix:"COUNTRIES_DB_"`
	API   APIConfig   `envPrefix:"COUNTRIES_API_"`
	Cache CacheConfig `envPrefix:"COUNTRIES_CACHE_"`
	Log   LogConfig   `envPrefix:"COUNTRIES_LOG_"`

	// RemoteCacheTTL is how long a completed remote load is shared with
	// later identical loads.
	RemoteCacheTTL time.Duration `env:"COUNTRIES_REMOTE_CACHE_TTL" envDefault:"10m"`
}

type DBConfig struct {
	Driver          string `env:"DRIVER" envDefault:"sqlite3"`
	DSN             string `env:"DSN"`
	MaxOpenConns    int    `env:"MAX_OPEN_CONNS"`
	StrictFavorites bool   `env:"STRICT_FAVORITES"`
}

type APIConfig struct {
	BaseURL   string        `env:"BASE_URL" envDefault:"https://restcountries.com/v2"`
	Timeout   time.Duration `env:"TIMEOUT" envDefault:"15s"`
	UserAgent string        `env:"USER_AGENT" envDefault:"go-country-cache"`
}

type CacheConfig struct {
	Capacity           int           `env:"CAPACITY" envDefault:"4096"`
	NumShards          int           `env:"NUM_SHARDS" envDefault:"16"`
	TTL                time.Duration `env:"TTL" envDefault:"5m"`
	EvictionPercentage int           `env:"EVICTION_PERCENTAGE" envDefault:"10"`
	EvictionInterval   time.Duration `env:"EVICTION_INTERVAL"`
}

type LogConfig struct {
	Level  slog.Level `env:"LEVEL" envDefault:"info"`
	Format string     `env:"FORMAT" envDefault:"text"`
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// ParseEnvFrom loads configuration from the given variables only.
func ParseEnvFrom(target any, environ map[string]string) error {
	if err := env.ParseWithOptions(target, env.Options{Environment: environ}); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Load parses the process environment and validates the result.
func Load() (Config, error) {
	var cfg Config
	if err := ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, cfg.Validate()
}

// LoadFrom parses environ and validates the result.
func LoadFrom(environ map[string]string) (Config, error) {
	var cfg Config
	if err := ParseEnvFrom(&cfg, environ); err != nil {
		return Config{}, err
	}
	return cfg, cfg.Validate()
}

// Default returns the configuration used when no variable is set.
func Default() Config {
	cfg, _ := LoadFrom(map[string]string{})
	return cfg
}

// Validate checks every section.
func (c Config) Validate() error {
	if err := c.Storage().Validate(); err != nil {
		return fmt.Errorf("db: %w", err)
	}
	if err := c.Remote().Validate(); err != nil {
		return fmt.Errorf("api: %w", err)
	}
	if err := c.StoreCache().Validate(); err != nil {
		return fmt.Errorf("cache: %w", err)
	}
	if err := c.RemoteCache().Validate(); err != nil {
		return fmt.Errorf("remote cache: %w", err)
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("log: unsupported format %q", c.Log.Format)
	}
	return nil
}

// Storage returns the database settings. An empty DSN on a SQLite driver
// points at countries.db in the working directory.
func (c Config) Storage() storage.Config {
	dsn := c.DB.DSN
	if dsn == "" {
		dsn = storage.DefaultDSN(c.DB.Driver, "countries.db")
	}
	return storage.Config{
		Driver:          c.DB.Driver,
		DSN:             dsn,
		MaxOpenConns:    c.DB.MaxOpenConns,
		StrictFavorites: c.DB.StrictFavorites,
	}
}

// Remote returns the REST client settings.
func (c Config) Remote() restcountries.Config {
	return restcountries.Config{
		BaseURL:   c.API.BaseURL,
		Timeout:   c.API.Timeout,
		UserAgent: c.API.UserAgent,
	}
}

// StoreCache returns the settings of the read cache in front of the store.
func (c Config) StoreCache() cache.Config {
	return cache.Config{
		Capacity:           c.Cache.Capacity,
		NumShards:          c.Cache.NumShards,
		TTL:                c.Cache.TTL,
		EvictionPercentage: c.Cache.EvictionPercentage,
		EvictionInterval:   c.Cache.EvictionInterval,
	}
}

// RemoteCache returns the settings of the cache that deduplicates remote loads.
func (c Config) RemoteCache() cache.Config {
	return cache.Config{
		Capacity:           256,
		NumShards:          4,
		TTL:                c.RemoteCacheTTL,
		EvictionPercentage: 10,
		EvictionInterval:   c.Cache.EvictionInterval,
	}
}

// Logger builds a slog.Logger writing to w in the configured format.
func (c Config) Logger(w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: c.Log.Level}
	if strings.EqualFold(c.Log.Format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
