package di

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/goliatone/go-country-cache/cache"
	"github.com/goliatone/go-country-cache/config"
	"github.com/goliatone/go-country-cache/country"
	"github.com/goliatone/go-country-cache/interactor"
	"github.com/goliatone/go-country-cache/internal/restcountries"
	"github.com/goliatone/go-country-cache/internal/storage"
	"github.com/goliatone/go-country-cache/storecache"
)

// Container wires the application together from a config.Config.
// It owns the database handle, the two cache services, the remote source
// and the interactor, and hands out the same instances on every call.
type Container struct {
	config        config.Config
	logger        *slog.Logger
	storage       *storage.Store
	store         *storecache.CachedStore
	cacheService  cache.CacheService
	flights       cache.CacheService
	keySerializer cache.KeySerializer
	source        country.Source
	interactor    *interactor.Interactor
}

type containerOptions struct {
	logger     *slog.Logger
	source     country.Source
	requestIDs func() string
}

// Option customizes NewContainer.
type Option func(*containerOptions)

// WithLogger sets the logger shared by every component.
func WithLogger(logger *slog.Logger) Option {
	return func(o *containerOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithSource replaces the REST Countries client.
func WithSource(source country.Source) Option {
	return func(o *containerOptions) {
		if source != nil {
			o.source = source
		}
	}
}

// WithRequestIDs sets the request id generator used by the interactor.
func WithRequestIDs(fn func() string) Option {
	return func(o *containerOptions) {
		if fn != nil {
			o.requestIDs = fn
		}
	}
}

// NewContainer validates cfg, opens and migrates the database and builds the
// cached store, the remote client and the interactor on top of it.
// The caller must Close the container.
func NewContainer(ctx context.Context, cfg config.Config, opts ...Option) (*Container, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	o := containerOptions{logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	for _, opt := range opts {
		opt(&o)
	}

	cacheService, err := cache.NewCacheService(cfg.StoreCache())
	if err != nil {
		return nil, fmt.Errorf("store cache: %w", err)
	}
	flights, err := cache.NewCacheService(cfg.RemoteCache())
	if err != nil {
		return nil, fmt.Errorf("remote cache: %w", err)
	}

	source := o.source
	if source == nil {
		client, err := restcountries.New(cfg.Remote(), restcountries.WithLogger(o.logger))
		if err != nil {
			return nil, err
		}
		source = client
	}

	db, err := storage.Open(ctx, cfg.Storage(), storage.WithLogger(o.logger))
	if err != nil {
		return nil, err
	}

	keySerializer := cache.NewDefaultKeySerializer()
	store := storecache.New(db, cacheService, keySerializer, storecache.WithLogger(o.logger))

	interactorOpts := []interactor.Option{
		interactor.WithLogger(o.logger),
		interactor.WithKeySerializer(keySerializer),
		interactor.WithFetchTimeout(cfg.API.Timeout),
	}
	if o.requestIDs != nil {
		interactorOpts = append(interactorOpts, interactor.WithRequestIDs(o.requestIDs))
	}

	return &Container{
		config:        cfg,
		logger:        o.logger,
		storage:       db,
		store:         store,
		cacheService:  cacheService,
		flights:       flights,
		keySerializer: keySerializer,
		source:        source,
		interactor:    interactor.New(store, source, flights, interactorOpts...),
	}, nil
}

// NewContainerFromEnv loads the configuration from the environment and
// builds a container from it.
func NewContainerFromEnv(ctx context.Context, opts ...Option) (*Container, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	return NewContainer(ctx, cfg, opts...)
}

// Config returns the configuration the container was built from.
func (c *Container) Config() config.Config {
	return c.config
}

func (c *Container) Logger() *slog.Logger {
	return c.logger
}

// Store returns the cached store. This is the store every other component
// uses; writes made through it keep the read cache consistent.
func (c *Container) Store() *storecache.CachedStore {
	return c.store
}

// Storage returns the database backed store underneath the cache.
// Writing to it directly leaves stale entries in the read cache until the
// next bulk write or Flush.
func (c *Container) Storage() *storage.Store {
	return c.storage
}

func (c *Container) Source() country.Source {
	return c.source
}

func (c *Container) Interactor() *interactor.Interactor {
	return c.interactor
}

// CacheService returns the read cache in front of the store.
func (c *Container) CacheService() cache.CacheService {
	return c.cacheService
}

// KeySerializer returns the key serializer shared by the store cache and
// the interactor.
func (c *Container) KeySerializer() cache.KeySerializer {
	return c.keySerializer
}

// Close releases the database handle.
func (c *Container) Close() error {
	return c.storage.Close()
}
