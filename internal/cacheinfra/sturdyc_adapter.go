package cacheinfra

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/viccon/sturdyc"
)

// Config holds the configuration for the sturdyc cache adapter.
type Config struct {
	// Capacity defines the maximum number of entries that the cache can store.
	// Must be greater than 0.
	Capacity int

	// NumShards determines the number of cache shards for concurrent access.
	// Must be greater than 0 and not larger than Capacity.
	NumShards int

	// TTL is the default time-to-live for cached entries.
	// Must be greater than 0.
	TTL time.Duration

	// EvictionPercentage specifies what percentage of entries to evict
	// when the cache reaches its capacity. Must be between 1-100.
	EvictionPercentage int

	// EvictionInterval sets how often the cache checks for expired entries.
	// Zero value uses the sturdyc default.
	EvictionInterval time.Duration
}

// DefaultConfig returns a Config sized for a country catalog: a few hundred
// records and a handful of list and search results.
func DefaultConfig() Config {
	return Config{
		Capacity:           4096,
		NumShards:          16,
		TTL:                5 * time.Minute,
		EvictionPercentage: 10,
	}
}

// ToSturdycOptions converts the optional parts of Config to sturdyc options.
// Early refreshes are never enabled: a background refresh would run outside
// the caller's locks and could resurrect data a write just invalidated.
func (c Config) ToSturdycOptions() []sturdyc.Option {
	var options []sturdyc.Option

	if c.EvictionInterval > 0 {
		options = append(options, sturdyc.WithEvictionInterval(c.EvictionInterval))
	}

	return options
}

// Validate checks if the configuration values are valid.
func (c Config) Validate() error {
	if c.Capacity <= 0 {
		return &ConfigError{Field: "Capacity", Message: "must be greater than 0"}
	}

	if c.NumShards <= 0 {
		return &ConfigError{Field: "NumShards", Message: "must be greater than 0"}
	}

	if c.NumShards > c.Capacity {
		return &ConfigError{Field: "NumShards", Message: "must not exceed Capacity"}
	}

	if c.TTL <= 0 {
		return &ConfigError{Field: "TTL", Message: "must be greater than 0"}
	}

	if c.EvictionPercentage < 1 || c.EvictionPercentage > 100 {
		return &ConfigError{Field: "EvictionPercentage", Message: "must be between 1 and 100"}
	}

	if c.EvictionInterval < 0 {
		return &ConfigError{Field: "EvictionInterval", Message: "must be non-negative"}
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

// SturdycService wraps a sturdyc client. sturdyc stores the values, and the
// service tracks one flight per key so that concurrent GetOrFetch calls share
// a single fetch.
type SturdycService struct {
	client *sturdyc.Client[any]

	mu sync.Mutex
	// flights holds the flight new callers join, tails the latest flight
	// started per key whether or not it can still be joined.
	flights map[string]*flight
	tails   map[string]*flight
}

// flight is a fetch shared by every caller waiting on the same key. It runs
// on a context detached from any single caller and is canceled once the last
// waiter has left. A flight starts only after the previous one for its key
// is done, so it never picks up a value read before an invalidation.
type flight struct {
	ctx     context.Context
	cancel  context.CancelFunc
	prev    *flight
	waiters int
	stale   bool
	done    chan struct{}
	val     any
	err     error
}

// NewSturdycService validates cfg and initializes a sturdyc client.
func NewSturdycService(cfg Config) (*SturdycService, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	client := sturdyc.New[any](
		cfg.Capacity,
		cfg.NumShards,
		cfg.TTL,
		cfg.EvictionPercentage,
		cfg.ToSturdycOptions()...,
	)

	return &SturdycService{
		client:  client,
		flights: make(map[string]*flight),
		tails:   make(map[string]*flight),
	}, nil
}

// GetOrFetch returns the cached value for key or runs fetchFn, stores its
// result and returns it. Errors from fetchFn are returned and not cached.
//
// fetchFn receives a context that keeps the values of the caller that started
// the flight but not its cancellation. A caller whose ctx ends stops waiting
// and gets ctx.Err(); the fetch keeps running for the remaining callers and
// is canceled only when nobody is waiting anymore. The result of a fetch
// nobody waited for is not kept.
func (s *SturdycService) GetOrFetch(ctx context.Context, key string, fetchFn func(context.Context) (any, error)) (any, error) {
	if fetchFn == nil {
		return nil, &ConfigError{Field: "fetchFn", Message: "cannot be nil"}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f := s.join(ctx, key, fetchFn)
	defer s.leave(key, f)

	select {
	case <-f.done:
		return f.val, f.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (s *SturdycService) join(ctx context.Context, key string, fetchFn func(context.Context) (any, error)) *flight {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, ok := s.flights[key]
	if !ok {
		fctx, cancel := context.WithCancel(context.WithoutCancel(ctx))
		f = &flight{ctx: fctx, cancel: cancel, prev: s.tails[key], done: make(chan struct{})}
		s.flights[key] = f
		s.tails[key] = f
		go s.run(key, f, fetchFn)
	}
	f.waiters++
	return f
}

func (s *SturdycService) leave(key string, f *flight) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f.waiters--
	if f.waiters > 0 {
		return
	}
	// nobody is waiting: stop the fetch and let the next caller start over
	f.cancel()
	if s.flights[key] == f {
		delete(s.flights, key)
	}
}

func (s *SturdycService) run(key string, f *flight, fetchFn func(context.Context) (any, error)) {
	if f.prev != nil {
		<-f.prev.done
	}

	var val any
	err := f.ctx.Err()
	if err == nil {
		val, err = s.client.GetOrFetch(f.ctx, key, fetchFn)
	}

	s.mu.Lock()
	if s.flights[key] == f {
		delete(s.flights, key)
	}
	if s.tails[key] == f {
		delete(s.tails, key)
	}
	if err == nil && (f.stale || f.ctx.Err() != nil) {
		s.client.Delete(key)
	}
	f.val, f.err = val, err
	s.mu.Unlock()

	f.cancel()
	close(f.done)
}

// Delete removes a single entry from the cache. A fetch already running for
// key still answers its callers, but its result is not kept.
func (s *SturdycService) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.invalidate(func(k string) bool { return k == key })
	s.client.Delete(key)
	return nil
}

// DeleteByPrefix removes every entry whose key starts with prefix.
// An empty prefix flushes the cache.
func (s *SturdycService) DeleteByPrefix(ctx context.Context, prefix string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	match := func(k string) bool { return strings.HasPrefix(k, prefix) }
	s.invalidate(match)
	for _, key := range s.client.ScanKeys() {
		if match(key) {
			s.client.Delete(key)
		}
	}
	return nil
}

// invalidate detaches the running flights whose key matches. Callers that
// arrive afterwards start a new flight.
func (s *SturdycService) invalidate(match func(string) bool) {
	for key, f := range s.flights {
		if match(key) {
			f.stale = true
			delete(s.flights, key)
		}
	}
}

// Size returns the number of entries currently held.
func (s *SturdycService) Size() int {
	return s.client.Size()
}
