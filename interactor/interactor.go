package interactor

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/goliatone/go-errors"
	"github.com/google/uuid"

	"github.com/goliatone/go-country-cache/cache"
	"github.com/goliatone/go-country-cache/country"
)

const (
	keyFetchAll    = "FetchAll"
	keyFetchByName = "FetchByName"
)

// Interactor turns actions into result streams over a store and a remote source.
type Interactor struct {
	store         country.Store
	source        country.Source
	flights       cache.CacheService
	keySerializer cache.KeySerializer
	logger        *slog.Logger
	newRequestID  func() string
	fetchTimeout  time.Duration
}

// Option configures an Interactor.
type Option func(*Interactor)

// WithLogger sets the logger for action outcomes.
func WithLogger(logger *slog.Logger) Option {
	return func(i *Interactor) {
		if logger != nil {
			i.logger = logger
		}
	}
}

// WithRequestIDs replaces the uuid based request id generator.
func WithRequestIDs(fn func() string) Option {
	return func(i *Interactor) {
		if fn != nil {
			i.newRequestID = fn
		}
	}
}

// WithKeySerializer replaces the serializer used for remote load keys.
func WithKeySerializer(ks cache.KeySerializer) Option {
	return func(i *Interactor) {
		if ks != nil {
			i.keySerializer = ks
		}
	}
}

// WithFetchTimeout bounds each remote load. Remote loads are shared between
// callers and outlive any single caller's context, so this is the only limit
// on how long one can run. Zero leaves them unbounded.
func WithFetchTimeout(d time.Duration) Option {
	return func(i *Interactor) {
		if d > 0 {
			i.fetchTimeout = d
		}
	}
}

// New builds an Interactor. flights deduplicates concurrent remote loads and
// remembers completed ones for its TTL.
func New(store country.Store, source country.Source, flights cache.CacheService, opts ...Option) *Interactor {
	i := &Interactor{
		store:         store,
		source:        source,
		flights:       flights,
		keySerializer: cache.NewDefaultKeySerializer(),
		logger:        slog.New(slog.NewTextHandler(io.Discard, nil)),
		newRequestID:  func() string { return uuid.New().String() },
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Process runs action in the background. The returned channel yields an
// InProgress result followed by exactly one Success or Failure, then closes.
// When ctx is done before the terminal result, the channel closes without it.
func (i *Interactor) Process(ctx context.Context, action Action) <-chan Result {
	ch := make(chan Result, 2)
	id := i.newRequestID()

	go func() {
		defer close(ch)
		if ctx.Err() != nil {
			return
		}

		refreshing := false
		if load, ok := action.(LoadCountries); ok {
			refreshing = load.Refreshing
		}
		ch <- Result{Action: action, RequestID: id, Status: StatusInProgress, Refreshing: refreshing}

		start := time.Now()
		countries, err := i.execute(ctx, action)
		if ctx.Err() != nil {
			i.logger.DebugContext(ctx, "action abandoned",
				"action", action.ActionName(),
				"request_id", id,
			)
			return
		}

		if err != nil {
			err = withRequestID(err, id)
			attrs := []slog.Attr{
				slog.String("action", action.ActionName()),
				slog.String("request_id", id),
				slog.Duration("duration", time.Since(start)),
				slog.String("error", err.Error()),
			}
			attrs = append(attrs, errors.ToSlogAttributes(err)...)
			i.logger.LogAttrs(ctx, slog.LevelError, "action failed", attrs...)

			ch <- Result{Action: action, RequestID: id, Status: StatusFailure, Err: err}
			return
		}

		i.logger.InfoContext(ctx, "action completed",
			"action", action.ActionName(),
			"request_id", id,
			"count", len(countries),
			"duration", time.Since(start),
		)
		ch <- Result{Action: action, RequestID: id, Status: StatusSuccess, Countries: countries}
	}()

	return ch
}

// Run processes action and waits for its terminal result. If ctx ends first
// the returned result is a Failure carrying the context error.
func (i *Interactor) Run(ctx context.Context, action Action) Result {
	last := Result{Action: action, Status: StatusIdle}
	for r := range i.Process(ctx, action) {
		last = r
	}
	if !last.Status.Terminal() {
		err := ctx.Err()
		if err == nil {
			err = context.Canceled
		}
		last.Status = StatusFailure
		last.Err = err
	}
	return last
}

func (i *Interactor) execute(ctx context.Context, action Action) ([]country.Country, error) {
	switch a := action.(type) {
	case LoadCountries:
		return i.loadCountries(ctx, a.Refreshing)
	case SearchCountries:
		return i.searchCountries(ctx, a.Query)
	case LoadFavorites:
		return i.store.Favorites(ctx)
	case LoadCountry:
		c, err := i.store.Get(ctx, a.Name)
		if err != nil {
			return nil, err
		}
		return []country.Country{c}, nil
	case SetFavorite:
		return i.setFavorite(ctx, a.Name, a.Favorite)
	default:
		return nil, errors.New(fmt.Sprintf("unsupported action %T", action), errors.CategoryBadInput)
	}
}

func (i *Interactor) loadCountries(ctx context.Context, refreshing bool) ([]country.Country, error) {
	if !refreshing {
		stored, err := i.store.List(ctx)
		if err != nil {
			return nil, err
		}
		if len(stored) > 0 {
			return stored, nil
		}
	}

	key := i.keySerializer.SerializeKey(keyFetchAll)
	if refreshing {
		if err := i.flights.Delete(ctx, key); err != nil {
			i.logger.WarnContext(ctx, "dropping remote catalog entry failed", "error", err)
		}
	}

	_, err := cache.GetOrFetch(ctx, i.flights, key, i.remoteLoad(i.source.FetchAll))
	if err != nil {
		return nil, err
	}

	if refreshing {
		// search loads remembered before the refresh describe an older catalog
		if err := i.flights.DeleteByPrefix(ctx, i.keySerializer.SerializeKey(keyFetchByName)); err != nil {
			i.logger.WarnContext(ctx, "dropping remote search entries failed", "error", err)
		}
	}

	return i.store.List(ctx)
}

func (i *Interactor) searchCountries(ctx context.Context, query string) ([]country.Country, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []country.Country{}, nil
	}

	key := i.keySerializer.SerializeKey(keyFetchByName, strings.ToLower(query))
	fetch := func(ctx context.Context) ([]country.Country, error) {
		return i.source.FetchByName(ctx, query)
	}
	if _, err := cache.GetOrFetch(ctx, i.flights, key, i.remoteLoad(fetch)); err != nil {
		return nil, err
	}

	return i.store.Search(ctx, query)
}

// remoteLoad fetches from the source under the fetch timeout and reconciles
// the result into the store.
func (i *Interactor) remoteLoad(fetch func(context.Context) ([]country.Country, error)) cache.FetchFn[country.ReconcileStats] {
	return func(ctx context.Context) (country.ReconcileStats, error) {
		fetchCtx := ctx
		if i.fetchTimeout > 0 {
			var cancel context.CancelFunc
			fetchCtx, cancel = context.WithTimeout(ctx, i.fetchTimeout)
			defer cancel()
		}

		remote, err := fetch(fetchCtx)
		if err != nil {
			return country.ReconcileStats{}, err
		}
		return i.store.ReconcileAndStore(ctx, remote)
	}
}

func (i *Interactor) setFavorite(ctx context.Context, name string, favorite bool) ([]country.Country, error) {
	if err := i.store.SetFavorite(ctx, name, favorite); err != nil {
		return nil, err
	}

	c, err := i.store.Get(ctx, name)
	if country.IsNotFound(err) {
		return []country.Country{}, nil
	}
	if err != nil {
		return nil, err
	}
	return []country.Country{c}, nil
}

func withRequestID(err error, id string) error {
	var rich *errors.Error
	if errors.As(err, &rich) {
		return rich.Clone().WithRequestID(id)
	}
	return err
}
