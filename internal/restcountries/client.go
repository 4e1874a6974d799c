package restcountries

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goliatone/go-country-cache/country"
)

const (
	// DefaultBaseURL is the REST Countries v2 endpoint.
	DefaultBaseURL = "https://restcountries.com/v2"

	fields       = "name,capital,region,population,flag,flags"
	maxBodyBytes = 16 << 20
)

// Config configures the HTTP client.
type Config struct {
	BaseURL   string
	Timeout   time.Duration
	UserAgent string
}

// DefaultConfig returns the public API endpoint with a 15s timeout.
func DefaultConfig() Config {
	return Config{
		BaseURL:   DefaultBaseURL,
		Timeout:   15 * time.Second,
		UserAgent: "go-country-cache",
	}
}

// Validate checks if the configuration values are valid.
func (c Config) Validate() error {
	u, err := url.Parse(c.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return &ConfigError{Field: "BaseURL", Message: "must be an absolute URL"}
	}
	if c.Timeout <= 0 {
		return &ConfigError{Field: "Timeout", Message: "must be greater than 0"}
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

// Client fetches countries from a REST Countries v2 compatible API.
type Client struct {
	baseURL   string
	userAgent string
	http      *http.Client
	logger    *slog.Logger
}

var _ country.Source = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client. Its Timeout is left as is.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithLogger sets the logger used for request tracing.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New validates cfg and builds a Client.
func New(cfg Config, opts ...Option) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c := &Client{
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		userAgent: cfg.UserAgent,
		http:      &http.Client{Timeout: cfg.Timeout},
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// FetchAll returns the whole catalog.
func (c *Client) FetchAll(ctx context.Context) ([]country.Country, error) {
	countries, _, err := c.fetch(ctx, "/all")
	return countries, err
}

// FetchByName returns the countries whose name matches pattern. An unknown
// name is an empty result, not an error.
func (c *Client) FetchByName(ctx context.Context, pattern string) ([]country.Country, error) {
	q := strings.TrimSpace(pattern)
	if q == "" {
		return []country.Country{}, nil
	}

	countries, status, err := c.fetch(ctx, "/name/"+url.PathEscape(q))
	if status == http.StatusNotFound {
		return []country.Country{}, nil
	}
	return countries, err
}

type apiCountry struct {
	Name       string `json:"name"`
	Capital    string `json:"capital"`
	Region     string `json:"region"`
	Population int64  `json:"population"`
	Flag       string `json:"flag"`
	Flags      struct {
		SVG string `json:"svg"`
		PNG string `json:"png"`
	} `json:"flags"`
}

func (a apiCountry) toCountry() country.Country {
	flag := a.Flag
	if flag == "" {
		flag = a.Flags.SVG
	}
	if flag == "" {
		flag = a.Flags.PNG
	}

	return country.Country{
		Name:       strings.TrimSpace(a.Name),
		Capital:    strings.TrimSpace(a.Capital),
		Region:     strings.TrimSpace(a.Region),
		Population: a.Population,
		FlagURL:    flag,
	}
}

func (c *Client) fetch(ctx context.Context, path string) ([]country.Country, int, error) {
	endpoint := c.baseURL + path + "?fields=" + fields

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, 0, country.NetworkError(err, "restcountries: build request")
	}
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, 0, country.NetworkError(err, "restcountries: request failed").
			WithMetadata(map[string]any{"url": endpoint})
	}
	defer resp.Body.Close()

	c.logger.DebugContext(ctx, "restcountries response",
		"url", endpoint,
		"status", resp.StatusCode,
		"duration", time.Since(start),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// drain so the connection can be reused
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4<<10))
		return nil, resp.StatusCode, country.NetworkError(nil, fmt.Sprintf("restcountries: unexpected status %d", resp.StatusCode)).
			WithCode(resp.StatusCode).
			WithMetadata(map[string]any{"url": endpoint})
	}

	countries, err := decode(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, resp.StatusCode, err
	}
	return countries, resp.StatusCode, nil
}

func decode(r io.Reader) ([]country.Country, error) {
	var payload []apiCountry
	if err := json.NewDecoder(r).Decode(&payload); err != nil {
		return nil, country.DecodeError(err, "restcountries: malformed payload")
	}

	out := make([]country.Country, 0, len(payload))
	for i, a := range payload {
		c := a.toCountry()
		if c.Name == "" {
			return nil, country.DecodeError(nil, fmt.Sprintf("restcountries: record %d has no name", i))
		}
		if c.Population < 0 {
			return nil, country.DecodeError(nil, fmt.Sprintf("restcountries: record %q has negative population", c.Name))
		}
		out = append(out, c)
	}
	return out, nil
}
