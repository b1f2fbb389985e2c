package tolapi

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/sethvargo/go-envconfig"

	"github.com/hthiyaga/tol-api/cache"
)

// Config assembles a client from environment configuration. It covers the
// common deployment knobs; anything beyond that is available through [New]
// and its options directly.
type Config struct {
	BaseURL      string `env:"TOL_BASE_URL, required"`
	ClientID     string `env:"TOL_CLIENT_ID, required"`
	ClientSecret string `env:"TOL_CLIENT_SECRET, required"`

	// Username and Password switch the token grant from client_credentials
	// to the resource-owner password grant. Both must be set together.
	Username string `env:"TOL_USERNAME"`
	Password string `env:"TOL_PASSWORD"`

	// CacheMode is one of none, get, token, all or refresh.
	CacheMode       string `env:"TOL_CACHE_MODE, default=none"`
	CacheTTLSeconds int    `env:"TOL_CACHE_TTL_SECS, default=300"`

	// MemcacheAddr selects a memcached-backed cache store. When empty and a
	// cache mode is set, an in-memory store is used.
	MemcacheAddr   string `env:"TOL_MEMCACHE_ADDR"`
	CacheMaxSize   int    `env:"TOL_CACHE_MAX_SIZE, default=10000"`
	TimeoutSeconds int    `env:"TOL_HTTP_TIMEOUT_SECS, default=30"`

	// RequestsPerSecond throttles outgoing exchanges; zero disables the
	// limiter.
	RequestsPerSecond float64 `env:"TOL_REQUESTS_PER_SECOND"`
	RequestBurst      int     `env:"TOL_REQUEST_BURST, default=1"`
}

// LoadConfig reads the configuration from the OS environment.
func LoadConfig(ctx context.Context) (Config, error) {
	return loadConfig(ctx, nil)
}

func loadConfig(ctx context.Context, lookup envconfig.Lookuper) (Config, error) {
	var cfg Config
	err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: lookup, // nil defaults to OS environment
	})
	if err != nil {
		return cfg, err
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid client configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks invariants envconfig tags cannot express.
func (c Config) Validate() error {
	if _, err := ParseCacheMode(c.CacheMode); err != nil {
		return err
	}

	if (c.Username == "") != (c.Password == "") {
		return fmt.Errorf("TOL_USERNAME and TOL_PASSWORD must be set together")
	}

	return nil
}

// Client builds a ready-to-use client: an [HTTPTransport] with the configured
// timeout and throttle, a credentials provider, and a cache store matching
// the cache mode. Additional options are applied last and may override any of
// these.
func (c Config) Client(opts ...Option) (*Client, error) {
	mode, err := ParseCacheMode(c.CacheMode)
	if err != nil {
		return nil, err
	}

	transportOpts := []TransportOption{
		WithHTTPClient(&http.Client{Timeout: time.Duration(c.TimeoutSeconds) * time.Second}),
	}
	if c.RequestsPerSecond > 0 {
		transportOpts = append(transportOpts, WithRequestsPerSecond(c.RequestsPerSecond, c.RequestBurst))
	}
	transport := NewHTTPTransport(transportOpts...)

	var provider TokenProvider
	if c.Username != "" {
		provider = OwnerCredentials(c.ClientID, c.ClientSecret, c.Username, c.Password)
	} else {
		provider = ClientCredentials(c.ClientID, c.ClientSecret)
	}

	var store cache.Store
	switch {
	case mode == CacheNone:
		store = cache.Nop()
	case c.MemcacheAddr != "":
		store = cache.NewMemcache(c.MemcacheAddr)
	default:
		store, err = cache.NewMemory(c.CacheMaxSize)
		if err != nil {
			return nil, fmt.Errorf("cache configuration failed: %w", err)
		}
	}

	clientOpts := []Option{
		WithCacheMode(mode),
		WithCacheStore(store),
		WithCacheTTL(time.Duration(c.CacheTTLSeconds) * time.Second),
	}
	clientOpts = append(clientOpts, opts...)

	return New(transport, provider, c.BaseURL, clientOpts...)
}
