package tolapi

import (
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/hthiyaga/tol-api/cache"
)

// Option is a functional option for configuring a [Client] via [New].
type Option func(*Client) error

// WithCacheMode sets the cache mode. The mode is validated by [New]; any
// value outside the five defined modes fails construction.
func WithCacheMode(mode CacheMode) Option {
	return func(c *Client) error {
		c.mode = mode
		return nil
	}
}

// WithCacheStore sets the cache store. The default is [cache.Nop].
func WithCacheStore(store cache.Store) Option {
	return func(c *Client) error {
		if store == nil {
			return errors.New("cache store must not be nil")
		}
		c.store = store
		return nil
	}
}

// WithCacheTTL sets the lifetime of cached GET responses. Zero, the default,
// stores them without an explicit lifetime. Token cache entries always use
// the token's reported expiry instead.
func WithCacheTTL(ttl time.Duration) Option {
	return func(c *Client) error {
		if ttl < 0 {
			return errors.New("cache TTL must not be negative")
		}
		c.cacheTTL = ttl
		return nil
	}
}

// WithTokens seeds the client with an existing access/refresh token pair,
// skipping the initial acquisition for as long as the access token remains
// valid.
func WithTokens(access, refresh string) Option {
	return func(c *Client) error {
		c.accessToken = access
		c.refreshToken = refresh
		return nil
	}
}

// WithDefaultHeaders sets headers applied to every request. Caller-supplied
// headers override them; Accept-Encoding and Authorization are forced last
// regardless.
func WithDefaultHeaders(h http.Header) Option {
	return func(c *Client) error {
		c.defaultHeaders = h.Clone()
		return nil
	}
}

// WithKeyFunc replaces the cache key derivation. The function must be pure
// and deterministic across processes.
func WithKeyFunc(fn KeyFunc) Option {
	return func(c *Client) error {
		if fn == nil {
			return errors.New("key func must not be nil")
		}
		c.keyFunc = fn
		return nil
	}
}

// WithExpiryDetectors replaces the expired-token detectors applied to 401
// responses. Detectors run in order; the first that recognises the body
// shape decides.
func WithExpiryDetectors(detectors ...ExpiryDetector) Option {
	return func(c *Client) error {
		if len(detectors) == 0 {
			return errors.New("at least one expiry detector is required")
		}
		c.detectors = detectors
		return nil
	}
}

// WithLogger injects a logger. The default discards everything.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Client) error {
		c.logger = logger
		return nil
	}
}

// WithMetrics attaches a metrics collector.
func WithMetrics(m *Metrics) Option {
	return func(c *Client) error {
		c.metrics = m
		return nil
	}
}
