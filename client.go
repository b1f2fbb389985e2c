package tolapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/hthiyaga/tol-api/cache"
)

// Client orchestrates requests against the API: it builds requests, keeps the
// bearer/refresh token pair current, applies the cache policy, and tracks
// in-flight requests by opaque handle. It is safe for concurrent use.
//
// The transport, token provider and cache store are borrowed collaborators;
// the client never closes them.
type Client struct {
	transport Transport
	provider  TokenProvider
	baseURL   string
	mode      CacheMode
	store     cache.Store
	cacheTTL  time.Duration
	keyFunc   KeyFunc
	detectors []ExpiryDetector
	logger    zerolog.Logger
	metrics   *Metrics

	registry *registry

	mu             sync.Mutex
	accessToken    string
	refreshToken   string
	defaultHeaders http.Header
}

// New constructs a Client for the API rooted at baseURL. The cache mode is
// validated against the five defined values; construction fails fast on any
// other value.
func New(transport Transport, provider TokenProvider, baseURL string, opts ...Option) (*Client, error) {
	if transport == nil {
		return nil, errors.New("tolapi: transport must not be nil")
	}
	if provider == nil {
		return nil, errors.New("tolapi: token provider must not be nil")
	}
	if baseURL == "" {
		return nil, errors.New("tolapi: base URL must not be empty")
	}

	c := &Client{
		transport: transport,
		provider:  provider,
		baseURL:   strings.TrimSuffix(baseURL, "/"),
		mode:      CacheNone,
		store:     cache.Nop(),
		keyFunc:   DefaultKey,
		detectors: DefaultExpiryDetectors,
		logger:    zerolog.Nop(),
		registry:  newRegistry(),
	}

	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, fmt.Errorf("tolapi: applying client option: %w", err)
		}
	}

	if !c.mode.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidCacheMode, int(c.mode))
	}

	return c, nil
}

// StartIndex begins a search/list request for a resource. Multi-valued
// filter entries are serialized as repeated query parameters.
func (c *Client) StartIndex(ctx context.Context, resource string, filters url.Values) (string, error) {
	req := &Request{
		Method: http.MethodGet,
		URL:    entityURL(c.baseURL, resource, "", filters),
		Header: http.Header{},
	}
	return c.start(ctx, req, nil)
}

// Index performs a search/list request and waits for the result.
func (c *Client) Index(ctx context.Context, resource string, filters url.Values) (*Response, error) {
	handle, err := c.StartIndex(ctx, resource, filters)
	if err != nil {
		return nil, err
	}
	return c.End(ctx, handle)
}

// StartGet begins a fetch of a single entity by id.
func (c *Client) StartGet(ctx context.Context, resource, id string, params url.Values) (string, error) {
	req := &Request{
		Method: http.MethodGet,
		URL:    entityURL(c.baseURL, resource, id, params),
		Header: http.Header{},
	}
	return c.start(ctx, req, nil)
}

// Get fetches a single entity by id and waits for the result.
func (c *Client) Get(ctx context.Context, resource, id string, params url.Values) (*Response, error) {
	handle, err := c.StartGet(ctx, resource, id, params)
	if err != nil {
		return nil, err
	}
	return c.End(ctx, handle)
}

// StartPost begins a create request. body is JSON-encoded; Content-Type is
// set only when a body is present. id may be empty.
func (c *Client) StartPost(ctx context.Context, resource, id string, body any) (string, error) {
	req, err := newJSONRequest(http.MethodPost, entityURL(c.baseURL, resource, id, nil), body)
	if err != nil {
		return "", err
	}
	return c.start(ctx, req, nil)
}

// Post performs a create request and waits for the result.
func (c *Client) Post(ctx context.Context, resource, id string, body any) (*Response, error) {
	handle, err := c.StartPost(ctx, resource, id, body)
	if err != nil {
		return nil, err
	}
	return c.End(ctx, handle)
}

// StartPut begins an update request, with the same body and header rules as
// StartPost.
func (c *Client) StartPut(ctx context.Context, resource, id string, body any) (string, error) {
	req, err := newJSONRequest(http.MethodPut, entityURL(c.baseURL, resource, id, nil), body)
	if err != nil {
		return "", err
	}
	return c.start(ctx, req, nil)
}

// Put performs an update request and waits for the result.
func (c *Client) Put(ctx context.Context, resource, id string, body any) (*Response, error) {
	handle, err := c.StartPut(ctx, resource, id, body)
	if err != nil {
		return nil, err
	}
	return c.End(ctx, handle)
}

// StartDelete begins a delete request. id and body are both optional; the
// body and its Content-Type header are included only when a body is given.
func (c *Client) StartDelete(ctx context.Context, resource, id string, body any) (string, error) {
	req, err := newJSONRequest(http.MethodDelete, entityURL(c.baseURL, resource, id, nil), body)
	if err != nil {
		return "", err
	}
	return c.start(ctx, req, nil)
}

// Delete performs a delete request and waits for the result.
func (c *Client) Delete(ctx context.Context, resource, id string, body any) (*Response, error) {
	handle, err := c.StartDelete(ctx, resource, id, body)
	if err != nil {
		return nil, err
	}
	return c.End(ctx, handle)
}

// StartSend begins a request with an arbitrary method against a relative
// path, which is appended to the base URL verbatim.
func (c *Client) StartSend(ctx context.Context, method, path string, body any, headers http.Header) (string, error) {
	req, err := newJSONRequest(method, c.baseURL+"/"+path, body)
	if err != nil {
		return "", err
	}
	return c.start(ctx, req, headers)
}

// Send performs an arbitrary-method request and waits for the result.
func (c *Client) Send(ctx context.Context, method, path string, body any, headers http.Header) (*Response, error) {
	handle, err := c.StartSend(ctx, method, path, body, headers)
	if err != nil {
		return nil, err
	}
	return c.End(ctx, handle)
}

// End resolves a handle issued by one of the Start operations, consuming it.
// A handle served from the cache returns immediately; a live handle blocks
// until the transport completes the exchange. A 401 response recognised as an
// expired token triggers exactly one token refresh and one resend of the
// original request, whose outcome is final.
func (c *Client) End(ctx context.Context, handle string) (*Response, error) {
	out, err := c.registry.resolve(handle)
	if err != nil {
		return nil, err
	}

	if out.cached != nil {
		return out.cached, nil
	}

	resp, err := c.transport.End(ctx, out.transport)
	if err != nil {
		return nil, err
	}

	if tokenExpired(c.detectors, resp) {
		resp, err = c.refreshAndResend(ctx, out.request)
		if err != nil {
			return nil, err
		}
	}

	if out.request.Method == http.MethodGet && c.mode.writesResponses() && resp.StatusCode < http.StatusBadRequest {
		c.writeResponseCache(ctx, out.request, resp)
	}

	return resp, nil
}

// Tokens returns the current access and refresh tokens, either of which may
// be empty.
func (c *Client) Tokens() (access, refresh string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.accessToken, c.refreshToken
}

// SetDefaultHeaders replaces the headers applied to every outgoing request.
// Caller-supplied headers override them; Accept-Encoding and Authorization
// are forced last regardless.
func (c *Client) SetDefaultHeaders(h http.Header) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.defaultHeaders = h.Clone()
}

// start runs the shared front half of every operation: ensure a token,
// finalize headers, consult the cache policy, then either synthesize a handle
// for a cache hit or delegate to the transport.
func (c *Client) start(ctx context.Context, req *Request, caller http.Header) (string, error) {
	c.metrics.recordRequest(req.Method)

	if err := c.ensureToken(ctx); err != nil {
		return "", err
	}

	c.finalizeHeaders(req, caller)

	if req.Method == http.MethodGet && c.mode.readsResponses() {
		key := c.keyFunc(req)

		data, ok, err := c.store.Get(ctx, key)
		if err != nil {
			c.logger.Warn().Err(err).Str("key", key).Msg("cache read failed, falling through to transport")
		}
		if ok {
			if resp, derr := decodeResponse(data); derr == nil {
				c.metrics.recordCacheHit()
				c.logger.Debug().Str("key", key).Msg("cache hit")
				return c.registry.register(outcome{cached: resp, request: req}), nil
			}
			c.logger.Warn().Str("key", key).Msg("undecodable cache entry, falling through to transport")
		}
		c.metrics.recordCacheMiss()
	}

	transportHandle, err := c.transport.Start(ctx, req)
	if err != nil {
		return "", err
	}

	return c.registry.register(outcome{transport: transportHandle, request: req}), nil
}

// finalizeHeaders composes the outgoing headers: configured defaults first,
// then headers set while building the request, then caller-supplied headers,
// and finally the two forced headers, which win unconditionally.
func (c *Client) finalizeHeaders(req *Request, caller http.Header) {
	c.mu.Lock()
	defaults := c.defaultHeaders.Clone()
	access := c.accessToken
	c.mu.Unlock()

	merged := http.Header{}
	mergeHeaders(merged, defaults)
	mergeHeaders(merged, req.Header)
	mergeHeaders(merged, caller)

	merged.Set("Accept-Encoding", "gzip")
	merged.Set("Authorization", "Bearer "+access)

	req.Header = merged
}

// ensureToken makes sure an access token is held in memory, consulting the
// token cache when the mode allows and performing a live exchange otherwise.
// The lock is held for the duration so concurrent first requests perform a
// single acquisition.
func (c *Client) ensureToken(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.accessToken != "" {
		return nil
	}

	req, err := c.provider.TokenRequest(c.baseURL, c.refreshToken)
	if err != nil {
		return fmt.Errorf("building token request: %w", err)
	}

	if c.mode.readsTokens() {
		key := c.keyFunc(req)
		if data, ok, err := c.store.Get(ctx, key); err == nil && ok {
			if resp, derr := decodeResponse(data); derr == nil {
				if tok, perr := c.provider.ParseToken(resp); perr == nil {
					c.accessToken, c.refreshToken = tok.Access, tok.Refresh
					c.logger.Debug().Str("key", key).Msg("token loaded from cache")
					return nil
				}
			}
			c.logger.Warn().Str("key", key).Msg("unusable token cache entry, performing live exchange")
		}
	}

	tok, tokResp, err := c.exchange(ctx, req)
	if err != nil {
		return err
	}
	c.accessToken, c.refreshToken = tok.Access, tok.Refresh

	if c.mode.writesTokens() {
		c.writeTokenCache(ctx, req, tokResp, tok)
	}

	return nil
}

// exchange performs one token round trip through the transport and parses the
// result. Failures, including credential rejections, propagate to the caller
// of the triggering operation.
func (c *Client) exchange(ctx context.Context, req *Request) (Token, *Response, error) {
	handle, err := c.transport.Start(ctx, req)
	if err != nil {
		return Token{}, nil, fmt.Errorf("starting token exchange: %w", err)
	}

	resp, err := c.transport.End(ctx, handle)
	if err != nil {
		return Token{}, nil, fmt.Errorf("completing token exchange: %w", err)
	}

	tok, err := c.provider.ParseToken(resp)
	if err != nil {
		return Token{}, nil, err
	}

	c.metrics.recordTokenExchange()

	return tok, resp, nil
}

// refreshAndResend handles a detected expired-token response: refresh the
// token pair once, rebuild the original request with the new Authorization
// header, and resend it exactly once. The resend's outcome is returned as
// final even if it fails with 401 again.
func (c *Client) refreshAndResend(ctx context.Context, orig *Request) (*Response, error) {
	access, err := c.refresh(ctx)
	if err != nil {
		return nil, err
	}

	retry := orig.Clone()
	retry.Header.Set("Authorization", "Bearer "+access)

	handle, err := c.transport.Start(ctx, retry)
	if err != nil {
		return nil, err
	}

	return c.transport.End(ctx, handle)
}

func (c *Client) refresh(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	req, err := c.provider.TokenRequest(c.baseURL, c.refreshToken)
	if err != nil {
		return "", fmt.Errorf("building token request: %w", err)
	}

	tok, tokResp, err := c.exchange(ctx, req)
	if err != nil {
		return "", err
	}
	c.accessToken, c.refreshToken = tok.Access, tok.Refresh

	if c.mode.writesTokensOnRefresh() {
		c.writeTokenCache(ctx, req, tokResp, tok)
	}

	c.metrics.recordTokenRefresh()
	c.logger.Info().Msg("access token refreshed after expired-token response")

	return c.accessToken, nil
}

// writeTokenCache stores the raw token response under the token request's
// derived key, with a lifetime equal to the token's reported expiry.
func (c *Client) writeTokenCache(ctx context.Context, req *Request, resp *Response, tok Token) {
	data, err := encodeResponse(resp)
	if err != nil {
		c.logger.Warn().Err(err).Msg("encoding token response for cache failed")
		return
	}

	key := c.keyFunc(req)
	if err := c.store.Set(ctx, key, data, tok.ExpiresIn); err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("token cache write failed")
	}
}

// writeResponseCache stores a successful GET response under the request's
// derived key.
func (c *Client) writeResponseCache(ctx context.Context, req *Request, resp *Response) {
	data, err := encodeResponse(resp)
	if err != nil {
		c.logger.Warn().Err(err).Msg("encoding response for cache failed")
		return
	}

	key := c.keyFunc(req)
	if err := c.store.Set(ctx, key, data, c.cacheTTL); err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("response cache write failed")
		return
	}

	c.logger.Debug().Str("key", key).Msg("response cached")
}
