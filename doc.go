// Package tolapi is a client for the TOL JSON API. It manages an OAuth-style
// bearer/refresh token pair transparently, supports configurable caching of
// GET responses and token exchanges, and exposes a two-phase start/end
// request protocol so that several requests can be in flight at once.
//
// # Building a client
//
//	transport := tolapi.NewHTTPTransport()
//	provider := tolapi.ClientCredentials("client-id", "client-secret")
//
//	c, err := tolapi.New(transport, provider, "https://api.example.com/v1",
//		tolapi.WithCacheMode(tolapi.CacheGet),
//		tolapi.WithCacheStore(store),
//	)
//
// # Making requests
//
// Every operation exists in two forms: a blocking call and a start/end pair.
// The start form returns an opaque handle; End resolves it. Several handles
// may be outstanding at once, letting the transport run the exchanges
// concurrently:
//
//	h1, err := c.StartGet(ctx, "books", "123", nil)
//	h2, err := c.StartGet(ctx, "books", "456", nil)
//	resp1, err := c.End(ctx, h1)
//	resp2, err := c.End(ctx, h2)
//
// A handle is consumed by End exactly once; resolving it again fails with
// [ErrUnknownHandle].
//
// # Tokens
//
// A bearer token is acquired on the first request and attached to every
// outgoing request as an Authorization header. When a 401 response is
// recognised as an expired-token response, the client refreshes the token and
// resends the original request once; any other failure is returned to the
// caller as-is.
package tolapi
