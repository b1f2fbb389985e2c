package tolapi

// Cache policy predicates. Response caching applies to GET requests only;
// the method check lives with the caller, these express the mode rules alone.

// readsResponses reports whether a GET request may be served from the cache
// before reaching the transport. CacheRefresh deliberately does not qualify.
func (m CacheMode) readsResponses() bool {
	return m&CacheGet != 0
}

// writesResponses reports whether a successful GET response is written back
// to the cache, including after a token-refresh retry.
func (m CacheMode) writesResponses() bool {
	return m == CacheRefresh || m&CacheGet != 0
}

// readsTokens reports whether a token may be loaded from the cache instead of
// performing a live exchange.
func (m CacheMode) readsTokens() bool {
	return m&CacheToken != 0
}

// writesTokens reports whether the response of an initial token acquisition
// is written to the cache.
func (m CacheMode) writesTokens() bool {
	return m&CacheToken != 0
}

// writesTokensOnRefresh is the gate for token-cache writes during a refresh.
// It mirrors writesResponses: exactly CacheRefresh, or the token bit.
func (m CacheMode) writesTokensOnRefresh() bool {
	return m == CacheRefresh || m&CacheToken != 0
}
