package tolapi

import "fmt"

// CacheMode selects which categories of traffic are read from and written to
// the cache store. CacheGet and CacheToken are bits and may be combined;
// CacheAll is both. CacheRefresh is a standalone value, not a bit: it forces
// a live fetch on every GET while still writing the result to the cache,
// keeping the cache warm for other readers.
type CacheMode int

const (
	// CacheNone disables every cache interaction.
	CacheNone CacheMode = 0

	// CacheGet enables reading and writing GET responses.
	CacheGet CacheMode = 1 << 0

	// CacheToken enables reading and writing token exchanges.
	CacheToken CacheMode = 1 << 1

	// CacheAll enables both GET response and token caching.
	CacheAll CacheMode = CacheGet | CacheToken

	// CacheRefresh never reads cached GET responses but overwrites the
	// cache entry after every successful GET.
	CacheRefresh CacheMode = 4
)

// Valid reports whether m is one of the five defined cache modes.
func (m CacheMode) Valid() bool {
	switch m {
	case CacheNone, CacheGet, CacheToken, CacheAll, CacheRefresh:
		return true
	}
	return false
}

func (m CacheMode) String() string {
	switch m {
	case CacheNone:
		return "none"
	case CacheGet:
		return "get"
	case CacheToken:
		return "token"
	case CacheAll:
		return "all"
	case CacheRefresh:
		return "refresh"
	}
	return fmt.Sprintf("CacheMode(%d)", int(m))
}

// ParseCacheMode converts a mode name, as used in environment configuration,
// to its CacheMode value.
func ParseCacheMode(s string) (CacheMode, error) {
	switch s {
	case "none":
		return CacheNone, nil
	case "get":
		return CacheGet, nil
	case "token":
		return CacheToken, nil
	case "all":
		return CacheAll, nil
	case "refresh":
		return CacheRefresh, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidCacheMode, s)
}
