package tolapi

import (
	"net/url"
	"strings"
)

// KeyFunc derives a deterministic cache key from a request. The same logical
// request must always map to the same key, including across process restarts
// for externally-backed stores.
type KeyFunc func(*Request) string

// DefaultKey builds a key from the method, the URL with its query string
// normalized to sorted order, and the request body. Including the body keeps
// token requests for different credential sets apart.
func DefaultKey(req *Request) string {
	normalized := req.URL
	if u, err := url.Parse(req.URL); err == nil {
		// Values.Encode emits keys in sorted order.
		u.RawQuery = u.Query().Encode()
		normalized = u.String()
	}

	var b strings.Builder
	b.WriteString(req.Method)
	b.WriteByte(' ')
	b.WriteString(normalized)
	if len(req.Body) > 0 {
		b.WriteByte(' ')
		b.Write(req.Body)
	}

	return b.String()
}
