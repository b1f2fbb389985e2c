package tolapi_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	tolapi "github.com/hthiyaga/tol-api"
)

func request(method, rawURL string, body []byte) *tolapi.Request {
	return &tolapi.Request{Method: method, URL: rawURL, Header: http.Header{}, Body: body}
}

func TestDefaultKeyIsDeterministic(t *testing.T) {
	req := request(http.MethodGet, "https://api.example.com/v1/books/1", nil)
	assert.Equal(t, tolapi.DefaultKey(req), tolapi.DefaultKey(req))
}

func TestDefaultKeyNormalizesQueryOrder(t *testing.T) {
	a := request(http.MethodGet, "https://api.example.com/v1/books?b=2&a=1", nil)
	b := request(http.MethodGet, "https://api.example.com/v1/books?a=1&b=2", nil)
	assert.Equal(t, tolapi.DefaultKey(a), tolapi.DefaultKey(b))
}

func TestDefaultKeyDistinguishesRequests(t *testing.T) {
	base := request(http.MethodGet, "https://api.example.com/v1/books", nil)

	differentMethod := request(http.MethodDelete, "https://api.example.com/v1/books", nil)
	assert.NotEqual(t, tolapi.DefaultKey(base), tolapi.DefaultKey(differentMethod))

	differentURL := request(http.MethodGet, "https://api.example.com/v1/authors", nil)
	assert.NotEqual(t, tolapi.DefaultKey(base), tolapi.DefaultKey(differentURL))

	withBody := request(http.MethodGet, "https://api.example.com/v1/books", []byte("grant_type=client_credentials"))
	assert.NotEqual(t, tolapi.DefaultKey(base), tolapi.DefaultKey(withBody))

	otherBody := request(http.MethodGet, "https://api.example.com/v1/books", []byte("grant_type=refresh_token"))
	assert.NotEqual(t, tolapi.DefaultKey(withBody), tolapi.DefaultKey(otherBody))
}

func TestDefaultKeyIgnoresHeaders(t *testing.T) {
	a := request(http.MethodGet, "https://api.example.com/v1/books", nil)
	b := request(http.MethodGet, "https://api.example.com/v1/books", nil)
	b.Header.Set("Authorization", "Bearer something-else")

	// A token rotation must not invalidate cached responses.
	assert.Equal(t, tolapi.DefaultKey(a), tolapi.DefaultKey(b))
}
