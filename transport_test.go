package tolapi_test

import (
	"compress/gzip"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	tolapi "github.com/hthiyaga/tol-api"
)

func TestHTTPTransportRoundTrip(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/books", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		w.Header().Set("X-Request-Id", "abc123")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":"1"}`))
	}))
	defer server.Close()

	transport := tolapi.NewHTTPTransport()

	req := &tolapi.Request{
		Method: http.MethodPost,
		URL:    server.URL + "/v1/books",
		Header: http.Header{"Content-Type": {"application/json"}},
		Body:   []byte(`{"title":"Foundation"}`),
	}

	handle, err := transport.Start(context.Background(), req)
	require.NoError(t, err)

	resp, err := transport.End(context.Background(), handle)
	require.NoError(t, err)

	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "abc123", resp.Header.Get("X-Request-Id"))
	assert.JSONEq(t, `{"id":"1"}`, string(resp.Body))
}

func TestHTTPTransportDecompressesGzip(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "gzip", r.Header.Get("Accept-Encoding"))

		w.Header().Set("Content-Encoding", "gzip")
		gz := gzip.NewWriter(w)
		_, _ = gz.Write([]byte(`{"compressed":true}`))
		_ = gz.Close()
	}))
	defer server.Close()

	transport := tolapi.NewHTTPTransport()

	req := &tolapi.Request{
		Method: http.MethodGet,
		URL:    server.URL,
		Header: http.Header{"Accept-Encoding": {"gzip"}},
	}

	handle, err := transport.Start(context.Background(), req)
	require.NoError(t, err)

	resp, err := transport.End(context.Background(), handle)
	require.NoError(t, err)

	assert.JSONEq(t, `{"compressed":true}`, string(resp.Body))
}

func TestHTTPTransportEndUnknownHandle(t *testing.T) {
	transport := tolapi.NewHTTPTransport()

	_, err := transport.End(context.Background(), "never-issued")
	require.ErrorIs(t, err, tolapi.ErrUnknownHandle)
}

func TestHTTPTransportEndConsumesHandle(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	transport := tolapi.NewHTTPTransport()

	handle, err := transport.Start(context.Background(), &tolapi.Request{Method: http.MethodGet, URL: server.URL})
	require.NoError(t, err)

	_, err = transport.End(context.Background(), handle)
	require.NoError(t, err)

	_, err = transport.End(context.Background(), handle)
	require.ErrorIs(t, err, tolapi.ErrUnknownHandle)
}

func TestHTTPTransportPipelinesExchanges(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/slow" {
			<-release
		}
		_, _ = w.Write([]byte(r.URL.Path))
	}))
	defer server.Close()

	transport := tolapi.NewHTTPTransport()

	slow, err := transport.Start(context.Background(), &tolapi.Request{Method: http.MethodGet, URL: server.URL + "/slow"})
	require.NoError(t, err)
	fast, err := transport.Start(context.Background(), &tolapi.Request{Method: http.MethodGet, URL: server.URL + "/fast"})
	require.NoError(t, err)

	// The fast exchange completes while the slow one is still blocked.
	resp, err := transport.End(context.Background(), fast)
	require.NoError(t, err)
	assert.Equal(t, "/fast", string(resp.Body))

	close(release)
	resp, err = transport.End(context.Background(), slow)
	require.NoError(t, err)
	assert.Equal(t, "/slow", string(resp.Body))
}

func TestHTTPTransportEndHonoursContext(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer server.Close()
	defer close(release)

	transport := tolapi.NewHTTPTransport()

	handle, err := transport.Start(context.Background(), &tolapi.Request{Method: http.MethodGet, URL: server.URL})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err = transport.End(ctx, handle)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}
