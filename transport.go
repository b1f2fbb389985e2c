package tolapi

import (
	"bytes"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

// Transport performs the actual network exchange behind a two-phase
// interface. Start may enqueue or begin the exchange and returns an opaque
// handle; End blocks until the corresponding exchange completes. Handles must
// be unique among currently outstanding exchanges.
type Transport interface {
	Start(ctx context.Context, req *Request) (string, error)
	End(ctx context.Context, handle string) (*Response, error)
}

// HTTPTransport is the default [Transport], backed by an *http.Client. Start
// launches the exchange in its own goroutine, so several started requests
// proceed concurrently; End waits for completion. Because the client forces
// Accept-Encoding: gzip on every request, gzip response bodies are
// decompressed here before being returned.
type HTTPTransport struct {
	client  *http.Client
	limiter *rate.Limiter

	mu       sync.Mutex
	inflight map[string]chan exchange
}

type exchange struct {
	resp *Response
	err  error
}

// TransportOption configures an [HTTPTransport].
type TransportOption func(*HTTPTransport)

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(hc *http.Client) TransportOption {
	return func(t *HTTPTransport) {
		t.client = hc
	}
}

// WithRequestsPerSecond applies token-bucket rate limiting to outgoing
// exchanges.
func WithRequestsPerSecond(rps float64, burst int) TransportOption {
	return func(t *HTTPTransport) {
		t.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// NewHTTPTransport builds the default transport. With no options it uses an
// *http.Client with a 30 second timeout.
func NewHTTPTransport(opts ...TransportOption) *HTTPTransport {
	t := &HTTPTransport{
		client:   &http.Client{Timeout: 30 * time.Second},
		inflight: make(map[string]chan exchange),
	}

	for _, opt := range opts {
		opt(t)
	}

	return t
}

func (t *HTTPTransport) Start(ctx context.Context, req *Request) (string, error) {
	handle := uuid.NewString()
	done := make(chan exchange, 1)

	t.mu.Lock()
	t.inflight[handle] = done
	t.mu.Unlock()

	go func() {
		resp, err := t.roundTrip(ctx, req)
		done <- exchange{resp: resp, err: err}
	}()

	return handle, nil
}

func (t *HTTPTransport) End(ctx context.Context, handle string) (*Response, error) {
	t.mu.Lock()
	done, ok := t.inflight[handle]
	delete(t.inflight, handle)
	t.mu.Unlock()

	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownHandle, handle)
	}

	select {
	case result := <-done:
		return result.resp, result.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (t *HTTPTransport) roundTrip(ctx context.Context, req *Request) (*Response, error) {
	if t.limiter != nil {
		if err := t.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("awaiting rate limiter: %w", err)
		}
	}

	var body io.Reader
	if req.Body != nil {
		body = bytes.NewReader(req.Body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, req.URL, body)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	for k, vs := range req.Header {
		for _, v := range vs {
			httpReq.Header.Add(k, v)
		}
	}

	httpResp, err := t.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	defer httpResp.Body.Close()

	data, err := readBody(httpResp)
	if err != nil {
		return nil, err
	}

	return &Response{
		StatusCode: httpResp.StatusCode,
		Header:     httpResp.Header,
		Body:       data,
	}, nil
}

// readBody drains the response body, decompressing it when the server
// answered with gzip. net/http only decompresses transparently when it added
// the Accept-Encoding header itself, which is not the case here.
func readBody(resp *http.Response) ([]byte, error) {
	var reader io.Reader = resp.Body

	if strings.EqualFold(resp.Header.Get("Content-Encoding"), "gzip") {
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("opening gzip body: %w", err)
		}
		defer gz.Close()
		reader = gz
	}

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	return data, nil
}
