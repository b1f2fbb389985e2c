package tolapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// Request is an outgoing API request as handed to the [Transport].
type Request struct {
	Method string
	URL    string
	Header http.Header
	Body   []byte
}

// Clone returns a deep copy of the request, used when a failed request is
// rebuilt for the refresh-and-resend path.
func (r *Request) Clone() *Request {
	cp := &Request{
		Method: r.Method,
		URL:    r.URL,
		Header: r.Header.Clone(),
	}
	if cp.Header == nil {
		cp.Header = http.Header{}
	}
	if r.Body != nil {
		cp.Body = make([]byte, len(r.Body))
		copy(cp.Body, r.Body)
	}
	return cp
}

// Response is the normalized result of a completed exchange: the status code,
// the response headers unchanged, and the (decompressed) body bytes.
type Response struct {
	StatusCode int         `json:"statusCode"`
	Header     http.Header `json:"header"`
	Body       []byte      `json:"body"`
}

// Decode unmarshals the JSON response body into dst.
func (r *Response) Decode(dst any) error {
	if err := json.Unmarshal(r.Body, dst); err != nil {
		return fmt.Errorf("decoding response body: %w", err)
	}
	return nil
}

// JSON decodes the response body into a generic map.
func (r *Response) JSON() (map[string]any, error) {
	var body map[string]any
	if err := r.Decode(&body); err != nil {
		return nil, err
	}
	return body, nil
}

// encodeResponse and decodeResponse convert a response to and from its cache
// store representation.
func encodeResponse(resp *Response) ([]byte, error) {
	return json.Marshal(resp)
}

func decodeResponse(data []byte) (*Response, error) {
	var resp Response
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("decoding cached response: %w", err)
	}
	return &resp, nil
}

// entityURL builds {base}/{resource}[/{id}][?query]. Path segments are
// query-escaped, so a space becomes "+", matching the upstream API's
// expectations.
func entityURL(base, resource, id string, query url.Values) string {
	var b strings.Builder
	b.WriteString(base)
	b.WriteByte('/')
	b.WriteString(url.QueryEscape(resource))
	if id != "" {
		b.WriteByte('/')
		b.WriteString(url.QueryEscape(id))
	}
	if len(query) > 0 {
		b.WriteByte('?')
		b.WriteString(query.Encode())
	}
	return b.String()
}

// newJSONRequest builds a request with an optional JSON-encoded body.
// Content-Type is set only when a body is present.
func newJSONRequest(method, rawURL string, body any) (*Request, error) {
	req := &Request{
		Method: method,
		URL:    rawURL,
		Header: http.Header{},
	}

	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encoding request body: %w", err)
		}
		req.Body = data
		req.Header.Set("Content-Type", "application/json")
	}

	return req, nil
}

// mergeHeaders layers src over dst, replacing any existing values for keys
// present in src.
func mergeHeaders(dst, src http.Header) {
	for k, vs := range src {
		dst.Del(k)
		for _, v := range vs {
			dst.Add(k, v)
		}
	}
}
