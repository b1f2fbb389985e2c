package tolapi

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokenExpired(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		expired bool
	}{
		{"flat error invalid_grant", 401, `{"error":"invalid_grant"}`, true},
		{"flat error invalid_token", 401, `{"error":"invalid_token"}`, true},
		{"nested error code", 401, `{"error":{"code":"invalid_token"}}`, true},
		{"nested error code invalid_grant", 401, `{"error":{"code":"invalid_grant"}}`, true},
		{"error code is case sensitive", 401, `{"error":"INVALID_GRANT"}`, false},
		{"unrelated error code", 401, `{"error":"quota_exceeded"}`, false},
		{"fault expired", 401, `{"fault":{"faultstring":"Access Token Expired"}}`, true},
		{"fault invalid", 401, `{"fault":{"faultstring":"Invalid Access Token"}}`, true},
		{"fault match is case insensitive", 401, `{"fault":{"faultstring":"ACCESS TOKEN EXPIRED"}}`, true},
		{"unrelated fault", 401, `{"fault":{"faultstring":"backend unavailable"}}`, false},
		{"unrelated body", 401, `{"someotherproblem":"yes"}`, false},
		{"malformed body is not expired", 401, `<!doctype html>`, false},
		{"empty body", 401, ``, false},
		{"non-401 never expired", 403, `{"error":"invalid_grant"}`, false},
		{"500 never expired", 500, `{"error":"invalid_grant"}`, false},
		// The error field, when present, decides: a fault alongside a
		// non-matching error is not consulted.
		{"error field shadows fault", 401, `{"error":"other","fault":{"faultstring":"access token expired"}}`, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			resp := &Response{StatusCode: tc.status, Header: http.Header{}, Body: []byte(tc.body)}
			assert.Equal(t, tc.expired, tokenExpired(DefaultExpiryDetectors, resp))
		})
	}
}

func TestCustomDetectorOrder(t *testing.T) {
	// A custom detector ahead of the defaults can claim a body shape and
	// decide the outcome before the defaults see it.
	custom := func(body map[string]json.RawMessage) (bool, bool) {
		_, ok := body["session_expired"]
		return ok, ok
	}

	detectors := append([]ExpiryDetector{custom}, DefaultExpiryDetectors...)

	resp := &Response{StatusCode: 401, Body: []byte(`{"session_expired":true}`)}
	assert.True(t, tokenExpired(detectors, resp))

	resp = &Response{StatusCode: 401, Body: []byte(`{"error":"invalid_grant"}`)}
	assert.True(t, tokenExpired(detectors, resp), "defaults still apply after the custom detector")
}
