package tolapi

import (
	"encoding/json"
	"net/http"
	"strings"
)

// ExpiryDetector inspects the JSON body of a 401 response and reports whether
// it indicates an expired or invalid access token. The second return value
// reports whether this detector recognised the body shape at all; the first
// handled detector in the configured list decides the outcome.
//
// Different upstream gateways signal token expiry differently, so detection
// is an ordered list rather than a single rule. New conventions can be added
// with [WithExpiryDetectors] without touching the retry logic.
type ExpiryDetector func(body map[string]json.RawMessage) (expired, handled bool)

// DefaultExpiryDetectors covers the two known gateway conventions: an OAuth
// style "error" code and an Apigee-style "fault" structure.
var DefaultExpiryDetectors = []ExpiryDetector{
	ErrorCodeDetector,
	FaultStringDetector,
}

// ErrorCodeDetector handles bodies with a top-level "error" field, either a
// bare string or a structure with a "code" sub-field. The comparison is
// case-sensitive.
func ErrorCodeDetector(body map[string]json.RawMessage) (bool, bool) {
	raw, ok := body["error"]
	if !ok {
		return false, false
	}

	var code string
	if err := json.Unmarshal(raw, &code); err != nil {
		var nested struct {
			Code string `json:"code"`
		}
		if err := json.Unmarshal(raw, &nested); err != nil {
			return false, true
		}
		code = nested.Code
	}

	return code == "invalid_grant" || code == "invalid_token", true
}

// FaultStringDetector handles bodies with a top-level "fault" structure,
// matching its "faultstring" case-insensitively.
func FaultStringDetector(body map[string]json.RawMessage) (bool, bool) {
	raw, ok := body["fault"]
	if !ok {
		return false, false
	}

	var fault struct {
		Faultstring string `json:"faultstring"`
	}
	if err := json.Unmarshal(raw, &fault); err != nil {
		return false, true
	}

	s := strings.ToLower(fault.Faultstring)
	return s == "invalid access token" || s == "access token expired", true
}

// tokenExpired reports whether resp is a 401 recognised by one of the
// detectors as an expired-token response. A body that fails to parse as JSON
// is treated as not expired; the original response is then returned to the
// caller unchanged.
func tokenExpired(detectors []ExpiryDetector, resp *Response) bool {
	if resp.StatusCode != http.StatusUnauthorized {
		return false
	}

	var body map[string]json.RawMessage
	if err := json.Unmarshal(resp.Body, &body); err != nil {
		return false
	}

	for _, detect := range detectors {
		if expired, handled := detect(body); handled {
			return expired
		}
	}

	return false
}
