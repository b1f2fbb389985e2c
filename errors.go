package tolapi

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidCacheMode is returned by New when the configured cache mode
	// is not one of the five defined values.
	ErrInvalidCacheMode = errors.New("tolapi: invalid cache mode")

	// ErrUnknownHandle is returned by End when a handle is not known to the
	// client, either because it was never issued or because it has already
	// been consumed.
	ErrUnknownHandle = errors.New("tolapi: unknown request handle")
)

// CredentialsError indicates that a token acquisition or refresh was rejected
// by the authorization server, typically because the configured credentials
// are invalid.
type CredentialsError struct {
	// Code is the OAuth error code, e.g. "invalid_client".
	Code string

	// Description is the human-readable error_description, if the server
	// provided one.
	Description string
}

func (e *CredentialsError) Error() string {
	if e.Description != "" {
		return fmt.Sprintf("tolapi: token request rejected: %s (%s)", e.Code, e.Description)
	}
	return fmt.Sprintf("tolapi: token request rejected: %s", e.Code)
}

// StatusError reports a response with an unexpected HTTP status. It is used
// by helpers that require a successful response, such as [Collection].
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("tolapi: unexpected status %d: %s", e.StatusCode, e.Body)
}
