package tolapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// Token is a parsed token-exchange result.
type Token struct {
	Access    string
	Refresh   string
	ExpiresIn time.Duration
}

// TokenProvider builds token-acquisition requests and parses token responses.
// When a refresh token is supplied, TokenRequest must produce a refresh
// exchange; otherwise it produces an initial grant for the configured
// credentials.
type TokenProvider interface {
	TokenRequest(baseURL, refreshToken string) (*Request, error)
	ParseToken(resp *Response) (Token, error)
}

// ClientCredentials returns a provider using the OAuth client_credentials
// grant.
func ClientCredentials(clientID, clientSecret string) TokenProvider {
	return &credentials{clientID: clientID, clientSecret: clientSecret}
}

// OwnerCredentials returns a provider using the OAuth password grant for the
// given resource owner.
func OwnerCredentials(clientID, clientSecret, username, password string) TokenProvider {
	return &credentials{
		clientID:     clientID,
		clientSecret: clientSecret,
		username:     username,
		password:     password,
	}
}

type credentials struct {
	clientID     string
	clientSecret string
	username     string
	password     string
}

func (c *credentials) TokenRequest(baseURL, refreshToken string) (*Request, error) {
	form := url.Values{}
	form.Set("client_id", c.clientID)
	form.Set("client_secret", c.clientSecret)

	switch {
	case refreshToken != "":
		form.Set("grant_type", "refresh_token")
		form.Set("refresh_token", refreshToken)
	case c.username != "":
		form.Set("grant_type", "password")
		form.Set("username", c.username)
		form.Set("password", c.password)
	default:
		form.Set("grant_type", "client_credentials")
	}

	req := &Request{
		Method: http.MethodPost,
		URL:    baseURL + "/token",
		Header: http.Header{},
		Body:   []byte(form.Encode()),
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	return req, nil
}

func (c *credentials) ParseToken(resp *Response) (Token, error) {
	var payload struct {
		AccessToken      string  `json:"access_token"`
		RefreshToken     string  `json:"refresh_token"`
		ExpiresIn        float64 `json:"expires_in"`
		Error            string  `json:"error"`
		ErrorDescription string  `json:"error_description"`
	}

	if err := json.Unmarshal(resp.Body, &payload); err != nil {
		return Token{}, fmt.Errorf("parsing token response: %w", err)
	}

	if payload.Error != "" {
		return Token{}, &CredentialsError{Code: payload.Error, Description: payload.ErrorDescription}
	}

	if payload.AccessToken == "" {
		return Token{}, &CredentialsError{
			Code:        "invalid_response",
			Description: fmt.Sprintf("no access_token in response (status %d)", resp.StatusCode),
		}
	}

	return Token{
		Access:    payload.AccessToken,
		Refresh:   payload.RefreshToken,
		ExpiresIn: time.Duration(payload.ExpiresIn) * time.Second,
	}, nil
}
