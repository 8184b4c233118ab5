package invitesdk

import (
	"context"
	"net/http"
	"strings"
	"time"
)

// TokenSource returns the bearer token for the signed-in user. It is called
// per request so callers can refresh tokens transparently.
type TokenSource func(ctx context.Context) (string, error)

// StaticToken always returns tok.
func StaticToken(tok string) TokenSource {
	return func(context.Context) (string, error) { return tok, nil }
}

// Client is a client for the invitation service.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client

	// Token authenticates requests. Nil sends no Authorization header.
	Token TokenSource

	// StreamClient is used for event streams and must not carry a
	// request timeout. Defaults to a client without one.
	StreamClient *http.Client
}

// NewClient creates a client for the service at baseURL.
func NewClient(baseURL string, token TokenSource) *Client {
	return &Client{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		Token:        token,
		StreamClient: &http.Client{},
	}
}

// GetLiveness checks if the service is alive.
func (c *Client) GetLiveness(ctx context.Context) (*HealthResponse, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, "/livez", nil, nil)
	if err != nil {
		return nil, err
	}

	var health HealthResponse
	if err := decodeJSON(resp, &health, http.StatusOK); err != nil {
		return nil, err
	}
	return &health, nil
}

// GetReadiness checks if the service is ready.
func (c *Client) GetReadiness(ctx context.Context) (*HealthResponse, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, "/readyz", nil, nil)
	if err != nil {
		return nil, err
	}

	var health HealthResponse
	if err := decodeJSON(resp, &health, http.StatusOK); err != nil {
		return nil, err
	}
	return &health, nil
}
