package checkout

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/ecomcore/storefront/internal/domain"
)

var (
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrTokenUnavailable = errors.New("client token unavailable")
)

// Credentials identify the signed-in buyer to the storefront API.
type Credentials struct {
	User  string
	Token string
}

// Client is the storefront API client used by the checkout flow. All calls
// fail with ErrNotAuthenticated until credentials are set.
type Client struct {
	http  *resty.Client
	creds *Credentials
}

func NewClient(baseURL string) *Client {
	c := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(30 * time.Second).
		SetHeader("Content-Type", "application/json")
	return &Client{http: c}
}

func (c *Client) SetCredentials(creds *Credentials) {
	c.creds = creds
}

func (c *Client) authenticated() error {
	if c.creds == nil || c.creds.Token == "" {
		return ErrNotAuthenticated
	}
	return nil
}

type tokenResponse struct {
	ClientToken string `json:"clientToken"`
}

// ClientToken fetches the short-lived gateway token needed to collect a
// payment method. It fails closed: no token, no payment UI.
func (c *Client) ClientToken(ctx context.Context) (string, error) {
	if err := c.authenticated(); err != nil {
		return "", err
	}

	var body tokenResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(c.creds.Token).
		SetResult(&body).
		Get("/api/v1/product/braintree/token")
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrTokenUnavailable, err)
	}
	if resp.StatusCode() != http.StatusOK || body.ClientToken == "" {
		return "", fmt.Errorf("%w: status %d", ErrTokenUnavailable, resp.StatusCode())
	}
	return body.ClientToken, nil
}

// Orders fetches the buyer's order history, newest first.
func (c *Client) Orders(ctx context.Context) ([]domain.Order, error) {
	if err := c.authenticated(); err != nil {
		return nil, err
	}

	var orders []domain.Order
	resp, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(c.creds.Token).
		SetResult(&orders).
		Get("/api/v1/auth/orders")
	if err != nil {
		return nil, err
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("orders fetch failed: status %d", resp.StatusCode())
	}
	return orders, nil
}
