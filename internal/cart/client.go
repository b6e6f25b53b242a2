package cart

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/rahatbaksh/bulk-order-api/internal/resilience"
)

// ErrUnavailable is returned when the cart service cannot be reached or
// refuses to open a session.
var ErrUnavailable = errors.New("cart: service unavailable")

// Client is the carrier of one checkout's cart session. Every implementation
// blocks until the cart service has acknowledged the item; callers sequence
// their own calls and never retry a failed one.
type Client interface {
	// AddItem places one priced line into the session cart.
	AddItem(ctx context.Context, item Item) error
	// Token returns the opaque cart session token, empty when the cart
	// never issued one.
	Token(ctx context.Context) (string, error)
}

// Item is a single priced line submitted to the cart.
type Item struct {
	ProductID int64 `json:"productId"`
	VariantID int64 `json:"variantId"`
	Quantity  int   `json:"quantity"`
	UnitPrice int64 `json:"unitPrice"`
}

// HTTPClient talks to the cart service over its JSON API. One HTTPClient
// value is bound to one cart session via the session id.
type HTTPClient struct {
	BaseURL     string
	SessionID   string
	TokenCookie string
	HTTP        resilience.HTTPClient

	token string
}

// NewHTTPClient builds a session-scoped cart client. The underlying transport
// is traced; requests get a single attempt because a duplicate add would
// double items in the cart.
func NewHTTPClient(baseURL, sessionID, tokenCookie string, timeout time.Duration) *HTTPClient {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &HTTPClient{
		BaseURL:     strings.TrimRight(baseURL, "/"),
		SessionID:   sessionID,
		TokenCookie: tokenCookie,
		HTTP: resilience.HTTPClient{
			Client: &http.Client{
				Transport: otelhttp.NewTransport(http.DefaultTransport),
			},
			Breaker:     resilience.NewBreaker(5, 0.6, 15*time.Second).WithTarget("cart"),
			MaxAttempts: 1,
			Timeout:     timeout,
		},
	}
}

type addItemRequest struct {
	SessionID string `json:"sessionId"`
	ProductID int64  `json:"productId"`
	VariantID int64  `json:"variantId"`
	Quantity  int    `json:"quantity"`
	UnitPrice int64  `json:"unitPrice"`
}

// AddItem posts one line to the cart and records the session token from the
// response cookie when present.
func (c *HTTPClient) AddItem(ctx context.Context, item Item) error {
	if c == nil || c.BaseURL == "" {
		return fmt.Errorf("%w: no base url", ErrUnavailable)
	}
	body, err := json.Marshal(addItemRequest{
		SessionID: c.SessionID,
		ProductID: item.ProductID,
		VariantID: item.VariantID,
		Quantity:  item.Quantity,
		UnitPrice: item.UnitPrice,
	})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/cart/items", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.HTTP.Do(ctx, req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("cart: add item: unexpected status %d", resp.StatusCode)
	}
	c.captureToken(resp)
	return nil
}

// Token returns the session token issued by the cart. The token arrives as a
// cookie on add-item responses; when no add succeeded yet the token is looked
// up from the session endpoint.
func (c *HTTPClient) Token(ctx context.Context) (string, error) {
	if c == nil || c.BaseURL == "" {
		return "", fmt.Errorf("%w: no base url", ErrUnavailable)
	}
	if c.token != "" {
		return c.token, nil
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/cart/session?sessionId="+url.QueryEscape(c.SessionID), nil)
	if err != nil {
		return "", err
	}
	resp, err := c.HTTP.Do(ctx, req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", nil
	}
	c.captureToken(resp)
	return c.token, nil
}

func (c *HTTPClient) captureToken(resp *http.Response) {
	if c.TokenCookie == "" {
		return
	}
	for _, ck := range resp.Cookies() {
		if ck.Name == c.TokenCookie && ck.Value != "" {
			c.token = ck.Value
		}
	}
}
