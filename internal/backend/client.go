// Package backend is the HTTP client for the storefront's system of record:
// catalog, vouchers, settings, cart/wishlist sync and order submission.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"lamahang-storefront/internal/domain"
)

// SessionHeader scopes cart and wishlist sync calls to one storefront session.
const SessionHeader = "X-Session-ID"

// APIError is a non-2xx response other than 404.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("backend returned %d", e.Status)
	}
	return fmt.Sprintf("backend returned %d: %s", e.Status, e.Message)
}

// Retryable reports whether the request may succeed if repeated.
func (e *APIError) Retryable() bool {
	return e.Status >= 500 || e.Status == http.StatusTooManyRequests
}

type Client struct {
	baseURL   string
	token     string
	sessionID string
	http      *http.Client
}

type Option func(*Client)

func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) { cl.http = c }
}

func WithSession(id string) Option {
	return func(cl *Client) { cl.sessionID = id }
}

func New(baseURL, token string, opts ...Option) (*Client, error) {
	if _, err := url.ParseRequestURI(baseURL); err != nil {
		return nil, fmt.Errorf("backend url: %w", err)
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http: &http.Client{
			Timeout:   10 * time.Second,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

type envelope struct {
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if c.sessionID != "" {
		req.Header.Set(SessionHeader, c.sessionID)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil && !errors.Is(err, io.EOF) {
		if resp.StatusCode >= 300 {
			return &APIError{Status: resp.StatusCode}
		}
		return fmt.Errorf("decode %s: %w", path, err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return domain.ErrNotFound
	case resp.StatusCode >= 300:
		return &APIError{Status: resp.StatusCode, Message: env.Message}
	}

	if out == nil || len(env.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

func (c *Client) ListProducts(ctx context.Context) ([]domain.Product, error) {
	var out []domain.Product
	if err := c.do(ctx, http.MethodGet, "/api/products", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Product(ctx context.Context, id int64) (domain.Product, error) {
	var out domain.Product
	err := c.do(ctx, http.MethodGet, "/api/products/"+strconv.FormatInt(id, 10), nil, &out)
	return out, err
}

func (c *Client) ListVouchers(ctx context.Context) ([]domain.Voucher, error) {
	var out []domain.Voucher
	if err := c.do(ctx, http.MethodGet, "/api/vouchers", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) AppSettings(ctx context.Context) (domain.AppSettings, error) {
	var out domain.AppSettings
	err := c.do(ctx, http.MethodGet, "/api/settings/app", nil, &out)
	return out, err
}

func (c *Client) PaymentSettings(ctx context.Context) (domain.PaymentSettings, error) {
	var out domain.PaymentSettings
	err := c.do(ctx, http.MethodGet, "/api/settings/payment", nil, &out)
	return out, err
}

// CartItemRequest is the body of PUT /api/cart/items/{productId}.
type CartItemRequest struct {
	Name      string `json:"name"`
	UnitPrice int64  `json:"unitPrice"`
	Quantity  int    `json:"quantity"`
	Category  string `json:"category,omitempty"`
}

// WishlistItemRequest is the body of PUT /api/wishlist/items/{productId}.
type WishlistItemRequest struct {
	Name      string `json:"name"`
	UnitPrice int64  `json:"unitPrice"`
	Category  string `json:"category,omitempty"`
}

func (c *Client) PutCartItem(ctx context.Context, item domain.CartLineItem) error {
	body := CartItemRequest{Name: item.Name, UnitPrice: item.UnitPrice, Quantity: item.Quantity, Category: item.Category}
	return c.do(ctx, http.MethodPut, "/api/cart/items/"+strconv.FormatInt(item.ProductID, 10), body, nil)
}

func (c *Client) PutWishlistItem(ctx context.Context, item domain.WishlistItem) error {
	body := WishlistItemRequest{Name: item.Name, UnitPrice: item.UnitPrice, Category: item.Category}
	return c.do(ctx, http.MethodPut, "/api/wishlist/items/"+strconv.FormatInt(item.ProductID, 10), body, nil)
}

func (c *Client) SubmitOrder(ctx context.Context, order domain.OrderPayload) (domain.OrderReceipt, error) {
	var out domain.OrderReceipt
	err := c.do(ctx, http.MethodPost, "/api/orders", order, &out)
	return out, err
}
