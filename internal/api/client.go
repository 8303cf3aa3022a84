// Package api is the REST client for the Minimart backend. It owns the wire
// formats; the rest of the console works with domain types.
package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/minimart/console/internal/catalog"
	"github.com/minimart/console/internal/order"
)

// defaultTimeout bounds every request. There is no finer-grained cancellation
// for submissions or fetches; the timeout is what keeps a dead backend from
// pinning the submission controller in its submitting state forever.
const defaultTimeout = 30 * time.Second

// Config configures a Client.
type Config struct {
	// BaseURL is the backend root, e.g. http://localhost:8080.
	BaseURL string
	// Timeout bounds each request. Zero means the default of 30s.
	Timeout time.Duration
	// Transport is the outgoing transport, usually a httpclient.Wrap chain.
	// Nil means http.DefaultTransport.
	Transport http.RoundTripper
}

// Client talks to the Minimart backend.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient validates the configuration and builds a Client.
func NewClient(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("base URL is required")
	}
	if _, err := url.Parse(cfg.BaseURL); err != nil {
		return nil, errors.Wrap(err, "parse base URL")
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}
	transport := cfg.Transport
	if transport == nil {
		transport = http.DefaultTransport
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
	}, nil
}

// LoginResponse is the authentication endpoint's answer. Token is the
// credential artifact the session store persists.
type LoginResponse struct {
	Token    string
	ID       int64
	Email    string
	FullName string
	Roles    []string
}

// SalesSummary is the sales report for a date range.
type SalesSummary struct {
	TotalRevenue decimal.Decimal
	TotalOrders  int
	TopProduct   string
}

// Login exchanges credentials for a token and identity.
func (c *Client) Login(ctx context.Context, email, password string) (*LoginResponse, error) {
	resp, err := c.do(ctx, http.MethodPost, "/api/auth/login", encodeLogin(email, password))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	out, err := decodeLoginResponse(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "decode login response")
	}
	return out, nil
}

// ListProducts fetches the product catalog.
func (c *Client) ListProducts(ctx context.Context) ([]catalog.Product, error) {
	resp, err := c.do(ctx, http.MethodGet, "/api/products", nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	out, err := decodeProducts(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "decode products")
	}
	return out, nil
}

// ListCustomers fetches the customer list.
func (c *Client) ListCustomers(ctx context.Context) ([]catalog.Customer, error) {
	resp, err := c.do(ctx, http.MethodGet, "/api/customers", nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	out, err := decodeCustomers(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "decode customers")
	}
	return out, nil
}

// PlaceOrder submits a finalized order. It implements order.Placer.
func (c *Client) PlaceOrder(ctx context.Context, req order.Request) (*order.Confirmation, error) {
	resp, err := c.do(ctx, http.MethodPost, "/api/orders", encodeOrder(req))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	out, err := decodeConfirmation(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "decode order confirmation")
	}
	return out, nil
}

// DownloadInvoice streams the invoice PDF for an order into w and returns the
// number of bytes written.
func (c *Client) DownloadInvoice(ctx context.Context, orderID int64, w io.Writer) (int64, error) {
	resp, err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/orders/%d/invoice.pdf", orderID), nil)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	n, err := io.Copy(w, resp.Body)
	if err != nil {
		return n, errors.Wrap(err, "stream invoice")
	}
	return n, nil
}

// SalesReport fetches the sales summary for [from, to] (dates, inclusive).
func (c *Client) SalesReport(ctx context.Context, from, to time.Time) (*SalesSummary, error) {
	query := url.Values{
		"from": []string{from.Format("2006-01-02")},
		"to":   []string{to.Format("2006-01-02")},
	}
	resp, err := c.do(ctx, http.MethodGet, "/api/reports/sales?"+query.Encode(), nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	out, err := decodeSalesSummary(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "decode sales summary")
	}
	return out, nil
}

// do sends one request and normalizes non-2xx responses into *Error. The
// caller owns the response body on success.
func (c *Client) do(ctx context.Context, method, path string, body []byte) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, errors.Wrap(err, "build request")
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "%s %s", method, path)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		defer resp.Body.Close()
		return nil, newError(resp)
	}
	return resp, nil
}
