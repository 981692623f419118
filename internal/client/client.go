// Package client is a typed HTTP client for the expense API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"quickspend/internal/core"
)

// HeaderIdempotencyKey carries the submission token on create.
const HeaderIdempotencyKey = "Idempotency-Key"

// NetworkError is a transport failure or a non-2xx response.
// StatusCode is zero when no response was received.
type NetworkError struct {
	Op         string
	StatusCode int
	Message    string
	Err        error
}

func (e *NetworkError) Error() string {
	switch {
	case e.StatusCode != 0 && e.Message != "":
		return fmt.Sprintf("%s: status %d: %s", e.Op, e.StatusCode, e.Message)
	case e.StatusCode != 0:
		return fmt.Sprintf("%s: status %d", e.Op, e.StatusCode)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	default:
		return e.Op + ": request failed"
	}
}

func (e *NetworkError) Unwrap() error { return e.Err }

// Client talks to the expense API over HTTP.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// New creates a client for the API rooted at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("parse base url: unsupported scheme %q", u.Scheme)
	}
	c := &Client{baseURL: u, httpClient: http.DefaultClient}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Create posts in and returns the stored record. A non-empty idempotencyKey
// is sent as the Idempotency-Key header.
func (c *Client) Create(ctx context.Context, in core.NewExpense, idempotencyKey string) (core.Expense, error) {
	const op = "create expense"

	body, err := json.Marshal(in)
	if err != nil {
		return core.Expense{}, fmt.Errorf("%s: marshal: %w", op, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint("/expenses", nil), bytes.NewReader(body))
	if err != nil {
		return core.Expense{}, fmt.Errorf("%s: %w", op, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if idempotencyKey != "" {
		req.Header.Set(HeaderIdempotencyKey, idempotencyKey)
	}

	var e core.Expense
	if err := c.do(req, op, http.StatusCreated, &e); err != nil {
		return core.Expense{}, err
	}
	return e, nil
}

// List fetches the records matching q.
func (c *Client) List(ctx context.Context, q core.ListQuery) ([]core.Expense, error) {
	const op = "list expenses"

	params := url.Values{}
	if q.Category != "" {
		params.Set("category", q.Category)
	}
	if q.NewestFirst {
		params.Set("sort_date_desc", "true")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint("/expenses", params), nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")

	expenses := []core.Expense{}
	if err := c.do(req, op, http.StatusOK, &expenses); err != nil {
		return nil, err
	}
	if expenses == nil {
		expenses = []core.Expense{}
	}
	return expenses, nil
}

func (c *Client) endpoint(path string, params url.Values) string {
	u := *c.baseURL
	u.Path = strings.TrimRight(u.Path, "/") + path
	u.RawQuery = params.Encode()
	return u.String()
}

func (c *Client) do(req *http.Request, op string, want int, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &NetworkError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return &NetworkError{Op: op, StatusCode: resp.StatusCode, Err: err}
	}

	if resp.StatusCode != want {
		var body struct {
			Error string `json:"error"`
		}
		_ = json.Unmarshal(data, &body)
		return &NetworkError{Op: op, StatusCode: resp.StatusCode, Message: body.Error}
	}

	if err := json.Unmarshal(data, out); err != nil {
		return &NetworkError{Op: op, StatusCode: resp.StatusCode, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

// IsStatus reports whether err is a NetworkError with the given status.
func IsStatus(err error, status int) bool {
	var ne *NetworkError
	return errors.As(err, &ne) && ne.StatusCode == status
}
