// Package crmclient is an HTTP client for the source record API. It supplies
// sample records for mapping tests and derives source field catalogs from
// them.
package crmclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/getmockd/fieldmap/pkg/catalog"
	"github.com/getmockd/fieldmap/pkg/mapping"
)

// DefaultTimeout bounds every request unless overridden with WithTimeout.
const DefaultTimeout = 5 * time.Second

// ErrNoRecords is returned when the source API has no records for an entity.
var ErrNoRecords = errors.New("no records available")

// APIError is a non-2xx response from the source API.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("source api: %s: %s (status %d)", e.Code, e.Message, e.StatusCode)
	}
	return fmt.Sprintf("source api: request failed: status %d", e.StatusCode)
}

// Client is an HTTP client for the source record API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	apiKey     string
	token      string
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout sets the HTTP timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient.Timeout = timeout
		}
	}
}

// WithAPIKey sends key in the X-API-Key header.
func WithAPIKey(key string) Option {
	return func(c *Client) {
		c.apiKey = key
	}
}

// WithToken sends token as a bearer credential.
func WithToken(token string) Option {
	return func(c *Client) {
		c.token = token
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// New creates a new source API client.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the configured base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Health checks if the source API is reachable.
func (c *Client) Health(ctx context.Context) error {
	resp, err := c.get(ctx, "/health")
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return c.parseError(resp)
	}
	return nil
}

// ListRecords returns every record of entity, e.g. GET /contacts.
func (c *Client) ListRecords(ctx context.Context, entity mapping.EntityType) ([]map[string]any, error) {
	resp, err := c.get(ctx, "/"+entity.Plural())
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, c.parseError(resp)
	}

	var records []map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&records); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", entity.Plural(), err)
	}
	return records, nil
}

// FetchSample returns the first record of entity.
func (c *Client) FetchSample(ctx context.Context, entity mapping.EntityType) (map[string]any, error) {
	records, err := c.ListRecords(ctx, entity)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%s: %w", entity.Plural(), ErrNoRecords)
	}
	return records[0], nil
}

// ListFields derives the source field catalog of entity from its records.
func (c *Client) ListFields(ctx context.Context, entity mapping.EntityType) ([]mapping.Field, error) {
	records, err := c.ListRecords(ctx, entity)
	if err != nil {
		return nil, err
	}
	return catalog.FieldsFromRecords(records...), nil
}

func (c *Client) get(ctx context.Context, path string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	return c.do(req)
}

func (c *Client) do(req *http.Request) (*http.Response, error) {
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	return c.httpClient.Do(req)
}

func (c *Client) parseError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	apiErr := &APIError{StatusCode: resp.StatusCode}
	var errResp struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if json.Unmarshal(body, &errResp) == nil {
		apiErr.Code = errResp.Error
		apiErr.Message = errResp.Message
	}
	return apiErr
}

var _ catalog.Provider = (*Client)(nil)
