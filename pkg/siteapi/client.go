package siteapi

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
	"time"

	"github.com/angelmondragon/content-console/pkg/config"
)

const (
	defaultTimeout          = 15 * time.Second
	errorBodyReadLimit int64 = 1024
)

var errBaseURLRequired = errors.New("site api base url is required")

// Client talks to the REST API that owns the website content.
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
}

// Option configures optional client behavior.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithToken sets the bearer token forwarded on every call.
func WithToken(token string) Option {
	return func(c *Client) {
		c.token = strings.TrimSpace(token)
	}
}

// NewClient builds a client for the configured collaborator.
func NewClient(cfg config.SiteAPIConfig, opts ...Option) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		return nil, errBaseURLRequired
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	client := &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    base,
		token:      strings.TrimSpace(cfg.Token),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}
	return client, nil
}

// StatusError is returned for any non-2xx answer from the collaborator.
type StatusError struct {
	Method string
	Path   string
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.Path, e.Status, e.Body)
	}
	return fmt.Sprintf("%s %s: status %d", e.Method, e.Path, e.Status)
}

func (e *StatusError) StatusCode() int {
	return e.Status
}

// IsNotFound reports whether err is a 404 from the collaborator.
func IsNotFound(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Status == http.StatusNotFound
}

// List fetches every record of resource as a raw JSON array.
func (c *Client) List(ctx context.Context, resource string) (json.RawMessage, error) {
	return c.do(ctx, http.MethodGet, "/api/"+url.PathEscape(resource), nil)
}

// Create posts a new record; the response body is returned as-is and may be empty.
func (c *Client) Create(ctx context.Context, resource string, record any) (json.RawMessage, error) {
	return c.do(ctx, http.MethodPost, "/api/"+url.PathEscape(resource), record)
}

// Update replaces the record identified by id.
func (c *Client) Update(ctx context.Context, resource, id string, record any) (json.RawMessage, error) {
	if strings.TrimSpace(id) == "" {
		return nil, errors.New("record id required for update")
	}
	return c.do(ctx, http.MethodPut, recordPath(resource, id), record)
}

func (c *Client) Delete(ctx context.Context, resource, id string) error {
	if strings.TrimSpace(id) == "" {
		return errors.New("record id required for delete")
	}
	_, err := c.do(ctx, http.MethodDelete, recordPath(resource, id), nil)
	return err
}

type statusBody struct {
	Status string `json:"status"`
}

// UpdateContactStatus sets a contact request's workflow status.
func (c *Client) UpdateContactStatus(ctx context.Context, id, status string) error {
	_, err := c.do(ctx, http.MethodPut, recordPath("contacts", id), statusBody{Status: status})
	return err
}

// UpdateQuoteStatus sets a quote request's workflow status.
func (c *Client) UpdateQuoteStatus(ctx context.Context, id, status string) error {
	_, err := c.do(ctx, http.MethodPut, recordPath("quote", id)+"/status", statusBody{Status: status})
	return err
}

func (c *Client) FlagQuote(ctx context.Context, id string) error {
	_, err := c.do(ctx, http.MethodPut, recordPath("quote", id)+"/flag", nil)
	return err
}

func recordPath(resource, id string) string {
	return "/api/" + url.PathEscape(resource) + "/" + url.PathEscape(id)
}

func (c *Client) do(ctx context.Context, method, path string, body any) (json.RawMessage, error) {
	if c == nil {
		return nil, errors.New("site api client not configured")
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal %s %s body: %w", method, path, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("build %s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyReadLimit))
		return nil, &StatusError{
			Method: method,
			Path:   path,
			Status: resp.StatusCode,
			Body:   strings.TrimSpace(string(snippet)),
		}
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s %s response: %w", method, path, err)
	}
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || !json.Valid(raw) {
		return nil, nil
	}
	return json.RawMessage(raw), nil
}
