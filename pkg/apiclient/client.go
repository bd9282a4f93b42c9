// Package apiclient is the shared HTTP client every front-end component talks
// to the backend through.
//
// The client owns a mutable set of default headers (the bearer token lives
// there) and two interceptors installed at the transport layer: one that
// decorates every outgoing request and one that reacts to 401 responses by
// running the registered unauthorized handlers before the caller sees the
// response.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// DefaultTimeout bounds every request made through a Client.
const DefaultTimeout = 15 * time.Second

const maxResponseBody = 10 << 20

// Config holds the client's connection details.
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// Option customizes a Client.
type Option func(*Client)

// WithTransport replaces the base transport the interceptors wrap.
func WithTransport(rt http.RoundTripper) Option {
	return func(c *Client) { c.base = rt }
}

// WithLogger sets the logger used for interceptor events.
func WithLogger(l *log.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// Client sends JSON and multipart requests to the backend.
type Client struct {
	baseURL    string
	httpClient *http.Client
	base       http.RoundTripper
	logger     *log.Logger

	mu           sync.RWMutex
	headers      http.Header
	unauthorized []func()
}

// New creates a Client for cfg.BaseURL, e.g. "https://farmtoclick.example/api".
func New(cfg Config, opts ...Option) (*Client, error) {
	u, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL %q: %w", cfg.BaseURL, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid base URL %q: scheme and host are required", cfg.BaseURL)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	c := &Client{
		baseURL: strings.TrimRight(u.String(), "/"),
		base:    http.DefaultTransport,
		logger:  log.Default(),
		headers: http.Header{"Accept": []string{"application/json"}},
	}
	for _, opt := range opts {
		opt(c)
	}
	c.httpClient = &http.Client{
		Timeout:   timeout,
		Transport: otelhttp.NewTransport(&interceptor{client: c, next: c.base}),
	}
	return c, nil
}

// BaseURL returns the normalized base URL.
func (c *Client) BaseURL() string { return c.baseURL }

// SetHeader sets a default header sent with every request.
func (c *Client) SetHeader(key, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.headers.Set(key, value)
}

// DeleteHeader removes a default header.
func (c *Client) DeleteHeader(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.headers.Del(key)
}

// Header returns the current value of a default header.
func (c *Client) Header(key string) string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.headers.Get(key)
}

// SetBearerToken sets the default Authorization header. An empty token
// removes it.
func (c *Client) SetBearerToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if token == "" {
		c.headers.Del("Authorization")
		return
	}
	c.headers.Set("Authorization", "Bearer "+token)
}

// OnUnauthorized registers fn to run, synchronously, whenever any request
// comes back with 401.
func (c *Client) OnUnauthorized(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.unauthorized = append(c.unauthorized, fn)
}

// Get sends a GET request and decodes the JSON response into out.
func (c *Client) Get(ctx context.Context, path string, out any) error {
	return c.Do(ctx, http.MethodGet, path, nil, out)
}

// Post sends body as JSON, or as multipart when body is a *Form.
func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, http.MethodPost, path, body, out)
}

// Put sends body as JSON, or as multipart when body is a *Form.
func (c *Client) Put(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, http.MethodPut, path, body, out)
}

// Delete sends a DELETE request.
func (c *Client) Delete(ctx context.Context, path string, out any) error {
	return c.Do(ctx, http.MethodDelete, path, nil, out)
}

// Do sends a request and decodes a 2xx JSON response into out (if non-nil).
// Non-2xx responses return *Error; transport failures and undecodable bodies
// return wrapped errors.
func (c *Client) Do(ctx context.Context, method, path string, body, out any) error {
	req, err := c.newRequest(ctx, method, path, body)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return fmt.Errorf("%s %s: failed to read response: %w", method, path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return newError(resp.StatusCode, data)
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%s %s: failed to decode response: %w", method, path, err)
	}
	return nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, body any) (*http.Request, error) {
	var (
		reader      io.Reader
		contentType string
	)

	switch b := body.(type) {
	case nil:
	case *Form:
		buf, ct, err := b.encode()
		if err != nil {
			return nil, fmt.Errorf("failed to encode multipart body: %w", err)
		}
		reader = buf
		ctx = context.WithValue(ctx, multipartKey{}, ct)
	default:
		data, err := json.Marshal(b)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		reader = bytes.NewReader(data)
		contentType = "application/json"
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+"/"+strings.TrimLeft(path, "/"), reader)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	return req, nil
}

// applyDefaults copies default headers the request does not already carry.
func (c *Client) applyDefaults(req *http.Request) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for k, vs := range c.headers {
		if req.Header.Get(k) != "" {
			continue
		}
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
}

func (c *Client) handleUnauthorized(req *http.Request) {
	c.mu.RLock()
	handlers := make([]func(), len(c.unauthorized))
	copy(handlers, c.unauthorized)
	c.mu.RUnlock()

	c.logger.Printf("Received 401 for %s %s, invalidating session", req.Method, req.URL.Path)
	for _, fn := range handlers {
		fn()
	}
}
