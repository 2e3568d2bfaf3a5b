// Package http implements the transport underneath the OData client: a
// retrying HTTP client that speaks the OData v4 header conventions and
// decodes OData error payloads.
package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	nethttp "net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/edmkit-io/odata-client/internal/auth"
	"github.com/edmkit-io/odata-client/pkg/odata"
)

const (
	defaultRetryMax     = 3
	defaultRetryWaitMin = 1 * time.Second
	defaultRetryWaitMax = 10 * time.Second
)

// Request represents an HTTP request to the service.
type Request struct {
	Method string

	// Path is relative to the service root and may already carry a raw
	// query string resolved by a request definition.
	Path string

	// Query holds additional query values appended to Path.
	Query url.Values

	// Headers are set after the defaults and may override them.
	Headers map[string]string

	// Body is JSON-marshaled when non-nil.
	Body interface{}
}

// Response represents an HTTP response from the service.
type Response struct {
	StatusCode int
	Headers    nethttp.Header
	Body       []byte
}

// Client wraps retryablehttp with OData conventions.
type Client struct {
	baseURL   string
	provider  auth.Provider
	retryable *retryablehttp.Client
	logger    odata.Logger
	userAgent string
	debug     bool
}

// Option configures the client.
type Option func(*Client)

// WithLogger sets the logger used for debug output.
func WithLogger(logger odata.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithDebug enables request/response logging.
func WithDebug(debug bool) Option {
	return func(c *Client) {
		c.debug = debug
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(userAgent string) Option {
	return func(c *Client) {
		c.userAgent = userAgent
	}
}

// WithRetryConfig tunes the retry behavior.
func WithRetryConfig(retryMax int, waitMin, waitMax time.Duration) Option {
	return func(c *Client) {
		c.retryable.RetryMax = retryMax
		c.retryable.RetryWaitMin = waitMin
		c.retryable.RetryWaitMax = waitMax
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.retryable.HTTPClient.Timeout = timeout
	}
}

// NewClient creates a transport client for the given service root. provider
// may be nil for unauthenticated services.
func NewClient(baseURL string, provider auth.Provider, opts ...Option) *Client {
	retryable := retryablehttp.NewClient()
	retryable.RetryMax = defaultRetryMax
	retryable.RetryWaitMin = defaultRetryWaitMin
	retryable.RetryWaitMax = defaultRetryWaitMax
	retryable.Logger = nil

	client := &Client{
		baseURL:   strings.TrimSuffix(baseURL, "/"),
		provider:  provider,
		retryable: retryable,
	}

	for _, opt := range opts {
		opt(client)
	}

	return client
}

// Do executes the request and returns the response. Responses with status
// >= 400 are decoded into *odata.APIError and returned as the error.
func (c *Client) Do(ctx context.Context, req *Request) (*Response, error) {
	fullURL := c.baseURL + req.Path

	if len(req.Query) > 0 {
		separator := "?"
		if strings.Contains(req.Path, "?") {
			separator = "&"
		}

		fullURL += separator + req.Query.Encode()
	}

	var body io.Reader

	if req.Body != nil {
		data, err := json.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("marshaling request body: %w", err)
		}

		body = bytes.NewReader(data)
	}

	httpReq, err := retryablehttp.NewRequestWithContext(ctx, req.Method, fullURL, body)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("OData-Version", "4.0")
	httpReq.Header.Set("OData-MaxVersion", "4.0")

	if req.Body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	if c.userAgent != "" {
		httpReq.Header.Set("User-Agent", c.userAgent)
	}

	for name, value := range req.Headers {
		httpReq.Header.Set(name, value)
	}

	if c.provider != nil {
		header, err := c.provider.AuthorizationHeader(ctx)
		if err != nil {
			return nil, fmt.Errorf("resolving credentials: %w", err)
		}

		httpReq.Header.Set("Authorization", header)
	}

	if c.debug && c.logger != nil {
		c.logger.Debug("http request", map[string]interface{}{
			"method": req.Method,
			"url":    fullURL,
		})
	}

	httpResp, err := c.retryable.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}

	defer func() {
		_ = httpResp.Body.Close()
	}()

	data, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	if c.debug && c.logger != nil {
		c.logger.Debug("http response", map[string]interface{}{
			"status": httpResp.StatusCode,
			"bytes":  len(data),
		})
	}

	if httpResp.StatusCode >= nethttp.StatusBadRequest {
		return nil, odata.ParseAPIError(httpResp.StatusCode, data)
	}

	return &Response{
		StatusCode: httpResp.StatusCode,
		Headers:    httpResp.Header,
		Body:       data,
	}, nil
}

// Get performs a GET request against path.
func (c *Client) Get(ctx context.Context, path string, query url.Values) (*Response, error) {
	return c.Do(ctx, &Request{Method: nethttp.MethodGet, Path: path, Query: query})
}
