// Package client implements the OData service client and its entity sets.
package client

import (
	"context"
	"fmt"
	nethttp "net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/edmkit-io/odata-client/internal/auth"
	"github.com/edmkit-io/odata-client/internal/http"
	"github.com/edmkit-io/odata-client/pkg/odata"
)

const (
	defaultRetryWaitMin = 1 * time.Second
	defaultRetryWaitMax = 10 * time.Second
)

// Client implements the odata.Client interface for one service root.
type Client struct {
	httpClient *http.Client
	serviceURL string
	logger     odata.Logger

	mu   sync.Mutex
	sets map[string]*EntitySet
}

// New creates a new OData service client.
func New(config *odata.Config) (*Client, error) {
	if config == nil {
		return nil, odata.ErrConfigRequired
	}

	if config.ServiceURL == "" {
		return nil, odata.ErrServiceURLRequired
	}

	serviceURL := strings.TrimSuffix(config.ServiceURL, "/")
	if !strings.HasPrefix(serviceURL, "http://") && !strings.HasPrefix(serviceURL, "https://") {
		serviceURL = "https://" + serviceURL
	}

	httpClient := http.NewClient(serviceURL, createProvider(config), createHTTPClientOptions(config)...)

	return &Client{
		httpClient: httpClient,
		serviceURL: serviceURL,
		logger:     config.Logger,
		sets:       make(map[string]*EntitySet),
	}, nil
}

// createProvider picks the credential provider based on available config.
func createProvider(config *odata.Config) auth.Provider {
	if config.AccessToken != "" {
		return auth.NewStaticTokenProvider(config.AccessToken)
	}

	if config.Username != "" {
		return auth.NewBasicProvider(config.Username, config.Password)
	}

	return nil // No authentication
}

// createHTTPClientOptions builds transport options from config.
func createHTTPClientOptions(config *odata.Config) []http.Option {
	var httpOpts []http.Option

	if config.Logger != nil {
		httpOpts = append(httpOpts, http.WithLogger(config.Logger))
	}

	if config.Debug {
		httpOpts = append(httpOpts, http.WithDebug(true))
	}

	if config.UserAgent != "" {
		httpOpts = append(httpOpts, http.WithUserAgent(config.UserAgent))
	}

	if config.HTTPTimeout > 0 {
		httpOpts = append(httpOpts, http.WithTimeout(config.HTTPTimeout))
	}

	if config.RetryMax > 0 {
		retryWaitMin := config.RetryWaitMin
		if retryWaitMin <= 0 {
			retryWaitMin = defaultRetryWaitMin
		}

		retryWaitMax := config.RetryWaitMax
		if retryWaitMax <= 0 {
			retryWaitMax = defaultRetryWaitMax
		}

		httpOpts = append(httpOpts, http.WithRetryConfig(config.RetryMax, retryWaitMin, retryWaitMax))
	}

	return httpOpts
}

// ServiceURL implements odata.Client.ServiceURL.
func (c *Client) ServiceURL() string {
	return c.serviceURL
}

// EntitySet implements odata.Client.EntitySet. Instances are cached per set
// name.
func (c *Client) EntitySet(name string, model *odata.EntityType) (odata.EntitySetClient, error) {
	if name == "" {
		return nil, odata.ErrEntitySetNameRequired
	}

	if model == nil {
		return nil, odata.ErrEntityTypeRequired
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if set, ok := c.sets[name]; ok {
		return set, nil
	}

	set := newEntitySet(c, name, model)
	c.sets[name] = set

	return set, nil
}

// executeGet fetches a resolved path; the path already carries its query
// string.
func (c *Client) executeGet(ctx context.Context, name, path string) (*odata.Response, error) {
	resp, err := c.httpClient.Do(ctx, &http.Request{Method: nethttp.MethodGet, Path: path})
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", name, err)
	}

	return &odata.Response{
		StatusCode: resp.StatusCode,
		Headers:    resp.Headers,
		Body:       resp.Body,
	}, nil
}

// executeCount fetches <collection>/$count, carrying over any $filter from
// the request, and parses the plain-text integer body.
func (c *Client) executeCount(ctx context.Context, name, listPath string, params *odata.QueryParams) (int64, error) {
	req := &http.Request{
		Method:  nethttp.MethodGet,
		Path:    listPath + "/$count",
		Headers: map[string]string{"Accept": "text/plain"},
	}

	if expr, ok := params.Get(odata.QueryFilter); ok && expr != "" {
		req.Query = odata.NewQueryParams().WithFilter(expr).Values()
	}

	resp, err := c.httpClient.Do(ctx, req)
	if err != nil {
		return 0, fmt.Errorf("counting %s: %w", name, err)
	}

	count, err := strconv.ParseInt(strings.TrimSpace(string(resp.Body)), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parsing count response %q: %w", resp.Body, err)
	}

	return count, nil
}

// relativePath strips the service root from absolute next links so they can
// be fetched through the transport again.
func (c *Client) relativePath(path string) string {
	if strings.HasPrefix(path, c.serviceURL) {
		return strings.TrimPrefix(path, c.serviceURL)
	}

	return path
}
