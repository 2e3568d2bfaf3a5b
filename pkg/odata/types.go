package odata

import (
	"context"
	"net/http"
	"time"
)

// Logger interface for logging.
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
}

// Config represents client configuration for building an OData service
// client.
type Config struct {
	// ServiceURL is the service root, e.g. "https://host/odata/v4/catalog".
	// The concrete client normalizes it by trimming a trailing slash and
	// adding "https://" if no scheme is present.
	ServiceURL string

	// AccessToken, if set, is sent directly as a static Bearer token.
	AccessToken string

	// Username and Password enable HTTP basic authentication when no access
	// token is set.
	Username string
	Password string

	// HTTPTimeout is the optional per-request timeout; prefer context
	// deadlines on individual calls.
	HTTPTimeout time.Duration

	// RetryMax is the maximum number of retries for transient failures
	// (>= 500, 429, and connection errors). If 0, a default is used.
	RetryMax int

	// RetryWaitMin and RetryWaitMax bound the backoff between retries.
	RetryWaitMin time.Duration
	RetryWaitMax time.Duration

	// Debug enables verbose HTTP request/response logging when a Logger is
	// provided.
	Debug bool

	// Logger is the optional structured logger used by the transport and by
	// association registration warnings.
	Logger Logger

	// UserAgent overrides the default User-Agent header.
	UserAgent string
}

// Response carries the raw transport result of a terminal fetch. The request
// definition never interprets the body; stream requests carry the binary
// content here.
type Response struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
}

// Entity is the generic representation of a single entity payload.
type Entity = map[string]interface{}

// ListResponse is an OData collection payload.
type ListResponse[T any] struct {
	Context  string `json:"@odata.context,omitempty"  yaml:"context,omitempty"`
	Count    *int64 `json:"@odata.count,omitempty"    yaml:"count,omitempty"`
	NextLink string `json:"@odata.nextLink,omitempty" yaml:"next_link,omitempty"`
	Value    []T    `json:"value"                     yaml:"value"`
}

// EntitySetClient is one entity set of a service: the owning resource of
// request definitions plus decoding helpers for common fetches.
type EntitySetClient interface {
	Resource

	// Request starts a new request definition against this entity set.
	Request() *RequestDefinition

	// List fetches one page of the collection.
	List(ctx context.Context, params *QueryParams) (*ListResponse[Entity], error)

	// ListPage fetches the page at an explicit path; pagination helpers pass
	// the @odata.nextLink of the previous page here.
	ListPage(ctx context.Context, path string, params *QueryParams) (*ListResponse[Entity], error)

	// GetEntity fetches a single entity by key.
	GetEntity(ctx context.Context, key interface{}) (Entity, error)
}

// Client is an OData v4 service client.
type Client interface {
	// EntitySet returns the client for a named entity set described by model.
	EntitySet(name string, model *EntityType) (EntitySetClient, error)

	// ServiceURL returns the normalized service root.
	ServiceURL() string
}
