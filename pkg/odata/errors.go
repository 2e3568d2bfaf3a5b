package odata

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// Static errors for err113 compliance.
var (
	// ErrInvalidArgument indicates a wrong arity or argument shape.
	ErrInvalidArgument = errors.New("odata: invalid argument")

	// ErrInvalidKeyShape indicates a key candidate that is absent, not a
	// mapping, or sequence-shaped. Key identity is by field name, never by
	// position.
	ErrInvalidKeyShape = errors.New("odata: key must be a plain map")

	// ErrMissingKeyField indicates a required key-schema field with no
	// resolvable value in the candidate.
	ErrMissingKeyField = errors.New("odata: missing key field")

	// ErrUnsupportedOperation indicates an operation the resource's
	// capability descriptor forbids.
	ErrUnsupportedOperation = errors.New("odata: unsupported operation")

	ErrConfigRequired        = errors.New("odata: config is required")
	ErrServiceURLRequired    = errors.New("odata: service URL is required")
	ErrEntitySetNameRequired = errors.New("odata: entity set name is required")
	ErrEntityTypeRequired    = errors.New("odata: entity type is required")
	ErrNoMoreItems           = errors.New("odata: no more items")
	ErrPageLimitExceeded     = errors.New("odata: page limit exceeded")
)

// APIError represents the error object an OData service returns.
type APIError struct {
	Status  int    `json:"-"       yaml:"-"`
	Code    string `json:"code"    yaml:"code"`
	Message string `json:"message" yaml:"message"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s: %s (status: %d)", e.Code, e.Message, e.Status)
	}

	return fmt.Sprintf("%s (status: %d)", e.Message, e.Status)
}

// errorResponse mirrors the OData v4 JSON error format: {"error":{...}}.
type errorResponse struct {
	Error APIError `json:"error"`
}

// ParseAPIError decodes an OData error body. Bodies that do not follow the
// OData error format degrade to the HTTP status text.
func ParseAPIError(status int, body []byte) *APIError {
	var resp errorResponse

	err := json.Unmarshal(body, &resp)
	if err != nil || (resp.Error.Code == "" && resp.Error.Message == "") {
		return &APIError{Status: status, Message: http.StatusText(status)}
	}

	apiErr := resp.Error
	apiErr.Status = status

	return &apiErr
}

// IsNotFound checks if the error is a not found error.
func IsNotFound(err error) bool {
	apiErr := &APIError{}
	if errors.As(err, &apiErr) {
		return apiErr.Status == http.StatusNotFound
	}

	return false
}

// IsUnauthorized checks if the error is an unauthorized error.
func IsUnauthorized(err error) bool {
	apiErr := &APIError{}
	if errors.As(err, &apiErr) {
		return apiErr.Status == http.StatusUnauthorized
	}

	return false
}

// IsForbidden checks if the error is a forbidden error.
func IsForbidden(err error) bool {
	apiErr := &APIError{}
	if errors.As(err, &apiErr) {
		return apiErr.Status == http.StatusForbidden
	}

	return false
}
