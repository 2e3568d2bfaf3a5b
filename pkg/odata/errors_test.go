package odata_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edmkit-io/odata-client/pkg/odata"
)

func TestParseAPIError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		status      int
		body        string
		wantCode    string
		wantMessage string
	}{
		{
			name:        "odata error body",
			status:      http.StatusNotFound,
			body:        `{"error":{"code":"404","message":"Product not found"}}`,
			wantCode:    "404",
			wantMessage: "Product not found",
		},
		{
			name:        "message only",
			status:      http.StatusBadRequest,
			body:        `{"error":{"message":"malformed $filter"}}`,
			wantMessage: "malformed $filter",
		},
		{
			name:        "non-json body degrades to status text",
			status:      http.StatusBadGateway,
			body:        "<html>upstream down</html>",
			wantMessage: "Bad Gateway",
		},
		{
			name:        "empty error object degrades to status text",
			status:      http.StatusInternalServerError,
			body:        `{"error":{}}`,
			wantMessage: "Internal Server Error",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			apiErr := odata.ParseAPIError(tt.status, []byte(tt.body))
			require.NotNil(t, apiErr)
			assert.Equal(t, tt.status, apiErr.Status)
			assert.Equal(t, tt.wantCode, apiErr.Code)
			assert.Equal(t, tt.wantMessage, apiErr.Message)
		})
	}
}

func TestAPIErrorString(t *testing.T) {
	t.Parallel()

	withCode := &odata.APIError{Status: 404, Code: "404", Message: "Product not found"}
	assert.Equal(t, "404: Product not found (status: 404)", withCode.Error())

	withoutCode := &odata.APIError{Status: 502, Message: "Bad Gateway"}
	assert.Equal(t, "Bad Gateway (status: 502)", withoutCode.Error())
}

func TestErrorPredicates(t *testing.T) {
	t.Parallel()

	notFound := fmt.Errorf("fetching Products: %w", &odata.APIError{Status: http.StatusNotFound})
	unauthorized := fmt.Errorf("fetching Products: %w", &odata.APIError{Status: http.StatusUnauthorized})
	forbidden := fmt.Errorf("fetching Products: %w", &odata.APIError{Status: http.StatusForbidden})

	assert.True(t, odata.IsNotFound(notFound))
	assert.False(t, odata.IsNotFound(unauthorized))

	assert.True(t, odata.IsUnauthorized(unauthorized))
	assert.False(t, odata.IsUnauthorized(forbidden))

	assert.True(t, odata.IsForbidden(forbidden))
	assert.False(t, odata.IsForbidden(odata.ErrInvalidArgument))
}
