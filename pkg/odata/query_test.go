package odata_test

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/edmkit-io/odata-client/pkg/odata"
)

func TestQueryParamsValues(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		params   *odata.QueryParams
		expected url.Values
	}{
		{
			name:     "empty params",
			params:   odata.NewQueryParams(),
			expected: url.Values{},
		},
		{
			name:   "with filter",
			params: odata.NewQueryParams().WithFilter("Price gt 10"),
			expected: url.Values{
				"$filter": []string{"Price gt 10"},
			},
		},
		{
			name:   "with paging",
			params: odata.NewQueryParams().WithTop(10).WithSkip(20),
			expected: url.Values{
				"$top":  []string{"10"},
				"$skip": []string{"20"},
			},
		},
		{
			name:   "with ordering",
			params: odata.NewQueryParams().WithOrderBy("Price desc,Name"),
			expected: url.Values{
				"$orderby": []string{"Price desc,Name"},
			},
		},
		{
			name:     "empty values are skipped",
			params:   odata.NewQueryParams().WithFilter(""),
			expected: url.Values{},
		},
		{
			name:   "later writes overwrite",
			params: odata.NewQueryParams().WithTop(10).WithTop(5),
			expected: url.Values{
				"$top": []string{"5"},
			},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.expected, tt.params.Values())
		})
	}
}

func TestQueryParamsAccessors(t *testing.T) {
	t.Parallel()

	params := odata.NewQueryParams().
		Set("$filter", "Price gt 10").
		Set("sap-language", "EN")

	assert.Equal(t, 2, params.Len())
	assert.Equal(t, []string{"$filter", "sap-language"}, params.Names())

	value, ok := params.Get("$filter")
	assert.True(t, ok)
	assert.Equal(t, "Price gt 10", value)

	_, ok = params.Get("$top")
	assert.False(t, ok)
}

func TestQueryParamsClone(t *testing.T) {
	t.Parallel()

	original := odata.NewQueryParams().WithFilter("Price gt 10")
	clone := original.Clone()

	clone.Set("$top", "5")

	assert.Equal(t, 1, original.Len(), "mutating the clone must not affect the original")
	assert.Equal(t, 2, clone.Len())
}

func TestQueryParamsEncodingIsDeterministic(t *testing.T) {
	t.Parallel()

	params := odata.NewQueryParams().
		WithFilter("Name eq 'Tea'").
		WithOrderBy("Name").
		WithTop(3)

	encoded := params.Values().Encode()
	assert.Equal(t, "%24filter=Name+eq+%27Tea%27&%24orderby=Name&%24top=3", encoded)
}
