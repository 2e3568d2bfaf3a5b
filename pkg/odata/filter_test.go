package odata_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edmkit-io/odata-client/pkg/odata"
)

func TestFilterExpressions(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		expr     odata.Expression
		expected string
	}{
		{
			name:     "eq string",
			expr:     odata.Eq("Name", "Tea"),
			expected: "Name eq 'Tea'",
		},
		{
			name:     "eq string with quote",
			expr:     odata.Eq("Name", "O'Brien"),
			expected: "Name eq 'O''Brien'",
		},
		{
			name:     "ne integer",
			expr:     odata.Ne("ID", 5),
			expected: "ID ne 5",
		},
		{
			name:     "gt float",
			expr:     odata.Gt("Price", 9.5),
			expected: "Price gt 9.5",
		},
		{
			name:     "ge bool",
			expr:     odata.Ge("Active", true),
			expected: "Active ge true",
		},
		{
			name:     "eq null",
			expr:     odata.Eq("DiscontinuedAt", nil),
			expected: "DiscontinuedAt eq null",
		},
		{
			name:     "eq guid",
			expr:     odata.Eq("OwnerID", uuid.MustParse("01234567-89AB-CDEF-0123-456789ABCDEF")),
			expected: "OwnerID eq 01234567-89ab-cdef-0123-456789abcdef",
		},
		{
			name:     "eq decimal",
			expr:     odata.Eq("Price", decimal.RequireFromString("19.90")),
			expected: "Price eq 19.9",
		},
		{
			name:     "lt timestamp",
			expr:     odata.Lt("CreatedAt", time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)),
			expected: "CreatedAt lt 2024-03-01T12:00:00Z",
		},
		{
			name:     "and",
			expr:     odata.And(odata.Gt("Price", 10), odata.Le("Price", 20)),
			expected: "(Price gt 10 and Price le 20)",
		},
		{
			name:     "or of three",
			expr:     odata.Or(odata.Eq("ID", 1), odata.Eq("ID", 2), odata.Eq("ID", 3)),
			expected: "(ID eq 1 or ID eq 2 or ID eq 3)",
		},
		{
			name:     "nested logical",
			expr:     odata.And(odata.Eq("Active", true), odata.Or(odata.Eq("ID", 1), odata.Eq("ID", 2))),
			expected: "(Active eq true and (ID eq 1 or ID eq 2))",
		},
		{
			name:     "not",
			expr:     odata.Not(odata.Eq("Active", true)),
			expected: "not (Active eq true)",
		},
		{
			name:     "contains",
			expr:     odata.Contains("Name", "ea"),
			expected: "contains(Name,'ea')",
		},
		{
			name:     "startswith",
			expr:     odata.StartsWith("Name", "T"),
			expected: "startswith(Name,'T')",
		},
		{
			name:     "endswith",
			expr:     odata.EndsWith("Name", "a"),
			expected: "endswith(Name,'a')",
		},
		{
			name:     "raw passthrough",
			expr:     odata.Raw("Price gt 10"),
			expected: "Price gt 10",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			encoded, err := tt.expr.ToURIComponent()
			require.NoError(t, err)
			assert.Equal(t, tt.expected, encoded)
		})
	}
}

func TestFilterExpressionErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		expr odata.Expression
	}{
		{name: "empty field name", expr: odata.Eq("", 1)},
		{name: "unformattable value", expr: odata.Eq("ID", struct{}{})},
		{name: "and with one operand", expr: odata.And(odata.Eq("ID", 1))},
		{name: "or with nil operand", expr: odata.Or(odata.Eq("ID", 1), nil)},
		{name: "not with nil operand", expr: odata.Not(nil)},
		{name: "contains without field", expr: odata.Contains("", "x")},
		{name: "empty raw expression", expr: odata.Raw("")},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := tt.expr.ToURIComponent()
			require.ErrorIs(t, err, odata.ErrInvalidArgument)
		})
	}
}
