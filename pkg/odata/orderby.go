package odata

import (
	"fmt"
	"strings"
)

// OrderBy is one sort definition for $orderby.
type OrderBy struct {
	Field      string
	Descending bool
}

// Ascending sorts by field in ascending order.
func Ascending(field string) OrderBy { return OrderBy{Field: field} }

// Descending sorts by field in descending order.
func Descending(field string) OrderBy { return OrderBy{Field: field, Descending: true} }

// orderByEncoder validates sort fields against the entity type model and
// encodes the $orderby expression. Tie-breaks follow definition order.
type orderByEncoder struct {
	model *EntityType
	terms []OrderBy
}

func newOrderByEncoder(model *EntityType, terms []OrderBy) *orderByEncoder {
	return &orderByEncoder{model: model, terms: terms}
}

func (e *orderByEncoder) ToURIComponent() (string, error) {
	if len(e.terms) == 0 {
		return "", fmt.Errorf("%w: orderby needs at least one sort definition", ErrInvalidArgument)
	}

	parts := make([]string, 0, len(e.terms))

	for _, term := range e.terms {
		if term.Field == "" {
			return "", fmt.Errorf("%w: orderby field name is empty", ErrInvalidArgument)
		}

		if e.model != nil && !e.model.HasProperty(term.Field) {
			return "", fmt.Errorf("%w: unknown sort field %q on %s", ErrInvalidArgument, term.Field, e.model.Name)
		}

		if term.Descending {
			parts = append(parts, term.Field+" desc")
		} else {
			parts = append(parts, term.Field)
		}
	}

	return strings.Join(parts, ","), nil
}
