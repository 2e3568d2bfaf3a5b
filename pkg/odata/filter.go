package odata

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Expression is a structured $filter definition that encodes itself into the
// expression syntax carried in the query string. Encoders own their own
// validation; a malformed definition fails at encoding time.
type Expression interface {
	ToURIComponent() (string, error)
}

// FormatLiteral infers the EDM type of a Go value and formats it as an OData
// literal. nil becomes the null literal.
func FormatLiteral(value interface{}) (string, error) {
	switch v := value.(type) {
	case nil:
		return "null", nil
	case string:
		return EdmString.FormatLiteral(v)
	case bool:
		return EdmBoolean.FormatLiteral(v)
	case uuid.UUID:
		return EdmGuid.FormatLiteral(v)
	case decimal.Decimal:
		return EdmDecimal.FormatLiteral(v)
	case time.Time:
		return EdmDateTimeOffset.FormatLiteral(v)
	case float32, float64:
		return EdmDouble.FormatLiteral(v)
	}

	if n, ok := asInt64(value); ok {
		return strconv.FormatInt(n, 10), nil
	}

	return "", fmt.Errorf("%w: cannot format %T as an OData literal", ErrInvalidArgument, value)
}

type comparison struct {
	field string
	op    string
	value interface{}
}

func (c comparison) ToURIComponent() (string, error) {
	if c.field == "" {
		return "", fmt.Errorf("%w: comparison needs a field name", ErrInvalidArgument)
	}

	literal, err := FormatLiteral(c.value)
	if err != nil {
		return "", err
	}

	return c.field + " " + c.op + " " + literal, nil
}

// Eq compares a field for equality.
func Eq(field string, value interface{}) Expression { return comparison{field, "eq", value} }

// Ne compares a field for inequality.
func Ne(field string, value interface{}) Expression { return comparison{field, "ne", value} }

// Gt compares a field for greater-than.
func Gt(field string, value interface{}) Expression { return comparison{field, "gt", value} }

// Ge compares a field for greater-or-equal.
func Ge(field string, value interface{}) Expression { return comparison{field, "ge", value} }

// Lt compares a field for less-than.
func Lt(field string, value interface{}) Expression { return comparison{field, "lt", value} }

// Le compares a field for less-or-equal.
func Le(field string, value interface{}) Expression { return comparison{field, "le", value} }

type logical struct {
	op       string
	operands []Expression
}

func (l logical) ToURIComponent() (string, error) {
	if len(l.operands) < 2 {
		return "", fmt.Errorf("%w: %s needs at least two operands", ErrInvalidArgument, l.op)
	}

	parts := make([]string, 0, len(l.operands))

	for _, operand := range l.operands {
		if operand == nil {
			return "", fmt.Errorf("%w: nil filter expression", ErrInvalidArgument)
		}

		encoded, err := operand.ToURIComponent()
		if err != nil {
			return "", err
		}

		parts = append(parts, encoded)
	}

	return "(" + strings.Join(parts, " "+l.op+" ") + ")", nil
}

// And combines expressions conjunctively.
func And(operands ...Expression) Expression { return logical{"and", operands} }

// Or combines expressions disjunctively.
func Or(operands ...Expression) Expression { return logical{"or", operands} }

type negation struct {
	operand Expression
}

func (n negation) ToURIComponent() (string, error) {
	if n.operand == nil {
		return "", fmt.Errorf("%w: not needs an operand", ErrInvalidArgument)
	}

	encoded, err := n.operand.ToURIComponent()
	if err != nil {
		return "", err
	}

	return "not (" + encoded + ")", nil
}

// Not negates an expression.
func Not(operand Expression) Expression { return negation{operand} }

type stringCall struct {
	function string
	field    string
	value    string
}

func (c stringCall) ToURIComponent() (string, error) {
	if c.field == "" {
		return "", fmt.Errorf("%w: %s needs a field name", ErrInvalidArgument, c.function)
	}

	literal, err := EdmString.FormatLiteral(c.value)
	if err != nil {
		return "", err
	}

	return c.function + "(" + c.field + "," + literal + ")", nil
}

// Contains matches entities whose field contains the substring.
func Contains(field, value string) Expression { return stringCall{"contains", field, value} }

// StartsWith matches entities whose field starts with the prefix.
func StartsWith(field, value string) Expression { return stringCall{"startswith", field, value} }

// EndsWith matches entities whose field ends with the suffix.
func EndsWith(field, value string) Expression { return stringCall{"endswith", field, value} }

// Raw wraps an already-encoded filter fragment, e.g. one passed through from
// a command-line flag. It is used verbatim.
type Raw string

func (r Raw) ToURIComponent() (string, error) {
	if r == "" {
		return "", fmt.Errorf("%w: empty filter expression", ErrInvalidArgument)
	}

	return string(r), nil
}
