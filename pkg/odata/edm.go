package odata

import (
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// EdmType formats Go values as OData v4 primitive literals. The formatted
// form is what appears inside key predicates and filter expressions.
type EdmType interface {
	// Name returns the EDM type name, e.g. "Edm.String".
	Name() string

	// FormatLiteral converts a value to its OData literal form.
	FormatLiteral(value interface{}) (string, error)
}

// Supported EDM primitive types.
var (
	EdmString         EdmType = edmString{}
	EdmGuid           EdmType = edmGuid{}
	EdmInt32          EdmType = edmInt{name: "Edm.Int32", min: math.MinInt32, max: math.MaxInt32}
	EdmInt64          EdmType = edmInt{name: "Edm.Int64", min: math.MinInt64, max: math.MaxInt64}
	EdmBoolean        EdmType = edmBoolean{}
	EdmDouble         EdmType = edmDouble{}
	EdmDecimal        EdmType = edmDecimal{}
	EdmDateTimeOffset EdmType = edmDateTimeOffset{}
)

// EdmTypeByName resolves an EDM type from its name. The "Edm." prefix is
// optional.
func EdmTypeByName(name string) (EdmType, bool) {
	switch strings.TrimPrefix(name, "Edm.") {
	case "String":
		return EdmString, true
	case "Guid":
		return EdmGuid, true
	case "Int16", "Int32":
		return EdmInt32, true
	case "Int64":
		return EdmInt64, true
	case "Boolean":
		return EdmBoolean, true
	case "Single", "Double":
		return EdmDouble, true
	case "Decimal":
		return EdmDecimal, true
	case "DateTimeOffset":
		return EdmDateTimeOffset, true
	}

	return nil, false
}

func formatError(t EdmType, value interface{}) error {
	return fmt.Errorf("%w: cannot format %T as %s", ErrInvalidArgument, value, t.Name())
}

type edmString struct{}

func (edmString) Name() string { return "Edm.String" }

// FormatLiteral quotes the value, doubling embedded single quotes.
func (t edmString) FormatLiteral(value interface{}) (string, error) {
	switch v := value.(type) {
	case string:
		return "'" + strings.ReplaceAll(v, "'", "''") + "'", nil
	case fmt.Stringer:
		return "'" + strings.ReplaceAll(v.String(), "'", "''") + "'", nil
	}

	return "", formatError(t, value)
}

type edmGuid struct{}

func (edmGuid) Name() string { return "Edm.Guid" }

// FormatLiteral renders the canonical lowercase form, unquoted per OData v4.
func (t edmGuid) FormatLiteral(value interface{}) (string, error) {
	switch v := value.(type) {
	case uuid.UUID:
		return v.String(), nil
	case string:
		id, err := uuid.Parse(v)
		if err != nil {
			return "", fmt.Errorf("%w: %q is not a GUID", ErrInvalidArgument, v)
		}

		return id.String(), nil
	}

	return "", formatError(t, value)
}

type edmInt struct {
	name string
	min  int64
	max  int64
}

func (t edmInt) Name() string { return t.name }

func (t edmInt) FormatLiteral(value interface{}) (string, error) {
	n, ok := asInt64(value)
	if !ok {
		return "", formatError(t, value)
	}

	if n < t.min || n > t.max {
		return "", fmt.Errorf("%w: %d out of range for %s", ErrInvalidArgument, n, t.name)
	}

	return strconv.FormatInt(n, 10), nil
}

type edmBoolean struct{}

func (edmBoolean) Name() string { return "Edm.Boolean" }

func (t edmBoolean) FormatLiteral(value interface{}) (string, error) {
	v, ok := value.(bool)
	if !ok {
		return "", formatError(t, value)
	}

	return strconv.FormatBool(v), nil
}

type edmDouble struct{}

func (edmDouble) Name() string { return "Edm.Double" }

func (t edmDouble) FormatLiteral(value interface{}) (string, error) {
	switch v := value.(type) {
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64), nil
	case float32:
		return strconv.FormatFloat(float64(v), 'g', -1, 32), nil
	}

	if n, ok := asInt64(value); ok {
		return strconv.FormatInt(n, 10), nil
	}

	return "", formatError(t, value)
}

type edmDecimal struct{}

func (edmDecimal) Name() string { return "Edm.Decimal" }

func (t edmDecimal) FormatLiteral(value interface{}) (string, error) {
	switch v := value.(type) {
	case decimal.Decimal:
		return v.String(), nil
	case *decimal.Decimal:
		if v == nil {
			return "", formatError(t, value)
		}

		return v.String(), nil
	case string:
		d, err := decimal.NewFromString(v)
		if err != nil {
			return "", fmt.Errorf("%w: %q is not a decimal", ErrInvalidArgument, v)
		}

		return d.String(), nil
	case float64:
		return decimal.NewFromFloat(v).String(), nil
	case float32:
		return decimal.NewFromFloat32(v).String(), nil
	}

	if n, ok := asInt64(value); ok {
		return decimal.NewFromInt(n).String(), nil
	}

	return "", formatError(t, value)
}

type edmDateTimeOffset struct{}

func (edmDateTimeOffset) Name() string { return "Edm.DateTimeOffset" }

// FormatLiteral renders RFC 3339 in UTC, unquoted per OData v4.
func (t edmDateTimeOffset) FormatLiteral(value interface{}) (string, error) {
	switch v := value.(type) {
	case time.Time:
		return v.UTC().Format(time.RFC3339Nano), nil
	case *time.Time:
		if v == nil {
			return "", formatError(t, value)
		}

		return v.UTC().Format(time.RFC3339Nano), nil
	case string:
		parsed, err := time.Parse(time.RFC3339Nano, v)
		if err != nil {
			return "", fmt.Errorf("%w: %q is not an RFC 3339 timestamp", ErrInvalidArgument, v)
		}

		return parsed.UTC().Format(time.RFC3339Nano), nil
	}

	return "", formatError(t, value)
}

// asInt64 converts any Go integer kind, or a float carrying an integral
// value, to int64. Booleans and strings are never numeric.
func asInt64(value interface{}) (int64, bool) {
	if value == nil {
		return 0, false
	}

	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int(), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		u := rv.Uint()
		if u > math.MaxInt64 {
			return 0, false
		}

		return int64(u), true
	case reflect.Float32, reflect.Float64:
		f := rv.Float()
		if math.IsInf(f, 0) || math.IsNaN(f) || f != math.Trunc(f) {
			return 0, false
		}

		return int64(f), true
	default:
		return 0, false
	}
}
