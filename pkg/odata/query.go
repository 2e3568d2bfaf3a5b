package odata

import (
	"net/url"
	"sort"
	"strconv"
)

// System query option names.
const (
	QueryFilter  = "$filter"
	QueryOrderBy = "$orderby"
	QuerySelect  = "$select"
	QueryExpand  = "$expand"
	QueryTop     = "$top"
	QuerySkip    = "$skip"
)

// QueryParams holds the query parameters accumulated for one request. Each
// name holds at most one value; later writes to the same name overwrite
// earlier ones.
type QueryParams struct {
	values map[string]string
}

// NewQueryParams creates an empty parameter store.
func NewQueryParams() *QueryParams {
	return &QueryParams{values: make(map[string]string)}
}

// Set writes name → value, replacing any prior value for that name.
func (p *QueryParams) Set(name, value string) *QueryParams {
	p.values[name] = value

	return p
}

// Get returns the value for name and whether it is present.
func (p *QueryParams) Get(name string) (string, bool) {
	value, ok := p.values[name]

	return value, ok
}

// Len returns the number of stored parameters.
func (p *QueryParams) Len() int {
	return len(p.values)
}

// Names returns the parameter names in sorted order.
func (p *QueryParams) Names() []string {
	names := make([]string, 0, len(p.values))
	for name := range p.values {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}

// Values converts to url.Values, skipping empty values.
func (p *QueryParams) Values() url.Values {
	values := url.Values{}

	for name, value := range p.values {
		if value == "" {
			continue
		}

		values.Set(name, value)
	}

	return values
}

// Clone returns an independent copy.
func (p *QueryParams) Clone() *QueryParams {
	clone := NewQueryParams()
	for name, value := range p.values {
		clone.values[name] = value
	}

	return clone
}

// WithFilter sets an already-encoded $filter expression.
func (p *QueryParams) WithFilter(expr string) *QueryParams {
	return p.Set(QueryFilter, expr)
}

// WithOrderBy sets an already-encoded $orderby expression.
func (p *QueryParams) WithOrderBy(expr string) *QueryParams {
	return p.Set(QueryOrderBy, expr)
}

// WithTop sets the $top paging limit.
func (p *QueryParams) WithTop(limit int) *QueryParams {
	return p.Set(QueryTop, strconv.Itoa(limit))
}

// WithSkip sets the $skip offset.
func (p *QueryParams) WithSkip(offset int) *QueryParams {
	return p.Set(QuerySkip, strconv.Itoa(offset))
}
