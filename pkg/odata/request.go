package odata

import (
	"context"
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"
)

// Resource is the narrow contract a RequestDefinition needs from its owning
// entity set. Implementations own path construction, query-string encoding,
// and request execution; the request definition only accumulates intent and
// resolves it into a path.
type Resource interface {
	// EntityType returns the schema the request is validated against.
	EntityType() *EntityType

	// ListPath returns the collection resource path, before any query string.
	ListPath() string

	// SinglePath returns the single-entity resource path for the given
	// formatted key values. Key predicate syntax is the resource's
	// responsibility.
	SinglePath(key map[string]string) string

	// EncodeQuery serializes the non-empty query parameters into a
	// query-string fragment without the leading "?".
	EncodeQuery(params *QueryParams) string

	// Capabilities describes which optional operations the resource supports.
	Capabilities() Capabilities

	// ExecuteGet performs the configured fetch through the transport.
	ExecuteGet(ctx context.Context, req *RequestDefinition) (*Response, error)

	// ExecuteCount counts the entities the request denotes.
	ExecuteCount(ctx context.Context, req *RequestDefinition) (int64, error)

	// NavigationRequest creates a child request for a navigation property of
	// the given parent request.
	NavigationRequest(parent *RequestDefinition, prop NavigationProperty) *RequestDefinition

	// Logger returns the diagnostic sink for non-fatal conditions; may be nil.
	Logger() Logger
}

// Capabilities is the explicit capability descriptor of a resource.
type Capabilities struct {
	// ArbitraryParameters reports whether custom query parameters are
	// accepted. Stream resources forbid them.
	ArbitraryParameters bool
}

// RequestDefinition accumulates the intent of one logical request against an
// entity set — key selection, filtering, sorting, field selection, paging,
// custom parameters — and resolves it into a resource path. It performs no
// I/O until a terminal operation hands off to the resource.
//
// Builder methods chain and record the first failure; Err exposes it and
// terminal operations return it. A failing call never mutates request state,
// but state applied by earlier successful calls is kept.
//
// A RequestDefinition is exclusively owned by the caller that created it and
// is not safe for concurrent use.
type RequestDefinition struct {
	resource Resource
	params   *QueryParams
	keyValue map[string]string

	navProps      map[string]NavigationProperty
	navRequests   map[string]*RequestDefinition
	shortcutNames map[string]struct{}

	err error
}

// NewRequestDefinition creates a request definition for one logical request
// against resource, seeded with the given query parameters (nil for none).
func NewRequestDefinition(resource Resource, seed *QueryParams) *RequestDefinition {
	if seed == nil {
		seed = NewQueryParams()
	}

	r := &RequestDefinition{
		resource:      resource,
		params:        seed,
		navProps:      make(map[string]NavigationProperty),
		navRequests:   make(map[string]*RequestDefinition),
		shortcutNames: make(map[string]struct{}),
	}

	r.registerAssociations()

	return r
}

// Err returns the first error recorded by a builder method, if any.
func (r *RequestDefinition) Err() error {
	return r.err
}

// IsList reports whether the request denotes a collection. It turns false
// once a complete key is set.
func (r *RequestDefinition) IsList() bool {
	return len(r.keyValue) == 0
}

// Params returns the accumulated query parameters.
func (r *RequestDefinition) Params() *QueryParams {
	return r.params
}

// KeyValue returns a copy of the formatted key values; empty until Key
// succeeds.
func (r *RequestDefinition) KeyValue() map[string]string {
	key := make(map[string]string, len(r.keyValue))
	for name, value := range r.keyValue {
		key[name] = value
	}

	return key
}

// Key selects a single entity. The candidate must be a string-keyed mapping
// supplying a value for every key-schema field; extra fields are ignored.
// Calling Key again overwrites the previous selection.
func (r *RequestDefinition) Key(candidate interface{}) *RequestDefinition {
	if r.err != nil {
		return r
	}

	key, err := buildKeyValue(r.resource.EntityType(), candidate)
	if err != nil {
		r.err = err

		return r
	}

	r.keyValue = key

	return r
}

// Filter sets the $filter query parameter from a structured definition. The
// definition's encoder owns grammar validation.
func (r *RequestDefinition) Filter(definition Expression) *RequestDefinition {
	if r.err != nil {
		return r
	}

	if definition == nil {
		r.err = fmt.Errorf("%w: filter definition is required", ErrInvalidArgument)

		return r
	}

	expr, err := definition.ToURIComponent()
	if err != nil {
		r.err = err

		return r
	}

	r.params.Set(QueryFilter, expr)

	return r
}

// OrderBy sets the $orderby query parameter. At least one sort definition is
// required; field validation is owned by the sort encoder.
func (r *RequestDefinition) OrderBy(definitions ...OrderBy) *RequestDefinition {
	if r.err != nil {
		return r
	}

	if len(definitions) == 0 {
		r.err = fmt.Errorf("%w: orderby needs at least one sort definition", ErrInvalidArgument)

		return r
	}

	expr, err := newOrderByEncoder(r.resource.EntityType(), definitions).ToURIComponent()
	if err != nil {
		r.err = err

		return r
	}

	r.params.Set(QueryOrderBy, expr)

	return r
}

// Select records the fields to project via $select.
func (r *RequestDefinition) Select(fields ...string) *RequestDefinition {
	return r.setFieldList(QuerySelect, "select", fields)
}

// Expand records the navigation properties to inline via $expand.
func (r *RequestDefinition) Expand(fields ...string) *RequestDefinition {
	return r.setFieldList(QueryExpand, "expand", fields)
}

func (r *RequestDefinition) setFieldList(option, name string, fields []string) *RequestDefinition {
	if r.err != nil {
		return r
	}

	if len(fields) == 0 {
		r.err = fmt.Errorf("%w: %s needs at least one field", ErrInvalidArgument, name)

		return r
	}

	r.params.Set(option, strings.Join(fields, ","))

	return r
}

// Top sets the $top paging limit.
func (r *RequestDefinition) Top(limit int) *RequestDefinition {
	if r.err != nil {
		return r
	}

	if limit < 0 {
		r.err = fmt.Errorf("%w: top must not be negative, got %d", ErrInvalidArgument, limit)

		return r
	}

	r.params.Set(QueryTop, strconv.Itoa(limit))

	return r
}

// Skip sets the $skip offset.
func (r *RequestDefinition) Skip(offset int) *RequestDefinition {
	if r.err != nil {
		return r
	}

	if offset < 0 {
		r.err = fmt.Errorf("%w: skip must not be negative, got %d", ErrInvalidArgument, offset)

		return r
	}

	r.params.Set(QuerySkip, strconv.Itoa(offset))

	return r
}

// Parameter sets a custom query parameter, overwriting any prior value for
// that name. The resource's capability descriptor decides whether custom
// parameters are accepted at all.
func (r *RequestDefinition) Parameter(name, value string) *RequestDefinition {
	if r.err != nil {
		return r
	}

	if !r.resource.Capabilities().ArbitraryParameters {
		r.err = fmt.Errorf("%w: resource doesn't support parameters", ErrUnsupportedOperation)

		return r
	}

	if name == "" {
		r.err = fmt.Errorf("%w: parameter name is empty", ErrInvalidArgument)

		return r
	}

	r.params.Set(name, value)

	return r
}

// Param is one name/value pair for Parameters.
type Param struct {
	Name  string
	Value string
}

// Parameters applies the pairs in order. The first failure stops the
// remaining pairs; already-applied pairs stay applied.
func (r *RequestDefinition) Parameters(params ...Param) *RequestDefinition {
	for _, p := range params {
		r.Parameter(p.Name, p.Value)
	}

	return r
}

// Get resolves the overloaded fetch entry point by argument shape and hands
// off to the resource's transport:
//
//   - no arguments executes the request as configured
//   - a single integer is a paging limit, as if Top had been called
//   - a single string-keyed map is a key selection, as if Key had been called
//
// Any other shape fails with ErrInvalidArgument before any state mutation.
func (r *RequestDefinition) Get(ctx context.Context, args ...interface{}) (*Response, error) {
	if r.err != nil {
		return nil, r.err
	}

	form, err := resolveCallForm(args)
	if err != nil {
		return nil, err
	}

	switch form.kind {
	case callFormTopCount:
		r.Top(form.top)
	case callFormKeyFilter:
		r.Key(form.key)
	case callFormNoArgs:
	}

	if r.err != nil {
		return nil, r.err
	}

	return r.resource.ExecuteGet(ctx, r)
}

// Count delegates counting the entities the request denotes to the resource.
func (r *RequestDefinition) Count(ctx context.Context) (int64, error) {
	if r.err != nil {
		return 0, r.err
	}

	return r.resource.ExecuteCount(ctx, r)
}

// Path resolves the request into its resource path. Stream entities resolve
// to the raw media path and ignore query parameters; collection and
// single-entity requests append the encoded non-empty parameters. The
// computation is pure: recomputing before any state change yields the same
// string.
func (r *RequestDefinition) Path() string {
	if r.resource.EntityType().HasStream {
		return r.resource.SinglePath(r.keyValue) + "/$value"
	}

	var base string
	if r.IsList() {
		base = r.resource.ListPath()
	} else {
		base = r.resource.SinglePath(r.keyValue)
	}

	query := r.resource.EncodeQuery(r.params)
	if query == "" {
		return base
	}

	return base + "?" + query
}

// Navigation returns the child request for a registered navigation property.
// This namespace is authoritative: every navigation property is reachable
// here regardless of shortcut collisions. Children are created on first
// access and reused.
func (r *RequestDefinition) Navigation(name string) (*RequestDefinition, bool) {
	prop, ok := r.navProps[name]
	if !ok {
		return nil, false
	}

	child, ok := r.navRequests[name]
	if !ok {
		child = r.resource.NavigationRequest(r, prop)
		r.navRequests[name] = child
	}

	return child, true
}

// Shortcut resolves a navigation property through the best-effort direct
// namespace. Names that collided with request members are absent here and
// only reachable via Navigation.
func (r *RequestDefinition) Shortcut(name string) (*RequestDefinition, bool) {
	if _, ok := r.shortcutNames[name]; !ok {
		return nil, false
	}

	return r.Navigation(name)
}

// NavigationProperties lists the registered navigation property names in
// sorted order.
func (r *RequestDefinition) NavigationProperties() []string {
	names := make([]string, 0, len(r.navProps))
	for name := range r.navProps {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}

// registerAssociations records every navigation property of the entity type.
// The authoritative namespace is always populated; the shortcut table is
// best effort and never shadows an existing request member. Collisions
// degrade to a warning, never an error.
func (r *RequestDefinition) registerAssociations() {
	if r.resource == nil {
		return
	}

	for _, prop := range r.resource.EntityType().NavigationProperties {
		r.navProps[prop.Name] = prop

		if r.isReservedMember(prop.Name) {
			if logger := r.resource.Logger(); logger != nil {
				logger.Warn("navigation property shadows an existing request member, shortcut skipped",
					map[string]interface{}{"name": prop.Name})
			}

			continue
		}

		r.shortcutNames[prop.Name] = struct{}{}
	}
}

func (r *RequestDefinition) isReservedMember(name string) bool {
	if _, ok := reservedRequestMembers[name]; ok {
		return true
	}

	_, ok := r.shortcutNames[name]

	return ok
}

// reservedRequestMembers are the request member names a navigation shortcut
// must never shadow.
var reservedRequestMembers = map[string]struct{}{
	"Key": {}, "Get": {}, "Count": {}, "Filter": {}, "OrderBy": {},
	"Select": {}, "Expand": {}, "Top": {}, "Skip": {}, "Parameter": {},
	"Parameters": {}, "Path": {}, "IsList": {}, "Err": {}, "Params": {},
	"KeyValue": {}, "Navigation": {}, "NavigationProperties": {},
	"Shortcut": {},
	"resource": {}, "params": {}, "keyValue": {}, "navProps": {},
	"navRequests": {}, "shortcutNames": {}, "err": {},
}

type callFormKind int

const (
	callFormNoArgs callFormKind = iota
	callFormTopCount
	callFormKeyFilter
)

// callForm is the resolved shape of a Get invocation.
type callForm struct {
	kind callFormKind
	top  int
	key  interface{}
}

// resolveCallForm disambiguates the overloaded Get entry point by argument
// shape, rejecting anything unrecognized before a setter runs.
func resolveCallForm(args []interface{}) (callForm, error) {
	switch len(args) {
	case 0:
		return callForm{kind: callFormNoArgs}, nil
	case 1:
		if n, ok := asInt64(args[0]); ok {
			return callForm{kind: callFormTopCount, top: int(n)}, nil
		}

		if isMapShaped(args[0]) {
			return callForm{kind: callFormKeyFilter, key: args[0]}, nil
		}

		return callForm{}, fmt.Errorf("%w: get accepts a paging limit or a key map, got %T", ErrInvalidArgument, args[0])
	default:
		return callForm{}, fmt.Errorf("%w: get accepts at most one argument, got %d", ErrInvalidArgument, len(args))
	}
}

// isMapShaped reports whether the value is a string-keyed mapping. Sequences
// are never map-shaped: key identity is by field name, not position.
func isMapShaped(value interface{}) bool {
	if value == nil {
		return false
	}

	rv := reflect.ValueOf(value)

	return rv.Kind() == reflect.Map && rv.Type().Key().Kind() == reflect.String
}

// buildKeyValue validates a key candidate against the key schema and returns
// the formatted key values. Every schema field is required; candidate fields
// outside the schema are ignored.
func buildKeyValue(model *EntityType, candidate interface{}) (map[string]string, error) {
	fields, err := keyCandidateFields(candidate)
	if err != nil {
		return nil, err
	}

	key := make(map[string]string, len(model.Key))

	for _, field := range model.Key {
		value, ok := fields[field.Name]
		if !ok || value == nil {
			return nil, fmt.Errorf("%w: %s", ErrMissingKeyField, field.Name)
		}

		fieldType := field.Type
		if fieldType == nil {
			fieldType = EdmString
		}

		literal, err := fieldType.FormatLiteral(value)
		if err != nil {
			return nil, fmt.Errorf("formatting key field %s: %w", field.Name, err)
		}

		key[field.Name] = literal
	}

	return key, nil
}

// keyCandidateFields flattens a candidate into name → value pairs, rejecting
// anything that is not a string-keyed mapping.
func keyCandidateFields(candidate interface{}) (map[string]interface{}, error) {
	switch v := candidate.(type) {
	case map[string]interface{}:
		return v, nil
	case map[string]string:
		fields := make(map[string]interface{}, len(v))
		for name, value := range v {
			fields[name] = value
		}

		return fields, nil
	}

	if !isMapShaped(candidate) {
		return nil, fmt.Errorf("%w, got %T", ErrInvalidKeyShape, candidate)
	}

	rv := reflect.ValueOf(candidate)
	fields := make(map[string]interface{}, rv.Len())

	iter := rv.MapRange()
	for iter.Next() {
		fields[iter.Key().String()] = iter.Value().Interface()
	}

	return fields, nil
}
