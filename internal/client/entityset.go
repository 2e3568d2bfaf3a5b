package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/edmkit-io/odata-client/pkg/odata"
)

// EntitySet implements odata.EntitySetClient: it is the owning resource of
// request definitions for one entity set.
type EntitySet struct {
	client *Client
	name   string
	model  *odata.EntityType
}

func newEntitySet(client *Client, name string, model *odata.EntityType) *EntitySet {
	return &EntitySet{client: client, name: name, model: model}
}

// EntityType implements odata.Resource.EntityType.
func (s *EntitySet) EntityType() *odata.EntityType {
	return s.model
}

// ListPath implements odata.Resource.ListPath.
func (s *EntitySet) ListPath() string {
	return "/" + s.name
}

// SinglePath implements odata.Resource.SinglePath. A single-field key
// renders as the bare literal, composite keys as name=literal pairs in
// key-schema order.
func (s *EntitySet) SinglePath(key map[string]string) string {
	return s.ListPath() + keyPredicate(s.model, key)
}

// keyPredicate renders the parenthesized key predicate from formatted key
// values. An empty key renders nothing, leaving the collection path.
func keyPredicate(model *odata.EntityType, key map[string]string) string {
	if len(key) == 0 {
		return ""
	}

	if len(model.Key) == 1 {
		return "(" + key[model.Key[0].Name] + ")"
	}

	parts := make([]string, 0, len(model.Key))
	for _, field := range model.Key {
		parts = append(parts, field.Name+"="+key[field.Name])
	}

	return "(" + strings.Join(parts, ",") + ")"
}

// EncodeQuery implements odata.Resource.EncodeQuery. Names are sorted by the
// encoder, so the fragment is deterministic.
func (s *EntitySet) EncodeQuery(params *odata.QueryParams) string {
	if params == nil {
		return ""
	}

	return params.Values().Encode()
}

// Capabilities implements odata.Resource.Capabilities. Stream entity sets
// are fetched without arbitrary parameters.
func (s *EntitySet) Capabilities() odata.Capabilities {
	return odata.Capabilities{ArbitraryParameters: !s.model.HasStream}
}

// Logger implements odata.Resource.Logger.
func (s *EntitySet) Logger() odata.Logger {
	return s.client.logger
}

// Request implements odata.EntitySetClient.Request.
func (s *EntitySet) Request() *odata.RequestDefinition {
	return odata.NewRequestDefinition(s, nil)
}

// ExecuteGet implements odata.Resource.ExecuteGet.
func (s *EntitySet) ExecuteGet(ctx context.Context, req *odata.RequestDefinition) (*odata.Response, error) {
	return s.client.executeGet(ctx, s.name, req.Path())
}

// ExecuteCount implements odata.Resource.ExecuteCount.
func (s *EntitySet) ExecuteCount(ctx context.Context, req *odata.RequestDefinition) (int64, error) {
	return s.client.executeCount(ctx, s.name, s.ListPath(), req.Params())
}

// NavigationRequest implements odata.Resource.NavigationRequest.
func (s *EntitySet) NavigationRequest(parent *odata.RequestDefinition, prop odata.NavigationProperty) *odata.RequestDefinition {
	return odata.NewRequestDefinition(newNavigationResource(s.client, s, parent, prop), nil)
}

// List implements odata.EntitySetClient.List.
func (s *EntitySet) List(ctx context.Context, params *odata.QueryParams) (*odata.ListResponse[odata.Entity], error) {
	return s.ListPage(ctx, s.ListPath(), params)
}

// ListPage implements odata.EntitySetClient.ListPage.
func (s *EntitySet) ListPage(ctx context.Context, path string, params *odata.QueryParams) (*odata.ListResponse[odata.Entity], error) {
	var query url.Values
	if params != nil {
		query = params.Values()
	}

	resp, err := s.client.httpClient.Get(ctx, s.client.relativePath(path), query)
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", s.name, err)
	}

	var result odata.ListResponse[odata.Entity]
	if err := json.Unmarshal(resp.Body, &result); err != nil {
		return nil, fmt.Errorf("parsing %s list response: %w", s.name, err)
	}

	return &result, nil
}

// GetEntity implements odata.EntitySetClient.GetEntity.
func (s *EntitySet) GetEntity(ctx context.Context, key interface{}) (odata.Entity, error) {
	resp, err := s.Request().Key(key).Get(ctx)
	if err != nil {
		return nil, err
	}

	var entity odata.Entity
	if err := json.Unmarshal(resp.Body, &entity); err != nil {
		return nil, fmt.Errorf("parsing %s entity response: %w", s.name, err)
	}

	return entity, nil
}

// navigationResource exposes a navigation property of a parent request as a
// resource of its own. Paths are computed lazily so the parent's key may be
// set after the association was registered.
type navigationResource struct {
	client *Client
	base   odata.Resource
	parent *odata.RequestDefinition
	prop   odata.NavigationProperty
	model  *odata.EntityType
}

func newNavigationResource(client *Client, base odata.Resource, parent *odata.RequestDefinition, prop odata.NavigationProperty) *navigationResource {
	model := prop.Target
	if model == nil {
		model = &odata.EntityType{Name: prop.Name}
	}

	return &navigationResource{
		client: client,
		base:   base,
		parent: parent,
		prop:   prop,
		model:  model,
	}
}

func (n *navigationResource) EntityType() *odata.EntityType {
	return n.model
}

func (n *navigationResource) ListPath() string {
	return n.base.SinglePath(n.parent.KeyValue()) + "/" + n.prop.Name
}

func (n *navigationResource) SinglePath(key map[string]string) string {
	return n.ListPath() + keyPredicate(n.model, key)
}

func (n *navigationResource) EncodeQuery(params *odata.QueryParams) string {
	if params == nil {
		return ""
	}

	return params.Values().Encode()
}

func (n *navigationResource) Capabilities() odata.Capabilities {
	return odata.Capabilities{ArbitraryParameters: !n.model.HasStream}
}

func (n *navigationResource) Logger() odata.Logger {
	return n.client.logger
}

func (n *navigationResource) ExecuteGet(ctx context.Context, req *odata.RequestDefinition) (*odata.Response, error) {
	return n.client.executeGet(ctx, n.prop.Name, req.Path())
}

func (n *navigationResource) ExecuteCount(ctx context.Context, req *odata.RequestDefinition) (int64, error) {
	return n.client.executeCount(ctx, n.prop.Name, n.ListPath(), req.Params())
}

func (n *navigationResource) NavigationRequest(parent *odata.RequestDefinition, prop odata.NavigationProperty) *odata.RequestDefinition {
	return odata.NewRequestDefinition(newNavigationResource(n.client, n, parent, prop), nil)
}
