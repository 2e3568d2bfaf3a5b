// Package odata provides the core types and request-building machinery for
// working with OData v4 services.
//
// # Overview
//
// The odata package defines the entity type model (key fields, navigation
// properties, stream flag), EDM literal formatting, structured filter and
// sort encoders, and RequestDefinition — a fluent builder that accumulates
// the intent of one request and resolves it into a resource path with an
// encoded query string. A concrete implementation of the Resource and Client
// interfaces is provided by the odataclient package, which wires
// configuration, transport, and authentication.
//
// Getting a client
//
//	import (
//	  "context"
//	  "log"
//
//	  "github.com/edmkit-io/odata-client/pkg/odata"
//	  "github.com/edmkit-io/odata-client/pkg/odataclient"
//	)
//
//	func example() {
//	  ctx := context.Background()
//	  cli, err := odataclient.New(&odata.Config{ServiceURL: "https://host/odata/v4/catalog"})
//	  if err != nil { log.Fatal(err) }
//
//	  products, err := cli.EntitySet("Products", &odata.EntityType{
//	    Name: "Product",
//	    Key:  []odata.KeyField{{Name: "ID", Type: odata.EdmInt32}},
//	  })
//	  if err != nil { log.Fatal(err) }
//
//	  resp, err := products.Request().
//	    Filter(odata.Gt("Price", 100)).
//	    OrderBy(odata.Descending("Price")).
//	    Select("ID", "Name", "Price").
//	    Get(ctx, 10)
//	  if err != nil { log.Fatal(err) }
//	  _ = resp
//	}
//
// # Request definitions
//
// RequestDefinition methods chain; the first failing call records its error
// without mutating state and every later call becomes a no-op. The error is
// observable via Err and returned by the terminal Get and Count operations.
// Get is overloaded by argument shape: no arguments executes the request as
// configured, a single integer is a paging limit, and a string-keyed map is
// a key selection.
//
// # Queries and pagination
//
// Use QueryParams for raw parameter access and the pagination helpers for
// walking multi-page collections:
//
//	it := odata.NewPaginationIterator(ctx, products, products.ListPath(), nil)
//	for it.HasNext() {
//	  entity, err := it.Next()
//	  if err != nil { break }
//	  _ = entity
//	}
//
// or fetch all pages at once with FetchAllPages.
//
// # Errors
//
// Validation failures surface as sentinel errors (ErrInvalidArgument,
// ErrInvalidKeyShape, ErrMissingKeyField, ErrUnsupportedOperation) suitable
// for errors.Is. Service-side errors decode into APIError; helpers such as
// IsNotFound, IsUnauthorized, and IsForbidden branch on common cases.
package odata
