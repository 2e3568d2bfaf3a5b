// Package odataclient provides the main entry point for creating OData v4
// service clients.
package odataclient

import (
	"fmt"

	"github.com/edmkit-io/odata-client/internal/client"
	"github.com/edmkit-io/odata-client/pkg/odata"
)

// New creates a new OData service client from config.
func New(config *odata.Config) (odata.Client, error) {
	if config == nil {
		return nil, odata.ErrConfigRequired
	}

	cli, err := client.New(config)
	if err != nil {
		return nil, fmt.Errorf("creating service client: %w", err)
	}

	return cli, nil
}
