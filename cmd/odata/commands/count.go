package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/edmkit-io/odata-client/pkg/odata"
)

// NewCountCommand creates the count command.
func NewCountCommand() *cobra.Command {
	var filter string

	cmd := &cobra.Command{
		Use:   "count ENTITY_SET",
		Short: "Count the entities of an entity set",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClient()
			if err != nil {
				return err
			}

			set, err := client.EntitySet(args[0], &odata.EntityType{Name: args[0]})
			if err != nil {
				return err
			}

			req := set.Request()
			if filter != "" {
				req.Filter(odata.Raw(filter))
			}

			count, err := req.Count(cmd.Context())
			if err != nil {
				return err
			}

			fmt.Println(count)

			return nil
		},
	}

	cmd.Flags().StringVarP(&filter, "filter", "f", "", "$filter expression")

	return cmd
}
