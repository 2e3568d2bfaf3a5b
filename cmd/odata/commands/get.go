package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/edmkit-io/odata-client/pkg/odata"
)

// NewGetCommand creates the get command.
func NewGetCommand() *cobra.Command {
	var (
		keyFields []string
		key       string
		filter    string
		selects   []string
		expands   []string
		orderBy   []string
		params    []string
		top       int
		skip      int
		all       bool
		stream    bool
	)

	cmd := &cobra.Command{
		Use:   "get ENTITY_SET",
		Short: "Query an entity set",
		Long: `Query an entity set of the configured OData service.

Without --key the command lists the collection, honoring $filter, $orderby,
$select, $expand, $top, and $skip. With --key it fetches a single entity.
Composite keys take name=value pairs: --key "ID=5,Lang=EN".`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClient()
			if err != nil {
				return err
			}

			model, err := ParseEntityType(args[0], keyFields, stream)
			if err != nil {
				return err
			}

			set, err := client.EntitySet(args[0], model)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			req := set.Request()

			if filter != "" {
				req.Filter(odata.Raw(filter))
			}

			if len(orderBy) > 0 {
				req.OrderBy(parseOrderByTerms(orderBy)...)
			}

			if len(selects) > 0 {
				req.Select(selects...)
			}

			if len(expands) > 0 {
				req.Expand(expands...)
			}

			if cmd.Flags().Changed("top") {
				req.Top(top)
			}

			if cmd.Flags().Changed("skip") {
				req.Skip(skip)
			}

			for _, p := range params {
				name, value, found := strings.Cut(p, "=")
				if !found {
					return fmt.Errorf("%w: parameter %q must be name=value", odata.ErrInvalidArgument, p)
				}

				req.Parameter(name, value)
			}

			if key != "" {
				keyValue, err := ParseKey(model, key)
				if err != nil {
					return err
				}

				req.Key(keyValue)
			}

			if err := req.Err(); err != nil {
				return err
			}

			if stream {
				resp, err := req.Get(ctx)
				if err != nil {
					return err
				}

				_, err = os.Stdout.Write(resp.Body)

				return err
			}

			if all {
				entities, err := odata.FetchAllPages(ctx, set, set.ListPath(), req.Params(), odata.DefaultPaginationOptions())
				if err != nil {
					return err
				}

				return outputEntities(entities)
			}

			resp, err := req.Get(ctx)
			if err != nil {
				return err
			}

			return outputResponse(resp)
		},
	}

	cmd.Flags().StringSliceVar(&keyFields, "key-field", nil, "key field definition, Name or Name:Edm.Type (repeatable)")
	cmd.Flags().StringVarP(&key, "key", "k", "", "entity key (value, or name=value pairs for composite keys)")
	cmd.Flags().StringVarP(&filter, "filter", "f", "", "$filter expression")
	cmd.Flags().StringSliceVar(&selects, "select", nil, "$select fields")
	cmd.Flags().StringSliceVar(&expands, "expand", nil, "$expand navigation properties")
	cmd.Flags().StringSliceVar(&orderBy, "orderby", nil, "$orderby fields, prefix with - for descending")
	cmd.Flags().StringSliceVar(&params, "param", nil, "custom query parameter, name=value (repeatable)")
	cmd.Flags().IntVar(&top, "top", 0, "$top paging limit")
	cmd.Flags().IntVar(&skip, "skip", 0, "$skip offset")
	cmd.Flags().BoolVar(&all, "all", false, "follow next links and fetch every page")
	cmd.Flags().BoolVar(&stream, "stream", false, "fetch the raw media stream ($value) to stdout")

	return cmd
}

// outputResponse renders a raw fetch response. Collection payloads carry
// their entities under "value"; anything else is a single entity.
func outputResponse(resp *odata.Response) error {
	var page odata.ListResponse[odata.Entity]
	if err := json.Unmarshal(resp.Body, &page); err == nil && page.Value != nil {
		return outputEntities(page.Value)
	}

	var entity odata.Entity
	if err := json.Unmarshal(resp.Body, &entity); err != nil {
		return fmt.Errorf("parsing response: %w", err)
	}

	return outputEntities([]odata.Entity{entity})
}
