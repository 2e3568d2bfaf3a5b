package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/edmkit-io/odata-client/pkg/odata"
)

// Output format constants.
const (
	OutputFormatJSON = "json"
	OutputFormatYAML = "yaml"
)

// outputEntities renders entities in the configured output format.
func outputEntities(entities []odata.Entity) error {
	output := viper.GetString("output")
	switch output {
	case OutputFormatJSON:
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")

		err := encoder.Encode(entities)
		if err != nil {
			return fmt.Errorf("failed to encode entities as JSON: %w", err)
		}

		return nil
	case OutputFormatYAML:
		encoder := yaml.NewEncoder(os.Stdout)

		err := encoder.Encode(entities)
		if err != nil {
			return fmt.Errorf("failed to encode entities as YAML: %w", err)
		}

		return nil
	default:
		return renderEntitiesTable(entities)
	}
}

// renderEntitiesTable renders entities as a table whose columns are the
// sorted union of all field names.
func renderEntitiesTable(entities []odata.Entity) error {
	if len(entities) == 0 {
		_, _ = os.Stdout.WriteString("No entities found\n")

		return nil
	}

	columns := entityColumns(entities)

	header := make([]any, 0, len(columns))
	for _, column := range columns {
		header = append(header, column)
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.Header(header...)

	for _, entity := range entities {
		row := make([]string, 0, len(columns))
		for _, column := range columns {
			row = append(row, formatCell(entity[column]))
		}

		_ = table.Append(row)
	}

	_ = table.Render()

	return nil
}

// entityColumns returns the sorted union of field names across entities,
// skipping OData control annotations.
func entityColumns(entities []odata.Entity) []string {
	seen := make(map[string]struct{})

	for _, entity := range entities {
		for name := range entity {
			if len(name) > 0 && name[0] == '@' {
				continue
			}

			seen[name] = struct{}{}
		}
	}

	columns := make([]string, 0, len(seen))
	for name := range seen {
		columns = append(columns, name)
	}

	sort.Strings(columns)

	return columns
}

func formatCell(value interface{}) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case map[string]interface{}, []interface{}:
		encoded, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}

		return string(encoded)
	default:
		return fmt.Sprintf("%v", v)
	}
}
