package commands

import (
	"fmt"
	"strconv"
	"strings"
	"syscall"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
	"golang.org/x/term"

	"github.com/edmkit-io/odata-client/pkg/odata"
	"github.com/edmkit-io/odata-client/pkg/odataclient"
)

// CreateClient builds a service client from the resolved configuration.
func CreateClient() (odata.Client, error) {
	serviceURL := viper.GetString("service-url")
	if serviceURL == "" {
		return nil, odata.ErrServiceURLRequired
	}

	username := viper.GetString("username")
	password := viper.GetString("password")
	token := viper.GetString("token")

	if username != "" && password == "" && token == "" {
		fmt.Print("Password: ")

		bytePassword, err := term.ReadPassword(int(syscall.Stdin))
		if err != nil {
			return nil, fmt.Errorf("failed to read password: %w", err)
		}

		password = string(bytePassword)

		fmt.Println()
	}

	config := &odata.Config{
		ServiceURL:  serviceURL,
		AccessToken: token,
		Username:    username,
		Password:    password,
		Debug:       viper.GetBool("verbose"),
		RetryMax:    viper.GetInt("retry-max"),
	}

	return odataclient.New(config)
}

// ParseEntityType builds an entity type model from key field definitions of
// the form "Name" or "Name:Edm.Int32".
func ParseEntityType(name string, keyFields []string, hasStream bool) (*odata.EntityType, error) {
	model := &odata.EntityType{Name: name, HasStream: hasStream}

	for _, def := range keyFields {
		fieldName, typeName, _ := strings.Cut(def, ":")
		if fieldName == "" {
			return nil, fmt.Errorf("%w: empty key field definition", odata.ErrInvalidArgument)
		}

		edmType := odata.EdmString

		if typeName != "" {
			resolved, ok := odata.EdmTypeByName(typeName)
			if !ok {
				return nil, fmt.Errorf("%w: unknown EDM type %q", odata.ErrInvalidArgument, typeName)
			}

			edmType = resolved
		}

		model.Key = append(model.Key, odata.KeyField{Name: fieldName, Type: edmType})
	}

	return model, nil
}

// ParseKey parses a --key value like "ID=5,Lang=EN" (or a bare literal for
// single-field keys) into a key map typed per the model.
func ParseKey(model *odata.EntityType, raw string) (map[string]interface{}, error) {
	key := make(map[string]interface{})

	if raw == "" {
		return key, nil
	}

	if !strings.Contains(raw, "=") {
		if len(model.Key) != 1 {
			return nil, fmt.Errorf("%w: key %q must list name=value pairs for composite keys", odata.ErrInvalidArgument, raw)
		}

		value, err := convertKeyValue(model, model.Key[0].Name, raw)
		if err != nil {
			return nil, err
		}

		key[model.Key[0].Name] = value

		return key, nil
	}

	for _, pair := range strings.Split(raw, ",") {
		name, value, found := strings.Cut(pair, "=")
		if !found || name == "" {
			return nil, fmt.Errorf("%w: key pair %q must be name=value", odata.ErrInvalidArgument, pair)
		}

		converted, err := convertKeyValue(model, strings.TrimSpace(name), strings.TrimSpace(value))
		if err != nil {
			return nil, err
		}

		key[strings.TrimSpace(name)] = converted
	}

	return key, nil
}

// convertKeyValue converts the raw flag text into the Go type the key
// field's EDM type expects. Fields outside the schema pass through as
// strings; the key validator ignores them anyway.
func convertKeyValue(model *odata.EntityType, name, value string) (interface{}, error) {
	for _, field := range model.Key {
		if field.Name != name {
			continue
		}

		switch field.Type {
		case odata.EdmInt32, odata.EdmInt64:
			n, err := strconv.ParseInt(value, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("parsing key field %s: %w", name, err)
			}

			return n, nil
		case odata.EdmBoolean:
			b, err := strconv.ParseBool(value)
			if err != nil {
				return nil, fmt.Errorf("parsing key field %s: %w", name, err)
			}

			return b, nil
		case odata.EdmDouble:
			f, err := strconv.ParseFloat(value, 64)
			if err != nil {
				return nil, fmt.Errorf("parsing key field %s: %w", name, err)
			}

			return f, nil
		case odata.EdmDecimal:
			d, err := decimal.NewFromString(value)
			if err != nil {
				return nil, fmt.Errorf("parsing key field %s: %w", name, err)
			}

			return d, nil
		case odata.EdmGuid:
			id, err := uuid.Parse(value)
			if err != nil {
				return nil, fmt.Errorf("parsing key field %s: %w", name, err)
			}

			return id, nil
		default:
			return value, nil
		}
	}

	return value, nil
}

// parseOrderByTerms turns "-Name" style flags into sort definitions; a
// leading "-" means descending.
func parseOrderByTerms(terms []string) []odata.OrderBy {
	parsed := make([]odata.OrderBy, 0, len(terms))

	for _, term := range terms {
		if field, ok := strings.CutPrefix(term, "-"); ok {
			parsed = append(parsed, odata.Descending(field))
		} else {
			parsed = append(parsed, odata.Ascending(term))
		}
	}

	return parsed
}
