package client_test

import (
	"context"
	"fmt"
	nethttp "net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edmkit-io/odata-client/internal/client"
	"github.com/edmkit-io/odata-client/pkg/odata"
)

func productsModel() *odata.EntityType {
	return &odata.EntityType{
		Name: "Products",
		Key:  []odata.KeyField{{Name: "ID", Type: odata.EdmInt32}},
		Properties: []odata.Property{
			{Name: "Name", Type: odata.EdmString},
			{Name: "Price", Type: odata.EdmDecimal},
		},
		NavigationProperties: []odata.NavigationProperty{
			{Name: "Category", Target: &odata.EntityType{
				Name: "Categories",
				Key:  []odata.KeyField{{Name: "ID", Type: odata.EdmInt32}},
			}},
		},
	}
}

func newTestClient(t *testing.T, handler nethttp.Handler) (*client.Client, *httptest.Server) {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cli, err := client.New(&odata.Config{ServiceURL: server.URL})
	require.NoError(t, err)

	return cli, server
}

func TestClientNew(t *testing.T) {
	t.Parallel()

	t.Run("nil config", func(t *testing.T) {
		t.Parallel()

		_, err := client.New(nil)
		require.ErrorIs(t, err, odata.ErrConfigRequired)
	})

	t.Run("missing service url", func(t *testing.T) {
		t.Parallel()

		_, err := client.New(&odata.Config{})
		require.ErrorIs(t, err, odata.ErrServiceURLRequired)
	})

	t.Run("normalizes the service url", func(t *testing.T) {
		t.Parallel()

		cli, err := client.New(&odata.Config{ServiceURL: "host.example.com/odata/v4/catalog/"})
		require.NoError(t, err)
		assert.Equal(t, "https://host.example.com/odata/v4/catalog", cli.ServiceURL())
	})
}

func TestClientEntitySet(t *testing.T) {
	t.Parallel()

	cli, err := client.New(&odata.Config{ServiceURL: "https://example.com"})
	require.NoError(t, err)

	t.Run("validation", func(t *testing.T) {
		t.Parallel()

		_, err := cli.EntitySet("", productsModel())
		require.ErrorIs(t, err, odata.ErrEntitySetNameRequired)

		_, err = cli.EntitySet("Products", nil)
		require.ErrorIs(t, err, odata.ErrEntityTypeRequired)
	})

	t.Run("instances are cached per name", func(t *testing.T) {
		t.Parallel()

		first, err := cli.EntitySet("Products", productsModel())
		require.NoError(t, err)

		second, err := cli.EntitySet("Products", productsModel())
		require.NoError(t, err)
		assert.Same(t, first, second)
	})
}

func TestEntitySetList(t *testing.T) {
	t.Parallel()

	cli, _ := newTestClient(t, nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
		assert.Equal(t, "/Products", r.URL.Path)
		assert.Equal(t, "Price gt 10", r.URL.Query().Get("$filter"))

		_, _ = w.Write([]byte(`{"@odata.context":"$metadata#Products","value":[{"ID":1,"Name":"Tea"}]}`))
	}))

	set, err := cli.EntitySet("Products", productsModel())
	require.NoError(t, err)

	result, err := set.List(context.Background(), odata.NewQueryParams().WithFilter("Price gt 10"))
	require.NoError(t, err)
	require.Len(t, result.Value, 1)
	assert.Equal(t, "Tea", result.Value[0]["Name"])
}

func TestEntitySetGetByKey(t *testing.T) {
	t.Parallel()

	t.Run("single key", func(t *testing.T) {
		t.Parallel()

		cli, _ := newTestClient(t, nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
			assert.Equal(t, "/Products(5)", r.URL.Path)
			_, _ = w.Write([]byte(`{"ID":5,"Name":"Tea"}`))
		}))

		set, err := cli.EntitySet("Products", productsModel())
		require.NoError(t, err)

		entity, err := set.GetEntity(context.Background(), map[string]interface{}{"ID": 5})
		require.NoError(t, err)
		assert.Equal(t, "Tea", entity["Name"])
	})

	t.Run("composite key in schema order", func(t *testing.T) {
		t.Parallel()

		model := &odata.EntityType{
			Name: "Texts",
			Key: []odata.KeyField{
				{Name: "ID", Type: odata.EdmInt32},
				{Name: "Lang", Type: odata.EdmString},
			},
		}

		cli, _ := newTestClient(t, nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
			assert.Equal(t, "/Texts(ID=7,Lang='EN')", r.URL.Path)
			_, _ = w.Write([]byte(`{"ID":7,"Lang":"EN"}`))
		}))

		set, err := cli.EntitySet("Texts", model)
		require.NoError(t, err)

		_, err = set.GetEntity(context.Background(), map[string]interface{}{"ID": 7, "Lang": "EN"})
		require.NoError(t, err)
	})
}

func TestEntitySetCount(t *testing.T) {
	t.Parallel()

	cli, _ := newTestClient(t, nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
		assert.Equal(t, "/Products/$count", r.URL.Path)
		assert.Equal(t, "Price gt 10", r.URL.Query().Get("$filter"))
		assert.Equal(t, "text/plain", r.Header.Get("Accept"))

		_, _ = w.Write([]byte(" 42\n"))
	}))

	set, err := cli.EntitySet("Products", productsModel())
	require.NoError(t, err)

	count, err := set.Request().Filter(odata.Raw("Price gt 10")).Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(42), count)
}

func TestEntitySetStream(t *testing.T) {
	t.Parallel()

	model := &odata.EntityType{
		Name:      "Images",
		Key:       []odata.KeyField{{Name: "ID", Type: odata.EdmInt32}},
		HasStream: true,
	}

	payload := []byte{0x89, 'P', 'N', 'G'}

	cli, _ := newTestClient(t, nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
		assert.Equal(t, "/Images(9)/$value", r.URL.Path)
		assert.Empty(t, r.URL.RawQuery)

		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(payload)
	}))

	set, err := cli.EntitySet("Images", model)
	require.NoError(t, err)

	resp, err := set.Request().Key(map[string]interface{}{"ID": 9}).Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, payload, resp.Body)
	assert.Equal(t, "image/png", resp.Headers.Get("Content-Type"))
}

func TestEntitySetNavigation(t *testing.T) {
	t.Parallel()

	cli, _ := newTestClient(t, nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
		assert.Equal(t, "/Products(5)/Category", r.URL.Path)
		_, _ = w.Write([]byte(`{"ID":2,"Name":"Beverages"}`))
	}))

	set, err := cli.EntitySet("Products", productsModel())
	require.NoError(t, err)

	parent := set.Request().Key(map[string]interface{}{"ID": 5})
	require.NoError(t, parent.Err())

	category, ok := parent.Navigation("Category")
	require.True(t, ok)

	resp, err := category.Get(context.Background())
	require.NoError(t, err)
	assert.JSONEq(t, `{"ID":2,"Name":"Beverages"}`, string(resp.Body))
}

func TestEntitySetNavigationWithChildKey(t *testing.T) {
	t.Parallel()

	model := &odata.EntityType{
		Name: "Orders",
		Key:  []odata.KeyField{{Name: "ID", Type: odata.EdmInt32}},
		NavigationProperties: []odata.NavigationProperty{
			{Name: "Items", Target: &odata.EntityType{
				Name: "OrderItems",
				Key:  []odata.KeyField{{Name: "Pos", Type: odata.EdmInt32}},
			}},
		},
	}

	cli, _ := newTestClient(t, nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
		assert.Equal(t, "/Orders(1)/Items(2)", r.URL.Path)
		_, _ = w.Write([]byte(`{"Pos":2}`))
	}))

	set, err := cli.EntitySet("Orders", model)
	require.NoError(t, err)

	parent := set.Request().Key(map[string]interface{}{"ID": 1})

	items, ok := parent.Navigation("Items")
	require.True(t, ok)

	_, err = items.Get(context.Background(), map[string]interface{}{"Pos": 2})
	require.NoError(t, err)
}

func TestEntitySetPagination(t *testing.T) {
	t.Parallel()

	var serviceURL string

	cli, server := newTestClient(t, nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
		switch r.URL.Query().Get("page") {
		case "":
			// The next link is absolute, as services commonly return it.
			next := fmt.Sprintf("%s/Products?page=2", serviceURL)
			_, _ = fmt.Fprintf(w, `{"value":[{"ID":1}],"@odata.nextLink":%q}`, next)
		case "2":
			_, _ = w.Write([]byte(`{"value":[{"ID":2}]}`))
		}
	}))
	serviceURL = server.URL

	set, err := cli.EntitySet("Products", productsModel())
	require.NoError(t, err)

	entities, err := odata.FetchAllPages[odata.Entity](context.Background(), set, set.ListPath(), nil, odata.DefaultPaginationOptions())
	require.NoError(t, err)
	require.Len(t, entities, 2)
	assert.Equal(t, float64(1), entities[0]["ID"])
	assert.Equal(t, float64(2), entities[1]["ID"])
}
