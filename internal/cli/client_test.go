package cli

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	invDTO "github.com/fekuna/omnipos-stock-service/internal/inventory/dto"
	"github.com/fekuna/omnipos-stock-service/internal/model"
	reqDTO "github.com/fekuna/omnipos-stock-service/internal/stockrequest/dto"
	"github.com/fekuna/omnipos-stock-service/internal/testutil"
	"github.com/fekuna/omnipos-stock-service/internal/testutil/apitest"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newServer(t *testing.T) (*httptest.Server, *sqlx.DB) {
	t.Helper()
	router, db := apitest.NewRouter(t)
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv, db
}

func TestClient_InventoryAndCatalog(t *testing.T) {
	srv, db := newServer(t)
	ctx := context.Background()
	warehouse, _ := testutil.SeedUser(t, db, model.RoleWarehouseManager, "")
	c := NewClient(srv.URL, warehouse.ID)

	item, err := c.CreateProduct(ctx, invDTO.CreateProductInput{Name: "Widget", SKU: "W-1", Barcode: "111"}, 10)
	require.NoError(t, err)
	require.NotNil(t, item)
	assert.Equal(t, "Widget", item.Name)

	require.NoError(t, c.AddStock(ctx, item.ID, 5))
	applied, err := c.Receive(ctx, "PO-7", []invDTO.ReceiveLine{{Barcode: "111", Quantity: 2}})
	require.NoError(t, err)
	assert.Equal(t, 1, applied)

	rows, err := c.Inventory(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 17, rows[0].AvailableQuantity)

	found, err := c.LookupBarcode(ctx, "111")
	require.NoError(t, err)
	assert.Equal(t, item.ID, found.ID)

	other, err := c.CreateItem(ctx, "Gadget", "G-1", "")
	require.NoError(t, err)
	assert.Nil(t, other.Barcode)

	items, err := c.SearchItems(ctx, "gad")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, other.ID, items[0].ID)

	all, err := c.Items(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	require.NoError(t, c.DeleteProduct(ctx, other.ID))
}

func TestClient_APIError(t *testing.T) {
	srv, db := newServer(t)
	ctx := context.Background()
	store, _ := testutil.SeedUser(t, db, model.RoleStoreManager, "Sydney")

	_, err := NewClient(srv.URL, "").Inventory(ctx)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)

	err = NewClient(srv.URL, store.ID).AddStock(ctx, "x", 1)
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusForbidden, apiErr.Status)

	_, err = NewClient(srv.URL, store.ID).LookupBarcode(ctx, "nope")
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.Status)
	assert.Equal(t, "Product not found for this barcode", apiErr.Message)
}

func TestClient_RequestLifecycle(t *testing.T) {
	srv, db := newServer(t)
	ctx := context.Background()
	warehouse, _ := testutil.SeedUser(t, db, model.RoleWarehouseManager, "")
	store, _ := testutil.SeedUser(t, db, model.RoleStoreManager, "Sydney")
	widget := testutil.SeedItem(t, db, "Widget", "W-1", "111", 50)

	storeClient := NewClient(srv.URL, store.ID)
	warehouseClient := NewClient(srv.URL, warehouse.ID)

	req, err := storeClient.CreateRequest(ctx, reqDTO.CreateRequestInput{
		Items: []reqDTO.ItemLine{{ItemID: widget.ID, RequestedQuantity: 30}},
	})
	require.NoError(t, err)
	assert.Equal(t, model.StatusPending, req.Status)

	accepted, err := warehouseClient.UpdateStatus(ctx, req.ID, model.StatusAccepted, &reqDTO.TransitionOptions{WarehouseNotes: "ok"})
	require.NoError(t, err)
	assert.Equal(t, model.StatusAccepted, accepted.Status)

	pending, err := storeClient.Requests(ctx, string(model.StatusPending), "")
	require.NoError(t, err)
	assert.Empty(t, pending)

	mine, err := storeClient.Requests(ctx, "", "Sydney")
	require.NoError(t, err)
	require.Len(t, mine, 1)

	s, err := warehouseClient.StartFulfillment(ctx, req.ID)
	require.NoError(t, err)
	assert.Len(t, s.Lines, 1)

	scan, err := warehouseClient.Scan(ctx, req.ID, "111")
	require.NoError(t, err)
	assert.Equal(t, 30, scan.SuggestedQty)

	s, err = warehouseClient.Confirm(ctx, req.ID, widget.ID, 30)
	require.NoError(t, err)
	assert.True(t, s.CanShip())

	shipped, err := warehouseClient.Ship(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusShipped, shipped.Status)

	require.NoError(t, warehouseClient.DeleteRequest(ctx, req.ID))
}
