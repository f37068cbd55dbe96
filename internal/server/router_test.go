package server_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fekuna/omnipos-stock-service/internal/auth"
	"github.com/fekuna/omnipos-stock-service/internal/model"
	"github.com/fekuna/omnipos-stock-service/internal/server"
	"github.com/fekuna/omnipos-stock-service/internal/testutil"
	"github.com/fekuna/omnipos-stock-service/internal/testutil/apitest"
	userRepo "github.com/fekuna/omnipos-stock-service/internal/user/repository"
	"github.com/fekuna/omnipos-stock-service/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type api struct {
	t      *testing.T
	db     *sqlx.DB
	router *gin.Engine
}

func newAPI(t *testing.T) *api {
	t.Helper()
	router, db := apitest.NewRouter(t)
	return &api{t: t, db: db, router: router}
}

func (a *api) do(method, path, userID string, body interface{}) (int, map[string]interface{}) {
	a.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(a.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		req.Header.Set(auth.HeaderUserID, userID)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)

	var out map[string]interface{}
	_ = json.Unmarshal(w.Body.Bytes(), &out)
	return w.Code, out
}

func (a *api) list(path, userID string) (int, []map[string]interface{}) {
	a.t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.Header.Set(auth.HeaderUserID, userID)
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)

	var out []map[string]interface{}
	_ = json.Unmarshal(w.Body.Bytes(), &out)
	return w.Code, out
}

type failingPinger struct{}

func (failingPinger) PingContext(context.Context) error { return errors.New("down") }

func TestHealth(t *testing.T) {
	a := newAPI(t)
	code, body := a.do(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok", body["status"])

	gin.SetMode(gin.TestMode)
	r := server.NewRouter(server.RouterConfig{Debug: true}, failingPinger{}, userRepo.NewPGRepository(a.db), logger.NewNop())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestAuthentication(t *testing.T) {
	a := newAPI(t)

	code, _ := a.do(http.MethodGet, "/inventory", "", nil)
	assert.Equal(t, http.StatusUnauthorized, code)

	code, _ = a.do(http.MethodGet, "/inventory", "nobody", nil)
	assert.Equal(t, http.StatusUnauthorized, code)

	store, _ := testutil.SeedUser(t, a.db, model.RoleStoreManager, "Sydney")
	code, _ = a.do(http.MethodGet, "/inventory", store.ID, nil)
	assert.Equal(t, http.StatusOK, code)

	code, _ = a.do(http.MethodPost, "/inventory", store.ID, map[string]interface{}{"action": "addStock"})
	assert.Equal(t, http.StatusForbidden, code)

	code, _ = a.do(http.MethodGet, "/users", store.ID, nil)
	assert.Equal(t, http.StatusForbidden, code)
}

func TestInventoryActions(t *testing.T) {
	a := newAPI(t)
	warehouse, _ := testutil.SeedUser(t, a.db, model.RoleWarehouseManager, "")

	code, body := a.do(http.MethodPost, "/inventory", warehouse.ID, map[string]interface{}{
		"action":          "createProduct",
		"product":         map[string]string{"name": "Widget", "sku": "W-1", "barcode": "111"},
		"initialQuantity": 50,
	})
	require.Equal(t, http.StatusOK, code, body)
	assert.Equal(t, true, body["success"])
	itemID := body["item"].(map[string]interface{})["id"].(string)

	code, _ = a.do(http.MethodPost, "/inventory", warehouse.ID, map[string]interface{}{
		"action": "addStock", "itemId": itemID, "quantity": 5,
	})
	assert.Equal(t, http.StatusOK, code)

	code, body = a.do(http.MethodPost, "/inventory", warehouse.ID, map[string]interface{}{
		"action": "receive", "reference": "PO-1",
		"items": []map[string]interface{}{{"barcode": "111", "quantity": 3}},
	})
	require.Equal(t, http.StatusOK, code)
	assert.EqualValues(t, 1, body["applied"])
	assert.Equal(t, 58, testutil.Available(t, a.db, itemID))

	code, body = a.do(http.MethodPost, "/inventory", warehouse.ID, map[string]interface{}{"action": "explode"})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Invalid action", body["error"])

	code, _ = a.do(http.MethodPost, "/inventory", warehouse.ID, map[string]interface{}{
		"action": "createProduct", "product": map[string]string{"name": "Dup", "sku": "W-1"},
	})
	assert.Equal(t, http.StatusConflict, code)

	code, rows := a.list("/inventory", warehouse.ID)
	require.Equal(t, http.StatusOK, code)
	require.Len(t, rows, 1)
	assert.EqualValues(t, 58, rows[0]["availableQuantity"])
}

func TestCatalogRoutes(t *testing.T) {
	a := newAPI(t)
	warehouse, _ := testutil.SeedUser(t, a.db, model.RoleWarehouseManager, "")
	testutil.SeedItem(t, a.db, "Widget", "W-1", "111", 1)

	code, body := a.do(http.MethodGet, "/stock-items/barcode?barcode=111", warehouse.ID, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Widget", body["name"])

	code, body = a.do(http.MethodGet, "/stock-items/barcode?barcode=999", warehouse.ID, nil)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "Product not found for this barcode", body["error"])

	code, _ = a.do(http.MethodGet, "/stock-items/barcode", warehouse.ID, nil)
	assert.Equal(t, http.StatusBadRequest, code)

	code, items := a.list("/stock-items/search?q=wid", warehouse.ID)
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, items, 1)

	code, _ = a.do(http.MethodPost, "/stock-items", warehouse.ID, map[string]string{"name": "Gadget"})
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestStockRequestLifecycleOverHTTP(t *testing.T) {
	a := newAPI(t)
	warehouse, _ := testutil.SeedUser(t, a.db, model.RoleWarehouseManager, "")
	store, _ := testutil.SeedUser(t, a.db, model.RoleStoreManager, "Sydney")
	widget := testutil.SeedItem(t, a.db, "Widget", "W-1", "111", 50)

	code, body := a.do(http.MethodPost, "/stock-requests", store.ID, map[string]interface{}{
		"action": "create",
		"request": map[string]interface{}{
			"items": []map[string]interface{}{{"itemId": widget.ID, "requestedQuantity": 30}},
		},
	})
	require.Equal(t, http.StatusOK, code, body)
	request := body["request"].(map[string]interface{})
	requestID := request["id"].(string)
	assert.EqualValues(t, 1, request["requestNumber"])

	code, body = a.do(http.MethodPost, "/stock-requests", warehouse.ID, map[string]interface{}{
		"action": "updateStatus", "requestId": requestID, "status": "rejected",
	})
	assert.Equal(t, http.StatusBadRequest, code, body)

	code, _ = a.do(http.MethodPost, "/stock-requests", store.ID, map[string]interface{}{
		"action": "updateStatus", "requestId": requestID, "status": "accepted",
	})
	assert.Equal(t, http.StatusForbidden, code)

	code, _ = a.do(http.MethodPost, "/stock-requests", warehouse.ID, map[string]interface{}{
		"action": "updateStatus", "requestId": requestID, "status": "accepted",
	})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, 20, testutil.Available(t, a.db, widget.ID))

	code, _ = a.do(http.MethodPost, "/stock-requests", warehouse.ID, map[string]interface{}{
		"action": "updateStatus", "requestId": requestID, "status": "accepted",
	})
	assert.Equal(t, http.StatusConflict, code)

	base := "/fulfillments/" + requestID
	code, _ = a.do(http.MethodPost, base, warehouse.ID, nil)
	require.Equal(t, http.StatusOK, code)

	code, body = a.do(http.MethodPost, base+"/scan", warehouse.ID, map[string]string{"barcode": "111"})
	require.Equal(t, http.StatusOK, code)
	assert.EqualValues(t, 30, body["suggestedQty"])

	code, _ = a.do(http.MethodPost, base+"/ship", warehouse.ID, nil)
	assert.Equal(t, http.StatusConflict, code)

	code, _ = a.do(http.MethodPost, base+"/confirm", warehouse.ID, map[string]interface{}{"itemId": widget.ID, "quantity": 30})
	require.Equal(t, http.StatusOK, code)

	code, body = a.do(http.MethodPost, base+"/ship", warehouse.ID, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "shipped", body["request"].(map[string]interface{})["status"])

	code, list := a.list("/stock-requests?status=shipped", store.ID)
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, list, 1)

	code, body = a.do(http.MethodGet, "/stock-requests/"+requestID, store.ID, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "shipped", body["status"])

	code, _ = a.do(http.MethodGet, "/stock-requests/missing", warehouse.ID, nil)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestUserRoutes(t *testing.T) {
	a := newAPI(t)
	admin, _ := testutil.SeedUser(t, a.db, model.RoleAdmin, "")

	code, body := a.do(http.MethodPost, "/users", admin.ID, map[string]interface{}{
		"name": "Sam", "email": "sam@example.com", "role": "store-manager", "storeLocation": "Sydney", "password": "long enough",
	})
	require.Equal(t, http.StatusOK, code, body)
	userID := body["id"].(string)
	assert.NotContains(t, body, "passwordHash")

	code, body = a.do(http.MethodPut, "/users", admin.ID, map[string]interface{}{
		"userId": userID, "updates": map[string]string{"name": "Samantha"},
	})
	require.Equal(t, http.StatusOK, code, body)
	assert.Equal(t, "Samantha", body["name"])

	code, users := a.list("/users", admin.ID)
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, users, 2)

	code, _ = a.do(http.MethodDelete, "/users", admin.ID, map[string]string{"userId": userID})
	assert.Equal(t, http.StatusOK, code)

	code, _ = a.do(http.MethodDelete, "/users", admin.ID, map[string]string{"userId": userID})
	assert.Equal(t, http.StatusNotFound, code)
}
