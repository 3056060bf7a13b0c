package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"schoolhub-warehouse-api/internal/handler"
	"schoolhub-warehouse-api/internal/model"
	"schoolhub-warehouse-api/internal/repository"
	"schoolhub-warehouse-api/internal/router"
	"schoolhub-warehouse-api/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) (*httptest.Server, *service.WarehouseService) {
	t.Helper()

	items := repository.NewMemoryItemRepository()
	transactions := repository.NewMemoryTransactionRepository()
	require.NoError(t, repository.SeedDemoData(context.Background(), items, transactions))

	svc := service.NewWarehouseService(items, transactions)
	require.NotNil(t, svc)

	r := router.New(router.Config{
		Handler:          handler.New("test"),
		WarehouseHandler: handler.NewWarehouseHandler(svc, "John Doe"),
		DashboardHandler: handler.NewDashboardHandler(svc),
	})

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv, svc
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Meta    *struct {
		Page       int `json:"page"`
		PerPage    int `json:"per_page"`
		TotalPages int `json:"total_pages"`
		Total      int `json:"total"`
	} `json:"meta"`
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func doJSON(t *testing.T, method, url string, body interface{}) (*http.Response, envelope) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })

	var env envelope
	if resp.StatusCode != http.StatusNoContent {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	}
	return resp, env
}

func TestListItems_Paginated(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, env := doJSON(t, http.MethodGet, srv.URL+"/api/v1/items?per_page=3&page=1", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	require.NotNil(t, env.Meta)
	assert.Equal(t, 8, env.Meta.Total)
	assert.Equal(t, 3, env.Meta.TotalPages)

	var items []model.Item
	require.NoError(t, json.Unmarshal(env.Data, &items))
	assert.Len(t, items, 3)
}

func TestListItems_SearchFilter(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, env := doJSON(t, http.MethodGet, srv.URL+"/api/v1/items?search=multimeter", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var items []model.Item
	require.NoError(t, json.Unmarshal(env.Data, &items))
	require.Len(t, items, 1)
	assert.Equal(t, "Digital Multimeter", items[0].Name)
}

func TestCreateItem(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, env := doJSON(t, http.MethodPost, srv.URL+"/api/v1/items", map[string]interface{}{
		"name": "Centrifuge", "sku": "BIO-CF-001", "category": "Biology", "quantity": 2, "price": 340.0,
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	var item model.Item
	require.NoError(t, json.Unmarshal(env.Data, &item))
	assert.Equal(t, 9, item.ID)
}

func TestCreateItem_ValidationError(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, env := doJSON(t, http.MethodPost, srv.URL+"/api/v1/items", map[string]interface{}{
		"name": "", "sku": "X", "category": "General", "quantity": -2, "price": 1.0,
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	require.NotNil(t, env.Error)
	assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)
}

func TestUpdateItem_NotFound(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, env := doJSON(t, http.MethodPut, srv.URL+"/api/v1/items/404", map[string]interface{}{
		"name": "Ghost", "sku": "G-1", "category": "General", "quantity": 1, "price": 1.0,
	})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	require.NotNil(t, env.Error)
	assert.Equal(t, "NOT_FOUND", env.Error.Code)
}

func TestDeleteItem_NoContent(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, _ := doJSON(t, http.MethodDelete, srv.URL+"/api/v1/items/8", nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	// Deleting again is still a no-op success.
	resp, _ = doJSON(t, http.MethodDelete, srv.URL+"/api/v1/items/8", nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}

func TestTransactionLifecycleOverHTTP(t *testing.T) {
	srv, _ := newTestServer(t)

	// Safety Goggles (item 7) start at 5.
	resp, env := doJSON(t, http.MethodPost, srv.URL+"/api/v1/transactions", map[string]interface{}{
		"type":  "Export",
		"items": []map[string]int{{"item_id": 7, "quantity": 5}},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var tx model.Transaction
	require.NoError(t, json.Unmarshal(env.Data, &tx))
	assert.Equal(t, model.StatusPending, tx.Status)
	assert.Equal(t, "John Doe", tx.InitiatedBy)

	resp, env = doJSON(t, http.MethodPost, fmt.Sprintf("%s/api/v1/transactions/%d/approve", srv.URL, tx.ID), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.Unmarshal(env.Data, &tx))
	assert.Equal(t, model.StatusApproved, tx.Status)

	// Second approval must be refused.
	resp, env = doJSON(t, http.MethodPost, fmt.Sprintf("%s/api/v1/transactions/%d/approve", srv.URL, tx.ID), nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	require.NotNil(t, env.Error)
	assert.Equal(t, "INVALID_STATE", env.Error.Code)
}

func TestApproveExport_InsufficientStock(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, env := doJSON(t, http.MethodPost, srv.URL+"/api/v1/transactions", map[string]interface{}{
		"type":  "Export",
		"items": []map[string]int{{"item_id": 7, "quantity": 50}},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var tx model.Transaction
	require.NoError(t, json.Unmarshal(env.Data, &tx))

	resp, env = doJSON(t, http.MethodPost, fmt.Sprintf("%s/api/v1/transactions/%d/approve", srv.URL, tx.ID), nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	require.NotNil(t, env.Error)
	assert.Equal(t, "INSUFFICIENT_STOCK", env.Error.Code)
	assert.Contains(t, env.Error.Message, "Safety Goggles")
}

func TestCreateTransaction_XUserHeader(t *testing.T) {
	srv, _ := newTestServer(t)

	var buf bytes.Buffer
	require.NoError(t, json.NewEncoder(&buf).Encode(map[string]interface{}{
		"type":  "Import",
		"items": []map[string]int{{"item_id": 1, "quantity": 3}},
	}))
	req, err := http.NewRequest(http.MethodPost, srv.URL+"/api/v1/transactions", &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User", "Jane Smith")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var env envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	var tx model.Transaction
	require.NoError(t, json.Unmarshal(env.Data, &tx))
	assert.Equal(t, "Jane Smith", tx.InitiatedBy)
}

func TestDashboardSummary(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, env := doJSON(t, http.MethodGet, srv.URL+"/api/v1/dashboard/summary", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var summary model.Summary
	require.NoError(t, json.Unmarshal(env.Data, &summary))
	assert.Equal(t, []string{"Biology", "Chemistry", "General", "Physics"}, summary.Categories)
	// Seed data has two items at or below the low-stock threshold and none out of stock.
	assert.Equal(t, 2, summary.LowStockCount)
	assert.Equal(t, 0, summary.OutOfStock)
}

func TestHealthEndpoints(t *testing.T) {
	srv, _ := newTestServer(t)

	for _, path := range []string{"/api/status", "/api/v1/health", "/api/v1/ready"} {
		resp, env := doJSON(t, http.MethodGet, srv.URL+path, nil)
		assert.Equal(t, http.StatusOK, resp.StatusCode, path)
		assert.True(t, env.Success, path)
	}
}
