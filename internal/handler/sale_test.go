package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/primestore/sales-api/internal/domain/branch"
	"github.com/primestore/sales-api/internal/domain/customer"
	"github.com/primestore/sales-api/internal/domain/product"
	"github.com/primestore/sales-api/internal/domain/sale"
	"github.com/primestore/sales-api/internal/storage/memory"
)

// newTestServer wires the handler against in-memory repositories with a small
// seeded catalog.
func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	ctx := t.Context()

	products := memory.NewProductRepository()
	customers := memory.NewCustomerRepository()
	branches := memory.NewBranchRepository()
	sales := memory.NewSaleRepository()

	require.NoError(t, products.Create(ctx, &product.Product{
		ID: "p1", Name: "Widget", Price: decimal.RequireFromString("10.00"),
	}))
	require.NoError(t, products.Create(ctx, &product.Product{
		ID: "p2", Name: "Gadget", Price: decimal.RequireFromString("7.25"),
	}))
	require.NoError(t, customers.Create(ctx, &customer.Customer{ID: "cus-1", Name: "Ada Lovett"}))
	require.NoError(t, branches.Create(ctx, &branch.Branch{ID: "br-1", Name: "Downtown"}))

	svc := sale.NewService(sales, products, customers, branches)
	mux := http.NewServeMux()
	New(svc, products, customers, branches).Register(mux)

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func doJSON(t *testing.T, method, url string, body any) (*http.Response, []byte) {
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
	defer resp.Body.Close()

	var out bytes.Buffer
	_, err = out.ReadFrom(resp.Body)
	require.NoError(t, err)
	return resp, out.Bytes()
}

func createSaleBody(number string) map[string]any {
	return map[string]any{
		"number":     number,
		"date":       "2025-06-01T10:00:00Z",
		"customerId": "cus-1",
		"branchId":   "br-1",
		"items": []map[string]any{
			{"productId": "p1", "quantity": 5},
			{"productId": "p2", "quantity": 2},
		},
	}
}

func TestCreateSaleEndpoint(t *testing.T) {
	srv := newTestServer(t)

	resp, body := doJSON(t, http.MethodPost, srv.URL+"/api/sales", createSaleBody("S-0001"))
	require.Equal(t, http.StatusCreated, resp.StatusCode, "body: %s", body)

	var got sale.Sale
	require.NoError(t, json.Unmarshal(body, &got))
	assert.NotEmpty(t, got.ID)
	assert.Equal(t, "S-0001", got.Number)
	assert.Equal(t, sale.StatusActive, got.Status)
	assert.Equal(t, "Ada Lovett", got.CustomerName)
	assert.Equal(t, 1, got.Version)
	assert.True(t, decimal.RequireFromString("64.50").Equal(got.TotalAmount), "got %s", got.TotalAmount)
}

func TestCreateSaleEndpoint_ValidationViolations(t *testing.T) {
	srv := newTestServer(t)

	payload := createSaleBody("S-0001")
	payload["customerId"] = "nobody"
	payload["items"] = []map[string]any{{"productId": "missing", "quantity": 1}}

	resp, body := doJSON(t, http.MethodPost, srv.URL+"/api/sales", payload)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var errResp errorResponse
	require.NoError(t, json.Unmarshal(body, &errResp))
	codes := make([]string, 0, len(errResp.Violations))
	for _, v := range errResp.Violations {
		codes = append(codes, v.Code)
	}
	assert.Contains(t, codes, "customer_not_found")
	assert.Contains(t, codes, "product_not_found")
}

func TestCreateSaleEndpoint_DuplicateNumber(t *testing.T) {
	srv := newTestServer(t)

	resp, _ := doJSON(t, http.MethodPost, srv.URL+"/api/sales", createSaleBody("S-0001"))
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, body := doJSON(t, http.MethodPost, srv.URL+"/api/sales", createSaleBody("S-0001"))
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, string(body), "number_duplicate")
}

func TestCreateSaleEndpoint_InvalidBody(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Post(srv.URL+"/api/sales", "application/json",
		bytes.NewBufferString("{not json"))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestGetSaleEndpoint_NotFound(t *testing.T) {
	srv := newTestServer(t)

	resp, _ := doJSON(t, http.MethodGet, srv.URL+"/api/sales/missing", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestListSalesEndpoint(t *testing.T) {
	srv := newTestServer(t)

	for i := 0; i < 3; i++ {
		resp, _ := doJSON(t, http.MethodPost, srv.URL+"/api/sales",
			createSaleBody(fmt.Sprintf("S-%04d", i)))
		require.Equal(t, http.StatusCreated, resp.StatusCode)
	}

	resp, body := doJSON(t, http.MethodGet, srv.URL+"/api/sales?page=1&pageSize=2", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var list listSalesResponse
	require.NoError(t, json.Unmarshal(body, &list))
	assert.Len(t, list.Sales, 2)
	assert.Equal(t, 3, list.TotalCount)
	assert.Equal(t, 2, list.TotalPages)

	resp, _ = doJSON(t, http.MethodGet, srv.URL+"/api/sales?pageSize=0", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// A page far past the end is empty, even when the offset arithmetic would
	// overflow.
	resp, body = doJSON(t, http.MethodGet, srv.URL+"/api/sales?page=4611686018427387903&pageSize=100", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var far listSalesResponse
	require.NoError(t, json.Unmarshal(body, &far))
	assert.Empty(t, far.Sales)
	assert.Equal(t, 3, far.TotalCount)

	resp, body = doJSON(t, http.MethodGet, srv.URL+"/api/sales?page=abc", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	var errResp errorResponse
	require.NoError(t, json.Unmarshal(body, &errResp))
	assert.Equal(t, "page must be an integer", errResp.Message)
}

func TestCancelSaleItemEndpoint(t *testing.T) {
	srv := newTestServer(t)

	_, body := doJSON(t, http.MethodPost, srv.URL+"/api/sales", createSaleBody("S-0001"))
	var created sale.Sale
	require.NoError(t, json.Unmarshal(body, &created))

	resp, body := doJSON(t, http.MethodDelete, srv.URL+"/api/sales/"+created.ID+"/items/p1", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, "body: %s", body)

	var got sale.Sale
	require.NoError(t, json.Unmarshal(body, &got))
	assert.True(t, decimal.RequireFromString("14.50").Equal(got.TotalAmount), "got %s", got.TotalAmount)
	assert.Equal(t, 2, got.Version)

	// Cancelling the same line again is a 404: the active item is gone.
	resp, _ = doJSON(t, http.MethodDelete, srv.URL+"/api/sales/"+created.ID+"/items/p1", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestCancelSaleEndpoint_DoubleCancelConflicts(t *testing.T) {
	srv := newTestServer(t)

	_, body := doJSON(t, http.MethodPost, srv.URL+"/api/sales", createSaleBody("S-0001"))
	var created sale.Sale
	require.NoError(t, json.Unmarshal(body, &created))

	resp, body := doJSON(t, http.MethodPost, srv.URL+"/api/sales/"+created.ID+"/cancel", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, "body: %s", body)

	var got sale.Sale
	require.NoError(t, json.Unmarshal(body, &got))
	assert.Equal(t, sale.StatusCancelled, got.Status)
	assert.True(t, got.TotalAmount.IsZero())

	resp, _ = doJSON(t, http.MethodPost, srv.URL+"/api/sales/"+created.ID+"/cancel", nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestCompleteSaleEndpoint(t *testing.T) {
	srv := newTestServer(t)

	_, body := doJSON(t, http.MethodPost, srv.URL+"/api/sales", createSaleBody("S-0001"))
	var created sale.Sale
	require.NoError(t, json.Unmarshal(body, &created))

	resp, body := doJSON(t, http.MethodPost, srv.URL+"/api/sales/"+created.ID+"/complete", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var got sale.Sale
	require.NoError(t, json.Unmarshal(body, &got))
	assert.Equal(t, sale.StatusCompleted, got.Status)

	// A completed sale rejects item cancellation.
	resp, _ = doJSON(t, http.MethodDelete, srv.URL+"/api/sales/"+created.ID+"/items/p1", nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestDeleteSaleEndpoint(t *testing.T) {
	srv := newTestServer(t)

	_, body := doJSON(t, http.MethodPost, srv.URL+"/api/sales", createSaleBody("S-0001"))
	var created sale.Sale
	require.NoError(t, json.Unmarshal(body, &created))

	resp, body := doJSON(t, http.MethodDelete, srv.URL+"/api/sales/"+created.ID, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var del deleteSaleResponse
	require.NoError(t, json.Unmarshal(body, &del))
	assert.True(t, del.Deleted)

	resp, _ = doJSON(t, http.MethodDelete, srv.URL+"/api/sales/"+created.ID, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestProductEndpoints(t *testing.T) {
	srv := newTestServer(t)

	resp, body := doJSON(t, http.MethodPost, srv.URL+"/api/products", map[string]any{
		"name":     "Doohickey",
		"price":    "3.50",
		"category": "misc",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, "body: %s", body)

	var created product.Product
	require.NoError(t, json.Unmarshal(body, &created))
	require.NotEmpty(t, created.ID)

	resp, body = doJSON(t, http.MethodGet, srv.URL+"/api/products/"+created.ID, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var got product.Product
	require.NoError(t, json.Unmarshal(body, &got))
	assert.Equal(t, "Doohickey", got.Name)

	resp, _ = doJSON(t, http.MethodDelete, srv.URL+"/api/products/"+created.ID, nil)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, _ = doJSON(t, http.MethodGet, srv.URL+"/api/products/"+created.ID, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
