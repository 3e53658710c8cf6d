//go:build integration

package integration

import (
	"net/http"
	"testing"
)

func TestListProducts(t *testing.T) {
	resp := doGet(t, "/api/products")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	products := decodeJSON[[]productResponse](t, resp)
	if len(products) < 5 {
		t.Fatalf("expected at least 5 products, got %d", len(products))
	}
}

func TestGetProduct(t *testing.T) {
	resp := doGet(t, "/api/products/prd-001")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	product := decodeJSON[productResponse](t, resp)
	if product.ID != "prd-001" {
		t.Errorf("id: got %q, want prd-001", product.ID)
	}
	if product.Name != "Espresso Beans 1kg" {
		t.Errorf("name: got %q, want Espresso Beans 1kg", product.Name)
	}
	if product.Price != "18.5" {
		t.Errorf("price: got %q, want 18.5", product.Price)
	}
	if product.Category != "coffee" {
		t.Errorf("category: got %q, want coffee", product.Category)
	}
}

func TestGetProduct_NotFound(t *testing.T) {
	resp := doGet(t, "/api/products/prd-999")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}

	errResp := decodeJSON[errorResponse](t, resp)
	if errResp.Code != 404 {
		t.Errorf("error code: got %d, want 404", errResp.Code)
	}
}

func TestProductLifecycle(t *testing.T) {
	resp := doPost(t, "/api/products", map[string]any{
		"name":     "French Press 1L",
		"price":    "29.00",
		"category": "equipment",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	created := decodeJSON[productResponse](t, resp)
	resp.Body.Close()

	if !uuidPattern.MatchString(created.ID) {
		t.Errorf("product ID %q is not a valid UUID", created.ID)
	}

	resp = doDelete(t, "/api/products/"+created.ID)
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", resp.StatusCode)
	}

	resp = doGet(t, "/api/products/"+created.ID)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 after delete, got %d", resp.StatusCode)
	}
}

func TestListCustomers(t *testing.T) {
	resp := doGet(t, "/api/customers")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
}

func TestListBranches(t *testing.T) {
	resp := doGet(t, "/api/branches")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
}
