package registry

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"

	"freshops/internal/config"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func TestGetProductsAllWithRetry(t *testing.T) {
	attempt := 0

	cfg, _ := config.Load()
	cfg.BackofficeAPIToken = "test"
	cfg.BackofficeAPIBaseURL = "https://example.test/api/v1"
	cfg.BackofficeRateRPS = 1000

	client := NewClient(cfg)
	client.httpClient = &http.Client{
		Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
			if r.URL.Path != "/api/v1/product/scroll" {
				t.Fatalf("unexpected path %s", r.URL.Path)
			}
			attempt++
			if attempt == 1 {
				return &http.Response{
					StatusCode: http.StatusInternalServerError,
					Body:       io.NopCloser(strings.NewReader(`{"error":"boom"}`)),
					Header:     make(http.Header),
				}, nil
			}

			payload := map[string]any{"success": true, "data": map[string]any{"products": []map[string]any{}, "scrollId": nil}}
			if attempt == 2 {
				payload = map[string]any{"success": true, "data": map[string]any{"products": []map[string]any{{"code": "MANGO-01", "name": "Mango Gold Susu", "baseUom": "ctn"}}, "scrollId": "abc"}}
			}
			if attempt == 3 {
				payload = map[string]any{"success": true, "data": map[string]any{"products": []map[string]any{{"code": "AVO-01", "name": "Avocado", "baseUom": "pcs"}}, "scrollId": nil}}
			}
			blob, _ := json.Marshal(payload)
			return &http.Response{
				StatusCode: http.StatusOK,
				Body:       io.NopCloser(strings.NewReader(string(blob))),
				Header:     make(http.Header),
			}, nil
		}),
	}

	products, err := client.GetProductsAll(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(products) != 2 {
		t.Fatalf("len=%d", len(products))
	}
	if products[0].Code != "MANGO-01" || products[0].BaseUOM != "ctn" {
		t.Fatalf("unexpected first product: %+v", products[0])
	}
}

func TestGetCustomersAll(t *testing.T) {
	cfg, _ := config.Load()
	cfg.BackofficeAPIToken = "test"
	cfg.BackofficeAPIBaseURL = "https://example.test/api/v1"
	cfg.BackofficeRateRPS = 1000

	client := NewClient(cfg)
	client.httpClient = &http.Client{
		Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
			payload := map[string]any{"success": true, "data": map[string]any{
				"customers": []map[string]any{{"id": 7, "companyName": "HeyTea", "branch": "Genting"}},
				"scrollId":  nil,
			}}
			blob, _ := json.Marshal(payload)
			return &http.Response{
				StatusCode: http.StatusOK,
				Body:       io.NopCloser(strings.NewReader(string(blob))),
				Header:     make(http.Header),
			}, nil
		}),
	}

	customers, err := client.GetCustomersAll(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(customers) != 1 || customers[0].Display() != "HeyTea - Genting" {
		t.Fatalf("unexpected customers: %+v", customers)
	}
}
