package handler

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
)

func newCatalogRouterForTest(products *ProductHandler, sales *SaleHandler) http.Handler {
	r := chi.NewRouter()
	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/products", func(r chi.Router) {
			r.Get("/", products.List)
			r.Post("/", products.Create)
			r.Get("/search", products.Search)
			r.Get("/category/{category}", products.ListByCategory)
			r.Get("/{id}", products.GetByID)
			r.Put("/{id}", products.Update)
			r.Delete("/{id}", products.Delete)
			r.Get("/{id}/sales", sales.ListByProduct)
		})
		r.Route("/sales", func(r chi.Router) {
			r.Get("/", sales.List)
			r.Post("/", sales.Create)
			r.Get("/stats", sales.Stats)
			r.Get("/{id}", sales.GetByID)
			r.Delete("/{id}", sales.Delete)
		})
	})
	return r
}

func doRequest(t *testing.T, h http.Handler, method, target string, body io.Reader) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decodeBody[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(rr.Body.Bytes(), &out); err != nil {
		t.Fatalf("unmarshal response %q: %v", rr.Body.String(), err)
	}
	return out
}

func expectError(t *testing.T, rr *httptest.ResponseRecorder, status int, code, detail string) {
	t.Helper()
	if rr.Code != status {
		t.Fatalf("expected %d, got %d body=%s", status, rr.Code, rr.Body.String())
	}
	body := decodeBody[map[string]any](t, rr)
	if body["code"] != code {
		t.Fatalf("expected code %s, got %v", code, body["code"])
	}
	if detail != "" && body["detail"] != detail {
		t.Fatalf("expected detail %q, got %v", detail, body["detail"])
	}
}
