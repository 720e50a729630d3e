package router

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go.uber.org/mock/gomock"

	"github.com/sandeepkv93/bazar-universal-api/internal/domain"
	"github.com/sandeepkv93/bazar-universal-api/internal/health"
	"github.com/sandeepkv93/bazar-universal-api/internal/http/handler"
	"github.com/sandeepkv93/bazar-universal-api/internal/repository"
	servicegomock "github.com/sandeepkv93/bazar-universal-api/internal/service/gomock"
)

type staticChecker struct {
	result health.CheckResult
}

func (c staticChecker) Check(context.Context) health.CheckResult { return c.result }

func newTestRouter(t *testing.T, dep Dependencies) (*servicegomock.MockProductService, *servicegomock.MockSaleService, http.Handler) {
	t.Helper()
	ctrl := gomock.NewController(t)
	products := servicegomock.NewMockProductService(ctrl)
	sales := servicegomock.NewMockSaleService(ctrl)
	dep.ProductHandler = handler.NewProductHandler(products)
	dep.SaleHandler = handler.NewSaleHandler(sales)
	return products, sales, NewRouter(dep)
}

func serve(h http.Handler, method, target string, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestStaticRoutesWinOverIDParameter(t *testing.T) {
	products, sales, h := newTestRouter(t, Dependencies{})

	products.EXPECT().Search(gomock.Any(), "phone", repository.PageRequest{Page: 1, PerPage: 10}).
		Return(repository.PageResult[domain.Product]{Items: []domain.Product{}, Page: 1, PerPage: 10}, nil)
	sales.EXPECT().Stats(gomock.Any()).Return(domain.SaleStats{}, nil)

	if rr := serve(h, http.MethodGet, "/api/v1/products/search?q=phone", ""); rr.Code != http.StatusOK {
		t.Fatalf("expected search route, got %d body=%s", rr.Code, rr.Body.String())
	}
	if rr := serve(h, http.MethodGet, "/api/v1/sales/stats", ""); rr.Code != http.StatusOK {
		t.Fatalf("expected stats route, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestCustomAPIPrefix(t *testing.T) {
	products, _, h := newTestRouter(t, Dependencies{APIPrefix: "catalog/v2/"})
	products.EXPECT().GetByID(gomock.Any(), uint(3)).Return(&domain.Product{ID: 3, Title: "Widget"}, nil)

	if rr := serve(h, http.MethodGet, "/catalog/v2/products/3", ""); rr.Code != http.StatusOK {
		t.Fatalf("expected 200 under custom prefix, got %d", rr.Code)
	}
	rr := serve(h, http.MethodGet, "/api/v1/products/3", "")
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected default prefix to be unmounted, got %d", rr.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode not found body: %v", err)
	}
	if body["code"] != "NOT_FOUND" {
		t.Fatalf("expected NOT_FOUND code, got %v", body["code"])
	}
}

func TestRequestIDEchoedOnErrors(t *testing.T) {
	_, _, h := newTestRouter(t, Dependencies{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/products/abc", nil)
	req.Header.Set("X-Request-Id", "req-42")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 for bad id, got %d", rr.Code)
	}
	if got := rr.Header().Get("X-Request-Id"); got != "req-42" {
		t.Fatalf("expected echoed request id, got %q", got)
	}
	if !strings.Contains(rr.Body.String(), `"request_id":"req-42"`) {
		t.Fatalf("expected request id in body, got %s", rr.Body.String())
	}
}

func TestBodyLimitFromDependencies(t *testing.T) {
	_, _, h := newTestRouter(t, Dependencies{BodyLimitBytes: 32})

	payload := `{"title":"` + strings.Repeat("x", 64) + `","price":1,"category":"c"}`
	rr := serve(h, http.MethodPost, "/api/v1/products", payload)
	if rr.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected 413, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestCORSPreflight(t *testing.T) {
	_, _, h := newTestRouter(t, Dependencies{CORSOrigins: []string{"http://localhost:5173"}})

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/sales", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusNoContent {
		t.Fatalf("expected 204 preflight, got %d", rr.Code)
	}
	if got := rr.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:5173" {
		t.Fatalf("unexpected allow origin %q", got)
	}
}

func TestHealthEndpoints(t *testing.T) {
	_, _, h := newTestRouter(t, Dependencies{
		Readiness: health.NewProbeRunner(100*time.Millisecond, 0,
			staticChecker{result: health.CheckResult{Name: "db", Healthy: true}},
			staticChecker{result: health.CheckResult{Name: "redis", Healthy: false, Error: "down"}},
		),
	})

	if rr := serve(h, http.MethodGet, "/health/live", ""); rr.Code != http.StatusOK {
		t.Fatalf("expected live 200, got %d", rr.Code)
	}
	rr := serve(h, http.MethodGet, "/health/ready", "")
	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected ready 503, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "DEPENDENCY_UNREADY") {
		t.Fatalf("unexpected readiness body %s", rr.Body.String())
	}
	if !strings.Contains(rr.Body.String(), "dependencies are not ready: redis") {
		t.Fatalf("expected failing dependency in detail, got %s", rr.Body.String())
	}
}

func TestRootDescribesService(t *testing.T) {
	_, _, h := newTestRouter(t, Dependencies{ProjectName: "Bazar Universal API", Version: "1.0.0"})

	rr := serve(h, http.MethodGet, "/", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode root: %v", err)
	}
	if body["name"] != "Bazar Universal API" || body["api"] != "/api/v1" {
		t.Fatalf("unexpected root body %+v", body)
	}
}

func TestAPIPrefixNormalization(t *testing.T) {
	cases := map[string]string{
		"":          "/api/v1",
		"/":         "/api/v1",
		"api/v2":    "/api/v2",
		" /api/v3/": "/api/v3",
	}
	for in, want := range cases {
		if got := apiPrefix(in); got != want {
			t.Fatalf("apiPrefix(%q)=%q want %q", in, got, want)
		}
	}
}
