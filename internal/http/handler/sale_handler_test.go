package handler

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"go.uber.org/mock/gomock"

	"github.com/sandeepkv93/bazar-universal-api/internal/domain"
	"github.com/sandeepkv93/bazar-universal-api/internal/repository"
	"github.com/sandeepkv93/bazar-universal-api/internal/service"
	servicegomock "github.com/sandeepkv93/bazar-universal-api/internal/service/gomock"
)

func newSaleRouterForTest(t *testing.T) (*servicegomock.MockSaleService, http.Handler) {
	t.Helper()
	ctrl := gomock.NewController(t)
	products := servicegomock.NewMockProductService(ctrl)
	sales := servicegomock.NewMockSaleService(ctrl)
	return sales, newCatalogRouterForTest(NewProductHandler(products), NewSaleHandler(sales))
}

func TestSaleHandlerListIncludesStats(t *testing.T) {
	svc, r := newSaleRouterForTest(t)

	svc.EXPECT().Summary(gomock.Any(), repository.Window{Skip: 0, Limit: 100}).Return(&domain.SalesSummary{
		Stats: domain.SaleStats{TotalSales: 0, TotalItems: 0, TotalAmount: 0},
	}, nil)

	rr := doRequest(t, r, http.MethodGet, "/api/v1/sales", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rr.Code, rr.Body.String())
	}
	body := rr.Body.String()
	if !strings.Contains(body, `"sales":[]`) || !strings.Contains(body, `"total_amount":0`) {
		t.Fatalf("unexpected summary body %s", body)
	}

	rr = doRequest(t, r, http.MethodGet, "/api/v1/sales?limit=5000", nil)
	expectError(t, rr, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "")
}

func TestSaleHandlerStats(t *testing.T) {
	svc, r := newSaleRouterForTest(t)
	svc.EXPECT().Stats(gomock.Any()).Return(domain.SaleStats{TotalSales: 3, TotalItems: 4, TotalAmount: 17200}, nil)

	rr := doRequest(t, r, http.MethodGet, "/api/v1/sales/stats", nil)
	got := decodeBody[domain.SaleStats](t, rr)
	if got.TotalSales != 3 || got.TotalItems != 4 || got.TotalAmount != 17200 {
		t.Fatalf("unexpected stats %+v", got)
	}
}

func TestSaleHandlerCreate(t *testing.T) {
	svc, r := newSaleRouterForTest(t)

	t.Run("missing product id", func(t *testing.T) {
		rr := doRequest(t, r, http.MethodPost, "/api/v1/sales", strings.NewReader(`{"quantity":2}`))
		expectError(t, rr, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "missing required fields")
	})

	t.Run("zero quantity", func(t *testing.T) {
		rr := doRequest(t, r, http.MethodPost, "/api/v1/sales", strings.NewReader(`{"product_id":1,"quantity":0}`))
		expectError(t, rr, http.StatusUnprocessableEntity, "VALIDATION_ERROR", service.ErrSaleInvalidQuantity.Error())
	})

	t.Run("negative product id", func(t *testing.T) {
		rr := doRequest(t, r, http.MethodPost, "/api/v1/sales", strings.NewReader(`{"product_id":-1}`))
		expectError(t, rr, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "invalid field type")
	})

	t.Run("unknown product", func(t *testing.T) {
		svc.EXPECT().Create(gomock.Any(), service.CreateSaleInput{ProductID: 999, Quantity: 1}).
			Return(nil, repository.ErrSaleProductNotFound)
		rr := doRequest(t, r, http.MethodPost, "/api/v1/sales", strings.NewReader(`{"product_id":999}`))
		expectError(t, rr, http.StatusNotFound, "NOT_FOUND", "Product not found")
	})

	t.Run("total out of range", func(t *testing.T) {
		svc.EXPECT().Create(gomock.Any(), service.CreateSaleInput{ProductID: 5, Quantity: 10}).
			Return(nil, service.ErrSaleTotalOutOfRange)
		rr := doRequest(t, r, http.MethodPost, "/api/v1/sales", strings.NewReader(`{"product_id":5,"quantity":10}`))
		expectError(t, rr, http.StatusUnprocessableEntity, "VALIDATION_ERROR", service.ErrSaleTotalOutOfRange.Error())
	})

	t.Run("created", func(t *testing.T) {
		image := "https://example.com/iphone.jpg"
		svc.EXPECT().Create(gomock.Any(), service.CreateSaleInput{ProductID: 1, Quantity: 3}).
			DoAndReturn(func(_ context.Context, in service.CreateSaleInput) (*domain.Sale, error) {
				return &domain.Sale{
					ID:           12,
					ProductID:    in.ProductID,
					ProductTitle: "iPhone X",
					ProductImage: &image,
					Quantity:     in.Quantity,
					Price:        800,
					Total:        2400,
					Status:       domain.SaleStatusCompleted,
					Date:         time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
				}, nil
			})
		rr := doRequest(t, r, http.MethodPost, "/api/v1/sales", strings.NewReader(`{"product_id":1,"quantity":3}`))
		if rr.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d body=%s", rr.Code, rr.Body.String())
		}
		got := decodeBody[domain.Sale](t, rr)
		if got.Total != 2400 || got.Status != "Completed" || got.ProductImage == nil {
			t.Fatalf("unexpected sale %+v", got)
		}
	})
}

func TestSaleHandlerGetAndDelete(t *testing.T) {
	svc, r := newSaleRouterForTest(t)

	svc.EXPECT().GetByID(gomock.Any(), uint(5)).Return(nil, repository.ErrSaleNotFound)
	rr := doRequest(t, r, http.MethodGet, "/api/v1/sales/5", nil)
	expectError(t, rr, http.StatusNotFound, "NOT_FOUND", "Sale not found")

	svc.EXPECT().Delete(gomock.Any(), uint(6)).Return(&domain.Sale{ID: 6, Quantity: 2}, nil)
	rr = doRequest(t, r, http.MethodDelete, "/api/v1/sales/6", nil)
	got := decodeBody[domain.Sale](t, rr)
	if got.ID != 6 || got.Quantity != 2 {
		t.Fatalf("unexpected deleted sale %+v", got)
	}

	rr = doRequest(t, r, http.MethodDelete, "/api/v1/sales/abc", nil)
	expectError(t, rr, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "invalid sale id")
}

func TestSaleHandlerListByProduct(t *testing.T) {
	svc, r := newSaleRouterForTest(t)

	svc.EXPECT().ListByProduct(gomock.Any(), uint(3), repository.Window{Skip: 0, Limit: 10}).
		Return([]domain.Sale{{ID: 1, ProductID: 3}}, nil)
	rr := doRequest(t, r, http.MethodGet, "/api/v1/products/3/sales?limit=10", nil)
	got := decodeBody[[]domain.Sale](t, rr)
	if len(got) != 1 || got[0].ProductID != 3 {
		t.Fatalf("unexpected sales %+v", got)
	}
}
