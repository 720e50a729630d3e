package integration

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/sandeepkv93/bazar-universal-api/internal/domain"
	"github.com/sandeepkv93/bazar-universal-api/internal/service"
)

type trackingCatalogCacheStore struct {
	delegate service.CatalogCacheStore

	mu              sync.Mutex
	getCalls        int
	setCalls        int
	invalidateCalls int
}

func newTrackingCatalogCacheStore(delegate service.CatalogCacheStore) *trackingCatalogCacheStore {
	return &trackingCatalogCacheStore{delegate: delegate}
}

func (s *trackingCatalogCacheStore) Get(ctx context.Context, namespace, key string) ([]byte, bool, error) {
	s.mu.Lock()
	s.getCalls++
	s.mu.Unlock()
	return s.delegate.Get(ctx, namespace, key)
}

func (s *trackingCatalogCacheStore) Set(ctx context.Context, namespace, key string, value []byte, ttl time.Duration) error {
	s.mu.Lock()
	s.setCalls++
	s.mu.Unlock()
	return s.delegate.Set(ctx, namespace, key, value, ttl)
}

func (s *trackingCatalogCacheStore) InvalidateNamespace(ctx context.Context, namespace string) error {
	s.mu.Lock()
	s.invalidateCalls++
	s.mu.Unlock()
	return s.delegate.InvalidateNamespace(ctx, namespace)
}

func (s *trackingCatalogCacheStore) Snapshot() (getCalls, setCalls, invalidateCalls int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.getCalls, s.setCalls, s.invalidateCalls
}

func TestSaleStatsReadThroughCacheAndInvalidation(t *testing.T) {
	store := newTrackingCatalogCacheStore(service.NewInMemoryCatalogCacheStore())
	s := newCatalogTestServer(t, catalogTestServerOptions{seed: true, cacheStore: store})

	for range 3 {
		resp, raw := doJSON(t, http.MethodGet, s.url("/sales/stats"), nil)
		expectStatus(t, resp, raw, http.StatusOK)
	}
	_, sets, _ := store.Snapshot()
	if sets != 1 {
		t.Fatalf("expected a single cache fill, got %d sets", sets)
	}

	resp, raw := doJSON(t, http.MethodPost, s.url("/sales"), map[string]any{"product_id": 2})
	expectStatus(t, resp, raw, http.StatusOK)
	_, _, invalidations := store.Snapshot()
	if invalidations == 0 {
		t.Fatal("expected sale creation to invalidate cached stats")
	}

	resp, raw = doJSON(t, http.MethodGet, s.url("/sales/stats"), nil)
	expectStatus(t, resp, raw, http.StatusOK)
	if stats := decodeInto[domain.SaleStats](t, raw); stats.TotalSales != 4 || stats.TotalAmount != 30200 {
		t.Fatalf("expected fresh stats after invalidation, got %+v", stats)
	}
}

func TestProductSearchRedisCacheInvalidatedOnWrite(t *testing.T) {
	s := newCatalogTestServer(t, catalogTestServerOptions{seed: true, redisCache: true})

	resp, raw := doJSON(t, http.MethodGet, s.url("/products/search?q=sony"), nil)
	expectStatus(t, resp, raw, http.StatusOK)
	if page := decodeInto[searchEnvelope](t, raw); page.Total != 2 {
		t.Fatalf("expected 2 sony products, got %+v", page)
	}
	cachedKeys := 0
	for _, k := range s.redis.Keys() {
		if strings.HasPrefix(k, "bazar_it") {
			cachedKeys++
		}
	}
	if cachedKeys == 0 {
		t.Fatalf("expected search result in redis, keys=%v", s.redis.Keys())
	}

	resp, raw = doJSON(t, http.MethodPost, s.url("/products"), map[string]any{
		"title":    "Sony Alpha 7 IV",
		"price":    48000,
		"category": "Camera",
		"brand":    "Sony",
	})
	expectStatus(t, resp, raw, http.StatusOK)

	resp, raw = doJSON(t, http.MethodGet, s.url("/products/search?q=sony"), nil)
	expectStatus(t, resp, raw, http.StatusOK)
	if page := decodeInto[searchEnvelope](t, raw); page.Total != 3 {
		t.Fatalf("expected search to see the new product, got total=%d", page.Total)
	}

	resp, raw = doJSON(t, http.MethodGet, s.baseURL+"/health/ready", nil)
	expectStatus(t, resp, raw, http.StatusOK)
	s.redis.Close()
	resp, raw = doJSON(t, http.MethodGet, s.baseURL+"/health/ready", nil)
	expectStatus(t, resp, raw, http.StatusServiceUnavailable)

	resp, raw = doJSON(t, http.MethodGet, s.url("/products/search?q=sony"), nil)
	expectStatus(t, resp, raw, http.StatusOK)
}
