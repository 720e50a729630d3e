package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/sandeepkv93/bazar-universal-api/internal/clock"
	"github.com/sandeepkv93/bazar-universal-api/internal/config"
	"github.com/sandeepkv93/bazar-universal-api/internal/database"
	"github.com/sandeepkv93/bazar-universal-api/internal/health"
	"github.com/sandeepkv93/bazar-universal-api/internal/http/handler"
	"github.com/sandeepkv93/bazar-universal-api/internal/http/router"
	"github.com/sandeepkv93/bazar-universal-api/internal/repository"
	"github.com/sandeepkv93/bazar-universal-api/internal/service"
)

type catalogTestServerOptions struct {
	seed        bool
	redisCache  bool
	cacheStore  service.CatalogCacheStore
	databaseURL string
}

type catalogTestServer struct {
	baseURL string
	db      *gorm.DB
	redis   *miniredis.Miniredis
	clock   *clock.MockClock
}

func newCatalogTestServer(t *testing.T, opts catalogTestServerOptions) *catalogTestServer {
	t.Helper()

	dbURL := opts.databaseURL
	if dbURL == "" {
		dbURL = fmt.Sprintf("sqlite:///file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	}
	cfg := &config.Config{
		DatabaseURL:           dbURL,
		DBLogLevel:            "silent",
		APIV1Str:              "/api/v1",
		HTTPBodyLimitBytes:    1 << 20,
		CORSOrigins:           []string{"http://localhost:5173"},
		ReadinessProbeTimeout: time.Second,
	}
	db, err := database.Open(cfg)
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	clk := clock.NewMockClock(time.Date(2024, 11, 1, 10, 30, 0, 0, time.UTC))
	if opts.seed {
		if _, err := database.SeedCatalog(context.Background(), db, clk); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	ts := &catalogTestServer{db: db, clock: clk}
	var redisClient redis.UniversalClient
	store := opts.cacheStore
	if opts.redisCache {
		ts.redis = miniredis.RunT(t)
		client := redis.NewClient(&redis.Options{Addr: ts.redis.Addr()})
		t.Cleanup(func() { _ = client.Close() })
		redisClient = client
		store = service.NewRedisCatalogCacheStore(client, "bazar_it")
	}
	var cache *service.CatalogCache
	if store != nil {
		cache = service.NewCatalogCache(store, time.Minute)
	}

	products := service.NewProductService(repository.NewProductRepository(db, clk), cache)
	sales := service.NewSaleService(repository.NewSaleRepository(db, clk), cache)
	h := router.NewRouter(router.Dependencies{
		ProductHandler: handler.NewProductHandler(products),
		SaleHandler:    handler.NewSaleHandler(sales),
		CORSOrigins:    cfg.CORSOrigins,
		BodyLimitBytes: cfg.HTTPBodyLimitBytes,
		APIPrefix:      cfg.APIV1Str,
		Readiness: health.NewProbeRunner(cfg.ReadinessProbeTimeout, 0,
			health.NewDBChecker(db),
			health.NewSchemaChecker(db, database.CatalogTables...),
			health.NewRedisChecker(redisClient),
		),
	})
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	ts.baseURL = srv.URL
	return ts
}

func (s *catalogTestServer) url(path string) string {
	return s.baseURL + "/api/v1" + path
}

func doJSON(t *testing.T, method, url string, body any) (*http.Response, []byte) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		switch b := body.(type) {
		case string:
			reader = strings.NewReader(b)
		default:
			raw, err := json.Marshal(body)
			if err != nil {
				t.Fatalf("marshal body: %v", err)
			}
			reader = bytes.NewReader(raw)
		}
	}
	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp, raw
}

func decodeInto[T any](t *testing.T, raw []byte) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(raw, &out); err != nil {
		t.Fatalf("decode %s: %v", string(raw), err)
	}
	return out
}

type errorBody struct {
	Detail    string         `json:"detail"`
	Code      string         `json:"code"`
	RequestID string         `json:"request_id"`
	Details   map[string]any `json:"details"`
}

func expectStatus(t *testing.T, resp *http.Response, raw []byte, want int) {
	t.Helper()
	if resp.StatusCode != want {
		t.Fatalf("expected status %d, got %d body=%s", want, resp.StatusCode, string(raw))
	}
}

func itoa(v uint) string {
	return strconv.FormatUint(uint64(v), 10)
}
