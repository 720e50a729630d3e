package di

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/sandeepkv93/bazar-universal-api/internal/config"
	"github.com/sandeepkv93/bazar-universal-api/internal/http/handler"
	"github.com/sandeepkv93/bazar-universal-api/internal/http/router"
	"github.com/sandeepkv93/bazar-universal-api/internal/repository"
	"github.com/sandeepkv93/bazar-universal-api/internal/service"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestProvideHTTPServer(t *testing.T) {
	cfg := &config.Config{HTTPPort: "9999"}
	srv := provideHTTPServer(cfg, nil)
	if srv.Addr != ":9999" {
		t.Fatalf("unexpected addr: %s", srv.Addr)
	}
	if srv.ReadTimeout.Seconds() != 10 {
		t.Fatalf("unexpected read timeout: %v", srv.ReadTimeout)
	}
}

func TestProvideRouterDependencies(t *testing.T) {
	cfg := &config.Config{
		CORSOrigins:        []string{"http://localhost:3000"},
		HTTPBodyLimitBytes: 2048,
		APIV1Str:           "/api/v1",
		ProjectName:        "Bazar Universal API",
		OTELTracingEnabled: true,
	}
	dep := provideRouterDependencies(nil, nil, nil, cfg)
	if !dep.EnableOTelHTTP {
		t.Fatal("expected otel http enabled")
	}
	if dep.BodyLimitBytes != 2048 || dep.APIPrefix != "/api/v1" || dep.ProjectName != "Bazar Universal API" {
		t.Fatalf("unexpected dependencies: %+v", dep)
	}
	if len(dep.CORSOrigins) != 1 || dep.CORSOrigins[0] != "http://localhost:3000" {
		t.Fatalf("unexpected cors origins: %+v", dep.CORSOrigins)
	}
}

func TestProvideRedisClientOnlyWhenRedisCacheEnabled(t *testing.T) {
	if c := provideRedisClient(&config.Config{}, discardLogger()); c != nil {
		t.Fatal("expected nil client with cache disabled")
	}
	if c := provideRedisClient(&config.Config{CatalogCacheRedisEnabled: true}, discardLogger()); c != nil {
		t.Fatal("expected nil client when the cache itself is disabled")
	}

	mr := miniredis.RunT(t)
	c := provideRedisClient(&config.Config{
		CatalogCacheEnabled:      true,
		CatalogCacheRedisEnabled: true,
		RedisAddr:                mr.Addr(),
	}, discardLogger())
	if c == nil {
		t.Fatal("expected redis client")
	}
	_ = c.Close()
}

func TestProvideCatalogCacheStoreSelection(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	cases := []struct {
		name string
		cfg  *config.Config
		rc   redis.UniversalClient
		want string
	}{
		{name: "disabled", cfg: &config.Config{}, want: "*service.NoopCatalogCacheStore"},
		{name: "memory", cfg: &config.Config{CatalogCacheEnabled: true}, want: "*service.InMemoryCatalogCacheStore"},
		{name: "redis", cfg: &config.Config{CatalogCacheEnabled: true, CatalogCacheRedisEnabled: true, CatalogCacheRedisPrefix: "t"}, rc: client, want: "*service.RedisCatalogCacheStore"},
		{name: "redis flag without client", cfg: &config.Config{CatalogCacheEnabled: true, CatalogCacheRedisEnabled: true}, want: "*service.InMemoryCatalogCacheStore"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			store := provideCatalogCacheStore(tc.cfg, tc.rc)
			if got := typeName(store); got != tc.want {
				t.Fatalf("expected %s, got %s", tc.want, got)
			}
		})
	}
}

func TestProvideCatalogCache(t *testing.T) {
	if c := provideCatalogCache(&config.Config{}, service.NewNoopCatalogCacheStore()); c != nil {
		t.Fatal("expected nil cache when disabled")
	}
	c := provideCatalogCache(&config.Config{CatalogCacheEnabled: true, CatalogCacheTTL: time.Minute}, service.NewInMemoryCatalogCacheStore())
	if c == nil {
		t.Fatal("expected cache when enabled")
	}
}

func TestProvideReadinessProbeRunnerWithoutRedis(t *testing.T) {
	cfg := &config.Config{DatabaseURL: "sqlite:///:memory:", DBLogLevel: "silent", ReadinessProbeTimeout: time.Second}
	db, err := provideRuntimeDB(cfg, discardLogger(), provideClock())
	if err != nil {
		t.Fatalf("runtime db: %v", err)
	}
	sqlDB, _ := db.DB()
	t.Cleanup(func() { _ = sqlDB.Close() })

	runner := provideReadinessProbeRunner(cfg, db, nil)
	ready, results := runner.Ready(t.Context())
	if !ready {
		t.Fatalf("expected ready, got %+v", results)
	}
	if len(results) != 2 {
		t.Fatalf("expected db and schema checks only, got %+v", results)
	}
}

func TestWiredRouterServesSeededCatalog(t *testing.T) {
	cfg := &config.Config{
		DatabaseURL:           "sqlite:///:memory:",
		DBLogLevel:            "silent",
		SeedOnStartup:         true,
		APIV1Str:              "/api/v1",
		HTTPBodyLimitBytes:    1 << 20,
		CatalogCacheEnabled:   true,
		CatalogCacheTTL:       time.Minute,
		ReadinessProbeTimeout: time.Second,
	}
	clk := provideClock()
	db, err := provideRuntimeDB(cfg, discardLogger(), clk)
	if err != nil {
		t.Fatalf("runtime db: %v", err)
	}
	sqlDB, _ := db.DB()
	t.Cleanup(func() { _ = sqlDB.Close() })

	cache := provideCatalogCache(cfg, provideCatalogCacheStore(cfg, nil))
	products := service.NewProductService(repository.NewProductRepository(db, clk), cache)
	sales := service.NewSaleService(repository.NewSaleRepository(db, clk), cache)
	h := router.NewRouter(provideRouterDependencies(
		handler.NewProductHandler(products),
		handler.NewSaleHandler(sales),
		provideReadinessProbeRunner(cfg, db, nil),
		cfg,
	))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/v1/sales/stats", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rr.Code, rr.Body.String())
	}
	if !strings.Contains(rr.Body.String(), `"total_sales":3`) {
		t.Fatalf("expected seeded stats, got %s", rr.Body.String())
	}

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected ready, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func typeName(v any) string {
	switch v.(type) {
	case *service.NoopCatalogCacheStore:
		return "*service.NoopCatalogCacheStore"
	case *service.InMemoryCatalogCacheStore:
		return "*service.InMemoryCatalogCacheStore"
	case *service.RedisCatalogCacheStore:
		return "*service.RedisCatalogCacheStore"
	default:
		return "unknown"
	}
}
