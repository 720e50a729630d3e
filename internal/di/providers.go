package di

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/wire"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/sandeepkv93/bazar-universal-api/internal/app"
	"github.com/sandeepkv93/bazar-universal-api/internal/clock"
	"github.com/sandeepkv93/bazar-universal-api/internal/config"
	"github.com/sandeepkv93/bazar-universal-api/internal/database"
	"github.com/sandeepkv93/bazar-universal-api/internal/health"
	"github.com/sandeepkv93/bazar-universal-api/internal/http/handler"
	"github.com/sandeepkv93/bazar-universal-api/internal/http/router"
	"github.com/sandeepkv93/bazar-universal-api/internal/observability"
	"github.com/sandeepkv93/bazar-universal-api/internal/repository"
	"github.com/sandeepkv93/bazar-universal-api/internal/service"
)

var ConfigSet = wire.NewSet(config.Load)

var ObservabilitySet = wire.NewSet(
	provideObservabilityRuntime,
	provideAppLogger,
)

var RuntimeInfraSet = wire.NewSet(
	provideRuntimeDB,
	provideRedisClient,
	provideReadinessProbeRunner,
)

var RepositorySet = wire.NewSet(
	provideClock,
	repository.NewProductRepository,
	repository.NewSaleRepository,
)

var CacheSet = wire.NewSet(
	provideCatalogCacheStore,
	provideCatalogCache,
)

var ServiceSet = wire.NewSet(
	service.NewProductService,
	service.NewSaleService,
	wire.Bind(new(service.ProductService), new(*service.ProductServiceImpl)),
	wire.Bind(new(service.SaleService), new(*service.SaleServiceImpl)),
)

var HTTPSet = wire.NewSet(
	handler.NewProductHandler,
	handler.NewSaleHandler,
	provideRouterDependencies,
	router.NewRouter,
	provideHTTPServer,
)

var AppSet = wire.NewSet(provideApp)

func provideObservabilityRuntime(cfg *config.Config) (*observability.Runtime, error) {
	bootstrapLogger := observability.NewBootstrapLogger(cfg)
	return observability.InitRuntime(context.Background(), cfg, bootstrapLogger)
}

func provideAppLogger(cfg *config.Config, runtime *observability.Runtime) *slog.Logger {
	return observability.InitLogger(cfg, runtime.LoggerProvider)
}

func provideClock() clock.Clock {
	return clock.NewRealClock()
}

// provideRuntimeDB opens and migrates the database. The sample catalog is
// loaded only when SEED_ON_STARTUP is set.
func provideRuntimeDB(cfg *config.Config, logger *slog.Logger, clk clock.Clock) (*gorm.DB, error) {
	db, err := database.Open(cfg)
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(db); err != nil {
		return nil, err
	}
	if cfg.SeedOnStartup {
		report, err := database.SeedCatalog(context.Background(), db, clk)
		if err != nil {
			return nil, err
		}
		logger.Info("catalog seed finished",
			"noop", report.Noop,
			"created_products", report.CreatedProducts,
			"created_sales", report.CreatedSales,
		)
	}
	return db, nil
}

func provideRedisClient(cfg *config.Config, logger *slog.Logger) redis.UniversalClient {
	if !cfg.CatalogCacheEnabled || !cfg.CatalogCacheRedisEnabled {
		return nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	observability.InstrumentRedisClient(client, logger)
	return client
}

func provideCatalogCacheStore(cfg *config.Config, redisClient redis.UniversalClient) service.CatalogCacheStore {
	switch {
	case !cfg.CatalogCacheEnabled:
		return service.NewNoopCatalogCacheStore()
	case cfg.CatalogCacheRedisEnabled && redisClient != nil:
		return service.NewRedisCatalogCacheStore(redisClient, cfg.CatalogCacheRedisPrefix)
	default:
		return service.NewInMemoryCatalogCacheStore()
	}
}

func provideCatalogCache(cfg *config.Config, store service.CatalogCacheStore) *service.CatalogCache {
	if !cfg.CatalogCacheEnabled {
		return nil
	}
	return service.NewCatalogCache(store, cfg.CatalogCacheTTL)
}

func provideRouterDependencies(
	productHandler *handler.ProductHandler,
	saleHandler *handler.SaleHandler,
	readiness *health.ProbeRunner,
	cfg *config.Config,
) router.Dependencies {
	return router.Dependencies{
		ProductHandler: productHandler,
		SaleHandler:    saleHandler,
		CORSOrigins:    cfg.CORSOrigins,
		BodyLimitBytes: cfg.HTTPBodyLimitBytes,
		APIPrefix:      cfg.APIV1Str,
		ProjectName:    cfg.ProjectName,
		Version:        cfg.Version,
		Readiness:      readiness,
		EnableOTelHTTP: cfg.OTELMetricsEnabled || cfg.OTELTracingEnabled,
	}
}

func provideHTTPServer(cfg *config.Config, h http.Handler) *http.Server {
	return &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           h,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
	}
}

func provideReadinessProbeRunner(cfg *config.Config, db *gorm.DB, redisClient redis.UniversalClient) *health.ProbeRunner {
	return health.NewProbeRunner(cfg.ReadinessProbeTimeout, 0,
		health.NewDBChecker(db),
		health.NewSchemaChecker(db, database.CatalogTables...),
		health.NewRedisChecker(redisClient),
	)
}

func provideApp(
	cfg *config.Config,
	logger *slog.Logger,
	server *http.Server,
	runtime *observability.Runtime,
	db *gorm.DB,
	redisClient redis.UniversalClient,
	readiness *health.ProbeRunner,
) *app.App {
	return app.New(cfg, logger, server, runtime, db, redisClient, readiness)
}
