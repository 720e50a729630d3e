package observability

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/sandeepkv93/bazar-universal-api/internal/config"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/exemplar"
)

const meterName = "bazar-universal-api"

type AppMetrics struct {
	repositoryOpsCounter     metric.Int64Counter
	productOperationCounter  metric.Int64Counter
	productOperationDuration metric.Float64Histogram
	saleOperationCounter     metric.Int64Counter
	saleOperationDuration    metric.Float64Histogram
	saleAmount               metric.Float64Histogram
	catalogCacheCounter      metric.Int64Counter
	catalogCacheEntryAge     metric.Float64Histogram
	healthCheckResultCounter metric.Int64Counter
	healthCheckDuration      metric.Float64Histogram
	databaseStartupCounter   metric.Int64Counter
	databaseStartupDuration  metric.Float64Histogram
	seedRecordsCreated       metric.Float64Histogram
	httpMiddlewareValidation metric.Int64Counter
	toolCommandRuns          metric.Int64Counter
	toolCommandDuration      metric.Float64Histogram
	loadgenRequestsCounter   metric.Int64Counter
}

var (
	metricsMu  sync.RWMutex
	appMetrics *AppMetrics
)

func InitMetrics(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*sdkmetric.MeterProvider, error) {
	if !cfg.OTELMetricsEnabled {
		mp := sdkmetric.NewMeterProvider()
		otel.SetMeterProvider(mp)
		logger.Info("otel metrics disabled")
		return mp, nil
	}

	opts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithEndpoint(cfg.OTELExporterOTLPEndpoint)}
	if cfg.OTELExporterOTLPInsecure {
		opts = append(opts, otlpmetricgrpc.WithInsecure())
	}
	exporter, err := otlpmetricgrpc.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create otlp metric exporter: %w", err)
	}

	res, err := serviceResource(ctx, cfg, "metric")
	if err != nil {
		return nil, err
	}

	latencyBuckets := sdkmetric.Stream{
		Aggregation: sdkmetric.AggregationExplicitBucketHistogram{
			Boundaries: []float64{0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		},
	}
	reader := sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(cfg.OTELMetricsExportInterval))
	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(reader),
		sdkmetric.WithExemplarFilter(exemplar.TraceBasedFilter),
		sdkmetric.WithView(
			sdkmetric.NewView(sdkmetric.Instrument{Name: "product.operation.duration"}, latencyBuckets),
			sdkmetric.NewView(sdkmetric.Instrument{Name: "sale.operation.duration"}, latencyBuckets),
		),
	)
	otel.SetMeterProvider(mp)

	m, err := buildAppMetrics(mp.Meter(meterName))
	if err != nil {
		return nil, err
	}
	metricsMu.Lock()
	appMetrics = m
	metricsMu.Unlock()

	logger.Info("otel metrics initialized", "endpoint", cfg.OTELExporterOTLPEndpoint)
	return mp, nil
}

func buildAppMetrics(meter metric.Meter) (*AppMetrics, error) {
	var (
		m   AppMetrics
		err error
	)
	counter := func(dst *metric.Int64Counter, name, desc string) {
		if err != nil {
			return
		}
		*dst, err = meter.Int64Counter(name, metric.WithDescription(desc))
	}
	histogram := func(dst *metric.Float64Histogram, name, unit, desc string) {
		if err != nil {
			return
		}
		opts := []metric.Float64HistogramOption{metric.WithDescription(desc)}
		if unit != "" {
			opts = append(opts, metric.WithUnit(unit))
		}
		*dst, err = meter.Float64Histogram(name, opts...)
	}

	counter(&m.repositoryOpsCounter, "repository.operations", "Repository operations by entity and outcome")
	counter(&m.productOperationCounter, "product.operation.events", "Product service operations by outcome")
	histogram(&m.productOperationDuration, "product.operation.duration", "s", "Duration of product service operations in seconds")
	counter(&m.saleOperationCounter, "sale.operation.events", "Sale service operations by outcome")
	histogram(&m.saleOperationDuration, "sale.operation.duration", "s", "Duration of sale service operations in seconds")
	histogram(&m.saleAmount, "sale.amount", "", "Total amount of recorded sales")
	counter(&m.catalogCacheCounter, "catalog.cache.events", "Catalog read cache events")
	histogram(&m.catalogCacheEntryAge, "catalog.cache.entry_age", "s", "Age of catalog cache entries served on hit")
	counter(&m.healthCheckResultCounter, "health.check.results", "Readiness dependency check results")
	histogram(&m.healthCheckDuration, "health.check.duration", "s", "Duration of health dependency checks in seconds")
	counter(&m.databaseStartupCounter, "database.startup.events", "Database startup phase outcomes")
	histogram(&m.databaseStartupDuration, "database.startup.duration", "s", "Duration of database startup phases in seconds")
	histogram(&m.seedRecordsCreated, "seed.records.created", "", "Rows created by catalog seeding")
	counter(&m.httpMiddlewareValidation, "http.middleware.validation.events", "HTTP middleware validation outcomes")
	counter(&m.toolCommandRuns, "tool.command.runs", "CLI tool command runs")
	histogram(&m.toolCommandDuration, "tool.command.duration", "s", "Duration of CLI tool commands in seconds")
	counter(&m.loadgenRequestsCounter, "loadgen.requests", "Requests issued by the load generator")
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func currentMetrics() *AppMetrics {
	metricsMu.RLock()
	m := appMetrics
	metricsMu.RUnlock()
	return m
}

func RecordRepositoryOperation(ctx context.Context, entity, operation, outcome string) {
	m := currentMetrics()
	if m == nil {
		return
	}
	m.repositoryOpsCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("entity", entity),
		attribute.String("operation", operation),
		attribute.String("outcome", outcome),
	))
}

func RecordProductOperation(ctx context.Context, operation, outcome string, duration time.Duration) {
	m := currentMetrics()
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("operation", operation),
		attribute.String("outcome", outcome),
	)
	m.productOperationCounter.Add(ctx, 1, attrs)
	m.productOperationDuration.Record(ctx, duration.Seconds(), attrs)
}

func RecordSaleOperation(ctx context.Context, operation, outcome string, duration time.Duration) {
	m := currentMetrics()
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("operation", operation),
		attribute.String("outcome", outcome),
	)
	m.saleOperationCounter.Add(ctx, 1, attrs)
	m.saleOperationDuration.Record(ctx, duration.Seconds(), attrs)
}

func RecordSaleAmount(ctx context.Context, status string, total float64) {
	m := currentMetrics()
	if m == nil {
		return
	}
	m.saleAmount.Record(ctx, total, metric.WithAttributes(attribute.String("status", status)))
}

func RecordCatalogCacheEvent(ctx context.Context, namespace, outcome string) {
	m := currentMetrics()
	if m == nil {
		return
	}
	m.catalogCacheCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("namespace", namespace),
		attribute.String("outcome", outcome),
	))
}

func RecordCatalogCacheEntryAge(ctx context.Context, namespace string, age time.Duration) {
	m := currentMetrics()
	if m == nil {
		return
	}
	m.catalogCacheEntryAge.Record(ctx, age.Seconds(), metric.WithAttributes(attribute.String("namespace", namespace)))
}

func RecordHealthCheckResult(ctx context.Context, check, outcome string) {
	m := currentMetrics()
	if m == nil {
		return
	}
	m.healthCheckResultCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("check", check),
		attribute.String("outcome", outcome),
	))
}

func RecordHealthCheckDuration(ctx context.Context, check string, duration time.Duration) {
	m := currentMetrics()
	if m == nil {
		return
	}
	m.healthCheckDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attribute.String("check", check)))
}

func RecordDatabaseStartupEvent(ctx context.Context, phase, outcome string) {
	m := currentMetrics()
	if m == nil {
		return
	}
	m.databaseStartupCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("phase", phase),
		attribute.String("outcome", outcome),
	))
}

func RecordDatabaseStartupDuration(ctx context.Context, phase string, duration time.Duration) {
	m := currentMetrics()
	if m == nil {
		return
	}
	m.databaseStartupDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attribute.String("phase", phase)))
}

func RecordSeedRecordsCreated(ctx context.Context, entity string, count int) {
	m := currentMetrics()
	if m == nil {
		return
	}
	m.seedRecordsCreated.Record(ctx, float64(count), metric.WithAttributes(attribute.String("entity", entity)))
}

func RecordMiddlewareValidationEvent(ctx context.Context, middleware, outcome string) {
	m := currentMetrics()
	if m == nil {
		return
	}
	m.httpMiddlewareValidation.Add(ctx, 1, metric.WithAttributes(
		attribute.String("middleware", middleware),
		attribute.String("outcome", outcome),
	))
}

func RecordToolCommandRun(ctx context.Context, tool, command, outcome string) {
	m := currentMetrics()
	if m == nil {
		return
	}
	m.toolCommandRuns.Add(ctx, 1, metric.WithAttributes(
		attribute.String("tool", tool),
		attribute.String("command", command),
		attribute.String("outcome", outcome),
	))
}

func RecordToolCommandDuration(ctx context.Context, tool, command, outcome string, duration time.Duration) {
	m := currentMetrics()
	if m == nil {
		return
	}
	m.toolCommandDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String("tool", tool),
		attribute.String("command", command),
		attribute.String("outcome", outcome),
	))
}

func RecordLoadgenRequest(ctx context.Context, statusClass, profile string) {
	m := currentMetrics()
	if m == nil {
		return
	}
	m.loadgenRequestsCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("status_class", statusClass),
		attribute.String("profile", profile),
	))
}
