package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Env         string
	HTTPPort    string
	APIV1Str    string
	ProjectName string
	Version     string

	DatabaseURL   string
	DBLogLevel    string
	SeedOnStartup bool

	CORSOrigins        []string
	HTTPBodyLimitBytes int64

	CatalogCacheEnabled      bool
	CatalogCacheTTL          time.Duration
	CatalogCacheRedisEnabled bool
	CatalogCacheRedisPrefix  string
	RedisAddr                string
	RedisPassword            string
	RedisDB                  int

	ReadinessProbeTimeout        time.Duration
	ShutdownTimeout              time.Duration
	ShutdownHTTPDrainTimeout     time.Duration
	ShutdownObservabilityTimeout time.Duration

	LogLevel  string
	LogFormat string

	OTELServiceName           string
	OTELEnvironment           string
	OTELExporterOTLPEndpoint  string
	OTELExporterOTLPInsecure  bool
	OTELMetricsExportInterval time.Duration
	OTELTraceSamplingRatio    float64
	OTELMetricsEnabled        bool
	OTELTracingEnabled        bool
	OTELLogsEnabled           bool
}

// Load reads ENV_FILE (default .env) when present, then the process
// environment. Variables already set in the environment win.
func Load() (*Config, error) {
	if err := loadEnvFile(getEnv("ENV_FILE", ".env")); err != nil {
		return nil, err
	}

	env := getEnv("APP_ENV", "development")
	cfg := &Config{
		Env:         env,
		HTTPPort:    getEnv("HTTP_PORT", "8000"),
		APIV1Str:    getEnv("API_V1_STR", "/api/v1"),
		ProjectName: getEnv("PROJECT_NAME", "Bazar Universal API"),
		Version:     getEnv("VERSION", "1.0.0"),

		DatabaseURL:   getEnv("DATABASE_URL", "sqlite:///./bazar_universal.db"),
		DBLogLevel:    strings.ToLower(getEnv("DB_LOG_LEVEL", "warn")),
		SeedOnStartup: getEnvBool("SEED_ON_STARTUP", false),

		CORSOrigins:        splitCSV(getEnv("CORS_ORIGINS", "http://localhost:3000,http://localhost:5173,http://localhost:5174")),
		HTTPBodyLimitBytes: getEnvInt64("HTTP_BODY_LIMIT_BYTES", 1<<20),

		CatalogCacheEnabled:      getEnvBool("CATALOG_CACHE_ENABLED", false),
		CatalogCacheRedisEnabled: getEnvBool("CATALOG_CACHE_REDIS_ENABLED", false),
		CatalogCacheRedisPrefix:  getEnv("CATALOG_CACHE_REDIS_PREFIX", "bazar_catalog_cache"),
		RedisAddr:                getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:            os.Getenv("REDIS_PASSWORD"),
		RedisDB:                  getEnvInt("REDIS_DB", 0),

		LogLevel:  strings.ToLower(getEnv("LOG_LEVEL", "info")),
		LogFormat: strings.ToLower(getEnv("LOG_FORMAT", "json")),

		OTELServiceName:          getEnv("OTEL_SERVICE_NAME", "bazar-universal-api"),
		OTELEnvironment:          getEnv("OTEL_ENVIRONMENT", env),
		OTELExporterOTLPEndpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
		OTELExporterOTLPInsecure: getEnvBool("OTEL_EXPORTER_OTLP_INSECURE", true),
		OTELTraceSamplingRatio:   getEnvFloat("OTEL_TRACE_SAMPLING_RATIO", 1.0),
		OTELMetricsEnabled:       getEnvBool("OTEL_METRICS_ENABLED", false),
		OTELTracingEnabled:       getEnvBool("OTEL_TRACING_ENABLED", false),
		OTELLogsEnabled:          getEnvBool("OTEL_LOGS_ENABLED", false),
	}

	durations := []struct {
		key string
		def string
		dst *time.Duration
	}{
		{"CATALOG_CACHE_TTL", "30s", &cfg.CatalogCacheTTL},
		{"READINESS_PROBE_TIMEOUT", "1s", &cfg.ReadinessProbeTimeout},
		{"SHUTDOWN_TIMEOUT", "20s", &cfg.ShutdownTimeout},
		{"SHUTDOWN_HTTP_DRAIN_TIMEOUT", "10s", &cfg.ShutdownHTTPDrainTimeout},
		{"SHUTDOWN_OBSERVABILITY_TIMEOUT", "8s", &cfg.ShutdownObservabilityTimeout},
		{"OTEL_METRICS_EXPORT_INTERVAL", "10s", &cfg.OTELMetricsExportInterval},
	}
	for _, d := range durations {
		v, err := time.ParseDuration(getEnv(d.key, d.def))
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", d.key, err)
		}
		*d.dst = v
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	var errs []string
	if c.DatabaseURL == "" {
		errs = append(errs, "DATABASE_URL is required")
	}
	if c.HTTPPort == "" {
		errs = append(errs, "HTTP_PORT is required")
	}
	if !strings.HasPrefix(c.APIV1Str, "/") || strings.HasSuffix(c.APIV1Str, "/") {
		errs = append(errs, "API_V1_STR must start with / and must not end with /")
	}
	if c.HTTPBodyLimitBytes <= 0 {
		errs = append(errs, "HTTP_BODY_LIMIT_BYTES must be > 0")
	}
	if c.CatalogCacheEnabled && c.CatalogCacheTTL <= 0 {
		errs = append(errs, "CATALOG_CACHE_TTL must be > 0 when CATALOG_CACHE_ENABLED=true")
	}
	if c.CatalogCacheRedisEnabled && !c.CatalogCacheEnabled {
		errs = append(errs, "CATALOG_CACHE_REDIS_ENABLED requires CATALOG_CACHE_ENABLED=true")
	}
	if c.CatalogCacheRedisEnabled && c.RedisAddr == "" {
		errs = append(errs, "REDIS_ADDR is required when CATALOG_CACHE_REDIS_ENABLED=true")
	}
	if c.RedisDB < 0 {
		errs = append(errs, "REDIS_DB must be >= 0")
	}
	if c.ReadinessProbeTimeout <= 0 {
		errs = append(errs, "READINESS_PROBE_TIMEOUT must be > 0")
	}
	if c.ShutdownTimeout <= 0 {
		errs = append(errs, "SHUTDOWN_TIMEOUT must be > 0")
	}
	if c.ShutdownHTTPDrainTimeout <= 0 || c.ShutdownHTTPDrainTimeout > c.ShutdownTimeout {
		errs = append(errs, "SHUTDOWN_HTTP_DRAIN_TIMEOUT must be > 0 and <= SHUTDOWN_TIMEOUT")
	}
	if c.ShutdownObservabilityTimeout <= 0 || c.ShutdownObservabilityTimeout > c.ShutdownTimeout {
		errs = append(errs, "SHUTDOWN_OBSERVABILITY_TIMEOUT must be > 0 and <= SHUTDOWN_TIMEOUT")
	}
	if !isValidLogLevel(c.LogLevel) {
		errs = append(errs, "LOG_LEVEL must be one of debug, info, warn, error")
	}
	if c.LogFormat != "json" && c.LogFormat != "text" {
		errs = append(errs, "LOG_FORMAT must be json or text")
	}
	if !isValidDBLogLevel(c.DBLogLevel) {
		errs = append(errs, "DB_LOG_LEVEL must be one of silent, error, warn, info")
	}
	if (c.OTELMetricsEnabled || c.OTELTracingEnabled || c.OTELLogsEnabled) && c.OTELExporterOTLPEndpoint == "" {
		errs = append(errs, "OTEL_EXPORTER_OTLP_ENDPOINT is required when OTel is enabled")
	}
	if c.OTELTraceSamplingRatio < 0 || c.OTELTraceSamplingRatio > 1 {
		errs = append(errs, "OTEL_TRACE_SAMPLING_RATIO must be between 0 and 1")
	}
	if c.OTELMetricsExportInterval <= 0 {
		errs = append(errs, "OTEL_METRICS_EXPORT_INTERVAL must be > 0")
	}
	if isProdLikeEnv(c.Env) {
		for _, origin := range c.CORSOrigins {
			if origin == "*" {
				errs = append(errs, "CORS_ORIGINS must not contain * in production")
				break
			}
		}
	}
	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

func loadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load env file %s: %w", path, err)
	}
	return nil
}

func isProdLikeEnv(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "production", "prod", "staging":
		return true
	default:
		return false
	}
}

func isValidLogLevel(v string) bool {
	switch strings.ToLower(v) {
	case "debug", "info", "warn", "error":
		return true
	default:
		return false
	}
}

func isValidDBLogLevel(v string) bool {
	switch strings.ToLower(v) {
	case "silent", "error", "warn", "info":
		return true
	default:
		return false
	}
}

func getEnv(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func getEnvBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func getEnvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func getEnvInt64(key string, def int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return def
	}
	return n
}

func getEnvFloat(key string, def float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return f
}

func splitCSV(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		trim := strings.TrimSpace(p)
		if trim != "" {
			out = append(out, trim)
		}
	}
	return out
}
