package database

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/sandeepkv93/bazar-universal-api/internal/config"
	"github.com/sandeepkv93/bazar-universal-api/internal/observability"
)

var ErrUnsupportedDatabaseURL = errors.New("unsupported database url")

// Open selects a gorm dialector from the DATABASE_URL scheme. sqlite URLs use
// the sqlite:///<path> form; postgres:// and postgresql:// go through pgx.
func Open(cfg *config.Config) (db *gorm.DB, err error) {
	start := time.Now()
	defer func() {
		outcome := "success"
		if err != nil {
			outcome = "error"
		}
		observability.RecordDatabaseStartupEvent(context.Background(), "connect", outcome)
		observability.RecordDatabaseStartupDuration(context.Background(), "connect", time.Since(start))
	}()

	dialector, sqliteBacked, err := dialectorFor(cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	db, err = gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(gormLogLevel(cfg.DBLogLevel)),
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if sqliteBacked {
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("sqlite handle: %w", err)
		}
		// sqlite allows a single writer; ":memory:" is also per connection
		sqlDB.SetMaxOpenConns(1)
	}
	return db, nil
}

func dialectorFor(databaseURL string) (gorm.Dialector, bool, error) {
	raw := strings.TrimSpace(databaseURL)
	switch {
	case strings.HasPrefix(raw, "sqlite://"):
		path := sqlitePath(raw)
		if path == "" {
			return nil, false, fmt.Errorf("%w: empty sqlite path", ErrUnsupportedDatabaseURL)
		}
		return sqlite.Open(path), true, nil
	case strings.HasPrefix(raw, "postgres://"), strings.HasPrefix(raw, "postgresql://"):
		return postgres.Open(raw), false, nil
	default:
		scheme, _, _ := strings.Cut(raw, "://")
		return nil, false, fmt.Errorf("%w: scheme %q", ErrUnsupportedDatabaseURL, scheme)
	}
}

// sqlitePath maps sqlite:///./app.db to ./app.db, sqlite:////tmp/app.db to
// /tmp/app.db and sqlite:///:memory: to :memory:.
func sqlitePath(raw string) string {
	rest := strings.TrimPrefix(raw, "sqlite://")
	if strings.HasPrefix(rest, "/") {
		rest = rest[1:]
	}
	return rest
}

func gormLogLevel(level string) logger.LogLevel {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "silent":
		return logger.Silent
	case "error":
		return logger.Error
	case "info":
		return logger.Info
	default:
		return logger.Warn
	}
}
