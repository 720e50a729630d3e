package repository

import (
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/sandeepkv93/bazar-universal-api/internal/clock"
	"github.com/sandeepkv93/bazar-universal-api/internal/domain"
)

func newRepositoryDBForTest(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	if err := db.AutoMigrate(Models()...); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func newTestClock() *clock.MockClock {
	return clock.NewMockClock(time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC))
}

func strPtr(v string) *string { return &v }

func seedProduct(t *testing.T, repo ProductRepository, p domain.Product) domain.Product {
	t.Helper()
	if err := repo.Create(t.Context(), &p); err != nil {
		t.Fatalf("create product %q: %v", p.Title, err)
	}
	return p
}
