package database

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/sandeepkv93/bazar-universal-api/internal/observability"
	"github.com/sandeepkv93/bazar-universal-api/internal/repository"
)

// CatalogTables are the tables Migrate creates; readiness checks them.
var CatalogTables = []string{"products", "sales"}

func Migrate(db *gorm.DB) error {
	start := time.Now()
	err := db.AutoMigrate(repository.Models()...)
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	observability.RecordDatabaseStartupEvent(context.Background(), "migrate", outcome)
	observability.RecordDatabaseStartupDuration(context.Background(), "migrate", time.Since(start))
	return err
}

// MigrationStatus reports which catalog tables exist.
func MigrationStatus(db *gorm.DB) map[string]bool {
	migrator := db.Migrator()
	out := make(map[string]bool, len(CatalogTables))
	for _, table := range CatalogTables {
		out[table] = migrator.HasTable(table)
	}
	return out
}
