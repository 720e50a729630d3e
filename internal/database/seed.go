package database

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/sandeepkv93/bazar-universal-api/internal/clock"
	"github.com/sandeepkv93/bazar-universal-api/internal/domain"
	"github.com/sandeepkv93/bazar-universal-api/internal/observability"
	"github.com/sandeepkv93/bazar-universal-api/internal/repository"
)

//go:embed seeddata/products.json
var sampleProductsJSON []byte

type sampleSale struct {
	ProductTitle string
	Quantity     int
}

var sampleSales = []sampleSale{
	{ProductTitle: "iPhone X", Quantity: 1},
	{ProductTitle: "Sony WH-1000XM4", Quantity: 2},
	{ProductTitle: "AirPods Pro", Quantity: 1},
}

type SeedReport struct {
	ExistingProducts int64 `json:"existing_products"`
	CreatedProducts  int   `json:"created_products"`
	CreatedSales     int   `json:"created_sales"`
	Noop             bool  `json:"noop"`
}

// SampleProducts decodes the bundled catalog.
func SampleProducts() ([]domain.Product, error) {
	var products []domain.Product
	if err := json.Unmarshal(sampleProductsJSON, &products); err != nil {
		return nil, fmt.Errorf("decode sample products: %w", err)
	}
	return products, nil
}

// PlanSeed reports what SeedCatalog would create without writing.
func PlanSeed(ctx context.Context, db *gorm.DB) (*SeedReport, error) {
	existing, err := repository.NewProductRepository(db, nil).Count(ctx)
	if err != nil {
		return nil, err
	}
	report := &SeedReport{ExistingProducts: existing}
	if existing > 0 {
		report.Noop = true
		return report, nil
	}
	products, err := SampleProducts()
	if err != nil {
		return nil, err
	}
	report.CreatedProducts = len(products)
	report.CreatedSales = len(sampleSales)
	return report, nil
}

// SeedCatalog loads the sample catalog and sales when the products table is
// empty. A non-empty table makes it a no-op. All rows are written in one
// transaction.
func SeedCatalog(ctx context.Context, db *gorm.DB, clk clock.Clock) (report *SeedReport, err error) {
	start := time.Now()
	defer func() {
		outcome := "success"
		if err != nil {
			outcome = "error"
		} else if report.Noop {
			outcome = "noop"
		}
		observability.RecordDatabaseStartupEvent(ctx, "seed", outcome)
		observability.RecordDatabaseStartupDuration(ctx, "seed", time.Since(start))
	}()

	products, err := SampleProducts()
	if err != nil {
		return nil, err
	}

	report = &SeedReport{}
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		productRepo := repository.NewProductRepository(tx, clk)
		saleRepo := repository.NewSaleRepository(tx, clk)

		existing, err := productRepo.Count(ctx)
		if err != nil {
			return err
		}
		report.ExistingProducts = existing
		if existing > 0 {
			report.Noop = true
			return nil
		}

		idsByTitle := make(map[string]uint, len(products))
		for i := range products {
			p := products[i]
			if err := productRepo.Create(ctx, &p); err != nil {
				return fmt.Errorf("seed product %q: %w", p.Title, err)
			}
			idsByTitle[p.Title] = p.ID
			report.CreatedProducts++
		}
		for _, s := range sampleSales {
			id, ok := idsByTitle[s.ProductTitle]
			if !ok {
				return fmt.Errorf("seed sale: sample product %q missing", s.ProductTitle)
			}
			if _, err := saleRepo.Create(ctx, id, s.Quantity); err != nil {
				return fmt.Errorf("seed sale for %q: %w", s.ProductTitle, err)
			}
			report.CreatedSales++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	observability.RecordSeedRecordsCreated(ctx, "product", report.CreatedProducts)
	observability.RecordSeedRecordsCreated(ctx, "sale", report.CreatedSales)
	return report, nil
}
