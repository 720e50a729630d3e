package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/sandeepkv93/bazar-universal-api/internal/clock"
	"github.com/sandeepkv93/bazar-universal-api/internal/domain"
)

var (
	ErrSaleNotFound        = errors.New("sale not found")
	ErrSaleProductNotFound = errors.New("sale references unknown product")
)

type SaleRepository interface {
	Create(ctx context.Context, productID uint, quantity int) (*domain.Sale, error)
	FindByID(ctx context.Context, id uint) (*domain.Sale, error)
	List(ctx context.Context, window Window) ([]domain.Sale, error)
	ListByProduct(ctx context.Context, productID uint, window Window) ([]domain.Sale, error)
	Delete(ctx context.Context, id uint) (*domain.Sale, error)
	Count(ctx context.Context) (int64, error)
	TotalItems(ctx context.Context) (int64, error)
	TotalAmount(ctx context.Context) (float64, error)
}

type GormSaleRepository struct {
	db    *gorm.DB
	clock clock.Clock
}

func NewSaleRepository(db *gorm.DB, clk clock.Clock) SaleRepository {
	if clk == nil {
		clk = clock.NewRealClock()
	}
	return &GormSaleRepository{db: db, clock: clk}
}

// Create looks the product up and snapshots its title, first image and
// price into the new sale inside one transaction.
func (r *GormSaleRepository) Create(ctx context.Context, productID uint, quantity int) (*domain.Sale, error) {
	var rec SaleRecord
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var product ProductRecord
		if err := tx.First(&product, productID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrSaleProductNotFound
			}
			return err
		}
		sale, err := domain.NewSale(product.toDomain(), quantity, r.clock.Now().UTC().Truncate(timeResolution))
		if err != nil {
			return err
		}
		rec = saleRecordFromDomain(sale)
		return tx.Create(&rec).Error
	})
	recordOperation(ctx, "sale", "create", err, ErrSaleProductNotFound)
	if err != nil {
		return nil, err
	}
	sale := rec.toDomain()
	return &sale, nil
}

func (r *GormSaleRepository) FindByID(ctx context.Context, id uint) (*domain.Sale, error) {
	var rec SaleRecord
	err := r.db.WithContext(ctx).First(&rec, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		err = ErrSaleNotFound
	}
	recordOperation(ctx, "sale", "find_by_id", err, ErrSaleNotFound)
	if err != nil {
		return nil, err
	}
	sale := rec.toDomain()
	return &sale, nil
}

func (r *GormSaleRepository) List(ctx context.Context, window Window) ([]domain.Sale, error) {
	w := normalizeWindow(window)
	var records []SaleRecord
	err := r.db.WithContext(ctx).
		Order("date desc").Order("id desc").
		Offset(w.Skip).Limit(w.Limit).
		Find(&records).Error
	recordOperation(ctx, "sale", "list", err)
	if err != nil {
		return nil, err
	}
	return salesToDomain(records), nil
}

func (r *GormSaleRepository) ListByProduct(ctx context.Context, productID uint, window Window) ([]domain.Sale, error) {
	w := normalizeWindow(window)
	var records []SaleRecord
	err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("date desc").Order("id desc").
		Offset(w.Skip).Limit(w.Limit).
		Find(&records).Error
	recordOperation(ctx, "sale", "list_by_product", err)
	if err != nil {
		return nil, err
	}
	return salesToDomain(records), nil
}

func (r *GormSaleRepository) Delete(ctx context.Context, id uint) (*domain.Sale, error) {
	var prior SaleRecord
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&prior, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrSaleNotFound
			}
			return err
		}
		res := tx.Delete(&SaleRecord{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrSaleNotFound
		}
		return nil
	})
	recordOperation(ctx, "sale", "delete", err, ErrSaleNotFound)
	if err != nil {
		return nil, err
	}
	sale := prior.toDomain()
	return &sale, nil
}

func (r *GormSaleRepository) Count(ctx context.Context) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&SaleRecord{}).Count(&total).Error
	recordOperation(ctx, "sale", "count", err)
	return total, err
}

func (r *GormSaleRepository) TotalItems(ctx context.Context) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&SaleRecord{}).Select("COALESCE(SUM(quantity), 0)").Scan(&total).Error
	recordOperation(ctx, "sale", "total_items", err)
	return total, err
}

func (r *GormSaleRepository) TotalAmount(ctx context.Context) (float64, error) {
	var total float64
	err := r.db.WithContext(ctx).Model(&SaleRecord{}).Select("COALESCE(SUM(total), 0)").Scan(&total).Error
	recordOperation(ctx, "sale", "total_amount", err)
	return total, err
}
