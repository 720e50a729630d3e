package repository

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/sandeepkv93/bazar-universal-api/internal/clock"
	"github.com/sandeepkv93/bazar-universal-api/internal/domain"
)

var ErrProductNotFound = errors.New("product not found")

type ProductRepository interface {
	Create(ctx context.Context, product *domain.Product) error
	FindByID(ctx context.Context, id uint) (*domain.Product, error)
	List(ctx context.Context, window Window) ([]domain.Product, error)
	ListByCategory(ctx context.Context, category string, window Window) ([]domain.Product, error)
	Search(ctx context.Context, query string, window Window) ([]domain.Product, error)
	CountSearch(ctx context.Context, query string) (int64, error)
	Count(ctx context.Context) (int64, error)
	Update(ctx context.Context, id uint, patch domain.ProductPatch) (*domain.Product, error)
	Delete(ctx context.Context, id uint) (*domain.Product, error)
}

type GormProductRepository struct {
	db    *gorm.DB
	clock clock.Clock
}

func NewProductRepository(db *gorm.DB, clk clock.Clock) ProductRepository {
	if clk == nil {
		clk = clock.NewRealClock()
	}
	return &GormProductRepository{db: db, clock: clk}
}

func (r *GormProductRepository) Create(ctx context.Context, product *domain.Product) error {
	now := r.clock.Now().UTC().Truncate(timeResolution)
	product.CreatedAt = now
	product.UpdatedAt = now
	if product.Images == nil {
		product.Images = []string{}
	}
	if product.Features == nil {
		product.Features = []string{}
	}
	rec := productRecordFromDomain(product)
	rec.ID = 0
	err := r.db.WithContext(ctx).Create(&rec).Error
	recordOperation(ctx, "product", "create", err)
	if err != nil {
		return err
	}
	product.ID = rec.ID
	return nil
}

func (r *GormProductRepository) FindByID(ctx context.Context, id uint) (*domain.Product, error) {
	var rec ProductRecord
	err := r.db.WithContext(ctx).First(&rec, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		err = ErrProductNotFound
	}
	recordOperation(ctx, "product", "find_by_id", err, ErrProductNotFound)
	if err != nil {
		return nil, err
	}
	product := rec.toDomain()
	return &product, nil
}

func (r *GormProductRepository) List(ctx context.Context, window Window) ([]domain.Product, error) {
	w := normalizeWindow(window)
	var records []ProductRecord
	err := r.db.WithContext(ctx).Order("id asc").Offset(w.Skip).Limit(w.Limit).Find(&records).Error
	recordOperation(ctx, "product", "list", err)
	if err != nil {
		return nil, err
	}
	return productsToDomain(records), nil
}

func (r *GormProductRepository) ListByCategory(ctx context.Context, category string, window Window) ([]domain.Product, error) {
	w := normalizeWindow(window)
	var records []ProductRecord
	err := r.db.WithContext(ctx).
		Where("category = ?", category).
		Order("id asc").Offset(w.Skip).Limit(w.Limit).
		Find(&records).Error
	recordOperation(ctx, "product", "list_by_category", err)
	if err != nil {
		return nil, err
	}
	return productsToDomain(records), nil
}

func (r *GormProductRepository) Search(ctx context.Context, query string, window Window) ([]domain.Product, error) {
	w := normalizeWindow(window)
	var records []ProductRecord
	err := r.searchScope(ctx, query).
		Order("id asc").Offset(w.Skip).Limit(w.Limit).
		Find(&records).Error
	recordOperation(ctx, "product", "search", err)
	if err != nil {
		return nil, err
	}
	return productsToDomain(records), nil
}

func (r *GormProductRepository) CountSearch(ctx context.Context, query string) (int64, error) {
	var total int64
	err := r.searchScope(ctx, query).Count(&total).Error
	recordOperation(ctx, "product", "count_search", err)
	return total, err
}

func (r *GormProductRepository) Count(ctx context.Context) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&ProductRecord{}).Count(&total).Error
	recordOperation(ctx, "product", "count", err)
	return total, err
}

func (r *GormProductRepository) Update(ctx context.Context, id uint, patch domain.ProductPatch) (*domain.Product, error) {
	var updated ProductRecord
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var current ProductRecord
		if err := tx.First(&current, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrProductNotFound
			}
			return err
		}
		updates, err := patchToUpdates(patch)
		if err != nil {
			return err
		}
		updates["updated_at"] = nextUpdatedAt(current.UpdatedAt, r.clock.Now())
		res := tx.Model(&ProductRecord{}).Where("id = ?", id).Updates(updates)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrProductNotFound
		}
		return tx.First(&updated, id).Error
	})
	recordOperation(ctx, "product", "update", err, ErrProductNotFound)
	if err != nil {
		return nil, err
	}
	product := updated.toDomain()
	return &product, nil
}

func (r *GormProductRepository) Delete(ctx context.Context, id uint) (*domain.Product, error) {
	var prior ProductRecord
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&prior, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrProductNotFound
			}
			return err
		}
		res := tx.Delete(&ProductRecord{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrProductNotFound
		}
		return nil
	})
	recordOperation(ctx, "product", "delete", err, ErrProductNotFound)
	if err != nil {
		return nil, err
	}
	product := prior.toDomain()
	return &product, nil
}

func (r *GormProductRepository) searchScope(ctx context.Context, query string) *gorm.DB {
	pattern := "%" + escapeLike(strings.ToLower(query)) + "%"
	return r.db.WithContext(ctx).Model(&ProductRecord{}).Where(
		`LOWER(title) LIKE ? ESCAPE '\' OR LOWER(description) LIKE ? ESCAPE '\' OR LOWER(category) LIKE ? ESCAPE '\' OR LOWER(brand) LIKE ? ESCAPE '\'`,
		pattern, pattern, pattern, pattern,
	)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

func patchToUpdates(patch domain.ProductPatch) (map[string]any, error) {
	updates := map[string]any{}
	if patch.Title.Set {
		updates["title"] = patch.Title.Value
	}
	if patch.Description.Set {
		updates["description"] = nullableString(patch.Description)
	}
	if patch.Price.Set {
		updates["price"] = patch.Price.Value
	}
	if patch.Category.Set {
		updates["category"] = patch.Category.Value
	}
	if patch.Brand.Set {
		updates["brand"] = nullableString(patch.Brand)
	}
	if patch.Rating.Set {
		updates["rating"] = patch.Rating.Value
	}
	if patch.Stock.Set {
		updates["stock"] = patch.Stock.Value
	}
	if patch.Images.Set {
		raw, err := json.Marshal(nonNilList(patch.Images.Value))
		if err != nil {
			return nil, err
		}
		updates["images"] = string(raw)
	}
	if patch.Features.Set {
		raw, err := json.Marshal(nonNilList(patch.Features.Value))
		if err != nil {
			return nil, err
		}
		updates["features"] = string(raw)
	}
	return updates, nil
}

func nullableString(o domain.Optional[string]) any {
	if o.Null {
		return nil
	}
	return o.Value
}

func nonNilList(items []string) []string {
	if items == nil {
		return []string{}
	}
	return items
}
