package service

import (
	"context"

	"github.com/sandeepkv93/bazar-universal-api/internal/domain"
	"github.com/sandeepkv93/bazar-universal-api/internal/repository"
)

type ProductService interface {
	Create(ctx context.Context, input CreateProductInput) (*domain.Product, error)
	List(ctx context.Context, window repository.Window) ([]domain.Product, error)
	ListByCategory(ctx context.Context, category string, window repository.Window) ([]domain.Product, error)
	Search(ctx context.Context, query string, req repository.PageRequest) (repository.PageResult[domain.Product], error)
	GetByID(ctx context.Context, id uint) (*domain.Product, error)
	Update(ctx context.Context, id uint, patch domain.ProductPatch) (*domain.Product, error)
	Delete(ctx context.Context, id uint) (*domain.Product, error)
}

type SaleService interface {
	Create(ctx context.Context, input CreateSaleInput) (*domain.Sale, error)
	List(ctx context.Context, window repository.Window) ([]domain.Sale, error)
	ListByProduct(ctx context.Context, productID uint, window repository.Window) ([]domain.Sale, error)
	Summary(ctx context.Context, window repository.Window) (*domain.SalesSummary, error)
	Stats(ctx context.Context) (domain.SaleStats, error)
	GetByID(ctx context.Context, id uint) (*domain.Sale, error)
	Delete(ctx context.Context, id uint) (*domain.Sale, error)
}
