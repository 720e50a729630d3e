package service

import (
	"context"
	"time"

	"github.com/sandeepkv93/bazar-universal-api/internal/domain"
	"github.com/sandeepkv93/bazar-universal-api/internal/observability"
	"github.com/sandeepkv93/bazar-universal-api/internal/repository"
)

const saleStatsCacheKey = "all"

type CreateSaleInput struct {
	ProductID uint
	// Quantity defaults to 1 when zero.
	Quantity int
}

type SaleServiceImpl struct {
	repo  repository.SaleRepository
	cache *CatalogCache
}

func NewSaleService(repo repository.SaleRepository, cache *CatalogCache) *SaleServiceImpl {
	return &SaleServiceImpl{repo: repo, cache: cache}
}

func (s *SaleServiceImpl) Create(ctx context.Context, input CreateSaleInput) (sale *domain.Sale, err error) {
	ctx, span := observability.StartCatalogSpan(ctx, "sale.create")
	start := time.Now()
	defer func() {
		outcome := outcomeOf(err, repository.ErrSaleProductNotFound)
		observability.RecordSaleOperation(ctx, "create", outcome, time.Since(start))
		observability.EndCatalogSpan(span, outcome, err)
	}()

	quantity := input.Quantity
	if quantity == 0 {
		quantity = 1
	}
	if quantity < 1 {
		return nil, ErrSaleInvalidQuantity
	}
	sale, err = s.repo.Create(ctx, input.ProductID, quantity)
	if err != nil {
		return nil, err
	}
	s.cache.Invalidate(ctx, CatalogNamespaceSaleStats)
	observability.RecordSaleAmount(ctx, sale.Status, sale.Total)
	return sale, nil
}

func (s *SaleServiceImpl) List(ctx context.Context, window repository.Window) (sales []domain.Sale, err error) {
	ctx, span := observability.StartCatalogSpan(ctx, "sale.list")
	start := time.Now()
	defer func() {
		outcome := outcomeOf(err)
		observability.RecordSaleOperation(ctx, "list", outcome, time.Since(start))
		observability.EndCatalogSpan(span, outcome, err)
	}()
	return s.repo.List(ctx, window)
}

func (s *SaleServiceImpl) ListByProduct(ctx context.Context, productID uint, window repository.Window) (sales []domain.Sale, err error) {
	ctx, span := observability.StartCatalogSpan(ctx, "sale.list_by_product")
	start := time.Now()
	defer func() {
		outcome := outcomeOf(err)
		observability.RecordSaleOperation(ctx, "list_by_product", outcome, time.Since(start))
		observability.EndCatalogSpan(span, outcome, err)
	}()
	return s.repo.ListByProduct(ctx, productID, window)
}

// Summary returns one window of sales together with the global statistics.
func (s *SaleServiceImpl) Summary(ctx context.Context, window repository.Window) (*domain.SalesSummary, error) {
	sales, err := s.List(ctx, window)
	if err != nil {
		return nil, err
	}
	stats, err := s.Stats(ctx)
	if err != nil {
		return nil, err
	}
	return &domain.SalesSummary{Sales: sales, Stats: stats}, nil
}

func (s *SaleServiceImpl) Stats(ctx context.Context) (stats domain.SaleStats, err error) {
	ctx, span := observability.StartCatalogSpan(ctx, "sale.stats")
	start := time.Now()
	defer func() {
		outcome := outcomeOf(err)
		observability.RecordSaleOperation(ctx, "stats", outcome, time.Since(start))
		observability.EndCatalogSpan(span, outcome, err)
	}()
	return cachedLoad(ctx, s.cache, CatalogNamespaceSaleStats, saleStatsCacheKey, s.computeStats)
}

func (s *SaleServiceImpl) computeStats(ctx context.Context) (domain.SaleStats, error) {
	count, err := s.repo.Count(ctx)
	if err != nil {
		return domain.SaleStats{}, err
	}
	items, err := s.repo.TotalItems(ctx)
	if err != nil {
		return domain.SaleStats{}, err
	}
	amount, err := s.repo.TotalAmount(ctx)
	if err != nil {
		return domain.SaleStats{}, err
	}
	return domain.SaleStats{TotalSales: count, TotalItems: items, TotalAmount: amount}, nil
}

func (s *SaleServiceImpl) GetByID(ctx context.Context, id uint) (sale *domain.Sale, err error) {
	ctx, span := observability.StartCatalogSpan(ctx, "sale.get")
	start := time.Now()
	defer func() {
		outcome := outcomeOf(err, repository.ErrSaleNotFound)
		observability.RecordSaleOperation(ctx, "get", outcome, time.Since(start))
		observability.EndCatalogSpan(span, outcome, err)
	}()
	return s.repo.FindByID(ctx, id)
}

func (s *SaleServiceImpl) Delete(ctx context.Context, id uint) (sale *domain.Sale, err error) {
	ctx, span := observability.StartCatalogSpan(ctx, "sale.delete")
	start := time.Now()
	defer func() {
		outcome := outcomeOf(err, repository.ErrSaleNotFound)
		observability.RecordSaleOperation(ctx, "delete", outcome, time.Since(start))
		observability.EndCatalogSpan(span, outcome, err)
	}()

	sale, err = s.repo.Delete(ctx, id)
	if err != nil {
		return nil, err
	}
	s.cache.Invalidate(ctx, CatalogNamespaceSaleStats)
	return sale, nil
}
