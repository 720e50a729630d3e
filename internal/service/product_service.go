package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sandeepkv93/bazar-universal-api/internal/domain"
	"github.com/sandeepkv93/bazar-universal-api/internal/observability"
	"github.com/sandeepkv93/bazar-universal-api/internal/repository"
)

type CreateProductInput struct {
	Title       string
	Description *string
	Price       float64
	Category    string
	Brand       *string
	Rating      float64
	Stock       int
	Images      []string
	Features    []string
}

type ProductServiceImpl struct {
	repo  repository.ProductRepository
	cache *CatalogCache
}

func NewProductService(repo repository.ProductRepository, cache *CatalogCache) *ProductServiceImpl {
	return &ProductServiceImpl{repo: repo, cache: cache}
}

func (s *ProductServiceImpl) Create(ctx context.Context, input CreateProductInput) (product *domain.Product, err error) {
	ctx, span := observability.StartCatalogSpan(ctx, "product.create")
	start := time.Now()
	defer func() {
		outcome := outcomeOf(err)
		observability.RecordProductOperation(ctx, "create", outcome, time.Since(start))
		observability.EndCatalogSpan(span, outcome, err)
	}()

	title, err := normalizeTitle(input.Title)
	if err != nil {
		return nil, err
	}
	category, err := normalizeCategory(input.Category)
	if err != nil {
		return nil, err
	}
	brand, err := normalizeBrand(input.Brand)
	if err != nil {
		return nil, err
	}
	if err = validatePrice(input.Price); err != nil {
		return nil, err
	}
	if err = validateRating(input.Rating); err != nil {
		return nil, err
	}
	if err = validateStock(input.Stock); err != nil {
		return nil, err
	}

	product = &domain.Product{
		Title:       title,
		Description: normalizeDescription(input.Description),
		Price:       input.Price,
		Category:    category,
		Brand:       brand,
		Rating:      input.Rating,
		Stock:       input.Stock,
		Images:      input.Images,
		Features:    input.Features,
	}
	if err = s.repo.Create(ctx, product); err != nil {
		return nil, err
	}
	s.cache.Invalidate(ctx, CatalogNamespaceProductSearch)
	return product, nil
}

func (s *ProductServiceImpl) List(ctx context.Context, window repository.Window) (products []domain.Product, err error) {
	ctx, span := observability.StartCatalogSpan(ctx, "product.list")
	start := time.Now()
	defer func() {
		outcome := outcomeOf(err)
		observability.RecordProductOperation(ctx, "list", outcome, time.Since(start))
		observability.EndCatalogSpan(span, outcome, err)
	}()
	return s.repo.List(ctx, window)
}

func (s *ProductServiceImpl) ListByCategory(ctx context.Context, category string, window repository.Window) (products []domain.Product, err error) {
	ctx, span := observability.StartCatalogSpan(ctx, "product.list_by_category")
	start := time.Now()
	defer func() {
		outcome := outcomeOf(err)
		observability.RecordProductOperation(ctx, "list_by_category", outcome, time.Since(start))
		observability.EndCatalogSpan(span, outcome, err)
	}()
	return s.repo.ListByCategory(ctx, category, window)
}

// Search pages through products whose title, description, category or
// brand contains query, case-insensitively.
func (s *ProductServiceImpl) Search(ctx context.Context, query string, req repository.PageRequest) (page repository.PageResult[domain.Product], err error) {
	ctx, span := observability.StartCatalogSpan(ctx, "product.search")
	start := time.Now()
	defer func() {
		outcome := outcomeOf(err)
		observability.RecordProductOperation(ctx, "search", outcome, time.Since(start))
		observability.EndCatalogSpan(span, outcome, err)
	}()

	if strings.TrimSpace(query) == "" {
		return repository.PageResult[domain.Product]{}, ErrSearchQueryRequired
	}
	req = repository.NormalizePageRequest(req)
	key := fmt.Sprintf("q=%s|page=%d|per_page=%d", strings.ToLower(query), req.Page, req.PerPage)
	return cachedLoad(ctx, s.cache, CatalogNamespaceProductSearch, key, func(ctx context.Context) (repository.PageResult[domain.Product], error) {
		return s.searchPage(ctx, query, req)
	})
}

func (s *ProductServiceImpl) searchPage(ctx context.Context, query string, req repository.PageRequest) (repository.PageResult[domain.Product], error) {
	items, err := s.repo.Search(ctx, query, repository.Window{Skip: req.Offset(), Limit: req.PerPage})
	if err != nil {
		return repository.PageResult[domain.Product]{}, err
	}
	total, err := s.repo.CountSearch(ctx, query)
	if err != nil {
		return repository.PageResult[domain.Product]{}, err
	}
	return repository.PageResult[domain.Product]{
		Items:      items,
		Page:       req.Page,
		PerPage:    req.PerPage,
		Total:      total,
		TotalPages: repository.CalcTotalPages(total, req.PerPage),
	}, nil
}

func (s *ProductServiceImpl) GetByID(ctx context.Context, id uint) (product *domain.Product, err error) {
	ctx, span := observability.StartCatalogSpan(ctx, "product.get")
	start := time.Now()
	defer func() {
		outcome := outcomeOf(err, repository.ErrProductNotFound)
		observability.RecordProductOperation(ctx, "get", outcome, time.Since(start))
		observability.EndCatalogSpan(span, outcome, err)
	}()
	return s.repo.FindByID(ctx, id)
}

// Update applies the fields present in patch. An empty patch only
// refreshes updated_at.
func (s *ProductServiceImpl) Update(ctx context.Context, id uint, patch domain.ProductPatch) (product *domain.Product, err error) {
	ctx, span := observability.StartCatalogSpan(ctx, "product.update")
	start := time.Now()
	defer func() {
		outcome := outcomeOf(err, repository.ErrProductNotFound)
		observability.RecordProductOperation(ctx, "update", outcome, time.Since(start))
		observability.EndCatalogSpan(span, outcome, err)
	}()

	patch, err = normalizePatch(patch)
	if err != nil {
		return nil, err
	}
	product, err = s.repo.Update(ctx, id, patch)
	if err != nil {
		return nil, err
	}
	s.cache.Invalidate(ctx, CatalogNamespaceProductSearch)
	return product, nil
}

// Delete removes the product and returns it as it was. Sales that
// reference the product are kept.
func (s *ProductServiceImpl) Delete(ctx context.Context, id uint) (product *domain.Product, err error) {
	ctx, span := observability.StartCatalogSpan(ctx, "product.delete")
	start := time.Now()
	defer func() {
		outcome := outcomeOf(err, repository.ErrProductNotFound)
		observability.RecordProductOperation(ctx, "delete", outcome, time.Since(start))
		observability.EndCatalogSpan(span, outcome, err)
	}()

	product, err = s.repo.Delete(ctx, id)
	if err != nil {
		return nil, err
	}
	s.cache.Invalidate(ctx, CatalogNamespaceProductSearch)
	return product, nil
}

func normalizePatch(patch domain.ProductPatch) (domain.ProductPatch, error) {
	if patch.Title.Set {
		if patch.Title.Null {
			return patch, notNullable("title")
		}
		title, err := normalizeTitle(patch.Title.Value)
		if err != nil {
			return patch, err
		}
		patch.Title = domain.Some(title)
	}
	if patch.Category.Set {
		if patch.Category.Null {
			return patch, notNullable("category")
		}
		category, err := normalizeCategory(patch.Category.Value)
		if err != nil {
			return patch, err
		}
		patch.Category = domain.Some(category)
	}
	if patch.Description.Set && !patch.Description.Null {
		if description := normalizeDescription(&patch.Description.Value); description == nil {
			patch.Description = domain.Null[string]()
		}
	}
	if patch.Brand.Set && !patch.Brand.Null {
		brand, err := normalizeBrand(&patch.Brand.Value)
		if err != nil {
			return patch, err
		}
		if brand == nil {
			patch.Brand = domain.Null[string]()
		} else {
			patch.Brand = domain.Some(*brand)
		}
	}
	if patch.Price.Set {
		if patch.Price.Null {
			return patch, notNullable("price")
		}
		if err := validatePrice(patch.Price.Value); err != nil {
			return patch, err
		}
	}
	if patch.Rating.Set {
		if patch.Rating.Null {
			return patch, notNullable("rating")
		}
		if err := validateRating(patch.Rating.Value); err != nil {
			return patch, err
		}
	}
	if patch.Stock.Set {
		if patch.Stock.Null {
			return patch, notNullable("stock")
		}
		if err := validateStock(patch.Stock.Value); err != nil {
			return patch, err
		}
	}
	return patch, nil
}
