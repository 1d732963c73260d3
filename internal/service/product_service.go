// Package service implements the storefront use cases on top of a product
// repository. It validates caller input, turns missing products into typed
// not-found errors and keeps listing results in a cache-aside layer.
//
// Package service 在产品仓库之上实现商店用例。
// 它校验调用者输入，将缺失的产品转换为类型化的未找到错误，并通过旁路缓存保存列表结果。
package service

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/yourusername/hivestore/pkg/cache"
	"github.com/yourusername/hivestore/pkg/catalog"
	herrors "github.com/yourusername/hivestore/pkg/errors"
	"github.com/yourusername/hivestore/pkg/loader"
	"github.com/yourusername/hivestore/pkg/metrics"
	"github.com/yourusername/hivestore/pkg/search"
)

// ProductService handles product use cases with caching.
// Listings are looked up in the cache first and, on a miss, loaded from the
// repository and stored for later requests. Concurrent misses for the same
// listing share one repository call.
//
// ProductService 处理带缓存的产品用例。
// 列表先在缓存中查找，未命中时从仓库加载并缓存。同一列表的并发未命中只调用一次仓库。
type ProductService struct {
	repo    catalog.Repository
	cache   cache.ICache
	pages   *loader.ReadThrough[catalog.Page]
	lists   *loader.ReadThrough[[]catalog.Product]
	logger  *zap.Logger
	metrics *metrics.Metrics
}

// Option configures a ProductService.
type Option func(*ProductService)

// WithCache enables cache-aside for listings. Without it every call
// reaches the repository.
func WithCache(c cache.ICache) Option {
	return func(s *ProductService) { s.cache = c }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *ProductService) { s.logger = l }
}

// WithMetrics sets the metrics collector.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *ProductService) { s.metrics = m }
}

// NewProductService creates a product service over repo.
//
// NewProductService 创建一个基于仓库的产品服务。
func NewProductService(repo catalog.Repository, opts ...Option) *ProductService {
	s := &ProductService{
		repo:   repo,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.pages = loader.NewReadThrough[catalog.Page](s.cache, nil)
	s.pages.OnCacheError = s.cacheError
	s.lists = loader.NewReadThrough[[]catalog.Product](s.cache, nil)
	s.lists.OnCacheError = s.cacheError
	return s
}

func (s *ProductService) cacheError(op, key string, err error) {
	s.logger.Warn("cache error", zap.String("op", op), zap.String("key", key), zap.Error(err))
}

func (s *ProductService) recordCache(key string, hit bool) {
	if s.cache == nil {
		return
	}
	if hit {
		s.metrics.RecordCacheHit()
		s.logger.Debug("cache hit", zap.String("key", key))
		return
	}
	s.metrics.RecordCacheMiss()
	s.logger.Debug("cache miss", zap.String("key", key))
}

func (s *ProductService) invalid(err error) error {
	s.metrics.RecordValidationError()
	return err
}

// GetProducts returns one page of the filtered, sorted catalog.
//
// GetProducts 返回过滤并排序后的目录的一页。
func (s *ProductService) GetProducts(ctx context.Context, q catalog.Query) (catalog.Page, error) {
	if err := q.Validate(); err != nil {
		return catalog.Page{}, s.invalid(err)
	}
	s.metrics.RecordQuery()

	key, err := queryKey(q)
	if err != nil {
		return catalog.Page{}, err
	}

	page, hit, err := s.pages.GetWith(ctx, key, loader.NewFunctionLoader(func(ctx context.Context, _ string) (catalog.Page, error) {
		return s.repo.FindAll(ctx, q)
	}))
	if err != nil {
		return catalog.Page{}, fmt.Errorf("find products: %w", err)
	}
	s.recordCache(key, hit)
	return page, nil
}

// queryKey derives a deterministic cache key from every field of q.
func queryKey(q catalog.Query) (string, error) {
	data, err := json.Marshal(q)
	if err != nil {
		return "", fmt.Errorf("encode query key: %w", err)
	}
	return "products:" + string(data), nil
}

// GetProductByID returns the product with id or a not-found error.
func (s *ProductService) GetProductByID(ctx context.Context, id string) (catalog.Product, error) {
	s.metrics.RecordLookup()

	p, found, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return catalog.Product{}, fmt.Errorf("find product by id: %w", err)
	}
	if !found {
		s.metrics.RecordNotFound()
		return catalog.Product{}, herrors.NewNotFound("product", "id", id)
	}
	return p, nil
}

// GetProductBySlug returns the product with slug or a not-found error.
func (s *ProductService) GetProductBySlug(ctx context.Context, slug string) (catalog.Product, error) {
	s.metrics.RecordLookup()

	p, found, err := s.repo.FindBySlug(ctx, slug)
	if err != nil {
		return catalog.Product{}, fmt.Errorf("find product by slug: %w", err)
	}
	if !found {
		s.metrics.RecordNotFound()
		return catalog.Product{}, herrors.NewNotFound("product", "slug", slug)
	}
	return p, nil
}

// GetRelatedProducts returns up to limit products related to the product id.
// limit must lie in [1, catalog.MaxRelatedLimit]. An unknown id yields an
// empty list.
func (s *ProductService) GetRelatedProducts(ctx context.Context, id string, limit int) ([]catalog.Product, error) {
	if err := catalog.ValidateLimit(limit, catalog.MaxRelatedLimit); err != nil {
		return nil, s.invalid(err)
	}
	return s.list(ctx, fmt.Sprintf("related:%s:%d", id, limit), func(ctx context.Context) ([]catalog.Product, error) {
		return s.repo.FindRelated(ctx, id, limit)
	})
}

// GetProductsByCategory returns up to limit active products of category.
func (s *ProductService) GetProductsByCategory(ctx context.Context, category catalog.Category, limit int) ([]catalog.Product, error) {
	if !category.Valid() {
		return nil, s.invalid(herrors.NewValidation("category", category, herrors.ErrInvalidCategory))
	}
	if err := catalog.ValidateLimit(limit, catalog.MaxLimit); err != nil {
		return nil, s.invalid(err)
	}
	return s.list(ctx, fmt.Sprintf("category:%s:%d", category, limit), func(ctx context.Context) ([]catalog.Product, error) {
		return s.repo.FindByCategory(ctx, category, limit)
	})
}

// GetFeaturedProducts returns the top limit active products by rating and sales.
func (s *ProductService) GetFeaturedProducts(ctx context.Context, limit int) ([]catalog.Product, error) {
	if err := catalog.ValidateLimit(limit, catalog.MaxLimit); err != nil {
		return nil, s.invalid(err)
	}
	return s.list(ctx, fmt.Sprintf("featured:%d", limit), func(ctx context.Context) ([]catalog.Product, error) {
		return s.repo.FindFeatured(ctx, limit)
	})
}

// GetOnSaleProducts returns up to limit discounted products, largest discount first.
func (s *ProductService) GetOnSaleProducts(ctx context.Context, limit int) ([]catalog.Product, error) {
	if err := catalog.ValidateLimit(limit, catalog.MaxLimit); err != nil {
		return nil, s.invalid(err)
	}
	return s.list(ctx, fmt.Sprintf("on-sale:%d", limit), func(ctx context.Context) ([]catalog.Product, error) {
		return s.repo.FindOnSale(ctx, limit)
	})
}

func (s *ProductService) list(ctx context.Context, key string, load func(context.Context) ([]catalog.Product, error)) ([]catalog.Product, error) {
	s.metrics.RecordQuery()

	products, hit, err := s.lists.GetWith(ctx, key, loader.NewFunctionLoader(func(ctx context.Context, _ string) ([]catalog.Product, error) {
		return load(ctx)
	}))
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", key, err)
	}
	s.recordCache(key, hit)
	return products, nil
}

// AllProducts returns the whole catalog in collection order by paging
// through the repository.
func (s *ProductService) AllProducts(ctx context.Context) ([]catalog.Product, error) {
	var all []catalog.Product
	for page := 1; ; page++ {
		res, err := s.GetProducts(ctx, catalog.Query{Page: page, PageSize: catalog.MaxPageSize})
		if err != nil {
			return nil, err
		}
		all = append(all, res.Items...)
		if !res.HasNextPage {
			return all, nil
		}
	}
}

// Search ranks the whole catalog against query. A blank query returns no results.
//
// Search 对整个目录按查询排序。空白查询不返回结果。
func (s *ProductService) Search(ctx context.Context, query string) ([]search.Result, error) {
	if search.Normalize(query) == "" {
		return []search.Result{}, nil
	}
	s.metrics.RecordSearch()

	products, err := s.AllProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	return search.Rank(products, query), nil
}

// InvalidateCache drops every cached listing.
//
// InvalidateCache 清除所有缓存的列表。
func (s *ProductService) InvalidateCache(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Clear(ctx); err != nil {
		s.cacheError("clear", "*", err)
		return
	}
	s.logger.Info("product cache invalidated")
}

// CacheStats returns the cache counters, or nil when caching is off.
func (s *ProductService) CacheStats(ctx context.Context) *cache.Stats {
	if s.cache == nil {
		return nil
	}
	stats, err := s.cache.Stats(ctx)
	if err != nil {
		s.cacheError("stats", "*", err)
		return nil
	}
	return stats
}
