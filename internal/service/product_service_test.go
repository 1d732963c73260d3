package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/hivestore/internal/storage"
	"github.com/yourusername/hivestore/pkg/cache"
	"github.com/yourusername/hivestore/pkg/catalog"
	herrors "github.com/yourusername/hivestore/pkg/errors"
	"github.com/yourusername/hivestore/pkg/metrics"
	"github.com/yourusername/hivestore/pkg/search"
)

func newRepo(t *testing.T) *storage.ProductStorage {
	t.Helper()
	repo, err := storage.NewSeededStorage()
	require.NoError(t, err)
	return repo
}

func newCache(t *testing.T) cache.ICache {
	t.Helper()
	c, err := cache.NewWithOptions("service-test", cache.WithCleanupInterval(0))
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c
}

// failingRepo fails every listing call.
type failingRepo struct {
	catalog.Repository
	err error
}

func (f failingRepo) FindAll(ctx context.Context, q catalog.Query) (catalog.Page, error) {
	return catalog.Page{}, f.err
}

func (f failingRepo) FindFeatured(ctx context.Context, limit int) ([]catalog.Product, error) {
	return nil, f.err
}

func (f failingRepo) FindByID(ctx context.Context, id string) (catalog.Product, bool, error) {
	return catalog.Product{}, false, f.err
}

func TestGetProducts(t *testing.T) {
	svc := NewProductService(newRepo(t))

	page, err := svc.GetProducts(context.Background(), catalog.Query{
		Page:     1,
		PageSize: 9,
		Filter:   &catalog.Filter{Categories: []catalog.Category{catalog.CategoryRawHoney}, InStock: true},
	})
	require.NoError(t, err)
	assert.Equal(t, 9, page.Total)
	assert.Equal(t, 1, page.TotalPages)
	assert.Len(t, page.Items, 9)
}

func TestGetProductsValidation(t *testing.T) {
	m := metrics.New(nil)
	svc := NewProductService(newRepo(t), WithMetrics(m))
	ctx := context.Background()

	tests := []struct {
		name string
		q    catalog.Query
		want error
	}{
		{"page zero", catalog.Query{Page: 0, PageSize: 10}, herrors.ErrInvalidPage},
		{"page size zero", catalog.Query{Page: 1, PageSize: 0}, herrors.ErrInvalidPageSize},
		{"page size too big", catalog.Query{Page: 1, PageSize: 101}, herrors.ErrInvalidPageSize},
		{"bad sort", catalog.Query{Page: 1, PageSize: 10, SortBy: "cheapest"}, herrors.ErrInvalidSort},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.GetProducts(ctx, tt.q)
			assert.ErrorIs(t, err, tt.want)
			assert.True(t, herrors.IsValidation(err))
		})
	}
	assert.Equal(t, uint64(len(tests)), m.GetSnapshot().ValidationErrors)
	assert.Zero(t, m.GetSnapshot().Queries)
}

func TestGetProductsCached(t *testing.T) {
	repo := newRepo(t)
	m := metrics.New(nil)
	svc := NewProductService(repo, WithCache(newCache(t)), WithMetrics(m))
	ctx := context.Background()
	q := catalog.Query{Page: 1, PageSize: 5, SortBy: catalog.SortPriceAsc}

	first, err := svc.GetProducts(ctx, q)
	require.NoError(t, err)
	second, err := svc.GetProducts(ctx, q)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, int64(1), repo.AccessCount())

	// a different page is a different key
	_, err = svc.GetProducts(ctx, catalog.Query{Page: 2, PageSize: 5, SortBy: catalog.SortPriceAsc})
	require.NoError(t, err)
	assert.Equal(t, int64(2), repo.AccessCount())

	snap := m.GetSnapshot()
	assert.Equal(t, uint64(1), snap.CacheHits)
	assert.Equal(t, uint64(2), snap.CacheMisses)

	stats := svc.CacheStats(ctx)
	require.NotNil(t, stats)
	assert.Equal(t, int64(2), stats.EntryCount)
}

func TestInvalidateCache(t *testing.T) {
	repo := newRepo(t)
	svc := NewProductService(repo, WithCache(newCache(t)))
	ctx := context.Background()

	_, err := svc.GetFeaturedProducts(ctx, 3)
	require.NoError(t, err)
	svc.InvalidateCache(ctx)
	_, err = svc.GetFeaturedProducts(ctx, 3)
	require.NoError(t, err)

	assert.Equal(t, int64(2), repo.AccessCount())
}

func TestWithoutCacheAlwaysLoads(t *testing.T) {
	repo := newRepo(t)
	svc := NewProductService(repo)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := svc.GetOnSaleProducts(ctx, 5)
		require.NoError(t, err)
	}
	assert.Equal(t, int64(3), repo.AccessCount())
	assert.Nil(t, svc.CacheStats(ctx))
	svc.InvalidateCache(ctx)
}

func TestGetProductByIDAndSlug(t *testing.T) {
	m := metrics.New(nil)
	svc := NewProductService(newRepo(t), WithMetrics(m))
	ctx := context.Background()

	p, err := svc.GetProductByID(ctx, "rh-001")
	require.NoError(t, err)
	assert.Equal(t, "Raw Wildflower Honey", p.Name)

	p, err = svc.GetProductBySlug(ctx, "chili-hot-honey")
	require.NoError(t, err)
	assert.Equal(t, "fh-002", p.ID)

	_, err = svc.GetProductByID(ctx, "nope")
	assert.True(t, herrors.IsNotFound(err))
	var nf *herrors.NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "id", nf.By)

	_, err = svc.GetProductBySlug(ctx, "nope")
	assert.True(t, herrors.IsNotFound(err))

	snap := m.GetSnapshot()
	assert.Equal(t, uint64(4), snap.Lookups)
	assert.Equal(t, uint64(2), snap.NotFound)
}

func TestGetRelatedProducts(t *testing.T) {
	svc := NewProductService(newRepo(t))
	ctx := context.Background()

	related, err := svc.GetRelatedProducts(ctx, "rh-001", catalog.DefaultRelatedLimit)
	require.NoError(t, err)
	assert.LessOrEqual(t, len(related), catalog.DefaultRelatedLimit)
	for _, p := range related {
		assert.NotEqual(t, "rh-001", p.ID)
	}

	related, err = svc.GetRelatedProducts(ctx, "unknown", 4)
	require.NoError(t, err)
	assert.Empty(t, related)

	for _, limit := range []int{0, 21} {
		_, err = svc.GetRelatedProducts(ctx, "rh-001", limit)
		assert.ErrorIs(t, err, herrors.ErrInvalidLimit)
	}
}

func TestGetProductsByCategory(t *testing.T) {
	svc := NewProductService(newRepo(t))
	ctx := context.Background()

	products, err := svc.GetProductsByCategory(ctx, catalog.CategoryHoneycomb, 10)
	require.NoError(t, err)
	assert.Len(t, products, 2)

	_, err = svc.GetProductsByCategory(ctx, "candles", 10)
	assert.ErrorIs(t, err, herrors.ErrInvalidCategory)

	_, err = svc.GetProductsByCategory(ctx, catalog.CategoryHoneycomb, 101)
	assert.ErrorIs(t, err, herrors.ErrInvalidLimit)
}

func TestFeaturedAndOnSaleLimits(t *testing.T) {
	svc := NewProductService(newRepo(t))
	ctx := context.Background()

	featured, err := svc.GetFeaturedProducts(ctx, 3)
	require.NoError(t, err)
	require.Len(t, featured, 3)
	assert.Equal(t, "rh-006", featured[0].ID)

	onSale, err := svc.GetOnSaleProducts(ctx, 100)
	require.NoError(t, err)
	for _, p := range onSale {
		assert.True(t, p.OnSale())
		assert.True(t, p.InStock())
	}

	_, err = svc.GetFeaturedProducts(ctx, 0)
	assert.ErrorIs(t, err, herrors.ErrInvalidLimit)
	_, err = svc.GetOnSaleProducts(ctx, -1)
	assert.ErrorIs(t, err, herrors.ErrInvalidLimit)
}

func TestAllProducts(t *testing.T) {
	repo := newRepo(t)
	svc := NewProductService(repo)

	all, err := svc.AllProducts(context.Background())
	require.NoError(t, err)
	assert.Len(t, all, repo.Len())
	assert.Equal(t, "rh-001", all[0].ID)
}

func TestSearch(t *testing.T) {
	m := metrics.New(nil)
	svc := NewProductService(newRepo(t), WithMetrics(m))
	ctx := context.Background()

	results, err := svc.Search(ctx, "Tajonal")
	require.NoError(t, err)
	require.NotEmpty(t, results)
	assert.Equal(t, "rh-006", results[0].Product.ID)
	assert.Equal(t, search.MatchName, results[0].MatchType)

	results, err = svc.Search(ctx, "   ")
	require.NoError(t, err)
	assert.Empty(t, results)

	assert.Equal(t, uint64(1), m.GetSnapshot().Searches)
}

func TestRepositoryErrorsPropagate(t *testing.T) {
	boom := errors.New("connection reset")
	svc := NewProductService(failingRepo{err: boom}, WithCache(newCache(t)))
	ctx := context.Background()

	_, err := svc.GetProducts(ctx, catalog.Query{Page: 1, PageSize: 10})
	assert.ErrorIs(t, err, boom)
	assert.False(t, herrors.IsValidation(err))

	_, err = svc.GetFeaturedProducts(ctx, 4)
	assert.ErrorIs(t, err, boom)

	_, err = svc.GetProductByID(ctx, "rh-001")
	assert.ErrorIs(t, err, boom)
	assert.False(t, herrors.IsNotFound(err))

	_, err = svc.Search(ctx, "honey")
	assert.ErrorIs(t, err, boom)
}
