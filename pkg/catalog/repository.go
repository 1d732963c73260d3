package catalog

import "context"

// Repository is the read side of the product catalog.
// Lookups by id or slug report absence through the boolean result rather than
// an error; callers that require existence turn that into a not-found error.
//
// Repository 是产品目录的读取端。
// 按id或slug查找时通过布尔结果报告不存在，而不是返回错误；
// 需要存在性的调用方会将其转换为未找到错误。
type Repository interface {
	// FindAll filters, sorts and paginates the collection.
	FindAll(ctx context.Context, query Query) (Page, error)

	// FindByID returns the product with the given id.
	FindByID(ctx context.Context, id string) (Product, bool, error)

	// FindBySlug returns the product with the given URL slug.
	FindBySlug(ctx context.Context, slug string) (Product, bool, error)

	// FindRelated returns up to limit products related to the given one,
	// most related first. An unknown id yields an empty result.
	FindRelated(ctx context.Context, id string, limit int) ([]Product, error)

	// FindByCategory returns up to limit active products of a category.
	FindByCategory(ctx context.Context, category Category, limit int) ([]Product, error)

	// FindFeatured returns up to limit active products ranked by rating and sales.
	FindFeatured(ctx context.Context, limit int) ([]Product, error)

	// FindOnSale returns up to limit discounted products, biggest discount first.
	FindOnSale(ctx context.Context, limit int) ([]Product, error)
}
