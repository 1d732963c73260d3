// Package query implements the product query pipeline: filtering, ordering,
// pagination and the ranking functions behind the related, featured and
// on-sale listings. Every function is pure and never modifies its input slice.
//
// Package query 实现产品查询管道：过滤、排序、分页，
// 以及相关、精选和特价列表背后的排序函数。所有函数都是纯函数，不会修改输入切片。
package query

import (
	"cmp"
	"math"
	"slices"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/yourusername/hivestore/pkg/catalog"
)

// Run validates q and applies filter, sort and pagination to products.
//
// Run 验证查询并对产品依次应用过滤、排序和分页。
func Run(products []catalog.Product, q catalog.Query) (catalog.Page, error) {
	if err := q.Validate(); err != nil {
		return catalog.Page{}, err
	}
	filtered := Filter(products, q.Filter)
	sorted := Sort(filtered, q.SortBy)
	return Paginate(sorted, q.Page, q.PageSize), nil
}

// Filter returns the products that satisfy every predicate present in f,
// in their original order. A nil filter keeps everything.
func Filter(products []catalog.Product, f *catalog.Filter) []catalog.Product {
	out := make([]catalog.Product, 0, len(products))
	for _, p := range products {
		if Matches(p, f) {
			out = append(out, p)
		}
	}
	return out
}

// Matches reports whether p satisfies the conjunction of the predicates in f.
//
// Matches 判断产品是否满足过滤器中所有条件的合取。
func Matches(p catalog.Product, f *catalog.Filter) bool {
	if f == nil {
		return true
	}
	if len(f.Categories) > 0 && !slices.Contains(f.Categories, p.Category) {
		return false
	}
	if f.PriceRange != nil && (p.Price.Amount < f.PriceRange.Min || p.Price.Amount > f.PriceRange.Max) {
		return false
	}
	if len(f.Tags) > 0 && !slices.ContainsFunc(f.Tags, p.HasTag) {
		return false
	}
	if f.SearchQuery != "" && !p.MatchesText(f.SearchQuery) {
		return false
	}
	if f.MinRating != nil && p.Rating.Average < *f.MinRating {
		return false
	}
	if f.Status != "" && p.Status != f.Status {
		return false
	}
	if f.Origin != "" && !strings.Contains(strings.ToLower(p.Origin), strings.ToLower(f.Origin)) {
		return false
	}
	if f.InStock && !p.InStock() {
		return false
	}
	return true
}

// Sort returns a stably sorted copy of products. SortNone keeps the input order.
//
// Sort 返回产品的稳定排序副本。SortNone 保持输入顺序。
func Sort(products []catalog.Product, by catalog.SortOption) []catalog.Product {
	sorted := slices.Clone(products)
	if sorted == nil {
		sorted = []catalog.Product{}
	}

	var less func(a, b catalog.Product) int
	switch by {
	case catalog.SortPriceAsc:
		less = func(a, b catalog.Product) int { return cmp.Compare(a.Price.Amount, b.Price.Amount) }
	case catalog.SortPriceDesc:
		less = func(a, b catalog.Product) int { return cmp.Compare(b.Price.Amount, a.Price.Amount) }
	case catalog.SortRatingDesc:
		less = func(a, b catalog.Product) int { return cmp.Compare(b.Rating.Average, a.Rating.Average) }
	case catalog.SortPopularityDesc:
		less = func(a, b catalog.Product) int { return cmp.Compare(b.SoldCount, a.SoldCount) }
	case catalog.SortNewest:
		less = func(a, b catalog.Product) int { return b.CreatedAt.Compare(a.CreatedAt) }
	case catalog.SortNameAsc, catalog.SortNameDesc:
		// collate.Collator keeps internal buffers, one per call.
		c := collate.New(language.English)
		if by == catalog.SortNameAsc {
			less = func(a, b catalog.Product) int { return c.CompareString(a.Name, b.Name) }
		} else {
			less = func(a, b catalog.Product) int { return c.CompareString(b.Name, a.Name) }
		}
	default:
		return sorted
	}

	slices.SortStableFunc(sorted, less)
	return sorted
}

// Paginate slices [ (page-1)*pageSize, page*pageSize ) out of products.
// Pages past the end yield no items, however large page is; the offset is
// only computed for pages that exist. page and pageSize must be >= 1.
func Paginate(products []catalog.Product, page, pageSize int) catalog.Page {
	total := len(products)
	start := total
	if page-1 < (total+pageSize-1)/pageSize {
		start = (page - 1) * pageSize
	}
	end := min(start+pageSize, total)
	return catalog.NewPaginatedResult(slices.Clone(products[start:end]), total, page, pageSize)
}

// ByCategory returns up to limit active products of category in collection order.
func ByCategory(products []catalog.Product, category catalog.Category, limit int) []catalog.Product {
	out := make([]catalog.Product, 0, min(limit, len(products)))
	for _, p := range products {
		if len(out) == limit {
			break
		}
		if p.Category == category && p.InStock() {
			out = append(out, p)
		}
	}
	return out
}

// FeaturedScore combines rating and sales: rating*10 + ln(sold+1).
func FeaturedScore(p catalog.Product) float64 {
	return p.Rating.Average*10 + math.Log(float64(p.SoldCount)+1)
}

// Featured returns up to limit active products with the highest FeaturedScore.
//
// Featured 返回评分与销量综合得分最高的至多limit个在售产品。
func Featured(products []catalog.Product, limit int) []catalog.Product {
	active := activeOnly(products, func(catalog.Product) bool { return true })
	slices.SortStableFunc(active, func(a, b catalog.Product) int {
		return cmp.Compare(FeaturedScore(b), FeaturedScore(a))
	})
	return truncate(active, limit)
}

// OnSale returns up to limit active discounted products, biggest discount first.
// Products whose original price does not exceed the current price are skipped.
func OnSale(products []catalog.Product, limit int) []catalog.Product {
	sale := activeOnly(products, func(p catalog.Product) bool {
		pct, ok := p.DiscountPercent()
		return ok && pct > 0
	})
	slices.SortStableFunc(sale, func(a, b catalog.Product) int {
		da, _ := a.DiscountPercent()
		db, _ := b.DiscountPercent()
		return cmp.Compare(db, da)
	})
	return truncate(sale, limit)
}

func activeOnly(products []catalog.Product, keep func(catalog.Product) bool) []catalog.Product {
	out := make([]catalog.Product, 0, len(products))
	for _, p := range products {
		if p.InStock() && keep(p) {
			out = append(out, p)
		}
	}
	return out
}

func truncate(products []catalog.Product, limit int) []catalog.Product {
	if limit >= 0 && len(products) > limit {
		return products[:limit]
	}
	return products
}
