package catalog

import (
	herrors "github.com/yourusername/hivestore/pkg/errors"
)

// Bounds enforced on query inputs.
const (
	MinPage         = 1
	MinPageSize     = 1
	MaxPageSize     = 100
	MinLimit        = 1
	MaxLimit        = 100
	MaxRelatedLimit = 20

	DefaultPageSize     = 12
	DefaultRelatedLimit = 4
)

// SortOption selects the ordering of a product listing.
type SortOption string

const (
	SortNone           SortOption = ""
	SortPriceAsc       SortOption = "price-asc"
	SortPriceDesc      SortOption = "price-desc"
	SortRatingDesc     SortOption = "rating-desc"
	SortPopularityDesc SortOption = "popularity-desc"
	SortNewest         SortOption = "newest"
	SortNameAsc        SortOption = "name-asc"
	SortNameDesc       SortOption = "name-desc"
)

// Valid reports whether s is a known sort option. SortNone is valid.
func (s SortOption) Valid() bool {
	switch s {
	case SortNone, SortPriceAsc, SortPriceDesc, SortRatingDesc,
		SortPopularityDesc, SortNewest, SortNameAsc, SortNameDesc:
		return true
	}
	return false
}

// PriceRange is an inclusive price interval.
type PriceRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Filter combines optional predicates. Zero-valued fields are skipped.
//
// Filter 组合可选的过滤条件。零值字段会被跳过。
type Filter struct {
	Categories  []Category  `json:"categories,omitempty"`
	PriceRange  *PriceRange `json:"priceRange,omitempty"`
	Tags        []string    `json:"tags,omitempty"`
	SearchQuery string      `json:"searchQuery,omitempty"`
	MinRating   *float64    `json:"minRating,omitempty"`
	Status      Status      `json:"status,omitempty"`
	Origin      string      `json:"origin,omitempty"`
	InStock     bool        `json:"inStock,omitempty"`
}

// Query is a complete listing request: filter, ordering and page.
//
// Query 是完整的列表请求：过滤、排序和分页。
type Query struct {
	Filter   *Filter    `json:"filter,omitempty"`
	SortBy   SortOption `json:"sortBy,omitempty"`
	Page     int        `json:"page"`
	PageSize int        `json:"pageSize"`
}

// Validate rejects out-of-range pages and unknown enum values.
// Nothing is clamped.
func (q Query) Validate() error {
	if q.Page < MinPage {
		return herrors.NewValidation("page", q.Page, herrors.ErrInvalidPage)
	}
	if q.PageSize < MinPageSize || q.PageSize > MaxPageSize {
		return herrors.NewValidation("pageSize", q.PageSize, herrors.ErrInvalidPageSize)
	}
	if !q.SortBy.Valid() {
		return herrors.NewValidation("sortBy", q.SortBy, herrors.ErrInvalidSort)
	}
	if q.Filter != nil {
		for _, c := range q.Filter.Categories {
			if !c.Valid() {
				return herrors.NewValidation("categories", c, herrors.ErrInvalidCategory)
			}
		}
	}
	return nil
}

// ValidateLimit checks that limit lies in [MinLimit, max].
func ValidateLimit(limit, max int) error {
	if limit < MinLimit || limit > max {
		return herrors.NewValidation("limit", limit, herrors.ErrInvalidLimit)
	}
	return nil
}

// PaginatedResult is one page of a filtered, sorted sequence.
type PaginatedResult[T any] struct {
	Items           []T  `json:"items"`
	Total           int  `json:"total"`
	Page            int  `json:"page"`
	PageSize        int  `json:"pageSize"`
	TotalPages      int  `json:"totalPages"`
	HasNextPage     bool `json:"hasNextPage"`
	HasPreviousPage bool `json:"hasPreviousPage"`
}

// Page is a page of products.
type Page = PaginatedResult[Product]

// NewPaginatedResult derives the page metadata from total, page and pageSize.
// pageSize must be positive.
func NewPaginatedResult[T any](items []T, total, page, pageSize int) PaginatedResult[T] {
	totalPages := (total + pageSize - 1) / pageSize
	if items == nil {
		items = []T{}
	}
	return PaginatedResult[T]{
		Items:           items,
		Total:           total,
		Page:            page,
		PageSize:        pageSize,
		TotalPages:      totalPages,
		HasNextPage:     page < totalPages,
		HasPreviousPage: page > 1,
	}
}
