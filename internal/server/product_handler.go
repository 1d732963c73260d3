package server

import (
	"math"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/hivestore/internal/service"
	"github.com/yourusername/hivestore/pkg/catalog"
)

type productHandler struct {
	service *service.ProductService
}

// listProductsRequest is the query string of GET /api/products.
// Absent page and pageSize select the defaults; present values are
// validated, never clamped.
type listProductsRequest struct {
	Page       *int     `form:"page"`
	PageSize   *int     `form:"pageSize"`
	Sort       string   `form:"sort"`
	Categories []string `form:"category"`
	Tags       []string `form:"tag"`
	MinPrice   *float64 `form:"minPrice" binding:"omitempty,min=0"`
	MaxPrice   *float64 `form:"maxPrice" binding:"omitempty,min=0"`
	Q          string   `form:"q"`
	MinRating  *float64 `form:"minRating" binding:"omitempty,min=0,max=5"`
	Status     string   `form:"status" binding:"omitempty,oneof=active draft archived out-of-stock"`
	Origin     string   `form:"origin"`
	InStock    bool     `form:"inStock"`
}

func (r listProductsRequest) query() catalog.Query {
	q := catalog.Query{
		Page:     1,
		PageSize: catalog.DefaultPageSize,
		SortBy:   catalog.SortOption(r.Sort),
	}
	if r.Page != nil {
		q.Page = *r.Page
	}
	if r.PageSize != nil {
		q.PageSize = *r.PageSize
	}

	f := &catalog.Filter{
		Tags:        r.Tags,
		SearchQuery: r.Q,
		MinRating:   r.MinRating,
		Status:      catalog.Status(r.Status),
		Origin:      r.Origin,
		InStock:     r.InStock,
	}
	for _, c := range r.Categories {
		f.Categories = append(f.Categories, catalog.Category(c))
	}
	if r.MinPrice != nil || r.MaxPrice != nil {
		f.PriceRange = &catalog.PriceRange{Min: 0, Max: math.MaxFloat64}
		if r.MinPrice != nil {
			f.PriceRange.Min = *r.MinPrice
		}
		if r.MaxPrice != nil {
			f.PriceRange.Max = *r.MaxPrice
		}
	}
	q.Filter = f
	return q
}

// limitRequest is the ?limit= parameter of the listing endpoints.
type limitRequest struct {
	Limit *int `form:"limit"`
}

func (r limitRequest) value(def int) int {
	if r.Limit == nil {
		return def
	}
	return *r.Limit
}

func (h *productHandler) List(c *gin.Context) {
	var req listProductsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		badRequest(c, err)
		return
	}

	page, err := h.service.GetProducts(c.Request.Context(), req.query())
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *productHandler) GetByID(c *gin.Context) {
	p, err := h.service.GetProductByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *productHandler) GetBySlug(c *gin.Context) {
	p, err := h.service.GetProductBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *productHandler) Related(c *gin.Context) {
	h.list(c, catalog.DefaultRelatedLimit, func(limit int) ([]catalog.Product, error) {
		return h.service.GetRelatedProducts(c.Request.Context(), c.Param("id"), limit)
	})
}

func (h *productHandler) ByCategory(c *gin.Context) {
	h.list(c, catalog.DefaultPageSize, func(limit int) ([]catalog.Product, error) {
		return h.service.GetProductsByCategory(c.Request.Context(), catalog.Category(c.Param("category")), limit)
	})
}

func (h *productHandler) Featured(c *gin.Context) {
	h.list(c, catalog.DefaultPageSize, func(limit int) ([]catalog.Product, error) {
		return h.service.GetFeaturedProducts(c.Request.Context(), limit)
	})
}

func (h *productHandler) OnSale(c *gin.Context) {
	h.list(c, catalog.DefaultPageSize, func(limit int) ([]catalog.Product, error) {
		return h.service.GetOnSaleProducts(c.Request.Context(), limit)
	})
}

func (h *productHandler) Categories(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"categories": catalog.Categories()})
}

func (h *productHandler) list(c *gin.Context, defaultLimit int, load func(limit int) ([]catalog.Product, error)) {
	var req limitRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		badRequest(c, err)
		return
	}

	products, err := load(req.value(defaultLimit))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": products, "count": len(products)})
}
