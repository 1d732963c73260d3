// Package catalog defines the product model of the honey storefront and the
// query types used to browse it. The types here are plain values: a Product
// is never mutated after it has been loaded into a repository.
//
// Package catalog 定义蜂蜜商店的产品模型以及用于浏览的查询类型。
// 这里的类型都是普通值：产品加载到仓库后不会再被修改。
package catalog

import (
	"strings"
	"time"
)

// Currency is an ISO currency code.
type Currency string

const (
	CurrencyUSD Currency = "USD"
	CurrencyEUR Currency = "EUR"
	CurrencyMXN Currency = "MXN"
)

// Money is an amount in a currency.
type Money struct {
	Amount   float64  `json:"amount" yaml:"amount"`
	Currency Currency `json:"currency" yaml:"currency"`
}

// Category is one of the fixed product categories.
//
// Category 是固定产品分类之一。
type Category string

const (
	CategoryRawHoney      Category = "raw-honey"
	CategoryFlavoredHoney Category = "flavored-honey"
	CategoryHoneycomb     Category = "honeycomb"
	CategoryBeeProducts   Category = "bee-products"
	CategorySkincare      Category = "skincare"
	CategorySupplements   Category = "supplements"
)

// Categories returns the closed set of categories in display order.
func Categories() []Category {
	return []Category{
		CategoryRawHoney,
		CategoryFlavoredHoney,
		CategoryHoneycomb,
		CategoryBeeProducts,
		CategorySkincare,
		CategorySupplements,
	}
}

// Valid reports whether c belongs to the closed set.
func (c Category) Valid() bool {
	for _, known := range Categories() {
		if c == known {
			return true
		}
	}
	return false
}

// Status is the lifecycle status of a product.
//
// Status 是产品的生命周期状态。
type Status string

const (
	StatusActive     Status = "active"
	StatusDraft      Status = "draft"
	StatusArchived   Status = "archived"
	StatusOutOfStock Status = "out-of-stock"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusActive, StatusDraft, StatusArchived, StatusOutOfStock:
		return true
	}
	return false
}

// Image is a product picture.
type Image struct {
	URL       string `json:"url" yaml:"url"`
	Alt       string `json:"alt" yaml:"alt"`
	IsPrimary bool   `json:"isPrimary" yaml:"isPrimary"`
}

// Rating aggregates customer reviews.
type Rating struct {
	Average float64 `json:"average" yaml:"average"` // 0-5
	Count   int     `json:"count" yaml:"count"`
}

// Nutrition holds optional nutrition facts.
type Nutrition struct {
	Calories      int      `json:"calories,omitempty" yaml:"calories,omitempty"`
	Carbohydrates string   `json:"carbohydrates,omitempty" yaml:"carbohydrates,omitempty"`
	Sugars        string   `json:"sugars,omitempty" yaml:"sugars,omitempty"`
	Protein       string   `json:"protein,omitempty" yaml:"protein,omitempty"`
	Minerals      []string `json:"minerals,omitempty" yaml:"minerals,omitempty"`
}

// Product represents a product in the storefront.
//
// Product 表示商店中的一个产品。
type Product struct {
	ID   string `json:"id" yaml:"id"`
	Slug string `json:"slug" yaml:"slug"`

	Name             string `json:"name" yaml:"name"`
	Description      string `json:"description" yaml:"description"`
	ShortDescription string `json:"shortDescription" yaml:"shortDescription"`

	Price Money `json:"price" yaml:"price"`
	// OriginalPrice is the pre-discount price, present only for products on sale.
	OriginalPrice *Money `json:"originalPrice,omitempty" yaml:"originalPrice,omitempty"`

	Category Category `json:"category" yaml:"category"`
	Status   Status   `json:"status" yaml:"status"`

	Images []Image `json:"images" yaml:"images"`

	Tags      []string `json:"tags" yaml:"tags"`
	Rating    Rating   `json:"rating" yaml:"rating"`
	SoldCount int      `json:"soldCount" yaml:"soldCount"`

	Features  []string   `json:"features" yaml:"features"`
	Origin    string     `json:"origin" yaml:"origin"`
	Weight    string     `json:"weight" yaml:"weight"`
	Nutrition *Nutrition `json:"nutrition,omitempty" yaml:"nutrition,omitempty"`

	Specifications map[string]string `json:"specifications" yaml:"specifications"`

	CreatedAt time.Time `json:"createdAt" yaml:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" yaml:"updatedAt"`
}

// InStock reports whether the product can be bought right now.
func (p Product) InStock() bool {
	return p.Status == StatusActive
}

// OnSale reports whether the product carries an original price.
func (p Product) OnSale() bool {
	return p.OriginalPrice != nil
}

// DiscountPercent returns (original - current) / original * 100.
// The second result is false when there is no usable original price.
func (p Product) DiscountPercent() (float64, bool) {
	if p.OriginalPrice == nil || p.OriginalPrice.Amount <= 0 {
		return 0, false
	}
	return (p.OriginalPrice.Amount - p.Price.Amount) / p.OriginalPrice.Amount * 100, true
}

// PrimaryImage returns the image flagged primary, falling back to the first one.
func (p Product) PrimaryImage() (Image, bool) {
	for _, img := range p.Images {
		if img.IsPrimary {
			return img, true
		}
	}
	if len(p.Images) > 0 {
		return p.Images[0], true
	}
	return Image{}, false
}

// HasTag reports whether the product carries tag (exact match).
func (p Product) HasTag(tag string) bool {
	for _, t := range p.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// searchableText returns the lower-cased fields matched by free-text filters.
func (p Product) searchableText() []string {
	fields := []string{
		strings.ToLower(p.Name),
		strings.ToLower(p.Description),
		strings.ToLower(p.ShortDescription),
		strings.ToLower(p.Origin),
	}
	for _, tag := range p.Tags {
		fields = append(fields, strings.ToLower(tag))
	}
	return fields
}

// MatchesText reports whether the lower-cased needle occurs in the name,
// description, short description, tags or origin.
func (p Product) MatchesText(needle string) bool {
	needle = strings.ToLower(needle)
	for _, field := range p.searchableText() {
		if strings.Contains(field, needle) {
			return true
		}
	}
	return false
}
