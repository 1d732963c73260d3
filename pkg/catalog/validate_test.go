package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"

	herrors "github.com/yourusername/hivestore/pkg/errors"
)

func TestProductValidate(t *testing.T) {
	assert.NoError(t, testProduct().Validate())

	tests := []struct {
		name   string
		mutate func(p *Product)
		want   string
	}{
		{"empty id", func(p *Product) { p.ID = "" }, "id is empty"},
		{"negative price", func(p *Product) { p.Price.Amount = -1 }, "negative"},
		{"original below price", func(p *Product) { p.OriginalPrice = &Money{Amount: 10, Currency: CurrencyUSD} }, "does not exceed"},
		{"original equals price", func(p *Product) { p.OriginalPrice = &Money{Amount: 20, Currency: CurrencyUSD} }, "does not exceed"},
		{"currency mismatch", func(p *Product) { p.OriginalPrice = &Money{Amount: 30, Currency: CurrencyEUR} }, "currency"},
		{"category", func(p *Product) { p.Category = "candles" }, "unknown category"},
		{"status", func(p *Product) { p.Status = "gone" }, "unknown status"},
		{"images", func(p *Product) { p.Images = nil }, "no images"},
		{"rating", func(p *Product) { p.Rating.Average = 5.5 }, "rating"},
		{"sold", func(p *Product) { p.SoldCount = -2 }, "sold count"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := testProduct()
			tt.mutate(&p)
			err := p.Validate()
			assert.ErrorIs(t, err, herrors.ErrInvalidProduct)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestValidateCollectionDuplicates(t *testing.T) {
	a := testProduct()
	b := testProduct()
	b.Slug = "other"

	err := ValidateCollection([]Product{a, b})
	assert.ErrorIs(t, err, herrors.ErrInvalidProduct)
	assert.Contains(t, err.Error(), `duplicate id "p1"`)

	b.ID = "p2"
	b.Slug = a.Slug
	err = ValidateCollection([]Product{a, b})
	assert.Contains(t, err.Error(), `duplicate slug "acacia"`)

	b.Slug = "other"
	assert.NoError(t, ValidateCollection([]Product{a, b}))
}
