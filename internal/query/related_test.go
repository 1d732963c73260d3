package query

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/yourusername/hivestore/pkg/catalog"
)

func TestRelatednessScore(t *testing.T) {
	ref := product("ref", func(p *catalog.Product) {
		p.Tags = []string{"raw", "floral", "single-origin"}
		p.Price.Amount = 100
	})

	tests := []struct {
		name      string
		candidate catalog.Product
		want      int
	}{
		{
			"everything",
			product("c", func(p *catalog.Product) { p.Tags = []string{"raw", "floral"}; p.Price.Amount = 120 }),
			SameCategoryScore + 2*SharedTagScore + SameOriginScore + SimilarPriceScore,
		},
		{
			"price just outside",
			product("c", func(p *catalog.Product) { p.Price.Amount = 121 }),
			SameCategoryScore + SameOriginScore,
		},
		{
			"price lower bound",
			product("c", func(p *catalog.Product) { p.Category = catalog.CategorySkincare; p.Origin = "x"; p.Price.Amount = 80 }),
			SimilarPriceScore,
		},
		{
			"unrelated",
			product("c", func(p *catalog.Product) { p.Category = catalog.CategorySkincare; p.Origin = "x"; p.Price.Amount = 5 }),
			0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RelatednessScore(ref, tt.candidate))
		})
	}
}

func TestRelatednessZeroReferencePrice(t *testing.T) {
	ref := product("ref", func(p *catalog.Product) { p.Price.Amount = 0; p.Category = catalog.CategorySkincare; p.Origin = "x" })
	cand := product("c", func(p *catalog.Product) { p.Price.Amount = 0 })
	assert.Equal(t, 0, RelatednessScore(ref, cand))
}

func TestRelatedOrderingAndExclusion(t *testing.T) {
	ref := product("ref", func(p *catalog.Product) { p.Tags = []string{"raw"} })
	products := []catalog.Product{
		ref,
		product("weak", func(p *catalog.Product) { p.Category = catalog.CategorySkincare; p.Origin = "x"; p.Price.Amount = 11 }),
		product("strong", func(p *catalog.Product) { p.Tags = []string{"raw"} }),
		product("zero", func(p *catalog.Product) { p.Category = catalog.CategorySkincare; p.Origin = "x"; p.Price.Amount = 99 }),
		product("strong2", func(p *catalog.Product) { p.Tags = []string{"raw"} }),
	}

	got := Related(products, ref, 10)
	assert.Equal(t, []string{"strong", "strong2", "weak"}, ids(got))

	assert.Equal(t, []string{"strong"}, ids(Related(products, ref, 1)))
}

func TestRelatedSeedProperties(t *testing.T) {
	products := seed(t)
	for _, ref := range products {
		for _, limit := range []int{1, 4, 20} {
			got := Related(products, ref, limit)
			assert.LessOrEqual(t, len(got), limit)
			for _, p := range got {
				assert.NotEqual(t, ref.ID, p.ID)
				assert.Positive(t, RelatednessScore(ref, p))
			}
		}
	}
}
