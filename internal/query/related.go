package query

import (
	"cmp"
	"slices"

	"github.com/yourusername/hivestore/pkg/catalog"
)

// Relatedness weights.
const (
	SameCategoryScore = 10
	SharedTagScore    = 2
	SameOriginScore   = 5
	SimilarPriceScore = 3

	// candidate/reference price ratio bounds for SimilarPriceScore
	minPriceRatio = 0.8
	maxPriceRatio = 1.2
)

// RelatednessScore scores how similar candidate is to reference.
// A zero score means the two products are unrelated.
//
// RelatednessScore 计算候选产品与参考产品的相似度。得分为零表示两者无关。
func RelatednessScore(reference, candidate catalog.Product) int {
	score := 0
	if candidate.Category == reference.Category {
		score += SameCategoryScore
	}
	for _, tag := range candidate.Tags {
		if reference.HasTag(tag) {
			score += SharedTagScore
		}
	}
	if candidate.Origin == reference.Origin {
		score += SameOriginScore
	}
	if reference.Price.Amount > 0 {
		ratio := candidate.Price.Amount / reference.Price.Amount
		if ratio >= minPriceRatio && ratio <= maxPriceRatio {
			score += SimilarPriceScore
		}
	}
	return score
}

type scored struct {
	product catalog.Product
	score   int
}

// Related ranks every other product by RelatednessScore against reference and
// returns the best limit of them with a positive score. Equal scores keep
// collection order.
func Related(products []catalog.Product, reference catalog.Product, limit int) []catalog.Product {
	candidates := make([]scored, 0, len(products))
	for _, p := range products {
		if p.ID == reference.ID {
			continue
		}
		if s := RelatednessScore(reference, p); s > 0 {
			candidates = append(candidates, scored{product: p, score: s})
		}
	}

	slices.SortStableFunc(candidates, func(a, b scored) int {
		return cmp.Compare(b.score, a.score)
	})

	out := make([]catalog.Product, 0, min(limit, len(candidates)))
	for _, c := range candidates {
		if len(out) == limit {
			break
		}
		out = append(out, c.product)
	}
	return out
}
