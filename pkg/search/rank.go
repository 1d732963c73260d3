// Package search ranks products against a free-text query and keeps a short,
// persisted history of recent queries.
package search

import (
	"slices"
	"strings"

	"github.com/yourusername/hivestore/pkg/catalog"
)

// Weights added to a product's score for each kind of match.
const (
	NameWeight        = 100
	CategoryWeight    = 50
	DescriptionWeight = 30
	FeatureWeight     = 20
	NamePrefixWeight  = 50
)

// MatchType names the field that produced the strongest match.
type MatchType string

const (
	MatchName        MatchType = "name"
	MatchCategory    MatchType = "category"
	MatchDescription MatchType = "description"
	MatchFeatures    MatchType = "features"
)

// Result is a ranked product.
type Result struct {
	Product    catalog.Product `json:"product"`
	MatchScore int             `json:"matchScore"`
	MatchType  MatchType       `json:"matchType"`
}

// Score computes the match score of p against an already normalized query.
// A score of zero means no match.
func Score(p catalog.Product, normalized string) (int, MatchType) {
	if normalized == "" {
		return 0, MatchDescription
	}

	score := 0
	kind := MatchDescription
	name := strings.ToLower(p.Name)

	if strings.Contains(name, normalized) {
		score += NameWeight
		kind = MatchName
	}
	if strings.Contains(strings.ToLower(string(p.Category)), normalized) {
		score += CategoryWeight
		if score < NameWeight {
			kind = MatchCategory
		}
	}
	if strings.Contains(strings.ToLower(p.Description), normalized) {
		score += DescriptionWeight
		if score < NameWeight {
			kind = MatchDescription
		}
	}
	if slices.ContainsFunc(p.Features, func(f string) bool {
		return strings.Contains(strings.ToLower(f), normalized)
	}) {
		score += FeatureWeight
		if score < NameWeight {
			kind = MatchFeatures
		}
	}
	if strings.HasPrefix(name, normalized) {
		score += NamePrefixWeight
	}

	return score, kind
}

// Normalize trims and lower-cases a raw query.
func Normalize(query string) string {
	return strings.ToLower(strings.TrimSpace(query))
}

// Rank returns the products matching query ordered by score, highest first.
// Equal scores keep collection order. A blank query matches nothing.
//
// Rank 按得分从高到低返回匹配的产品，得分相同时保持集合顺序。
func Rank(products []catalog.Product, query string) []Result {
	q := Normalize(query)
	if q == "" {
		return []Result{}
	}

	results := make([]Result, 0)
	for _, p := range products {
		if score, kind := Score(p, q); score > 0 {
			results = append(results, Result{Product: p, MatchScore: score, MatchType: kind})
		}
	}

	slices.SortStableFunc(results, func(a, b Result) int {
		return b.MatchScore - a.MatchScore
	})
	return results
}
