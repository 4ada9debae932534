package parse

import (
	"regexp"

	"freshops/internal"
	"freshops/internal/config"
	"freshops/internal/match"
	"freshops/internal/registry"
	"freshops/internal/util"
)

var reBracketed = regexp.MustCompile(`\([^)]*\)|\[[^\]]*\]`)

// ProductResolver scores residual item text against the product catalog with
// length-weighted partial credit, boosted by the customer's purchase history.
type ProductResolver struct {
	cfg    config.Config
	index  *registry.Index
	scorer match.LengthScorer
}

func NewProductResolver(cfg config.Config, index *registry.Index) *ProductResolver {
	return &ProductResolver{cfg: cfg, index: index}
}

// Resolve returns the best catalog product at or above the acceptance
// threshold, or nil when the text stays unresolved. history may be nil.
// A candidate already scoring at least the boost floor gains a flat boost
// when the customer has ordered it before; this deliberately prefers a known
// repeat purchase over a textually closer product the customer never buys.
func (r *ProductResolver) Resolve(nameText string, history map[string]struct{}) (*internal.ProductRecord, float64) {
	cleaned := reBracketed.ReplaceAllString(nameText, " ")
	input := util.Normalize(cleaned)
	if input == "" {
		return nil, 0
	}

	var best *internal.ProductRecord
	bestScore := 0.0
	for i := range r.index.Products {
		p := r.index.Products[i]
		score := r.scorer.Score(input, r.index.NormalizedNameByCode[p.Code])
		if score == match.ScoreExact {
			// An exact name match wins outright; no boost on any other
			// candidate may outbid it.
			return &r.index.Products[i], score
		}
		if history != nil && score >= match.HistoryBoostFloor {
			if _, ok := history[p.Code]; ok {
				score += r.cfg.HistoryBoost
			}
		}
		if score > bestScore {
			bestScore = score
			best = &r.index.Products[i]
		}
	}

	if best == nil || bestScore < r.cfg.ProductMatchThreshold {
		return nil, bestScore
	}
	return best, bestScore
}
